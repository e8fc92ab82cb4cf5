// Package builder holds the full in-progress travel application in memory
// and exposes pure mutation operations over it. It never talks to the
// network; persistence and submission are the application layer's concern.
//
// Every mutation works on a deep copy and returns the new snapshot, so
// callers can diff consecutive snapshots cheaply and a failed operation
// leaves the previous state untouched.
package builder

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// Builder assembles one TravelApplication from independent category forms.
type Builder struct {
	app entity.TravelApplication
}

// New creates a builder holding a draft application seeded with one empty
// trip. An application always has at least one trip.
func New() *Builder {
	return &Builder{
		app: entity.TravelApplication{
			Status: entity.StatusDraft,
			Trips:  []entity.Trip{emptyTrip()},
		},
	}
}

// FromApplication creates a builder over an existing application snapshot,
// for example when editing a saved draft. The snapshot is copied.
func FromApplication(app entity.TravelApplication) *Builder {
	return &Builder{app: app.Clone()}
}

func emptyTrip() entity.Trip {
	return entity.Trip{
		Ticketing:     []entity.BookingLineItem{},
		Accommodation: []entity.BookingLineItem{},
		Conveyance:    []entity.BookingLineItem{},
	}
}

// Snapshot returns a deep copy of the current application state.
func (b *Builder) Snapshot() entity.TravelApplication {
	return b.app.Clone()
}

// AddTrip appends a trip with empty category collections and a zeroed
// advance, returning the new snapshot. The builder places no upper bound on
// the trip count.
func (b *Builder) AddTrip() entity.TravelApplication {
	next := b.app.Clone()
	next.Trips = append(next.Trips, emptyTrip())
	b.app = next
	return next.Clone()
}

// RemoveTrip removes the trip at index. Removing the last remaining trip is
// rejected with an InvariantViolationError and the state is left unchanged.
func (b *Builder) RemoveTrip(index int) (entity.TravelApplication, error) {
	if index < 0 || index >= len(b.app.Trips) {
		return b.Snapshot(), violation("RemoveTrip", "trip index %d out of range [0,%d)", index, len(b.app.Trips))
	}
	if len(b.app.Trips) == 1 {
		return b.Snapshot(), violation("RemoveTrip", "an application must keep at least one trip")
	}
	next := b.app.Clone()
	next.Trips = append(next.Trips[:index], next.Trips[index+1:]...)
	b.app = next
	return next.Clone(), nil
}

// UpdateApplicationField updates a top-level application field by name.
func (b *Builder) UpdateApplicationField(field string, value interface{}) (entity.TravelApplication, error) {
	next := b.app.Clone()
	var err error
	switch field {
	case "purpose":
		next.Purpose, err = asString(value)
	case "internal_order":
		next.InternalOrder, err = asString(value)
	case "general_ledger":
		next.GeneralLedger, err = asID(value)
	case "sanction_number":
		next.SanctionNumber, err = asString(value)
	case "advance_amount":
		next.AdvanceAmount, err = asDecimal(value)
	case "applicant_id":
		next.ApplicantID, err = asString(value)
	case "grade_id":
		next.GradeID, err = asID(value)
	default:
		return b.Snapshot(), unknownField("UpdateApplicationField", field)
	}
	if err != nil {
		return b.Snapshot(), err
	}
	b.app = next
	return next.Clone(), nil
}

// UpdateTripField updates a trip-level field by name.
func (b *Builder) UpdateTripField(index int, field string, value interface{}) (entity.TravelApplication, error) {
	if index < 0 || index >= len(b.app.Trips) {
		return b.Snapshot(), violation("UpdateTripField", "trip index %d out of range [0,%d)", index, len(b.app.Trips))
	}
	next := b.app.Clone()
	trip := &next.Trips[index]
	var err error
	switch field {
	case "from_location":
		trip.FromLocation, err = asID(value)
	case "from_location_name":
		trip.FromLocationName, err = asString(value)
	case "to_location":
		trip.ToLocation, err = asID(value)
	case "to_location_name":
		trip.ToLocationName, err = asString(value)
	case "departure_date":
		trip.DepartureDate, err = asTime(value)
	case "return_date":
		trip.ReturnDate, err = asTime(value)
	case "round_trip":
		trip.RoundTrip, err = asBool(value)
	case "trip_purpose":
		trip.Purpose, err = asString(value)
	case "guest_count":
		var n int64
		n, err = asID(value)
		trip.GuestCount = int(n)
	default:
		return b.Snapshot(), unknownField("UpdateTripField", field)
	}
	if err != nil {
		return b.Snapshot(), err
	}
	b.app = next
	return next.Clone(), nil
}

// AddLineItem appends an empty line item to a trip's category collection.
func (b *Builder) AddLineItem(tripIndex int, cat entity.BookingCategory) (entity.TravelApplication, error) {
	if tripIndex < 0 || tripIndex >= len(b.app.Trips) {
		return b.Snapshot(), violation("AddLineItem", "trip index %d out of range [0,%d)", tripIndex, len(b.app.Trips))
	}
	if !cat.IsValid() {
		return b.Snapshot(), violation("AddLineItem", "unknown booking category %q", cat)
	}
	next := b.app.Clone()
	trip := &next.Trips[tripIndex]
	items := append(trip.LineItems(cat), entity.BookingLineItem{
		Category: cat,
		Status:   entity.BookingStatusPending,
	})
	trip.SetLineItems(cat, items)
	b.app = next
	return next.Clone(), nil
}

// RemoveLineItem removes a line item from a trip's category collection.
func (b *Builder) RemoveLineItem(tripIndex int, cat entity.BookingCategory, itemIndex int) (entity.TravelApplication, error) {
	if tripIndex < 0 || tripIndex >= len(b.app.Trips) {
		return b.Snapshot(), violation("RemoveLineItem", "trip index %d out of range [0,%d)", tripIndex, len(b.app.Trips))
	}
	if !cat.IsValid() {
		return b.Snapshot(), violation("RemoveLineItem", "unknown booking category %q", cat)
	}
	next := b.app.Clone()
	trip := &next.Trips[tripIndex]
	items := trip.LineItems(cat)
	if itemIndex < 0 || itemIndex >= len(items) {
		return b.Snapshot(), violation("RemoveLineItem", "item index %d out of range [0,%d)", itemIndex, len(items))
	}
	trip.SetLineItems(cat, append(items[:itemIndex], items[itemIndex+1:]...))
	b.app = next
	return next.Clone(), nil
}

// UpdateLineItem updates a single field of a line item by name.
func (b *Builder) UpdateLineItem(tripIndex int, cat entity.BookingCategory, itemIndex int, field string, value interface{}) (entity.TravelApplication, error) {
	if tripIndex < 0 || tripIndex >= len(b.app.Trips) {
		return b.Snapshot(), violation("UpdateLineItem", "trip index %d out of range [0,%d)", tripIndex, len(b.app.Trips))
	}
	if !cat.IsValid() {
		return b.Snapshot(), violation("UpdateLineItem", "unknown booking category %q", cat)
	}
	next := b.app.Clone()
	trip := &next.Trips[tripIndex]
	items := trip.LineItems(cat)
	if itemIndex < 0 || itemIndex >= len(items) {
		return b.Snapshot(), violation("UpdateLineItem", "item index %d out of range [0,%d)", itemIndex, len(items))
	}
	item := &items[itemIndex]
	var err error
	switch field {
	case "booking_type":
		item.BookingType, err = asID(value)
	case "sub_option":
		item.SubOption, err = asID(value)
	case "from_place":
		item.FromPlace, err = asString(value)
	case "to_place":
		item.ToPlace, err = asString(value)
	case "departure_at":
		item.DepartureAt, err = asTimePtr(value)
	case "arrival_at":
		item.ArrivalAt, err = asTimePtr(value)
	case "place":
		item.Place, err = asString(value)
	case "check_in":
		item.CheckIn, err = asTimePtr(value)
	case "check_out":
		item.CheckOut, err = asTimePtr(value)
	case "guest_house_id":
		item.GuestHouseID, err = asID(value)
	case "hotel_name":
		item.HotelName, err = asString(value)
	case "start_at":
		item.StartAt, err = asTimePtr(value)
	case "end_at":
		item.EndAt, err = asTimePtr(value)
	case "drop_address":
		item.DropAddress, err = asString(value)
	case "distance_km":
		item.DistanceKM, err = asFloat(value)
	case "estimated_cost":
		item.EstimatedCost, err = asDecimal(value)
	case "special_instruction":
		item.SpecialInstruction, err = asString(value)
	default:
		return b.Snapshot(), unknownField("UpdateLineItem", field)
	}
	if err != nil {
		return b.Snapshot(), err
	}
	trip.SetLineItems(cat, items)
	b.app = next
	return next.Clone(), nil
}

// UpdateAdvanceField updates one component of a trip's travel advance.
// The total is derived on read and can never be written; "total" is rejected.
func (b *Builder) UpdateAdvanceField(tripIndex int, field string, value interface{}) (entity.TravelApplication, error) {
	if tripIndex < 0 || tripIndex >= len(b.app.Trips) {
		return b.Snapshot(), violation("UpdateAdvanceField", "trip index %d out of range [0,%d)", tripIndex, len(b.app.Trips))
	}
	next := b.app.Clone()
	adv := &next.Trips[tripIndex].Advance
	var err error
	switch field {
	case "air_fare":
		adv.AirFare, err = asDecimal(value)
	case "train_fare":
		adv.TrainFare, err = asDecimal(value)
	case "lodging_fare":
		adv.LodgingFare, err = asDecimal(value)
	case "conveyance_fare":
		adv.ConveyanceFare, err = asDecimal(value)
	case "other_expenses":
		adv.OtherExpenses, err = asDecimal(value)
	case "special_instruction":
		adv.SpecialInstruction, err = asString(value)
	case "total":
		return b.Snapshot(), ErrDerivedField
	default:
		return b.Snapshot(), unknownField("UpdateAdvanceField", field)
	}
	if err != nil {
		return b.Snapshot(), err
	}
	b.app = next
	return next.Clone(), nil
}

func unknownField(op, field string) error {
	return fmt.Errorf("%s: %w: %q", op, ErrUnknownField, field)
}

// Value coercion helpers. The builder is fed by form-shaped input, so values
// arrive loosely typed; coercion is strict about the target type.

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", ErrBadValue
	}
	return s, nil
}

func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, ErrBadValue
	}
	return b, nil
}

func asID(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	}
	return 0, ErrBadValue
}

func asFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, ErrBadValue
}

func asDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, ErrBadValue
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	}
	return decimal.Zero, ErrBadValue
}

func asTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, ErrBadValue
		}
		return parsed, nil
	}
	return time.Time{}, ErrBadValue
}

func asTimePtr(v interface{}) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := asTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
