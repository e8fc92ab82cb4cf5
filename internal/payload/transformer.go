// Package payload converts the builder's nested, form-shaped application
// into the flat wire schema the submission endpoint expects. The transform
// is pure and deterministic: the same snapshot always produces the same
// payload, which makes snapshot-based testing possible.
package payload

import (
	"encoding/json"
	"time"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339
)

// WirePayload is the flat submission schema.
type WirePayload struct {
	Purpose        string     `json:"purpose"`
	InternalOrder  string     `json:"internal_order,omitempty"`
	GeneralLedger  int64      `json:"general_ledger"`
	SanctionNumber string     `json:"sanction_number,omitempty"`
	AdvanceAmount  string     `json:"advance_amount"`
	TripDetails    []WireTrip `json:"trip_details"`
}

// WireTrip is one trip with its category collections flattened into a single
// bookings array.
type WireTrip struct {
	FromLocation  int64         `json:"from_location"`
	ToLocation    int64         `json:"to_location"`
	DepartureDate string        `json:"departure_date"`
	ReturnDate    string        `json:"return_date,omitempty"`
	RoundTrip     bool          `json:"round_trip"`
	TripPurpose   string        `json:"trip_purpose,omitempty"`
	GuestCount    int           `json:"guest_count"`
	Bookings      []WireBooking `json:"bookings"`
	TravelAdvance WireAdvance   `json:"travel_advance"`
}

// WireBooking is one flattened line item. BookingDetails carries the
// category-specific route/date/place fields; its key set is fixed per
// category.
type WireBooking struct {
	Category           string                 `json:"category"`
	BookingType        int64                  `json:"booking_type"`
	SubOption          int64                  `json:"sub_option,omitempty"`
	EstimatedCost      string                 `json:"estimated_cost"`
	SpecialInstruction string                 `json:"special_instruction,omitempty"`
	BookingDetails     map[string]interface{} `json:"booking_details"`
}

// WireAdvance is the advance breakdown with the derived total materialized
// for the backend.
type WireAdvance struct {
	AirFare            string `json:"air_fare"`
	TrainFare          string `json:"train_fare"`
	LodgingFare        string `json:"lodging_fare"`
	ConveyanceFare     string `json:"conveyance_fare"`
	OtherExpenses      string `json:"other_expenses"`
	Total              string `json:"total"`
	SpecialInstruction string `json:"special_instruction,omitempty"`
}

// ToSubmissionPayload maps a builder snapshot onto the wire schema. It fails
// with a CoercionError when a required id is zero or a cost is negative.
func ToSubmissionPayload(app entity.TravelApplication) (*WirePayload, error) {
	if app.GeneralLedger == 0 {
		return nil, &CoercionError{Field: "general_ledger", TripIndex: -1, BookingIndex: -1, Reason: "required id is zero"}
	}

	out := &WirePayload{
		Purpose:        app.Purpose,
		InternalOrder:  app.InternalOrder,
		GeneralLedger:  app.GeneralLedger,
		SanctionNumber: app.SanctionNumber,
		AdvanceAmount:  app.AdvanceAmount.StringFixed(2),
		TripDetails:    make([]WireTrip, 0, len(app.Trips)),
	}

	for ti, trip := range app.Trips {
		wt, err := transformTrip(ti, trip)
		if err != nil {
			return nil, err
		}
		out.TripDetails = append(out.TripDetails, wt)
	}

	return out, nil
}

// Encode renders the payload as JSON. Struct fields have a fixed order and
// booking_details maps marshal with sorted keys, so identical snapshots
// encode byte-identically.
func Encode(p *WirePayload) ([]byte, error) {
	return json.Marshal(p)
}

func transformTrip(ti int, trip entity.Trip) (WireTrip, error) {
	if trip.FromLocation == 0 {
		return WireTrip{}, &CoercionError{Field: "from_location", TripIndex: ti, BookingIndex: -1, Reason: "required id is zero"}
	}
	if trip.ToLocation == 0 {
		return WireTrip{}, &CoercionError{Field: "to_location", TripIndex: ti, BookingIndex: -1, Reason: "required id is zero"}
	}

	wt := WireTrip{
		FromLocation:  trip.FromLocation,
		ToLocation:    trip.ToLocation,
		DepartureDate: trip.DepartureDate.Format(dateTimeLayout),
		RoundTrip:     trip.RoundTrip,
		TripPurpose:   trip.Purpose,
		GuestCount:    trip.GuestCount,
		Bookings:      make([]WireBooking, 0, len(trip.Ticketing)+len(trip.Accommodation)+len(trip.Conveyance)),
		TravelAdvance: WireAdvance{
			AirFare:            trip.Advance.AirFare.StringFixed(2),
			TrainFare:          trip.Advance.TrainFare.StringFixed(2),
			LodgingFare:        trip.Advance.LodgingFare.StringFixed(2),
			ConveyanceFare:     trip.Advance.ConveyanceFare.StringFixed(2),
			OtherExpenses:      trip.Advance.OtherExpenses.StringFixed(2),
			Total:              trip.Advance.Total().StringFixed(2),
			SpecialInstruction: trip.Advance.SpecialInstruction,
		},
	}
	if !trip.ReturnDate.IsZero() {
		wt.ReturnDate = trip.ReturnDate.Format(dateTimeLayout)
	}

	// Flatten the three category collections in a fixed order.
	bi := 0
	for _, item := range trip.AllLineItems() {
		wb, err := transformBooking(ti, bi, item)
		if err != nil {
			return WireTrip{}, err
		}
		wt.Bookings = append(wt.Bookings, wb)
		bi++
	}

	return wt, nil
}

func transformBooking(ti, bi int, item entity.BookingLineItem) (WireBooking, error) {
	if item.BookingType == 0 {
		return WireBooking{}, &CoercionError{Field: "booking_type", TripIndex: ti, BookingIndex: bi, Reason: "required id is zero"}
	}
	if item.EstimatedCost.IsNegative() {
		return WireBooking{}, &CoercionError{Field: "estimated_cost", TripIndex: ti, BookingIndex: bi, Reason: "cost is negative"}
	}

	details, err := bookingDetails(ti, bi, item)
	if err != nil {
		return WireBooking{}, err
	}

	return WireBooking{
		Category:           item.Category.String(),
		BookingType:        item.BookingType,
		SubOption:          item.SubOption,
		EstimatedCost:      item.EstimatedCost.StringFixed(2),
		SpecialInstruction: item.SpecialInstruction,
		BookingDetails:     details,
	}, nil
}

// bookingDetails builds the category-specific detail object. The key set per
// category is a fixed table; keys for absent optional values are omitted.
func bookingDetails(ti, bi int, item entity.BookingLineItem) (map[string]interface{}, error) {
	d := make(map[string]interface{})
	switch item.Category {
	case entity.CategoryTicketing:
		d["from"] = item.FromPlace
		d["to"] = item.ToPlace
		if item.DepartureAt != nil {
			d["departure"] = item.DepartureAt.Format(dateTimeLayout)
		}
		if item.ArrivalAt != nil {
			d["arrival"] = item.ArrivalAt.Format(dateTimeLayout)
		}
	case entity.CategoryAccommodation:
		d["place"] = item.Place
		if item.CheckIn != nil {
			d["check_in"] = item.CheckIn.Format(dateLayout)
		}
		if item.CheckOut != nil {
			d["check_out"] = item.CheckOut.Format(dateLayout)
		}
		// Guest house and ad-hoc hotel are mutually exclusive options.
		if item.GuestHouseID != 0 {
			d["guest_house_id"] = item.GuestHouseID
		} else {
			d["hotel_name"] = item.HotelName
		}
	case entity.CategoryConveyance:
		if item.StartAt != nil {
			d["start"] = item.StartAt.Format(dateTimeLayout)
		}
		if item.EndAt != nil {
			d["end"] = item.EndAt.Format(dateTimeLayout)
		}
		d["drop"] = item.DropAddress
		d["distance"] = item.DistanceKM
	default:
		return nil, &CoercionError{Field: "category", TripIndex: ti, BookingIndex: bi, Reason: "unknown booking category"}
	}
	return d, nil
}
