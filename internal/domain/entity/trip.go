package entity

import "time"

// Trip is one leg of a travel application. From/to locations are weak
// references into the location master (id plus cached display name).
type Trip struct {
	ID               int64         `json:"id"`
	FromLocation     int64         `json:"from_location"`
	FromLocationName string        `json:"from_location_name,omitempty"`
	ToLocation       int64         `json:"to_location"`
	ToLocationName   string        `json:"to_location_name,omitempty"`
	DepartureDate    time.Time     `json:"departure_date"`
	ReturnDate       time.Time     `json:"return_date"`
	RoundTrip        bool          `json:"round_trip"`
	Purpose          string        `json:"trip_purpose"`
	GuestCount       int           `json:"guest_count"`
	Ticketing        []BookingLineItem `json:"ticketing"`
	Accommodation    []BookingLineItem `json:"accommodation"`
	Conveyance       []BookingLineItem `json:"conveyance"`
	Advance          TravelAdvance `json:"travel_advance"`
}

// Clone returns a deep copy of the trip including all category collections.
func (t Trip) Clone() Trip {
	out := t
	out.Ticketing = cloneItems(t.Ticketing)
	out.Accommodation = cloneItems(t.Accommodation)
	out.Conveyance = cloneItems(t.Conveyance)
	return out
}

func cloneItems(items []BookingLineItem) []BookingLineItem {
	if items == nil {
		return nil
	}
	out := make([]BookingLineItem, len(items))
	copy(out, items)
	return out
}

// LineItems returns the category collection for the given category.
func (t *Trip) LineItems(cat BookingCategory) []BookingLineItem {
	switch cat {
	case CategoryTicketing:
		return t.Ticketing
	case CategoryAccommodation:
		return t.Accommodation
	case CategoryConveyance:
		return t.Conveyance
	}
	return nil
}

// SetLineItems replaces the category collection for the given category.
func (t *Trip) SetLineItems(cat BookingCategory, items []BookingLineItem) {
	switch cat {
	case CategoryTicketing:
		t.Ticketing = items
	case CategoryAccommodation:
		t.Accommodation = items
	case CategoryConveyance:
		t.Conveyance = items
	}
}

// AllLineItems returns every booking of the trip across all three categories,
// ticketing first, then accommodation, then conveyance.
func (t Trip) AllLineItems() []BookingLineItem {
	out := make([]BookingLineItem, 0, len(t.Ticketing)+len(t.Accommodation)+len(t.Conveyance))
	out = append(out, t.Ticketing...)
	out = append(out, t.Accommodation...)
	out = append(out, t.Conveyance...)
	return out
}
