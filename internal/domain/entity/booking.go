package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingCategory identifies which category collection a line item lives in.
// The category decides which route/date fields are mandatory.
type BookingCategory string

const (
	CategoryTicketing     BookingCategory = "ticketing"
	CategoryAccommodation BookingCategory = "accommodation"
	CategoryConveyance    BookingCategory = "conveyance"
)

var validCategories = map[BookingCategory]bool{
	CategoryTicketing:     true,
	CategoryAccommodation: true,
	CategoryConveyance:    true,
}

// IsValid returns true if the category is one of the three known categories.
func (c BookingCategory) IsValid() bool {
	return validCategories[c]
}

func (c BookingCategory) String() string {
	return string(c)
}

// BookingLineItem is a single ticketing, accommodation or conveyance request
// inside a trip. Only the fields relevant to its category are populated; the
// payload transformer picks the category-specific subset for the wire format.
type BookingLineItem struct {
	ID          int64           `json:"id"`
	Category    BookingCategory `json:"category"`
	BookingType int64           `json:"booking_type"` // travel-mode id
	SubOption   int64           `json:"sub_option,omitempty"`

	// Ticketing
	FromPlace   string     `json:"from_place,omitempty"`
	ToPlace     string     `json:"to_place,omitempty"`
	DepartureAt *time.Time `json:"departure_at,omitempty"`
	ArrivalAt   *time.Time `json:"arrival_at,omitempty"`

	// Accommodation
	Place        string     `json:"place,omitempty"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
	CheckOut     *time.Time `json:"check_out,omitempty"`
	GuestHouseID int64      `json:"guest_house_id,omitempty"`
	HotelName    string     `json:"hotel_name,omitempty"`

	// Conveyance
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	DropAddress string     `json:"drop_address,omitempty"`
	DistanceKM  float64    `json:"distance_km,omitempty"`

	EstimatedCost      decimal.Decimal `json:"estimated_cost"`
	SpecialInstruction string          `json:"special_instruction,omitempty"`
	Status             string          `json:"status"`
}
