package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Master-data records are pure lookup tables the core joins against by id.
// The core never writes to them.

// Location is a city/site an employee can travel from or to.
type Location struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CityCategoryID int64  `json:"city_category_id"`
}

// CityCategory groups locations into DA rate bands (e.g. metro / non-metro).
type CityCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TravelMode is a ticketing/conveyance mode (flight, train, cab, ...).
type TravelMode struct {
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	Category   BookingCategory    `json:"category"`
	SubOptions []TravelModeOption `json:"sub_options,omitempty"`
}

// TravelModeOption refines a travel mode (e.g. economy / business class).
type TravelModeOption struct {
	ID           int64  `json:"id"`
	TravelModeID int64  `json:"travel_mode_id"`
	Name         string `json:"name"`
}

// GLCode is a general-ledger account reference.
type GLCode struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Grade is an employee grade; DA rates are keyed by it.
type Grade struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GuestHouse is a company accommodation option at a location.
type GuestHouse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	LocationID int64  `json:"location_id"`
}

// ExpenseType categorizes claim items.
type ExpenseType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DARate is one row of the daily-allowance schedule, keyed by city category
// and employee grade. The row effective at the travel date applies.
type DARate struct {
	ID             int64           `json:"id"`
	CityCategoryID int64           `json:"city_category_id"`
	GradeID        int64           `json:"grade_id"`
	DailyRate      decimal.Decimal `json:"daily_rate"`
	IncidentalRate decimal.Decimal `json:"incidental_rate"`
	EffectiveFrom  time.Time       `json:"effective_from"`
}
