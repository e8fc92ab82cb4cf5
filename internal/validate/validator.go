// Package validate gates submission with structural checks that mirror the
// server-side rules but run ahead of them, giving immediate field-level
// feedback. One rule table feeds both the field-blur path (ValidateField)
// and the exhaustive pre-submit path (ValidateApplication), so the two paths
// cannot drift apart.
package validate

import (
	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// Scope says at which level of the application tree a rule runs.
type Scope int

const (
	ScopeApplication Scope = iota
	ScopeTrip
	ScopeBooking
)

// Context carries the slice of the application a rule is looking at. Trip
// and Booking are nil outside their scope.
type Context struct {
	App          *entity.TravelApplication
	TripIndex    int
	Trip         *entity.Trip
	BookingIndex int
	Booking      *entity.BookingLineItem
}

// Rule is one entry of the shared rule table. Passed returns true when the
// rule holds.
type Rule struct {
	Field   string
	Scope   Scope
	Message string
	Passed  func(c Context) bool
}

// Violation is one failed rule, addressable to a field and, when applicable,
// a trip and booking position.
type Violation struct {
	Field        string `json:"field"`
	Message      string `json:"message"`
	TripIndex    *int   `json:"trip_index,omitempty"`
	BookingIndex *int   `json:"booking_index,omitempty"`
}

// rules is the single source of truth for both validation paths.
var rules = []Rule{
	{
		Field:   "purpose",
		Scope:   ScopeApplication,
		Message: "purpose is required",
		Passed:  func(c Context) bool { return c.App.Purpose != "" },
	},
	{
		Field:   "from_location",
		Scope:   ScopeTrip,
		Message: "origin and destination must differ",
		Passed: func(c Context) bool {
			return c.Trip.FromLocation == 0 || c.Trip.ToLocation == 0 || c.Trip.FromLocation != c.Trip.ToLocation
		},
	},
	{
		Field:   "departure_date",
		Scope:   ScopeTrip,
		Message: "departure date is required",
		Passed:  func(c Context) bool { return !c.Trip.DepartureDate.IsZero() },
	},
	{
		Field:   "return_date",
		Scope:   ScopeTrip,
		Message: "return date is required for a round trip",
		Passed:  func(c Context) bool { return !c.Trip.RoundTrip || !c.Trip.ReturnDate.IsZero() },
	},
	{
		Field:   "return_date",
		Scope:   ScopeTrip,
		Message: "return date must not precede departure date",
		Passed: func(c Context) bool {
			if c.Trip.DepartureDate.IsZero() || c.Trip.ReturnDate.IsZero() {
				return true
			}
			return !c.Trip.ReturnDate.Before(c.Trip.DepartureDate)
		},
	},
	{
		Field:   "guest_count",
		Scope:   ScopeTrip,
		Message: "guest count must not be negative",
		Passed:  func(c Context) bool { return c.Trip.GuestCount >= 0 },
	},
	{
		Field:   "booking_type",
		Scope:   ScopeBooking,
		Message: "booking type is required",
		Passed:  func(c Context) bool { return c.Booking.BookingType != 0 },
	},
	{
		Field:   "estimated_cost",
		Scope:   ScopeBooking,
		Message: "estimated cost must not be negative",
		Passed:  func(c Context) bool { return !c.Booking.EstimatedCost.IsNegative() },
	},
}

// ValidateApplication runs every rule over the whole application and returns
// the full violation list. It never stops at the first failure, so a caller
// can render all problems at once.
func ValidateApplication(app entity.TravelApplication) []Violation {
	return run(app, rules)
}

// ValidateField re-runs just the rules registered for one field, across the
// whole tree. Used by the field-blur path; shares the table with
// ValidateApplication by construction.
func ValidateField(app entity.TravelApplication, field string) []Violation {
	var subset []Rule
	for _, r := range rules {
		if r.Field == field {
			subset = append(subset, r)
		}
	}
	return run(app, subset)
}

func run(app entity.TravelApplication, table []Rule) []Violation {
	violations := []Violation{}

	for _, r := range table {
		switch r.Scope {
		case ScopeApplication:
			c := Context{App: &app, TripIndex: -1, BookingIndex: -1}
			if !r.Passed(c) {
				violations = append(violations, Violation{Field: r.Field, Message: r.Message})
			}
		case ScopeTrip:
			for ti := range app.Trips {
				c := Context{App: &app, TripIndex: ti, Trip: &app.Trips[ti], BookingIndex: -1}
				if !r.Passed(c) {
					tripIdx := ti
					violations = append(violations, Violation{Field: r.Field, Message: r.Message, TripIndex: &tripIdx})
				}
			}
		case ScopeBooking:
			for ti := range app.Trips {
				items := app.Trips[ti].AllLineItems()
				for bi := range items {
					c := Context{App: &app, TripIndex: ti, Trip: &app.Trips[ti], BookingIndex: bi, Booking: &items[bi]}
					if !r.Passed(c) {
						tripIdx, bookingIdx := ti, bi
						violations = append(violations, Violation{Field: r.Field, Message: r.Message, TripIndex: &tripIdx, BookingIndex: &bookingIdx})
					}
				}
			}
		}
	}

	return violations
}
