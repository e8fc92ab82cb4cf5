package validate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

func validApplication() entity.TravelApplication {
	dep := time.Date(2025, 11, 24, 7, 0, 0, 0, time.UTC)
	ret := time.Date(2025, 11, 26, 21, 0, 0, 0, time.UTC)
	return entity.TravelApplication{
		Purpose:       "vendor audit",
		GeneralLedger: 3,
		Trips: []entity.Trip{
			{
				FromLocation:  1,
				ToLocation:    2,
				DepartureDate: dep,
				ReturnDate:    ret,
				RoundTrip:     true,
				GuestCount:    0,
				Ticketing: []entity.BookingLineItem{
					{Category: entity.CategoryTicketing, BookingType: 3, EstimatedCost: decimal.NewFromInt(4500)},
				},
			},
		},
	}
}

func TestValidApplicationHasNoViolations(t *testing.T) {
	assert.Empty(t, ValidateApplication(validApplication()))
}

func TestSingleRuleViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(app *entity.TravelApplication)
		field  string
	}{
		{
			name:   "missing purpose",
			mutate: func(a *entity.TravelApplication) { a.Purpose = "" },
			field:  "purpose",
		},
		{
			name:   "same origin and destination",
			mutate: func(a *entity.TravelApplication) { a.Trips[0].ToLocation = a.Trips[0].FromLocation },
			field:  "from_location",
		},
		{
			name:   "missing departure date",
			mutate: func(a *entity.TravelApplication) { a.Trips[0].DepartureDate = time.Time{} },
			field:  "departure_date",
		},
		{
			name: "round trip without return date",
			mutate: func(a *entity.TravelApplication) {
				a.Trips[0].ReturnDate = time.Time{}
			},
			field: "return_date",
		},
		{
			name: "return before departure",
			mutate: func(a *entity.TravelApplication) {
				a.Trips[0].ReturnDate = a.Trips[0].DepartureDate.Add(-24 * time.Hour)
			},
			field: "return_date",
		},
		{
			name:   "negative guest count",
			mutate: func(a *entity.TravelApplication) { a.Trips[0].GuestCount = -1 },
			field:  "guest_count",
		},
		{
			name:   "zero booking type",
			mutate: func(a *entity.TravelApplication) { a.Trips[0].Ticketing[0].BookingType = 0 },
			field:  "booking_type",
		},
		{
			name: "negative estimated cost",
			mutate: func(a *entity.TravelApplication) {
				a.Trips[0].Ticketing[0].EstimatedCost = decimal.NewFromInt(-1)
			},
			field: "estimated_cost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validApplication()
			tt.mutate(&app)

			violations := ValidateApplication(app)
			require.Len(t, violations, 1)
			assert.Equal(t, tt.field, violations[0].Field)
		})
	}
}

func TestAllViolationsCollectedInOneCall(t *testing.T) {
	app := validApplication()
	app.Purpose = ""
	app.Trips[0].GuestCount = -2
	app.Trips[0].Ticketing[0].BookingType = 0

	violations := ValidateApplication(app)
	require.Len(t, violations, 3, "independent failures must all be reported")

	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	assert.Contains(t, fields, "purpose")
	assert.Contains(t, fields, "guest_count")
	assert.Contains(t, fields, "booking_type")
}

func TestViolationsAreAddressable(t *testing.T) {
	app := validApplication()
	app.Trips = append(app.Trips, app.Trips[0].Clone())
	app.Trips[1].Ticketing[0].BookingType = 0

	violations := ValidateApplication(app)
	require.Len(t, violations, 1)
	require.NotNil(t, violations[0].TripIndex)
	require.NotNil(t, violations[0].BookingIndex)
	assert.Equal(t, 1, *violations[0].TripIndex)
	assert.Equal(t, 0, *violations[0].BookingIndex)
}

func TestFieldPathAgreesWithFullPath(t *testing.T) {
	app := validApplication()
	app.Trips[0].ReturnDate = app.Trips[0].DepartureDate.Add(-time.Hour)

	full := ValidateApplication(app)
	scoped := ValidateField(app, "return_date")

	assert.Equal(t, full, scoped, "both paths consume the same rule table")
}

func TestFieldPathIgnoresOtherFields(t *testing.T) {
	app := validApplication()
	app.Purpose = ""
	app.Trips[0].GuestCount = -1

	scoped := ValidateField(app, "guest_count")
	require.Len(t, scoped, 1)
	assert.Equal(t, "guest_count", scoped[0].Field)
}
