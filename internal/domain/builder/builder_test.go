package builder

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

func TestNewSeedsOneTrip(t *testing.T) {
	b := New()
	snap := b.Snapshot()

	assert.Equal(t, entity.StatusDraft, snap.Status)
	require.Len(t, snap.Trips, 1)
	assert.Empty(t, snap.Trips[0].Ticketing)
	assert.True(t, snap.Trips[0].Advance.Total().IsZero())
}

func TestRemoveLastTripRejected(t *testing.T) {
	b := New()
	before := b.Snapshot()

	_, err := b.RemoveTrip(0)

	var inv *InvariantViolationError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "RemoveTrip", inv.Op)
	assert.Equal(t, before, b.Snapshot(), "failed removal must leave state unchanged")
}

func TestAddAndRemoveTrip(t *testing.T) {
	b := New()
	snap := b.AddTrip()
	require.Len(t, snap.Trips, 2)

	snap, err := b.RemoveTrip(1)
	require.NoError(t, err)
	assert.Len(t, snap.Trips, 1)

	_, err = b.RemoveTrip(5)
	var inv *InvariantViolationError
	assert.ErrorAs(t, err, &inv)
}

func TestSnapshotsAreIndependent(t *testing.T) {
	b := New()
	first := b.Snapshot()

	_, err := b.UpdateTripField(0, "trip_purpose", "client visit")
	require.NoError(t, err)

	assert.Empty(t, first.Trips[0].Purpose, "earlier snapshot must not see later writes")

	// Mutating a returned snapshot must not leak into the builder.
	second := b.Snapshot()
	second.Trips[0].Purpose = "tampered"
	assert.Equal(t, "client visit", b.Snapshot().Trips[0].Purpose)
}

func TestUpdateTripField(t *testing.T) {
	dep := time.Date(2025, 11, 24, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		field   string
		value   interface{}
		wantErr bool
		check   func(t *testing.T, trip entity.Trip)
	}{
		{
			name:  "from_location id",
			field: "from_location",
			value: int64(12),
			check: func(t *testing.T, trip entity.Trip) { assert.Equal(t, int64(12), trip.FromLocation) },
		},
		{
			name:  "departure_date from time",
			field: "departure_date",
			value: dep,
			check: func(t *testing.T, trip entity.Trip) { assert.Equal(t, dep, trip.DepartureDate) },
		},
		{
			name:  "departure_date from RFC3339 string",
			field: "departure_date",
			value: "2025-11-24T07:00:00Z",
			check: func(t *testing.T, trip entity.Trip) { assert.Equal(t, dep, trip.DepartureDate) },
		},
		{
			name:  "guest_count",
			field: "guest_count",
			value: 3,
			check: func(t *testing.T, trip entity.Trip) { assert.Equal(t, 3, trip.GuestCount) },
		},
		{
			name:    "unknown field",
			field:   "color",
			value:   "blue",
			wantErr: true,
		},
		{
			name:    "wrong value type",
			field:   "trip_purpose",
			value:   42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			snap, err := b.UpdateTripField(0, tt.field, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, snap.Trips[0])
		})
	}
}

func TestLineItemLifecycle(t *testing.T) {
	b := New()

	snap, err := b.AddLineItem(0, entity.CategoryTicketing)
	require.NoError(t, err)
	require.Len(t, snap.Trips[0].Ticketing, 1)
	assert.Equal(t, entity.BookingStatusPending, snap.Trips[0].Ticketing[0].Status)

	snap, err = b.UpdateLineItem(0, entity.CategoryTicketing, 0, "booking_type", int64(2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Trips[0].Ticketing[0].BookingType)

	snap, err = b.UpdateLineItem(0, entity.CategoryTicketing, 0, "estimated_cost", "4500.00")
	require.NoError(t, err)
	assert.True(t, snap.Trips[0].Ticketing[0].EstimatedCost.Equal(decimal.RequireFromString("4500.00")))

	_, err = b.UpdateLineItem(0, entity.CategoryTicketing, 3, "booking_type", int64(1))
	var inv *InvariantViolationError
	assert.ErrorAs(t, err, &inv)

	_, err = b.AddLineItem(0, entity.BookingCategory("limousine"))
	assert.ErrorAs(t, err, &inv)

	snap, err = b.RemoveLineItem(0, entity.CategoryTicketing, 0)
	require.NoError(t, err)
	assert.Empty(t, snap.Trips[0].Ticketing)
}

func TestAdvanceTotalAlwaysDerived(t *testing.T) {
	b := New()

	updates := []struct {
		field string
		value string
	}{
		{"air_fare", "1200.50"},
		{"train_fare", "300"},
		{"lodging_fare", "2500"},
		{"conveyance_fare", "450.25"},
		{"other_expenses", "99.25"},
		{"air_fare", "1000"}, // overwrite
	}

	var snap entity.TravelApplication
	var err error
	for _, u := range updates {
		snap, err = b.UpdateAdvanceField(0, u.field, u.value)
		require.NoError(t, err)
	}

	adv := snap.Trips[0].Advance
	want := adv.AirFare.Add(adv.TrainFare).Add(adv.LodgingFare).Add(adv.ConveyanceFare).Add(adv.OtherExpenses)
	assert.True(t, adv.Total().Equal(want))
	assert.Equal(t, "4349.5", adv.Total().String())
}

func TestAdvanceTotalNotSettable(t *testing.T) {
	b := New()
	_, err := b.UpdateAdvanceField(0, "total", "9999")
	assert.ErrorIs(t, err, ErrDerivedField)
}

func TestUpdateApplicationField(t *testing.T) {
	b := New()

	snap, err := b.UpdateApplicationField("purpose", "annual sales conference")
	require.NoError(t, err)
	assert.Equal(t, "annual sales conference", snap.Purpose)

	snap, err = b.UpdateApplicationField("advance_amount", "5000")
	require.NoError(t, err)
	assert.True(t, snap.AdvanceAmount.Equal(decimal.NewFromInt(5000)))

	_, err = b.UpdateApplicationField("nonexistent", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}
