package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TravelApplication is the root of the travel-request aggregate. It owns its
// trips exclusively; trips are never shared between applications.
type TravelApplication struct {
	ID             int64           `json:"id"`
	Purpose        string          `json:"purpose"`
	InternalOrder  string          `json:"internal_order"`
	GeneralLedger  int64           `json:"general_ledger"`
	SanctionNumber string          `json:"sanction_number"`
	AdvanceAmount  decimal.Decimal `json:"advance_amount"`
	Status         string          `json:"status"`
	ApplicantID    string          `json:"applicant_id"`
	GradeID        int64           `json:"grade_id"`
	Trips          []Trip          `json:"trips"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Clone returns a deep copy of the application. Builder mutations operate on
// clones so a previously returned snapshot is never aliased.
func (a TravelApplication) Clone() TravelApplication {
	out := a
	out.Trips = make([]Trip, len(a.Trips))
	for i, t := range a.Trips {
		out.Trips[i] = t.Clone()
	}
	return out
}

// EstimatedTotal sums the estimated cost of every booking line item across
// all trips. Used by the approval matrix to decide whether CEO sign-off is
// required.
func (a TravelApplication) EstimatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range a.Trips {
		for _, item := range t.AllLineItems() {
			total = total.Add(item.EstimatedCost)
		}
	}
	return total
}

// AllBookingsCompleted reports whether every non-cancelled booking across all
// trips has been fulfilled. An application with no bookings at all counts as
// not completed.
func (a TravelApplication) AllBookingsCompleted() bool {
	seen := false
	for _, t := range a.Trips {
		for _, item := range t.AllLineItems() {
			if item.Status == BookingStatusCancelled {
				continue
			}
			seen = true
			if item.Status != BookingStatusCompleted {
				return false
			}
		}
	}
	return seen
}
