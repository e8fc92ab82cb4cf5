package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DABreakdownEntry is one calendar day of daily-allowance computation.
// Entries are produced by the reconciliation engine and never mutated.
type DABreakdownEntry struct {
	Date             time.Time       `json:"date"`
	DurationHours    decimal.Decimal `json:"duration_hours"`
	DAAmount         decimal.Decimal `json:"da_amount"`
	IncidentalAmount decimal.Decimal `json:"incidental_amount"`
}

// ClaimComputation is the result of reconciling a claim. GrossTotal and
// FinalAmount are methods rather than fields so the settlement identities
// cannot be violated by a stray write.
type ClaimComputation struct {
	Breakdown       []DABreakdownEntry `json:"da_breakdown"`
	TotalDA         decimal.Decimal    `json:"total_da"`
	TotalIncidental decimal.Decimal    `json:"total_incidental"`
	TotalExpenses   decimal.Decimal    `json:"total_expenses"`
	AdvanceReceived decimal.Decimal    `json:"advance_received"`
}

// GrossTotal is total DA plus incidentals plus expenses.
func (c ClaimComputation) GrossTotal() decimal.Decimal {
	return c.TotalDA.Add(c.TotalIncidental).Add(c.TotalExpenses)
}

// FinalAmount is the gross total net of the advance received. A negative
// value means the employee owes the company; it is never clamped to zero.
func (c ClaimComputation) FinalAmount() decimal.Decimal {
	return c.GrossTotal().Sub(c.AdvanceReceived)
}

// Recoverable reports whether the final amount is owed by the employee
// rather than payable to them.
func (c ClaimComputation) Recoverable() bool {
	return c.FinalAmount().IsNegative()
}
