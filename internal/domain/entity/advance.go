package entity

import "github.com/shopspring/decimal"

// TravelAdvance is the per-trip advance breakdown. The total is deliberately
// not a field: it is always derived from the five components, so it cannot
// drift out of sync with them.
type TravelAdvance struct {
	AirFare            decimal.Decimal `json:"air_fare"`
	TrainFare          decimal.Decimal `json:"train_fare"`
	LodgingFare        decimal.Decimal `json:"lodging_fare"`
	ConveyanceFare     decimal.Decimal `json:"conveyance_fare"`
	OtherExpenses      decimal.Decimal `json:"other_expenses"`
	SpecialInstruction string          `json:"special_instruction,omitempty"`
}

// Total returns the sum of the five advance components.
func (a TravelAdvance) Total() decimal.Decimal {
	return a.AirFare.
		Add(a.TrainFare).
		Add(a.LodgingFare).
		Add(a.ConveyanceFare).
		Add(a.OtherExpenses)
}
