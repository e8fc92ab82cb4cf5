package workflow

import (
	"context"

	"github.com/shopspring/decimal"
)

// ApprovalMatrix builds the manager → CHRO → CEO lifecycle definition for an
// application. CEO sign-off is required only when the application's estimated
// total reaches the configured threshold; below it, CHRO approval is final.
func ApprovalMatrix(estimatedTotal, ceoThreshold decimal.Decimal) *Definition {
	needsCEO := func(ctx context.Context) bool {
		return estimatedTotal.GreaterThanOrEqual(ceoThreshold)
	}

	d := NewDefinition()

	d.From(StateDraft).
		On(TriggerSubmit, StatePendingManager)

	d.From(StatePendingManager).
		On(TriggerApprove, StatePendingCHRO).
		On(TriggerReject, StateRejected)

	d.From(StatePendingCHRO).
		OnIf(TriggerApprove, StatePendingCEO, needsCEO).
		On(TriggerApprove, StateApproved).
		On(TriggerReject, StateRejected)

	d.From(StatePendingCEO).
		On(TriggerApprove, StateApproved).
		On(TriggerReject, StateRejected)

	d.From(StateApproved).
		On(TriggerStartBooking, StateBooking)

	d.From(StateBooking).
		On(TriggerCompleteBookings, StateCompleted)

	d.From(StateCompleted).
		On(TriggerFileClaim, StateClaimed)

	return d
}
