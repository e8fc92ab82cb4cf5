package workflow

// State is one step of the travel-application lifecycle.
type State string

const (
	StateDraft          State = "DRAFT"
	StatePendingManager State = "PENDING_MANAGER"
	StatePendingCHRO    State = "PENDING_CHRO"
	StatePendingCEO     State = "PENDING_CEO"
	StateApproved       State = "APPROVED"
	StateBooking        State = "BOOKING"
	StateCompleted      State = "COMPLETED"
	StateClaimed        State = "CLAIMED"
	StateRejected       State = "REJECTED"
)

var validStates = map[State]bool{
	StateDraft:          true,
	StatePendingManager: true,
	StatePendingCHRO:    true,
	StatePendingCEO:     true,
	StateApproved:       true,
	StateBooking:        true,
	StateCompleted:      true,
	StateClaimed:        true,
	StateRejected:       true,
}

var terminalStates = map[State]bool{
	StateClaimed:  true,
	StateRejected: true,
}

// IsValid returns true if the state is part of the lifecycle.
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal returns true if no further transitions leave the state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// Pending returns true while the application sits with an approver.
func (s State) Pending() bool {
	return s == StatePendingManager || s == StatePendingCHRO || s == StatePendingCEO
}

func (s State) String() string {
	return string(s)
}
