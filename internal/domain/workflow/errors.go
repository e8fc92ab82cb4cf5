package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the trigger has no edge out of
	// the current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state outside the lifecycle is used.
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardRejected is returned when every candidate edge for a trigger
	// has a guard and all guards decline.
	ErrGuardRejected = errors.New("transition guard rejected")
)
