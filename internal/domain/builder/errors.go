package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when a field-keyed update names a field
	// the target structure does not have.
	ErrUnknownField = errors.New("unknown field")

	// ErrDerivedField is returned when a caller tries to write a derived
	// field directly (the advance total is always computed).
	ErrDerivedField = errors.New("derived field cannot be set directly")

	// ErrBadValue is returned when a field update carries a value of the
	// wrong type for the target field.
	ErrBadValue = errors.New("value has wrong type for field")
)

// InvariantViolationError signals a programming-contract breach, such as
// removing the last remaining trip or indexing past the end of a collection.
// The builder state is guaranteed unchanged when one is returned.
type InvariantViolationError struct {
	Op     string
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Reason)
}

func violation(op, format string, args ...interface{}) error {
	return &InvariantViolationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
