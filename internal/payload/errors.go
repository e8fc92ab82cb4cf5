package payload

import "fmt"

// CoercionError is returned when the transformer finds an id or amount it
// cannot put on the wire: a required id that is zero or missing, or a
// negative cost. The transformer never silently emits a zero id.
type CoercionError struct {
	Field        string
	TripIndex    int // -1 when the field is application-level
	BookingIndex int // -1 when the field is not booking-level
	Reason       string
}

func (e *CoercionError) Error() string {
	switch {
	case e.TripIndex < 0:
		return fmt.Sprintf("cannot coerce %s: %s", e.Field, e.Reason)
	case e.BookingIndex < 0:
		return fmt.Sprintf("cannot coerce trip[%d].%s: %s", e.TripIndex, e.Field, e.Reason)
	default:
		return fmt.Sprintf("cannot coerce trip[%d].bookings[%d].%s: %s", e.TripIndex, e.BookingIndex, e.Field, e.Reason)
	}
}
