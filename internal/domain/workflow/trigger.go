package workflow

// Trigger is an event that can advance the lifecycle.
type Trigger string

const (
	TriggerSubmit           Trigger = "SUBMIT"
	TriggerApprove          Trigger = "APPROVE"
	TriggerReject           Trigger = "REJECT"
	TriggerStartBooking     Trigger = "START_BOOKING"
	TriggerCompleteBookings Trigger = "COMPLETE_BOOKINGS"
	TriggerFileClaim        Trigger = "FILE_CLAIM"
)

func (t Trigger) String() string {
	return string(t)
}
