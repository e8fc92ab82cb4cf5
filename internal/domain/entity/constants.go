package entity

// Status constants for TravelApplication
const (
	StatusDraft          = "DRAFT"
	StatusPendingManager = "PENDING_MANAGER"
	StatusPendingCHRO    = "PENDING_CHRO"
	StatusPendingCEO     = "PENDING_CEO"
	StatusApproved       = "APPROVED"
	StatusBooking        = "BOOKING"
	StatusCompleted      = "COMPLETED"
	StatusClaimed        = "CLAIMED"
	StatusRejected       = "REJECTED"
)

// Status constants for BookingLineItem fulfillment
const (
	BookingStatusPending   = "PENDING"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// Status constants for Claim
const (
	ClaimStatusDraft     = "DRAFT"
	ClaimStatusSubmitted = "SUBMITTED"
	ClaimStatusApproved  = "APPROVED"
	ClaimStatusRejected  = "REJECTED"
	ClaimStatusSettled   = "SETTLED"
)

// Source constants for ClaimItem
const (
	ClaimSourceBooking = "BOOKING"
	ClaimSourceAdHoc   = "AD_HOC"
)
