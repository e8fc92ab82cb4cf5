package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim is the expense claim filed against a completed travel application.
// A claim is immutable once submitted; approval actions happen externally.
type Claim struct {
	ID              int64           `json:"id"`
	ApplicationID   int64           `json:"application_id"`
	Status          string          `json:"status"`
	AdvanceReceived decimal.Decimal `json:"advance_received"`
	Items           []ClaimItem     `json:"items"`
	Remarks         string          `json:"remarks,omitempty"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ClaimItem is one expense line of a claim. Booking-derived items are seeded
// 1:1 from completed bookings with the amount defaulted to the estimated
// cost; ad-hoc items are added by the employee and must carry a receipt.
type ClaimItem struct {
	ID            int64           `json:"id"`
	ClaimID       int64           `json:"claim_id"`
	ClientRef     string          `json:"client_ref"`
	BookingID     int64           `json:"booking_id,omitempty"`
	Source        string          `json:"source"`
	ExpenseType   int64           `json:"expense_type"`
	ExpenseDate   time.Time       `json:"expense_date"`
	Amount        decimal.Decimal `json:"amount"`
	HasReceipt    bool            `json:"has_receipt"`
	ReceiptPath   string          `json:"receipt_path,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsAdHoc reports whether the item was added outside the booking seed.
func (i ClaimItem) IsAdHoc() bool {
	return i.Source == ClaimSourceAdHoc
}
