package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLookup wraps a rate-source failure. The whole computation
	// fails atomically; no partial breakdown is ever returned.
	ErrRateLookup = errors.New("daily-allowance rate lookup failed")

	// ErrInvalidSpan is returned when a trip span ends before it starts.
	ErrInvalidSpan = errors.New("trip span ends before it starts")

	// ErrNoSpans is returned when the input carries no travel days at all.
	ErrNoSpans = errors.New("no trip spans to reconcile")
)

// ItemError describes one malformed claim item.
type ItemError struct {
	Index     int    `json:"index"`
	ClientRef string `json:"client_ref,omitempty"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// ItemValidationError collects every malformed item in one error; the engine
// never stops at the first bad item.
type ItemValidationError struct {
	Items []ItemError
}

func (e *ItemValidationError) Error() string {
	msgs := make([]string, len(e.Items))
	for i, it := range e.Items {
		msgs[i] = fmt.Sprintf("item[%d].%s: %s", it.Index, it.Field, it.Message)
	}
	return "invalid claim items: " + strings.Join(msgs, "; ")
}

// ReceiptRequiredError blocks submission and names the exact ad-hoc items
// that lack a receipt, so the caller can point at them instead of showing a
// generic validation failure.
type ReceiptRequiredError struct {
	ClientRefs []string
}

func (e *ReceiptRequiredError) Error() string {
	return fmt.Sprintf("receipt required for ad-hoc items: %s", strings.Join(e.ClientRefs, ", "))
}
