package port

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ExternalServiceError wraps a failure of an external collaborator (rate
// service, messaging platform). No partial result from the failed call may
// be trusted; the caller surfaces the error and lets the user retry.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Messenger notifies approvers when an application lands in their queue and
// applicants when a decision is made. Implementations must not retry on
// their own.
type Messenger interface {
	// NotifyApprover tells the approver for the given stage that an
	// application awaits their decision.
	NotifyApprover(ctx context.Context, stage string, applicationID int64, applicantID string, estimatedTotal string) error

	// NotifyApplicant tells the applicant about a decision on their
	// application.
	NotifyApplicant(ctx context.Context, applicantID string, applicationID int64, decision, remarks string) error
}
