package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/domain/workflow"
	"github.com/traveldesk/traveldesk/internal/payload"
	"github.com/traveldesk/traveldesk/internal/validate"
)

// Logger is the minimal logging dependency shared by the services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Decision is an approver's action on a pending application.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// TravelService manages travel applications through their lifecycle.
type TravelService interface {
	// CreateDraft validates and persists a builder snapshot as a draft.
	// Validation violations are returned without persisting anything.
	CreateDraft(ctx context.Context, app entity.TravelApplication) (*entity.TravelApplication, []validate.Violation, error)

	// Get loads one application with all trips and bookings.
	Get(ctx context.Context, id int64) (*entity.TravelApplication, error)

	// List returns applications, newest first.
	List(ctx context.Context, limit, offset int) ([]*entity.TravelApplication, error)

	// Submit moves a draft into the approval matrix and notifies the first
	// approver.
	Submit(ctx context.Context, id int64) (*entity.TravelApplication, error)

	// Decide records an approve/reject action at the application's current
	// approval stage.
	Decide(ctx context.Context, id int64, decision Decision, remarks string) (*entity.TravelApplication, error)

	// CompleteBooking records fulfillment of one booking. When the last
	// booking completes, the application moves to COMPLETED and becomes
	// claimable.
	CompleteBooking(ctx context.Context, applicationID, bookingID int64) (*entity.TravelApplication, error)
}

type travelService struct {
	apps         port.ApplicationRepository
	messenger    port.Messenger
	ceoThreshold decimal.Decimal
	logger       Logger
}

// NewTravelService creates a TravelService.
func NewTravelService(apps port.ApplicationRepository, messenger port.Messenger, ceoThreshold decimal.Decimal, logger Logger) TravelService {
	return &travelService{
		apps:         apps,
		messenger:    messenger,
		ceoThreshold: ceoThreshold,
		logger:       logger,
	}
}

func (s *travelService) CreateDraft(ctx context.Context, app entity.TravelApplication) (*entity.TravelApplication, []validate.Violation, error) {
	if violations := validate.ValidateApplication(app); len(violations) > 0 {
		s.logger.Info("Draft rejected by validation", "violations", len(violations))
		return nil, violations, nil
	}

	// The transformer re-checks id coercion; a draft that cannot be put on
	// the wire later is refused up front.
	if _, err := payload.ToSubmissionPayload(app); err != nil {
		return nil, nil, err
	}

	app.Status = entity.StatusDraft
	if err := s.apps.Create(ctx, &app); err != nil {
		s.logger.Error("Failed to persist draft", "error", err)
		return nil, nil, fmt.Errorf("create draft: %w", err)
	}

	s.logger.Info("Draft created", "id", app.ID, "trips", len(app.Trips))
	return &app, nil, nil
}

func (s *travelService) Get(ctx context.Context, id int64) (*entity.TravelApplication, error) {
	return s.apps.GetByID(ctx, id)
}

func (s *travelService) List(ctx context.Context, limit, offset int) ([]*entity.TravelApplication, error) {
	return s.apps.List(ctx, limit, offset)
}

func (s *travelService) Submit(ctx context.Context, id int64) (*entity.TravelApplication, error) {
	return s.fire(ctx, id, workflow.TriggerSubmit, "")
}

func (s *travelService) Decide(ctx context.Context, id int64, decision Decision, remarks string) (*entity.TravelApplication, error) {
	switch decision {
	case DecisionApprove:
		return s.fire(ctx, id, workflow.TriggerApprove, remarks)
	case DecisionReject:
		return s.fire(ctx, id, workflow.TriggerReject, remarks)
	default:
		return nil, fmt.Errorf("unknown decision %q", decision)
	}
}

func (s *travelService) CompleteBooking(ctx context.Context, applicationID, bookingID int64) (*entity.TravelApplication, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	// The first completed booking moves an approved application into the
	// booking phase.
	if app.Status == entity.StatusApproved {
		if app, err = s.fire(ctx, applicationID, workflow.TriggerStartBooking, ""); err != nil {
			return nil, err
		}
	}

	if err := s.apps.UpdateBookingStatus(ctx, bookingID, entity.BookingStatusCompleted); err != nil {
		s.logger.Error("Failed to update booking status", "booking_id", bookingID, "error", err)
		return nil, fmt.Errorf("complete booking: %w", err)
	}

	app, err = s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.AllBookingsCompleted() {
		return s.fire(ctx, applicationID, workflow.TriggerCompleteBookings, "")
	}
	return app, nil
}

// fire loads the application, advances its lifecycle machine and persists
// the new status, then sends the notifications the transition calls for.
func (s *travelService) fire(ctx context.Context, id int64, trigger workflow.Trigger, remarks string) (*entity.TravelApplication, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	def := workflow.ApprovalMatrix(app.EstimatedTotal(), s.ceoThreshold)
	machine, err := def.Start(workflow.State(app.Status))
	if err != nil {
		return nil, fmt.Errorf("application %d has unknown status %q: %w", id, app.Status, err)
	}

	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, err
	}

	next := machine.State()
	if err := s.apps.UpdateStatus(ctx, id, next.String()); err != nil {
		s.logger.Error("Failed to persist status", "id", id, "status", next, "error", err)
		return nil, fmt.Errorf("update status: %w", err)
	}
	app.Status = next.String()

	s.logger.Info("Application transitioned", "id", id, "trigger", trigger.String(), "status", next.String())
	s.notify(ctx, app, next, remarks)
	return app, nil
}

// notify messages the next approver while the application is pending, and
// the applicant once a final decision lands. Notification failures are
// logged, never propagated: the transition itself has already been
// persisted.
func (s *travelService) notify(ctx context.Context, app *entity.TravelApplication, state workflow.State, remarks string) {
	var err error
	switch {
	case state.Pending():
		stage := approvalStage(state)
		err = s.messenger.NotifyApprover(ctx, stage, app.ID, app.ApplicantID, app.EstimatedTotal().StringFixed(2))
	case state == workflow.StateApproved:
		err = s.messenger.NotifyApplicant(ctx, app.ApplicantID, app.ID, "approved", remarks)
	case state == workflow.StateRejected:
		err = s.messenger.NotifyApplicant(ctx, app.ApplicantID, app.ID, "rejected", remarks)
	default:
		return
	}
	if err != nil {
		s.logger.Error("Notification failed", "id", app.ID, "state", state.String(), "error", err)
	}
}

func approvalStage(state workflow.State) string {
	return strings.ToLower(strings.TrimPrefix(state.String(), "PENDING_"))
}
