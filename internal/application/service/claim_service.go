package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/reconcile"
	"github.com/traveldesk/traveldesk/internal/receipt"
)

var (
	// ErrNotClaimable is returned when a claim is created against an
	// application that has not completed its bookings.
	ErrNotClaimable = errors.New("application is not ready for claiming")

	// ErrClaimExists is returned when an application already has a claim.
	ErrClaimExists = errors.New("application already has a claim")

	// ErrClaimImmutable is returned when a submitted claim is mutated.
	ErrClaimImmutable = errors.New("claim is immutable once submitted")
)

// ClaimService manages expense claims: seeding from completed bookings,
// ad-hoc items, reconciliation, receipt attachment and submission.
type ClaimService interface {
	// CreateFromApplication seeds a draft claim with one booking-derived
	// item per completed booking. Amounts default to the estimated cost and
	// stay editable until submission.
	CreateFromApplication(ctx context.Context, applicationID int64) (*entity.Claim, error)

	// Get loads a claim with its items.
	Get(ctx context.Context, id int64) (*entity.Claim, error)

	// AddAdHocItem appends an employee-entered expense to a draft claim.
	AddAdHocItem(ctx context.Context, claimID int64, item entity.ClaimItem) (*entity.ClaimItem, error)

	// UpdateItemAmount replaces an item's amount with the actual spend.
	UpdateItemAmount(ctx context.Context, claimID int64, clientRef string, amount string) error

	// Validate reconciles the claim and returns the computed settlement.
	// It is safe to call any number of times before Submit.
	Validate(ctx context.Context, claimID int64) (*entity.ClaimComputation, error)

	// AttachReceipt inspects, stores and links a receipt file to the item
	// identified by its client reference.
	AttachReceipt(ctx context.Context, claimID int64, clientRef, filename string, content []byte) (*entity.ClaimItem, error)

	// Submit enforces the receipt gate, reconciles once more and freezes
	// the claim. The owning application moves to CLAIMED.
	Submit(ctx context.Context, claimID int64) (*entity.Claim, *entity.ClaimComputation, error)
}

type claimService struct {
	claims    port.ClaimRepository
	apps      port.ApplicationRepository
	master    port.MasterDataRepository
	engine    *reconcile.Engine
	inspector *receipt.Inspector
	files     port.FileStore
	logger    Logger
}

// NewClaimService creates a ClaimService.
func NewClaimService(
	claims port.ClaimRepository,
	apps port.ApplicationRepository,
	master port.MasterDataRepository,
	engine *reconcile.Engine,
	inspector *receipt.Inspector,
	files port.FileStore,
	logger Logger,
) ClaimService {
	return &claimService{
		claims:    claims,
		apps:      apps,
		master:    master,
		engine:    engine,
		inspector: inspector,
		files:     files,
		logger:    logger,
	}
}

func (s *claimService) CreateFromApplication(ctx context.Context, applicationID int64) (*entity.Claim, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != entity.StatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrNotClaimable, app.Status)
	}

	if existing, err := s.claims.GetByApplicationID(ctx, applicationID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: claim %d", ErrClaimExists, existing.ID)
	} else if err != nil && !errors.Is(err, port.ErrNotFound) {
		return nil, err
	}

	claim := &entity.Claim{
		ApplicationID:   applicationID,
		Status:          entity.ClaimStatusDraft,
		AdvanceReceived: app.AdvanceAmount,
		CreatedAt:       time.Now(),
	}

	for _, trip := range app.Trips {
		for _, b := range trip.AllLineItems() {
			if b.Status != entity.BookingStatusCompleted {
				continue
			}
			expType, err := s.master.ExpenseTypeForCategory(ctx, b.Category)
			if err != nil {
				return nil, fmt.Errorf("resolve expense type for %s: %w", b.Category, err)
			}
			claim.Items = append(claim.Items, entity.ClaimItem{
				ClientRef:   uuid.NewString(),
				BookingID:   b.ID,
				Source:      entity.ClaimSourceBooking,
				ExpenseType: expType.ID,
				ExpenseDate: bookingExpenseDate(trip, b),
				Amount:      b.EstimatedCost,
				CreatedAt:   time.Now(),
			})
		}
	}

	if err := s.claims.Create(ctx, claim); err != nil {
		s.logger.Error("Failed to create claim", "application_id", applicationID, "error", err)
		return nil, fmt.Errorf("create claim: %w", err)
	}

	s.logger.Info("Claim created", "id", claim.ID, "application_id", applicationID, "seeded_items", len(claim.Items))
	return claim, nil
}

// bookingExpenseDate picks the date the booking's expense is attributed to:
// the category's own start timestamp when present, otherwise the trip
// departure.
func bookingExpenseDate(trip entity.Trip, b entity.BookingLineItem) time.Time {
	switch {
	case b.DepartureAt != nil:
		return *b.DepartureAt
	case b.CheckIn != nil:
		return *b.CheckIn
	case b.StartAt != nil:
		return *b.StartAt
	default:
		return trip.DepartureDate
	}
}

func (s *claimService) Get(ctx context.Context, id int64) (*entity.Claim, error) {
	return s.claims.GetByID(ctx, id)
}

func (s *claimService) AddAdHocItem(ctx context.Context, claimID int64, item entity.ClaimItem) (*entity.ClaimItem, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status != entity.ClaimStatusDraft {
		return nil, ErrClaimImmutable
	}

	item.ClaimID = claimID
	item.Source = entity.ClaimSourceAdHoc
	item.BookingID = 0
	item.ClientRef = uuid.NewString()
	item.CreatedAt = time.Now()

	if err := s.claims.AddItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	s.logger.Info("Ad-hoc item added", "claim_id", claimID, "client_ref", item.ClientRef)
	return &item, nil
}

func (s *claimService) UpdateItemAmount(ctx context.Context, claimID int64, clientRef, amount string) error {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return err
	}
	if claim.Status != entity.ClaimStatusDraft {
		return ErrClaimImmutable
	}
	item, err := s.claims.GetItemByClientRef(ctx, claimID, clientRef)
	if err != nil {
		return err
	}
	parsed, err := parseAmount(amount)
	if err != nil {
		return err
	}
	return s.claims.UpdateItemAmount(ctx, item.ID, parsed)
}

func (s *claimService) Validate(ctx context.Context, claimID int64) (*entity.ClaimComputation, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	in, err := s.reconcileInput(ctx, claim)
	if err != nil {
		return nil, err
	}
	return s.engine.Compute(ctx, *in)
}

func (s *claimService) AttachReceipt(ctx context.Context, claimID int64, clientRef, filename string, content []byte) (*entity.ClaimItem, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status != entity.ClaimStatusDraft {
		return nil, ErrClaimImmutable
	}

	item, err := s.claims.GetItemByClientRef(ctx, claimID, clientRef)
	if err != nil {
		return nil, err
	}

	if _, err := s.inspector.Inspect(filename, content); err != nil {
		return nil, fmt.Errorf("receipt %s rejected: %w", filename, err)
	}

	relPath := filepath.Join("claims", fmt.Sprintf("%d", claimID), clientRef+filepath.Ext(filename))
	if _, err := s.files.Save(relPath, content); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	if err := s.claims.SetItemReceipt(ctx, item.ID, relPath); err != nil {
		return nil, fmt.Errorf("link receipt: %w", err)
	}

	item.HasReceipt = true
	item.ReceiptPath = relPath
	s.logger.Info("Receipt attached", "claim_id", claimID, "client_ref", clientRef, "path", relPath)
	return item, nil
}

func (s *claimService) Submit(ctx context.Context, claimID int64) (*entity.Claim, *entity.ClaimComputation, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	if claim.Status != entity.ClaimStatusDraft {
		return nil, nil, ErrClaimImmutable
	}

	if err := s.engine.CheckReceipts(claim.Items); err != nil {
		return nil, nil, err
	}

	in, err := s.reconcileInput(ctx, claim)
	if err != nil {
		return nil, nil, err
	}
	computed, err := s.engine.Compute(ctx, *in)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	if err := s.claims.MarkSubmitted(ctx, claimID, now); err != nil {
		return nil, nil, fmt.Errorf("submit claim: %w", err)
	}
	if err := s.apps.UpdateStatus(ctx, claim.ApplicationID, entity.StatusClaimed); err != nil {
		return nil, nil, fmt.Errorf("mark application claimed: %w", err)
	}

	claim.Status = entity.ClaimStatusSubmitted
	claim.SubmittedAt = &now
	s.logger.Info("Claim submitted",
		"id", claimID,
		"gross_total", computed.GrossTotal().StringFixed(2),
		"final_amount", computed.FinalAmount().StringFixed(2),
		"recoverable", computed.Recoverable())
	return claim, computed, nil
}

// parseAmount parses a decimal amount from its string form and rejects
// negative values.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid amount %q: must not be negative", s)
	}
	return d, nil
}

// reconcileInput assembles the engine input from the stored application: one
// span per trip with the destination's city category resolved from the
// location master.
func (s *claimService) reconcileInput(ctx context.Context, claim *entity.Claim) (*reconcile.Input, error) {
	app, err := s.apps.GetByID(ctx, claim.ApplicationID)
	if err != nil {
		return nil, err
	}

	in := &reconcile.Input{
		GradeID:         app.GradeID,
		Items:           claim.Items,
		AdvanceReceived: claim.AdvanceReceived,
	}
	for _, trip := range app.Trips {
		loc, err := s.master.LocationByID(ctx, trip.ToLocation)
		if err != nil {
			return nil, &port.ExternalServiceError{Service: "location master", Err: err}
		}
		end := trip.ReturnDate
		if end.IsZero() {
			end = trip.DepartureDate
		}
		in.Spans = append(in.Spans, reconcile.TripSpan{
			Start:          trip.DepartureDate,
			End:            end,
			CityCategoryID: loc.CityCategoryID,
		})
	}
	return in, nil
}
