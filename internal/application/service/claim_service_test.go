package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/internal/reconcile"
	"github.com/traveldesk/traveldesk/internal/receipt"
)

func completedApplication() *entity.TravelApplication {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	checkIn := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	return &entity.TravelApplication{
		ID:            9,
		Purpose:       "Quarterly review",
		GeneralLedger: 1,
		ApplicantID:   "E1042",
		GradeID:       2,
		Status:        entity.StatusCompleted,
		AdvanceAmount: decimal.NewFromInt(5000),
		Trips: []entity.Trip{
			{
				FromLocation:  1,
				ToLocation:    2,
				DepartureDate: departure,
				ReturnDate:    ret,
				RoundTrip:     true,
				Ticketing: []entity.BookingLineItem{
					{ID: 11, Category: entity.CategoryTicketing, BookingType: 1, DepartureAt: &departure, EstimatedCost: decimal.NewFromInt(4500), Status: entity.BookingStatusCompleted},
				},
				Accommodation: []entity.BookingLineItem{
					{ID: 12, Category: entity.CategoryAccommodation, BookingType: 3, CheckIn: &checkIn, EstimatedCost: decimal.NewFromInt(6000), Status: entity.BookingStatusCompleted},
				},
				Conveyance: []entity.BookingLineItem{
					{ID: 13, Category: entity.CategoryConveyance, BookingType: 5, EstimatedCost: decimal.NewFromInt(800), Status: entity.BookingStatusCancelled},
				},
			},
		},
	}
}

func newClaimService(t *testing.T, claims *mockClaimRepo, apps *mockAppRepo, files *mockFileStore, rates reconcile.RateSource) ClaimService {
	t.Helper()
	if rates == nil {
		rates = &stubRates{da: decimal.NewFromInt(1000), incidental: decimal.NewFromInt(200)}
	}
	engine := reconcile.NewEngine(rates, zap.NewNop())
	inspector := receipt.NewInspector(zap.NewNop())
	return NewClaimService(claims, apps, &mockMasterRepo{}, engine, inspector, files, mockLogger{})
}

func receiptPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateFromApplicationSeedsCompletedBookings(t *testing.T) {
	app := completedApplication()
	apps := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TravelApplication, error) {
			return app, nil
		},
	}
	svc := newClaimService(t, &mockClaimRepo{}, apps, &mockFileStore{}, nil)

	claim, err := svc.CreateFromApplication(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusDraft, claim.Status)
	assert.True(t, claim.AdvanceReceived.Equal(decimal.NewFromInt(5000)))

	// The cancelled conveyance booking is not claimable.
	require.Len(t, claim.Items, 2)

	fare := claim.Items[0]
	assert.Equal(t, entity.ClaimSourceBooking, fare.Source)
	assert.Equal(t, int64(11), fare.BookingID)
	assert.Equal(t, int64(1), fare.ExpenseType)
	assert.True(t, fare.Amount.Equal(decimal.NewFromInt(4500)))
	assert.Equal(t, *app.Trips[0].Ticketing[0].DepartureAt, fare.ExpenseDate)

	lodging := claim.Items[1]
	assert.Equal(t, int64(2), lodging.ExpenseType)
	assert.Equal(t, *app.Trips[0].Accommodation[0].CheckIn, lodging.ExpenseDate)

	assert.NotEmpty(t, fare.ClientRef)
	assert.NotEmpty(t, lodging.ClientRef)
	assert.NotEqual(t, fare.ClientRef, lodging.ClientRef)
}

func TestCreateFromApplicationNotCompleted(t *testing.T) {
	app := completedApplication()
	app.Status = entity.StatusBooking
	apps := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TravelApplication, error) {
			return app, nil
		},
	}
	svc := newClaimService(t, &mockClaimRepo{}, apps, &mockFileStore{}, nil)

	_, err := svc.CreateFromApplication(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotClaimable)
}

func TestCreateFromApplicationDuplicate(t *testing.T) {
	apps := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TravelApplication, error) {
			return completedApplication(), nil
		},
	}
	claims := &mockClaimRepo{
		getByApplicationIDFunc: func(ctx context.Context, applicationID int64) (*entity.Claim, error) {
			return &entity.Claim{ID: 4, ApplicationID: applicationID}, nil
		},
	}
	svc := newClaimService(t, claims, apps, &mockFileStore{}, nil)

	_, err := svc.CreateFromApplication(context.Background(), 9)
	assert.ErrorIs(t, err, ErrClaimExists)
}

func TestAddAdHocItemForcesSource(t *testing.T) {
	var added *entity.ClaimItem
	claims := &mockClaimRepo{
		addItemFunc: func(ctx context.Context, item *entity.ClaimItem) error {
			item.ID = 21
			added = item
			return nil
		},
	}
	svc := newClaimService(t, claims, &mockAppRepo{}, &mockFileStore{}, nil)

	item, err := svc.AddAdHocItem(context.Background(), 5, entity.ClaimItem{
		Source:      entity.ClaimSourceBooking, // caller-supplied source is ignored
		BookingID:   99,
		ExpenseType: 4,
		ExpenseDate: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(350),
	})
	require.NoError(t, err)
	require.NotNil(t, added)
	assert.Equal(t, entity.ClaimSourceAdHoc, item.Source)
	assert.Zero(t, item.BookingID)
	assert.Equal(t, int64(5), item.ClaimID)
	assert.NotEmpty(t, item.ClientRef)
}

func TestAddAdHocItemAfterSubmission(t *testing.T) {
	claims := &mockClaimRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Claim, error) {
			return &entity.Claim{ID: id, Status: entity.ClaimStatusSubmitted}, nil
		},
	}
	svc := newClaimService(t, claims, &mockAppRepo{}, &mockFileStore{}, nil)

	_, err := svc.AddAdHocItem(context.Background(), 5, entity.ClaimItem{})
	assert.ErrorIs(t, err, ErrClaimImmutable)
}

func TestUpdateItemAmountRejectsNegative(t *testing.T) {
	claims := &mockClaimRepo{
		getItemFunc: func(ctx context.Context, claimID int64, clientRef string) (*entity.ClaimItem, error) {
			return &entity.ClaimItem{ID: 21, ClientRef: clientRef}, nil
		},
		updateItemAmountFunc: func(ctx context.Context, itemID int64, amount decimal.Decimal) error {
			t.Fatal("negative amount must not be persisted")
			return nil
		},
	}
	svc := newClaimService(t, claims, &mockAppRepo{}, &mockFileStore{}, nil)

	err := svc.UpdateItemAmount(context.Background(), 5, "ref-1", "-10.00")
	assert.Error(t, err)
}

func TestValidateComputesSettlement(t *testing.T) {
	app := completedApplication()
	apps := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TravelApplication, error) {
			return app, nil
		},
	}
	claims := &mockClaimRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Claim, error) {
			return &entity.Claim{
				ID:              id,
				ApplicationID:   9,
				Status:          entity.ClaimStatusDraft,
				AdvanceReceived: decimal.NewFromInt(5000),
				Items: []entity.ClaimItem{
					{ClientRef: "a", Source: entity.ClaimSourceBooking, ExpenseType: 1, ExpenseDate: app.Trips[0].DepartureDate, Amount: decimal.NewFromInt(4500)},
				},
			}, nil
		},
	}
	svc := newClaimService(t, claims, apps, &mockFileStore{}, nil)

	comp, err := svc.Validate(context.Background(), 3)
	require.NoError(t, err)

	// Mar 2 through Mar 4 is three calendar days at the stubbed rates.
	require.Len(t, comp.Breakdown, 3)
	assert.True(t, comp.TotalDA.Equal(decimal.NewFromInt(3000)), comp.TotalDA.String())
	assert.True(t, comp.TotalIncidental.Equal(decimal.NewFromInt(600)))
	assert.True(t, comp.TotalExpenses.Equal(decimal.NewFromInt(4500)))
	assert.True(t, comp.GrossTotal().Equal(decimal.NewFromInt(8100)))
	assert.True(t, comp.FinalAmount().Equal(decimal.NewFromInt(3100)))
	assert.False(t, comp.Recoverable())
}

func TestSubmitBlocksAdHocWithoutReceipt(t *testing.T) {
	claims := &mockClaimRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Claim, error) {
			return &entity.Claim{
				ID:            id,
				ApplicationID: 9,
				Status:        entity.ClaimStatusDraft,
				Items: []entity.ClaimItem{
					{ClientRef: "taxi", Source: entity.ClaimSourceAdHoc, ExpenseType: 3, ExpenseDate: time.Now(), Amount: decimal.NewFromInt(350)},
				},
			}, nil
		},
		markSubmittedFunc: func(ctx context.Context, id int64, at time.Time) error {
			t.Fatal("claim must not be submitted while receipts are missing")
			return nil
		},
	}
	svc := newClaimService(t, claims, &mockAppRepo{}, &mockFileStore{}, nil)

	_, _, err := svc.Submit(context.Background(), 3)
	var missing *reconcile.ReceiptRequiredError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"taxi"}, missing.ClientRefs)
}

func TestSubmitFreezesClaimAndApplication(t *testing.T) {
	app := completedApplication()
	var appStatus string
	apps := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TravelApplication, error) {
			return app, nil
		},
		updateStatusFunc: func(ctx context.Context, id int64, status string) error {
			appStatus = status
			return nil
		},
	}
	var submittedAt time.Time
	claims := &mockClaimRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Claim, error) {
			return &entity.Claim{
				ID:              id,
				ApplicationID:   9,
				Status:          entity.ClaimStatusDraft,
				AdvanceReceived: decimal.NewFromInt(5000),
				Items: []entity.ClaimItem{
					{ClientRef: "a", Source: entity.ClaimSourceBooking, ExpenseType: 1, ExpenseDate: app.Trips[0].DepartureDate, Amount: decimal.NewFromInt(4500)},
					{ClientRef: "taxi", Source: entity.ClaimSourceAdHoc, ExpenseType: 3, ExpenseDate: app.Trips[0].DepartureDate, Amount: decimal.NewFromInt(350), HasReceipt: true, ReceiptPath: "claims/3/taxi.png"},
				},
			}, nil
		},
		markSubmittedFunc: func(ctx context.Context, id int64, at time.Time) error {
			submittedAt = at
			return nil
		},
	}
	svc := newClaimService(t, claims, apps, &mockFileStore{}, nil)

	claim, comp, err := svc.Submit(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusSubmitted, claim.Status)
	assert.False(t, submittedAt.IsZero())
	require.NotNil(t, claim.SubmittedAt)
	assert.Equal(t, entity.StatusClaimed, appStatus)
	assert.True(t, comp.TotalExpenses.Equal(decimal.NewFromInt(4850)))
}

func TestSubmitAbortsOnRateLookupFailure(t *testing.T) {
	app := completedApplication()
	apps := &mockAppRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.TravelApplication, error) {
			return app, nil
		},
	}
	claims := &mockClaimRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Claim, error) {
			return &entity.Claim{ID: id, ApplicationID: 9, Status: entity.ClaimStatusDraft}, nil
		},
		markSubmittedFunc: func(ctx context.Context, id int64, at time.Time) error {
			t.Fatal("claim must not be submitted when reconciliation fails")
			return nil
		},
	}
	rates := &stubRates{err: errors.New("no rate configured")}
	svc := newClaimService(t, claims, apps, &mockFileStore{}, rates)

	_, _, err := svc.Submit(context.Background(), 3)
	assert.ErrorIs(t, err, reconcile.ErrRateLookup)
}

func TestAttachReceiptStoresAndLinks(t *testing.T) {
	var linkedItem int64
	var linkedPath string
	claims := &mockClaimRepo{
		getItemFunc: func(ctx context.Context, claimID int64, clientRef string) (*entity.ClaimItem, error) {
			return &entity.ClaimItem{ID: 21, ClaimID: claimID, ClientRef: clientRef, Source: entity.ClaimSourceAdHoc}, nil
		},
		setItemReceiptFunc: func(ctx context.Context, itemID int64, path string) error {
			linkedItem = itemID
			linkedPath = path
			return nil
		},
	}
	files := &mockFileStore{}
	svc := newClaimService(t, claims, &mockAppRepo{}, files, nil)

	item, err := svc.AttachReceipt(context.Background(), 3, "taxi-ref", "receipt.png", receiptPNG(t))
	require.NoError(t, err)
	assert.True(t, item.HasReceipt)
	assert.Equal(t, "claims/3/taxi-ref.png", item.ReceiptPath)
	assert.Equal(t, int64(21), linkedItem)
	assert.Equal(t, "claims/3/taxi-ref.png", linkedPath)
	require.Len(t, files.saved, 1)
	assert.Equal(t, "claims/3/taxi-ref.png", files.saved[0].relPath)
}

func TestAttachReceiptRejectsUnsupportedType(t *testing.T) {
	claims := &mockClaimRepo{
		getItemFunc: func(ctx context.Context, claimID int64, clientRef string) (*entity.ClaimItem, error) {
			return &entity.ClaimItem{ID: 21, ClientRef: clientRef}, nil
		},
	}
	files := &mockFileStore{}
	svc := newClaimService(t, claims, &mockAppRepo{}, files, nil)

	_, err := svc.AttachReceipt(context.Background(), 3, "taxi-ref", "notes.docx", []byte("not a receipt"))
	assert.ErrorIs(t, err, receipt.ErrUnsupportedType)
	assert.Empty(t, files.saved)
}

func TestAttachReceiptAfterSubmission(t *testing.T) {
	claims := &mockClaimRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Claim, error) {
			return &entity.Claim{ID: id, Status: entity.ClaimStatusSubmitted}, nil
		},
	}
	svc := newClaimService(t, claims, &mockAppRepo{}, &mockFileStore{}, nil)

	_, err := svc.AttachReceipt(context.Background(), 3, "taxi-ref", "receipt.png", receiptPNG(t))
	assert.ErrorIs(t, err, ErrClaimImmutable)
}
