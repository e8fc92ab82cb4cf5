package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// Mock repositories

type mockAppRepo struct {
	createFunc              func(ctx context.Context, app *entity.TravelApplication) error
	getByIDFunc             func(ctx context.Context, id int64) (*entity.TravelApplication, error)
	updateStatusFunc        func(ctx context.Context, id int64, status string) error
	updateBookingStatusFunc func(ctx context.Context, bookingID int64, status string) error
	listFunc                func(ctx context.Context, limit, offset int) ([]*entity.TravelApplication, error)
}

func (m *mockAppRepo) Create(ctx context.Context, app *entity.TravelApplication) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, app)
	}
	app.ID = 1
	return nil
}

func (m *mockAppRepo) GetByID(ctx context.Context, id int64) (*entity.TravelApplication, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.TravelApplication{ID: id, Status: entity.StatusDraft}, nil
}

func (m *mockAppRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockAppRepo) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	if m.updateBookingStatusFunc != nil {
		return m.updateBookingStatusFunc(ctx, bookingID, status)
	}
	return nil
}

func (m *mockAppRepo) List(ctx context.Context, limit, offset int) ([]*entity.TravelApplication, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.TravelApplication{}, nil
}

type mockClaimRepo struct {
	createFunc             func(ctx context.Context, claim *entity.Claim) error
	getByIDFunc            func(ctx context.Context, id int64) (*entity.Claim, error)
	getByApplicationIDFunc func(ctx context.Context, applicationID int64) (*entity.Claim, error)
	addItemFunc            func(ctx context.Context, item *entity.ClaimItem) error
	updateItemAmountFunc   func(ctx context.Context, itemID int64, amount decimal.Decimal) error
	setItemReceiptFunc     func(ctx context.Context, itemID int64, path string) error
	getItemFunc            func(ctx context.Context, claimID int64, clientRef string) (*entity.ClaimItem, error)
	markSubmittedFunc      func(ctx context.Context, id int64, at time.Time) error
	updateStatusFunc       func(ctx context.Context, id int64, status string) error
}

func (m *mockClaimRepo) Create(ctx context.Context, claim *entity.Claim) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, claim)
	}
	claim.ID = 1
	return nil
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Claim{ID: id, Status: entity.ClaimStatusDraft}, nil
}

func (m *mockClaimRepo) GetByApplicationID(ctx context.Context, applicationID int64) (*entity.Claim, error) {
	if m.getByApplicationIDFunc != nil {
		return m.getByApplicationIDFunc(ctx, applicationID)
	}
	return nil, port.ErrNotFound
}

func (m *mockClaimRepo) AddItem(ctx context.Context, item *entity.ClaimItem) error {
	if m.addItemFunc != nil {
		return m.addItemFunc(ctx, item)
	}
	item.ID = 1
	return nil
}

func (m *mockClaimRepo) UpdateItemAmount(ctx context.Context, itemID int64, amount decimal.Decimal) error {
	if m.updateItemAmountFunc != nil {
		return m.updateItemAmountFunc(ctx, itemID, amount)
	}
	return nil
}

func (m *mockClaimRepo) SetItemReceipt(ctx context.Context, itemID int64, path string) error {
	if m.setItemReceiptFunc != nil {
		return m.setItemReceiptFunc(ctx, itemID, path)
	}
	return nil
}

func (m *mockClaimRepo) GetItemByClientRef(ctx context.Context, claimID int64, clientRef string) (*entity.ClaimItem, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, claimID, clientRef)
	}
	return nil, port.ErrNotFound
}

func (m *mockClaimRepo) MarkSubmitted(ctx context.Context, id int64, at time.Time) error {
	if m.markSubmittedFunc != nil {
		return m.markSubmittedFunc(ctx, id, at)
	}
	return nil
}

func (m *mockClaimRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

type mockMasterRepo struct {
	locationByIDFunc func(ctx context.Context, id int64) (*entity.Location, error)
	typeForCatFunc   func(ctx context.Context, cat entity.BookingCategory) (*entity.ExpenseType, error)
}

func (m *mockMasterRepo) Locations(ctx context.Context) ([]entity.Location, error) {
	return []entity.Location{}, nil
}

func (m *mockMasterRepo) LocationByID(ctx context.Context, id int64) (*entity.Location, error) {
	if m.locationByIDFunc != nil {
		return m.locationByIDFunc(ctx, id)
	}
	return &entity.Location{ID: id, CityCategoryID: 1}, nil
}

func (m *mockMasterRepo) CityCategories(ctx context.Context) ([]entity.CityCategory, error) {
	return []entity.CityCategory{}, nil
}

func (m *mockMasterRepo) TravelModes(ctx context.Context) ([]entity.TravelMode, error) {
	return []entity.TravelMode{}, nil
}

func (m *mockMasterRepo) GLCodes(ctx context.Context) ([]entity.GLCode, error) {
	return []entity.GLCode{}, nil
}

func (m *mockMasterRepo) Grades(ctx context.Context) ([]entity.Grade, error) {
	return []entity.Grade{}, nil
}

func (m *mockMasterRepo) GuestHouses(ctx context.Context) ([]entity.GuestHouse, error) {
	return []entity.GuestHouse{}, nil
}

func (m *mockMasterRepo) ExpenseTypes(ctx context.Context) ([]entity.ExpenseType, error) {
	return []entity.ExpenseType{}, nil
}

func (m *mockMasterRepo) ExpenseTypeForCategory(ctx context.Context, cat entity.BookingCategory) (*entity.ExpenseType, error) {
	if m.typeForCatFunc != nil {
		return m.typeForCatFunc(ctx, cat)
	}
	switch cat {
	case entity.CategoryTicketing:
		return &entity.ExpenseType{ID: 1, Name: "Fare"}, nil
	case entity.CategoryAccommodation:
		return &entity.ExpenseType{ID: 2, Name: "Lodging"}, nil
	default:
		return &entity.ExpenseType{ID: 3, Name: "Local conveyance"}, nil
	}
}

type approverCall struct {
	stage         string
	applicationID int64
}

type applicantCall struct {
	applicationID int64
	decision      string
}

type mockMessenger struct {
	approverCalls  []approverCall
	applicantCalls []applicantCall
	failWith       error
}

func (m *mockMessenger) NotifyApprover(ctx context.Context, stage string, applicationID int64, applicantID string, estimatedTotal string) error {
	m.approverCalls = append(m.approverCalls, approverCall{stage: stage, applicationID: applicationID})
	return m.failWith
}

func (m *mockMessenger) NotifyApplicant(ctx context.Context, applicantID string, applicationID int64, decision, remarks string) error {
	m.applicantCalls = append(m.applicantCalls, applicantCall{applicationID: applicationID, decision: decision})
	return m.failWith
}

type savedFile struct {
	relPath string
	size    int
}

type mockFileStore struct {
	saved   []savedFile
	saveErr error
}

func (m *mockFileStore) Save(relPath string, content []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, savedFile{relPath: relPath, size: len(content)})
	return "/store/" + relPath, nil
}

func (m *mockFileStore) Read(relPath string) ([]byte, error) {
	return nil, port.ErrNotFound
}

func (m *mockFileStore) Exists(relPath string) bool {
	return false
}

// stubRates returns fixed DA and incidental amounts for every day.
type stubRates struct {
	da         decimal.Decimal
	incidental decimal.Decimal
	err        error
}

func (s *stubRates) DailyAllowance(ctx context.Context, cityCategoryID, gradeID int64, date time.Time, durationHours decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, decimal.Zero, s.err
	}
	return s.da, s.incidental, nil
}

type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}
