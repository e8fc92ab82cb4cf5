package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// ApplicationRepository defines persistence operations for the travel
// application aggregate (application + trips + bookings + advances).
type ApplicationRepository interface {
	// Create persists a new application with all of its trips and bookings
	// and fills in the generated ids.
	Create(ctx context.Context, app *entity.TravelApplication) error

	// GetByID loads the full aggregate. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id int64) (*entity.TravelApplication, error)

	// UpdateStatus moves the application to a new lifecycle status.
	UpdateStatus(ctx context.Context, id int64, status string) error

	// UpdateBookingStatus updates one booking's fulfillment status.
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error

	// List returns applications ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]*entity.TravelApplication, error)
}

// ClaimRepository defines persistence operations for claims and their items.
type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim) error
	GetByID(ctx context.Context, id int64) (*entity.Claim, error)
	GetByApplicationID(ctx context.Context, applicationID int64) (*entity.Claim, error)
	AddItem(ctx context.Context, item *entity.ClaimItem) error
	UpdateItemAmount(ctx context.Context, itemID int64, amount decimal.Decimal) error
	SetItemReceipt(ctx context.Context, itemID int64, path string) error
	GetItemByClientRef(ctx context.Context, claimID int64, clientRef string) (*entity.ClaimItem, error)
	MarkSubmitted(ctx context.Context, id int64, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// MasterDataRepository serves the read-only lookup tables the builder and
// engine join against by id. The core never writes through it.
type MasterDataRepository interface {
	Locations(ctx context.Context) ([]entity.Location, error)
	LocationByID(ctx context.Context, id int64) (*entity.Location, error)
	CityCategories(ctx context.Context) ([]entity.CityCategory, error)
	TravelModes(ctx context.Context) ([]entity.TravelMode, error)
	GLCodes(ctx context.Context) ([]entity.GLCode, error)
	Grades(ctx context.Context) ([]entity.Grade, error)
	GuestHouses(ctx context.Context) ([]entity.GuestHouse, error)
	ExpenseTypes(ctx context.Context) ([]entity.ExpenseType, error)

	// ExpenseTypeForCategory maps a booking category to the expense type
	// used when seeding booking-derived claim items.
	ExpenseTypeForCategory(ctx context.Context, cat entity.BookingCategory) (*entity.ExpenseType, error)
}
