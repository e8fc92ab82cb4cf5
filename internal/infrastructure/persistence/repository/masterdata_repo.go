package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/pkg/database"
)

// MasterDataRepository implements port.MasterDataRepository on sqlite. The
// tables are seeded by migration and read-only at runtime.
type MasterDataRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewMasterDataRepository creates a new master-data repository.
func NewMasterDataRepository(db *database.DB, logger *zap.Logger) port.MasterDataRepository {
	return &MasterDataRepository{
		db:     db,
		logger: logger,
	}
}

// Locations returns all locations.
func (r *MasterDataRepository) Locations(ctx context.Context) ([]entity.Location, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, city_category_id FROM locations ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var out []entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.CityCategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LocationByID resolves one location.
func (r *MasterDataRepository) LocationByID(ctx context.Context, id int64) (*entity.Location, error) {
	var l entity.Location
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, city_category_id FROM locations WHERE id = ?
	`, id).Scan(&l.ID, &l.Name, &l.CityCategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return &l, nil
}

// CityCategories returns all city categories.
func (r *MasterDataRepository) CityCategories(ctx context.Context) ([]entity.CityCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM city_categories ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list city categories: %w", err)
	}
	defer rows.Close()

	var out []entity.CityCategory
	for rows.Next() {
		var c entity.CityCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan city category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TravelModes returns all travel modes with their sub-options attached.
func (r *MasterDataRepository) TravelModes(ctx context.Context) ([]entity.TravelMode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category FROM travel_modes ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list travel modes: %w", err)
	}
	defer rows.Close()

	var modes []entity.TravelMode
	byID := map[int64]int{}
	for rows.Next() {
		var m entity.TravelMode
		var category string
		if err := rows.Scan(&m.ID, &m.Name, &category); err != nil {
			return nil, fmt.Errorf("failed to scan travel mode: %w", err)
		}
		m.Category = entity.BookingCategory(category)
		byID[m.ID] = len(modes)
		modes = append(modes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	optRows, err := r.db.QueryContext(ctx, `
		SELECT id, travel_mode_id, name FROM travel_mode_options ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list travel mode options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var o entity.TravelModeOption
		if err := optRows.Scan(&o.ID, &o.TravelModeID, &o.Name); err != nil {
			return nil, fmt.Errorf("failed to scan travel mode option: %w", err)
		}
		if idx, ok := byID[o.TravelModeID]; ok {
			modes[idx].SubOptions = append(modes[idx].SubOptions, o)
		}
	}
	return modes, optRows.Err()
}

// GLCodes returns all general-ledger codes.
func (r *MasterDataRepository) GLCodes(ctx context.Context) ([]entity.GLCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, description FROM gl_codes ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list gl codes: %w", err)
	}
	defer rows.Close()

	var out []entity.GLCode
	for rows.Next() {
		var g entity.GLCode
		if err := rows.Scan(&g.ID, &g.Code, &g.Description); err != nil {
			return nil, fmt.Errorf("failed to scan gl code: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Grades returns all employee grades.
func (r *MasterDataRepository) Grades(ctx context.Context) ([]entity.Grade, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM grades ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	defer rows.Close()

	var out []entity.Grade
	for rows.Next() {
		var g entity.Grade
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GuestHouses returns all company guest houses.
func (r *MasterDataRepository) GuestHouses(ctx context.Context) ([]entity.GuestHouse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, location_id FROM guest_houses ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guest houses: %w", err)
	}
	defer rows.Close()

	var out []entity.GuestHouse
	for rows.Next() {
		var g entity.GuestHouse
		if err := rows.Scan(&g.ID, &g.Name, &g.LocationID); err != nil {
			return nil, fmt.Errorf("failed to scan guest house: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ExpenseTypes returns all expense types.
func (r *MasterDataRepository) ExpenseTypes(ctx context.Context) ([]entity.ExpenseType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM expense_types ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense types: %w", err)
	}
	defer rows.Close()

	var out []entity.ExpenseType
	for rows.Next() {
		var e entity.ExpenseType
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan expense type: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExpenseTypeForCategory resolves the expense type used for booking-derived
// claim items of the given category.
func (r *MasterDataRepository) ExpenseTypeForCategory(ctx context.Context, cat entity.BookingCategory) (*entity.ExpenseType, error) {
	var e entity.ExpenseType
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name FROM expense_types WHERE booking_category = ?
	`, string(cat)).Scan(&e.ID, &e.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense type for %s: %w", cat, err)
	}
	return &e, nil
}
