// Package repository holds the sqlite implementations of the persistence
// ports. Monetary amounts are stored as decimal strings and parsed back on
// load so no float rounding ever touches them.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/domain/entity"
	"github.com/traveldesk/traveldesk/pkg/database"
)

// ApplicationRepository implements port.ApplicationRepository on sqlite.
// The aggregate (application, trips, bookings, advances) is written in one
// transaction so a partial application can never be observed.
type ApplicationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *database.DB, logger *zap.Logger) port.ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists the full aggregate and fills in the generated ids.
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.TravelApplication) error {
	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO applications (
				purpose, internal_order, general_ledger, sanction_number,
				advance_amount, status, applicant_id, grade_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			app.Purpose,
			app.InternalOrder,
			app.GeneralLedger,
			app.SanctionNumber,
			app.AdvanceAmount.String(),
			app.Status,
			app.ApplicantID,
			app.GradeID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert application: %w", err)
		}
		appID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get application id: %w", err)
		}
		app.ID = appID

		for i := range app.Trips {
			if err := r.insertTrip(ctx, tx, appID, i, &app.Trips[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create application", zap.Error(err))
		return err
	}

	r.logger.Info("Application created",
		zap.Int64("id", app.ID),
		zap.Int("trips", len(app.Trips)))
	return nil
}

func (r *ApplicationRepository) insertTrip(ctx context.Context, tx *sql.Tx, appID int64, pos int, trip *entity.Trip) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO trips (
			application_id, position, from_location, from_location_name,
			to_location, to_location_name, departure_date, return_date,
			round_trip, trip_purpose, guest_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		appID,
		pos,
		trip.FromLocation,
		trip.FromLocationName,
		trip.ToLocation,
		trip.ToLocationName,
		trip.DepartureDate,
		trip.ReturnDate,
		trip.RoundTrip,
		trip.Purpose,
		trip.GuestCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	tripID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get trip id: %w", err)
	}
	trip.ID = tripID

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trip_advances (
			trip_id, air_fare, train_fare, lodging_fare,
			conveyance_fare, other_expenses, special_instruction
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		tripID,
		trip.Advance.AirFare.String(),
		trip.Advance.TrainFare.String(),
		trip.Advance.LodgingFare.String(),
		trip.Advance.ConveyanceFare.String(),
		trip.Advance.OtherExpenses.String(),
		trip.Advance.SpecialInstruction,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip advance: %w", err)
	}

	for _, cat := range []entity.BookingCategory{
		entity.CategoryTicketing,
		entity.CategoryAccommodation,
		entity.CategoryConveyance,
	} {
		items := trip.LineItems(cat)
		for i := range items {
			if err := r.insertBooking(ctx, tx, tripID, i, &items[i]); err != nil {
				return err
			}
		}
		trip.SetLineItems(cat, items)
	}
	return nil
}

func (r *ApplicationRepository) insertBooking(ctx context.Context, tx *sql.Tx, tripID int64, pos int, b *entity.BookingLineItem) error {
	if b.Status == "" {
		b.Status = entity.BookingStatusPending
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (
			trip_id, position, category, booking_type, sub_option,
			from_place, to_place, departure_at, arrival_at,
			place, check_in, check_out, guest_house_id, hotel_name,
			start_at, end_at, drop_address, distance_km,
			estimated_cost, special_instruction, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tripID,
		pos,
		string(b.Category),
		b.BookingType,
		b.SubOption,
		b.FromPlace,
		b.ToPlace,
		timeArg(b.DepartureAt),
		timeArg(b.ArrivalAt),
		b.Place,
		timeArg(b.CheckIn),
		timeArg(b.CheckOut),
		b.GuestHouseID,
		b.HotelName,
		timeArg(b.StartAt),
		timeArg(b.EndAt),
		b.DropAddress,
		b.DistanceKM,
		b.EstimatedCost.String(),
		b.SpecialInstruction,
		b.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get booking id: %w", err)
	}
	b.ID = id
	return nil
}

// GetByID loads the full aggregate.
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*entity.TravelApplication, error) {
	var app entity.TravelApplication
	var advance string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, purpose, internal_order, general_ledger, sanction_number,
			advance_amount, status, applicant_id, grade_id,
			created_at, updated_at
		FROM applications
		WHERE id = ?
	`, id).Scan(
		&app.ID,
		&app.Purpose,
		&app.InternalOrder,
		&app.GeneralLedger,
		&app.SanctionNumber,
		&advance,
		&app.Status,
		&app.ApplicantID,
		&app.GradeID,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get application", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if app.AdvanceAmount, err = parseDecimal(advance); err != nil {
		return nil, fmt.Errorf("application %d advance_amount: %w", id, err)
	}
	if app.Trips, err = r.loadTrips(ctx, id); err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) loadTrips(ctx context.Context, appID int64) ([]entity.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.from_location, t.from_location_name,
			t.to_location, t.to_location_name, t.departure_date,
			t.return_date, t.round_trip, t.trip_purpose, t.guest_count,
			a.air_fare, a.train_fare, a.lodging_fare,
			a.conveyance_fare, a.other_expenses, a.special_instruction
		FROM trips t
		JOIN trip_advances a ON a.trip_id = t.id
		WHERE t.application_id = ?
		ORDER BY t.position
	`, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}
	defer rows.Close()

	var trips []entity.Trip
	for rows.Next() {
		var t entity.Trip
		var air, train, lodging, conveyance, other string
		err := rows.Scan(
			&t.ID,
			&t.FromLocation,
			&t.FromLocationName,
			&t.ToLocation,
			&t.ToLocationName,
			&t.DepartureDate,
			&t.ReturnDate,
			&t.RoundTrip,
			&t.Purpose,
			&t.GuestCount,
			&air, &train, &lodging, &conveyance, &other,
			&t.Advance.SpecialInstruction,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		if t.Advance, err = scanAdvance(air, train, lodging, conveyance, other, t.Advance.SpecialInstruction); err != nil {
			return nil, fmt.Errorf("trip %d advance: %w", t.ID, err)
		}
		if err := r.loadBookings(ctx, &t); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (r *ApplicationRepository) loadBookings(ctx context.Context, trip *entity.Trip) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, booking_type, sub_option,
			from_place, to_place, departure_at, arrival_at,
			place, check_in, check_out, guest_house_id, hotel_name,
			start_at, end_at, drop_address, distance_km,
			estimated_cost, special_instruction, status
		FROM bookings
		WHERE trip_id = ?
		ORDER BY position
	`, trip.ID)
	if err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b entity.BookingLineItem
		var category, cost string
		var departureAt, arrivalAt, checkIn, checkOut, startAt, endAt sql.NullTime
		err := rows.Scan(
			&b.ID,
			&category,
			&b.BookingType,
			&b.SubOption,
			&b.FromPlace,
			&b.ToPlace,
			&departureAt,
			&arrivalAt,
			&b.Place,
			&checkIn,
			&checkOut,
			&b.GuestHouseID,
			&b.HotelName,
			&startAt,
			&endAt,
			&b.DropAddress,
			&b.DistanceKM,
			&cost,
			&b.SpecialInstruction,
			&b.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to scan booking: %w", err)
		}
		b.Category = entity.BookingCategory(category)
		b.DepartureAt = timePtr(departureAt)
		b.ArrivalAt = timePtr(arrivalAt)
		b.CheckIn = timePtr(checkIn)
		b.CheckOut = timePtr(checkOut)
		b.StartAt = timePtr(startAt)
		b.EndAt = timePtr(endAt)
		if b.EstimatedCost, err = parseDecimal(cost); err != nil {
			return fmt.Errorf("booking %d estimated_cost: %w", b.ID, err)
		}
		trip.SetLineItems(b.Category, append(trip.LineItems(b.Category), b))
	}
	return rows.Err()
}

// UpdateStatus moves the application to a new lifecycle status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, id)
	if err != nil {
		r.logger.Error("Failed to update application status",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// UpdateBookingStatus updates one booking's fulfillment status.
func (r *ApplicationRepository) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET status = ? WHERE id = ?
	`, status, bookingID)
	if err != nil {
		r.logger.Error("Failed to update booking status",
			zap.Int64("booking_id", bookingID),
			zap.Error(err))
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// List returns applications without their trips, newest first.
func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]*entity.TravelApplication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, purpose, internal_order, general_ledger, sanction_number,
			advance_amount, status, applicant_id, grade_id,
			created_at, updated_at
		FROM applications
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*entity.TravelApplication
	for rows.Next() {
		var app entity.TravelApplication
		var advance string
		err := rows.Scan(
			&app.ID,
			&app.Purpose,
			&app.InternalOrder,
			&app.GeneralLedger,
			&app.SanctionNumber,
			&advance,
			&app.Status,
			&app.ApplicantID,
			&app.GradeID,
			&app.CreatedAt,
			&app.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		if app.AdvanceAmount, err = parseDecimal(advance); err != nil {
			return nil, fmt.Errorf("application %d advance_amount: %w", app.ID, err)
		}
		apps = append(apps, &app)
	}
	return apps, rows.Err()
}

func scanAdvance(air, train, lodging, conveyance, other, instruction string) (entity.TravelAdvance, error) {
	var adv entity.TravelAdvance
	var err error
	if adv.AirFare, err = parseDecimal(air); err != nil {
		return adv, err
	}
	if adv.TrainFare, err = parseDecimal(train); err != nil {
		return adv, err
	}
	if adv.LodgingFare, err = parseDecimal(lodging); err != nil {
		return adv, err
	}
	if adv.ConveyanceFare, err = parseDecimal(conveyance); err != nil {
		return adv, err
	}
	if adv.OtherExpenses, err = parseDecimal(other); err != nil {
		return adv, err
	}
	adv.SpecialInstruction = instruction
	return adv, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

func timeArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if t.Valid {
		return &t.Time
	}
	return nil
}
