package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/reconcile"
	"github.com/traveldesk/traveldesk/pkg/database"
)

// ErrNoRate is returned when no DA rate row is effective for the requested
// city category, grade and date.
var ErrNoRate = errors.New("no daily-allowance rate effective")

// DARateSource implements reconcile.RateSource against the da_rates table.
// The row with the latest effective_from not after the travel date applies.
// Days shorter than the configured threshold are pro-rated by the configured
// factor.
type DARateSource struct {
	db             *database.DB
	thresholdHours decimal.Decimal
	factor         decimal.Decimal
	logger         *zap.Logger
}

// NewDARateSource creates a rate source with the given short-day pro-ration
// policy.
func NewDARateSource(db *database.DB, thresholdHours, factor decimal.Decimal, logger *zap.Logger) *DARateSource {
	return &DARateSource{
		db:             db,
		thresholdHours: thresholdHours,
		factor:         factor,
		logger:         logger,
	}
}

// DailyAllowance resolves and pro-rates the DA and incidental amounts for one
// travel day.
func (s *DARateSource) DailyAllowance(ctx context.Context, cityCategoryID, gradeID int64, date time.Time, durationHours decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	var daily, incidental string
	err := s.db.QueryRowContext(ctx, `
		SELECT daily_rate, incidental_rate
		FROM da_rates
		WHERE city_category_id = ? AND grade_id = ? AND effective_from <= ?
		ORDER BY effective_from DESC
		LIMIT 1
	`, cityCategoryID, gradeID, date).Scan(&daily, &incidental)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: city category %d, grade %d, %s",
			ErrNoRate, cityCategoryID, gradeID, date.Format("2006-01-02"))
	}
	if err != nil {
		s.logger.Error("Failed to look up DA rate",
			zap.Int64("city_category_id", cityCategoryID),
			zap.Int64("grade_id", gradeID),
			zap.Error(err))
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to look up DA rate: %w", err)
	}

	da, err := parseDecimal(daily)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("da_rates daily_rate: %w", err)
	}
	inc, err := parseDecimal(incidental)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("da_rates incidental_rate: %w", err)
	}

	if durationHours.LessThan(s.thresholdHours) {
		da = da.Mul(s.factor)
		inc = inc.Mul(s.factor)
	}
	return da, inc, nil
}

var _ reconcile.RateSource = (*DARateSource)(nil)
