// Package reconcile computes the final settlement of an expense claim: a
// per-calendar-day daily-allowance breakdown over the application's trips,
// expense aggregation, and the net payable or recoverable amount against the
// advance received.
//
// The computation is a pure function of its input plus the injected rate
// source. Re-running it on an unchanged input yields a bit-identical result,
// so a claim can be validated any number of times before submission.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/domain/entity"
)

// RateSource resolves the DA and incidental amounts for one calendar day of
// travel. The amounts come back already pro-rated for the day's duration;
// the pro-ration formula for short days belongs to the rate service's
// configuration, never to the engine.
type RateSource interface {
	DailyAllowance(ctx context.Context, cityCategoryID, gradeID int64, date time.Time, durationHours decimal.Decimal) (da, incidental decimal.Decimal, err error)
}

// TripSpan is the travel window of one trip with its destination's city
// category already resolved from the location master.
type TripSpan struct {
	Start          time.Time
	End            time.Time
	CityCategoryID int64
}

// Input is everything one computation needs. It is assembled by the claim
// service from the stored application, the claim's items and master data.
type Input struct {
	Spans           []TripSpan
	GradeID         int64
	Items           []entity.ClaimItem
	AdvanceReceived decimal.Decimal
}

// Engine performs claim reconciliation against an injected rate source.
type Engine struct {
	rates  RateSource
	logger *zap.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(rates RateSource, logger *zap.Logger) *Engine {
	return &Engine{rates: rates, logger: logger}
}

// travelDay accumulates the merged picture of one calendar day across all
// spans that touch it.
type travelDay struct {
	date     time.Time
	hours    decimal.Decimal
	category int64
	// hours contributed by the span currently backing category; a day shared
	// by trips into different city categories takes the category of the trip
	// that spends the most hours there.
	categoryHours decimal.Decimal
}

// Compute runs the full reconciliation. Item problems are collected into a
// single ItemValidationError; a rate-source failure aborts the whole
// computation with no partial result.
func (e *Engine) Compute(ctx context.Context, in Input) (*entity.ClaimComputation, error) {
	if len(in.Spans) == 0 {
		return nil, ErrNoSpans
	}
	for _, s := range in.Spans {
		if s.End.Before(s.Start) {
			return nil, fmt.Errorf("%w: %s after %s", ErrInvalidSpan, s.End.Format(time.RFC3339), s.Start.Format(time.RFC3339))
		}
	}

	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	days := mergeTravelDays(in.Spans)

	result := &entity.ClaimComputation{
		Breakdown:       make([]entity.DABreakdownEntry, 0, len(days)),
		TotalDA:         decimal.Zero,
		TotalIncidental: decimal.Zero,
		TotalExpenses:   decimal.Zero,
		AdvanceReceived: in.AdvanceReceived,
	}

	for _, day := range days {
		da, incidental, err := e.rates.DailyAllowance(ctx, day.category, in.GradeID, day.date, day.hours)
		if err != nil {
			e.logger.Error("rate lookup failed, aborting computation",
				zap.Time("date", day.date),
				zap.Int64("city_category_id", day.category),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %s: %v", ErrRateLookup, day.date.Format("2006-01-02"), err)
		}
		result.Breakdown = append(result.Breakdown, entity.DABreakdownEntry{
			Date:             day.date,
			DurationHours:    day.hours,
			DAAmount:         da,
			IncidentalAmount: incidental,
		})
		result.TotalDA = result.TotalDA.Add(da)
		result.TotalIncidental = result.TotalIncidental.Add(incidental)
	}

	for _, item := range in.Items {
		result.TotalExpenses = result.TotalExpenses.Add(item.Amount)
	}

	return result, nil
}

// CheckReceipts enforces the submission gate: every ad-hoc item must carry a
// receipt flag and an attached file reference. Booking-derived items may rely
// on the booking's own fulfillment attachment instead.
func (e *Engine) CheckReceipts(items []entity.ClaimItem) error {
	var missing []string
	for _, item := range items {
		if item.IsAdHoc() && (!item.HasReceipt || item.ReceiptPath == "") {
			missing = append(missing, item.ClientRef)
		}
	}
	if len(missing) > 0 {
		return &ReceiptRequiredError{ClientRefs: missing}
	}
	return nil
}

func validateItems(items []entity.ClaimItem) error {
	var bad []ItemError
	for i, item := range items {
		if item.ExpenseType == 0 {
			bad = append(bad, ItemError{Index: i, ClientRef: item.ClientRef, Field: "expense_type", Message: "expense type is required"})
		}
		if item.ExpenseDate.IsZero() {
			bad = append(bad, ItemError{Index: i, ClientRef: item.ClientRef, Field: "expense_date", Message: "expense date is required"})
		}
		if item.Amount.IsNegative() {
			bad = append(bad, ItemError{Index: i, ClientRef: item.ClientRef, Field: "amount", Message: "amount must not be negative"})
		}
	}
	if len(bad) > 0 {
		return &ItemValidationError{Items: bad}
	}
	return nil
}

// mergeTravelDays walks every span day by day, inclusive of partial days at
// both ends, and merges spans touching the same calendar day. Hours spent is
// the overlap of the span with the day; a day is emitted even when the
// overlap is zero (a same-day out-and-back still touches the day).
func mergeTravelDays(spans []TripSpan) []travelDay {
	byDate := make(map[string]*travelDay)

	for _, span := range spans {
		dayStart := truncateToDay(span.Start)
		for d := dayStart; !d.After(span.End); d = d.AddDate(0, 0, 1) {
			dayEnd := d.AddDate(0, 0, 1)

			from := span.Start
			if d.After(from) {
				from = d
			}
			to := span.End
			if dayEnd.Before(to) {
				to = dayEnd
			}
			hours := decimal.NewFromFloat(to.Sub(from).Hours()).Round(2)

			key := d.Format("2006-01-02")
			day, ok := byDate[key]
			if !ok {
				day = &travelDay{date: d, hours: decimal.Zero, category: span.CityCategoryID, categoryHours: hours}
				byDate[key] = day
			} else if hours.GreaterThan(day.categoryHours) {
				day.category = span.CityCategoryID
				day.categoryHours = hours
			}
			day.hours = day.hours.Add(hours)
		}
	}

	out := make([]travelDay, 0, len(byDate))
	for _, day := range byDate {
		if day.hours.GreaterThan(decimal.NewFromInt(24)) {
			day.hours = decimal.NewFromInt(24)
		}
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
