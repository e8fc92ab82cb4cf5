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

// ClaimRepository implements port.ClaimRepository on sqlite.
type ClaimRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository.
func NewClaimRepository(db *database.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists the claim with its seeded items in one transaction.
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO claims (application_id, status, advance_received, remarks)
			VALUES (?, ?, ?, ?)
		`,
			claim.ApplicationID,
			claim.Status,
			claim.AdvanceReceived.String(),
			claim.Remarks,
		)
		if err != nil {
			return fmt.Errorf("failed to insert claim: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get claim id: %w", err)
		}
		claim.ID = id

		for i := range claim.Items {
			claim.Items[i].ClaimID = id
			if err := insertItem(ctx, tx, &claim.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create claim",
			zap.Int64("application_id", claim.ApplicationID),
			zap.Error(err))
		return err
	}

	r.logger.Info("Claim created",
		zap.Int64("id", claim.ID),
		zap.Int("items", len(claim.Items)))
	return nil
}

func insertItem(ctx context.Context, tx *sql.Tx, item *entity.ClaimItem) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO claim_items (
			claim_id, client_ref, booking_id, source, expense_type,
			expense_date, amount, has_receipt, receipt_path, remarks
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ClaimID,
		item.ClientRef,
		item.BookingID,
		item.Source,
		item.ExpenseType,
		item.ExpenseDate,
		item.Amount.String(),
		item.HasReceipt,
		item.ReceiptPath,
		item.Remarks,
	)
	if err != nil {
		return fmt.Errorf("failed to insert claim item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get claim item id: %w", err)
	}
	item.ID = id
	return nil
}

// GetByID loads a claim with its items.
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	return r.getByQuery(ctx, `WHERE id = ?`, id)
}

// GetByApplicationID loads the claim filed against an application, if any.
func (r *ClaimRepository) GetByApplicationID(ctx context.Context, applicationID int64) (*entity.Claim, error) {
	return r.getByQuery(ctx, `WHERE application_id = ?`, applicationID)
}

func (r *ClaimRepository) getByQuery(ctx context.Context, where string, arg interface{}) (*entity.Claim, error) {
	var claim entity.Claim
	var advance string
	var submittedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT id, application_id, status, advance_received, remarks,
			submitted_at, created_at
		FROM claims `+where,
		arg,
	).Scan(
		&claim.ID,
		&claim.ApplicationID,
		&claim.Status,
		&advance,
		&claim.Remarks,
		&submittedAt,
		&claim.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get claim", zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	if claim.AdvanceReceived, err = parseDecimal(advance); err != nil {
		return nil, fmt.Errorf("claim %d advance_received: %w", claim.ID, err)
	}
	claim.SubmittedAt = timePtr(submittedAt)

	if claim.Items, err = r.loadItems(ctx, claim.ID); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *ClaimRepository) loadItems(ctx context.Context, claimID int64) ([]entity.ClaimItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, claim_id, client_ref, booking_id, source, expense_type,
			expense_date, amount, has_receipt, receipt_path, remarks,
			created_at
		FROM claim_items
		WHERE claim_id = ?
		ORDER BY id
	`, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim items: %w", err)
	}
	defer rows.Close()

	var items []entity.ClaimItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanItem(scan func(dest ...interface{}) error) (*entity.ClaimItem, error) {
	var item entity.ClaimItem
	var amount string
	err := scan(
		&item.ID,
		&item.ClaimID,
		&item.ClientRef,
		&item.BookingID,
		&item.Source,
		&item.ExpenseType,
		&item.ExpenseDate,
		&amount,
		&item.HasReceipt,
		&item.ReceiptPath,
		&item.Remarks,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan claim item: %w", err)
	}
	if item.Amount, err = parseDecimal(amount); err != nil {
		return nil, fmt.Errorf("claim item %d amount: %w", item.ID, err)
	}
	return &item, nil
}

// AddItem appends one item to an existing claim.
func (r *ClaimRepository) AddItem(ctx context.Context, item *entity.ClaimItem) error {
	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		return insertItem(ctx, tx, item)
	})
	if err != nil {
		r.logger.Error("Failed to add claim item",
			zap.Int64("claim_id", item.ClaimID),
			zap.Error(err))
		return err
	}
	return nil
}

// UpdateItemAmount replaces an item's amount.
func (r *ClaimRepository) UpdateItemAmount(ctx context.Context, itemID int64, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE claim_items SET amount = ? WHERE id = ?
	`, amount.String(), itemID)
	if err != nil {
		r.logger.Error("Failed to update item amount", zap.Int64("item_id", itemID), zap.Error(err))
		return fmt.Errorf("failed to update item amount: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// SetItemReceipt links a stored receipt file to an item.
func (r *ClaimRepository) SetItemReceipt(ctx context.Context, itemID int64, path string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE claim_items SET has_receipt = 1, receipt_path = ? WHERE id = ?
	`, path, itemID)
	if err != nil {
		r.logger.Error("Failed to set item receipt", zap.Int64("item_id", itemID), zap.Error(err))
		return fmt.Errorf("failed to set item receipt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// GetItemByClientRef resolves an item of a claim by its client reference.
func (r *ClaimRepository) GetItemByClientRef(ctx context.Context, claimID int64, clientRef string) (*entity.ClaimItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, claim_id, client_ref, booking_id, source, expense_type,
			expense_date, amount, has_receipt, receipt_path, remarks,
			created_at
		FROM claim_items
		WHERE claim_id = ? AND client_ref = ?
	`, claimID, clientRef)

	item, err := scanItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// MarkSubmitted freezes the claim.
func (r *ClaimRepository) MarkSubmitted(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE claims SET status = ?, submitted_at = ? WHERE id = ? AND status = ?
	`, entity.ClaimStatusSubmitted, at, id, entity.ClaimStatusDraft)
	if err != nil {
		r.logger.Error("Failed to mark claim submitted", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark claim submitted: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// UpdateStatus moves the claim to a new status.
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE claims SET status = ? WHERE id = ?
	`, status, id)
	if err != nil {
		r.logger.Error("Failed to update claim status",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update claim status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return port.ErrNotFound
	}
	return nil
}
