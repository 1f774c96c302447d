package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

// PaymentRepository persists gateway charges. MarkSuccessful flips a
// pending payment and credits the payer inside one transaction; the
// conditional update on status means a replayed webhook credits nothing.
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (reference, provider, email, name, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		p.Reference, p.Provider, p.Email, p.Name, p.Amount, p.Currency, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperror.ErrDuplicatePayment
		}
		return fmt.Errorf("payment repository: create: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE reference = $1`, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by reference: %w", err)
	}
	return &p, nil
}

// MarkSuccessful settles a verified charge: the payment row moves from
// pending to successful and the payer's balance is credited, both in
// the same transaction. Returns ErrDuplicatePayment when the reference
// was already settled.
func (r *PaymentRepository) MarkSuccessful(ctx context.Context, reference string) (*models.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("payment repository: mark successful: begin: %w", err)
	}
	defer tx.Rollback()

	var p models.Payment
	err = tx.GetContext(ctx, &p, `
		UPDATE payments SET status = $1, verified_at = now()
		WHERE reference = $2 AND status = $3
		RETURNING *`,
		models.PaymentStatusSuccessful, reference, models.PaymentStatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetByReference(ctx, reference); getErr != nil {
				return nil, getErr
			}
			return nil, apperror.ErrDuplicatePayment
		}
		return nil, fmt.Errorf("payment repository: mark successful: %w", err)
	}

	if err := creditInTx(ctx, tx, p.Email, p.Amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("payment repository: mark successful: commit: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, reference string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, verified_at = now()
		WHERE reference = $2 AND status = $3`,
		models.PaymentStatusFailed, reference, models.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("payment repository: mark failed: %w", err)
	}
	return nil
}

func (r *PaymentRepository) ListByEmail(ctx context.Context, email string, limit, offset int) ([]models.Payment, error) {
	payments := []models.Payment{}
	err := r.db.SelectContext(ctx, &payments, `
		SELECT * FROM payments
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, email, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list by email: %w", err)
	}
	return payments, nil
}
