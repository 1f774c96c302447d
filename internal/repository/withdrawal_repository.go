package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

// WithdrawalRepository handles payout requests. Requesting a withdrawal
// debits the balance up front; a rejection credits it back. Both paths
// run in a transaction.
type WithdrawalRepository struct {
	db *sqlx.DB
}

func NewWithdrawalRepository(db *sqlx.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("withdrawal repository: create: begin: %w", err)
	}
	defer tx.Rollback()

	if err := debitInTx(ctx, tx, w.AccountEmail, w.Amount); err != nil {
		return err
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO withdrawals (account_email, amount, status, bank_name, account_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		w.AccountEmail, w.Amount, models.WithdrawalStatusPending, w.BankName, w.AccountNumber,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("withdrawal repository: create: insert: %w", err)
	}
	w.Status = models.WithdrawalStatusPending

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("withdrawal repository: create: commit: %w", err)
	}
	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.GetContext(ctx, &w, `SELECT * FROM withdrawals WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("withdrawal repository: get by id: %w", err)
	}
	return &w, nil
}

func (r *WithdrawalRepository) ListByAccount(ctx context.Context, email string, limit, offset int) ([]models.Withdrawal, error) {
	withdrawals := []models.Withdrawal{}
	err := r.db.SelectContext(ctx, &withdrawals, `
		SELECT * FROM withdrawals
		WHERE account_email = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, email, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: list by account: %w", err)
	}
	return withdrawals, nil
}

func (r *WithdrawalRepository) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error) {
	query := `SELECT * FROM withdrawals`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	withdrawals := []models.Withdrawal{}
	if err := r.db.SelectContext(ctx, &withdrawals, query, args...); err != nil {
		return nil, fmt.Errorf("withdrawal repository: list all: %w", err)
	}
	return withdrawals, nil
}

// MarkProcessing moves a pending withdrawal into the payout queue.
func (r *WithdrawalRepository) MarkProcessing(ctx context.Context, id string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.GetContext(ctx, &w, `
		UPDATE withdrawals SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING *`,
		models.WithdrawalStatusProcessing, id, models.WithdrawalStatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrInvalidTransition
		}
		return nil, fmt.Errorf("withdrawal repository: mark processing: %w", err)
	}
	return &w, nil
}

// Complete marks a pending or processing withdrawal as paid out.
func (r *WithdrawalRepository) Complete(ctx context.Context, id string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.GetContext(ctx, &w, `
		UPDATE withdrawals SET status = $1, processed_at = now()
		WHERE id = $2 AND status IN ($3, $4)
		RETURNING *`,
		models.WithdrawalStatusCompleted, id,
		models.WithdrawalStatusPending, models.WithdrawalStatusProcessing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrInvalidTransition
		}
		return nil, fmt.Errorf("withdrawal repository: complete: %w", err)
	}
	return &w, nil
}

// Reject refuses a withdrawal and returns the held amount to the
// account in the same transaction.
func (r *WithdrawalRepository) Reject(ctx context.Context, id, reason string) (*models.Withdrawal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("withdrawal repository: reject: begin: %w", err)
	}
	defer tx.Rollback()

	var w models.Withdrawal
	err = tx.GetContext(ctx, &w, `
		UPDATE withdrawals SET status = $1, rejection_reason = $2, processed_at = now()
		WHERE id = $3 AND status IN ($4, $5)
		RETURNING *`,
		models.WithdrawalStatusRejected, reason, id,
		models.WithdrawalStatusPending, models.WithdrawalStatusProcessing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrInvalidTransition
		}
		return nil, fmt.Errorf("withdrawal repository: reject: %w", err)
	}

	if err := creditInTx(ctx, tx, w.AccountEmail, w.Amount); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("withdrawal repository: reject: commit: %w", err)
	}
	return &w, nil
}
