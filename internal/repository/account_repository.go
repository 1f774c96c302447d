package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

// AccountRepository is the account ledger. All balance mutations go
// through Credit and Debit or through the transactional role/plan
// operations below; balances never go negative.
type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (email, name, password_hash, role, balance, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, sales_credit, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		a.Email, a.Name, a.PasswordHash, a.Role, a.Balance, a.ReferralCode, a.ReferredBy,
	).Scan(&a.ID, &a.Status, &a.SalesCredit, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperror.ErrAccountExists
		}
		return fmt.Errorf("account repository: create: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.db.GetContext(ctx, &a, `SELECT * FROM accounts WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrAccountNotFound
		}
		return nil, fmt.Errorf("account repository: get by email: %w", err)
	}
	return &a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	err := r.db.GetContext(ctx, &a, `SELECT * FROM accounts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrAccountNotFound
		}
		return nil, fmt.Errorf("account repository: get by id: %w", err)
	}
	return &a, nil
}

func (r *AccountRepository) GetByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	var a models.Account
	err := r.db.GetContext(ctx, &a, `SELECT * FROM accounts WHERE referral_code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrInvalidReferralCode
		}
		return nil, fmt.Errorf("account repository: get by referral code: %w", err)
	}
	return &a, nil
}

// Credit adds amount to the account balance.
func (r *AccountRepository) Credit(ctx context.Context, email string, amount int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET balance = balance + $1, updated_at = now()
		WHERE email = $2`, amount, email)
	if err != nil {
		return fmt.Errorf("account repository: credit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("account repository: credit: %w", err)
	}
	if n == 0 {
		return apperror.ErrAccountNotFound
	}
	return nil
}

// Debit subtracts amount from the account balance. The balance guard is
// part of the UPDATE, so a concurrent debit can never overdraw.
func (r *AccountRepository) Debit(ctx context.Context, email string, amount int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET balance = balance - $1, updated_at = now()
		WHERE email = $2 AND balance >= $1`, amount, email)
	if err != nil {
		return fmt.Errorf("account repository: debit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("account repository: debit: %w", err)
	}
	if n == 0 {
		if _, err := r.GetByEmail(ctx, email); err != nil {
			return err
		}
		return apperror.ErrInsufficientFunds
	}
	return nil
}

// BecomeSeller debits the registration fee and flips the role to seller
// in one transaction.
func (r *AccountRepository) BecomeSeller(ctx context.Context, email string, fee int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("account repository: become seller: begin: %w", err)
	}
	defer tx.Rollback()

	var a models.Account
	err = tx.GetContext(ctx, &a, `SELECT * FROM accounts WHERE email = $1 FOR UPDATE`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrAccountNotFound
		}
		return fmt.Errorf("account repository: become seller: lock: %w", err)
	}
	if a.Role == models.RoleSeller {
		return apperror.Conflict("account is already a seller")
	}
	if a.Balance < fee {
		return apperror.ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE accounts SET balance = balance - $1, role = $2, updated_at = now()
		WHERE email = $3`, fee, models.RoleSeller, email)
	if err != nil {
		return fmt.Errorf("account repository: become seller: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("account repository: become seller: commit: %w", err)
	}
	return nil
}

// PurchasePlan debits the plan price, records the plan and grants the
// included listing credits in one transaction.
func (r *AccountRepository) PurchasePlan(ctx context.Context, email, plan string, price int64, credits int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("account repository: purchase plan: begin: %w", err)
	}
	defer tx.Rollback()

	var a models.Account
	err = tx.GetContext(ctx, &a, `SELECT * FROM accounts WHERE email = $1 FOR UPDATE`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrAccountNotFound
		}
		return fmt.Errorf("account repository: purchase plan: lock: %w", err)
	}
	if a.Balance < price {
		return apperror.ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance - $1, plan = $2, sales_credit = sales_credit + $3, updated_at = now()
		WHERE email = $4`, price, plan, credits, email)
	if err != nil {
		return fmt.Errorf("account repository: purchase plan: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("account repository: purchase plan: commit: %w", err)
	}
	return nil
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET last_login_at = now() WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("account repository: update last login: %w", err)
	}
	return nil
}

func (r *AccountRepository) ListReferred(ctx context.Context, code string) ([]models.Account, error) {
	accounts := []models.Account{}
	err := r.db.SelectContext(ctx, &accounts, `
		SELECT * FROM accounts WHERE referred_by = $1 ORDER BY created_at DESC`, code)
	if err != nil {
		return nil, fmt.Errorf("account repository: list referred: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) CreateSession(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (account_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		s.AccountID, s.RefreshToken, s.UserAgent, s.IPAddress, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("account repository: create session: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	err := r.db.GetContext(ctx, &s, `
		SELECT * FROM sessions WHERE refresh_token = $1 AND expires_at > $2`, token, time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrSessionNotFound
		}
		return nil, fmt.Errorf("account repository: get session: %w", err)
	}
	return &s, nil
}

func (r *AccountRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, token)
	if err != nil {
		return fmt.Errorf("account repository: delete session: %w", err)
	}
	return nil
}
