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

// ProductRepository owns the catalog and its availability transitions.
// A product can only be sold while active; the reserve step is a
// compare-and-set on the status column so two buyers can never hold the
// same listing.
type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a listing and spends one listing credit from the
// seller in the same transaction. Sellers without credit get ErrNoCredit.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("product repository: create: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET sales_credit = sales_credit - 1, updated_at = now()
		WHERE email = $1 AND sales_credit > 0`, p.SellerEmail)
	if err != nil {
		return fmt.Errorf("product repository: create: spend credit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("product repository: create: spend credit: %w", err)
	}
	if n == 0 {
		return apperror.ErrNoCredit
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO products (seller_email, name, description, price, status, photo_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		p.SellerEmail, p.Name, p.Description, p.Price, p.Status, p.PhotoID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("product repository: create: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("product repository: create: commit: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, fmt.Errorf("product repository: get by id: %w", err)
	}
	return &p, nil
}

// List returns products, optionally filtered by status and seller,
// newest first.
func (r *ProductRepository) List(ctx context.Context, status, sellerEmail string, limit, offset int) ([]models.Product, error) {
	query := `SELECT * FROM products WHERE 1=1`
	args := []any{}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if sellerEmail != "" {
		args = append(args, sellerEmail)
		query += fmt.Sprintf(" AND seller_email = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("product repository: list: %w", err)
	}
	return products, nil
}

// reserveProduct moves an active product to ongoing. Two concurrent
// reservations of the same product race on the compare-and-set; the
// loser gets ErrProductUnavailable.
func reserveProduct(ctx context.Context, q sqlx.ExecerContext, id string) error {
	return transitionProduct(ctx, q, id, models.ProductStatusActive, models.ProductStatusOngoing)
}

// finalizeProduct moves an ongoing product to sold when its order is
// confirmed.
func finalizeProduct(ctx context.Context, q sqlx.ExecerContext, id string) error {
	return transitionProduct(ctx, q, id, models.ProductStatusOngoing, models.ProductStatusSold)
}

// releaseProduct puts an ongoing product back on sale after a refund or
// cancellation.
func releaseProduct(ctx context.Context, q sqlx.ExecerContext, id string) error {
	return transitionProduct(ctx, q, id, models.ProductStatusOngoing, models.ProductStatusActive)
}

// transitionProduct is the catalog compare-and-set. It runs against the
// pool or inside a settlement transaction.
func transitionProduct(ctx context.Context, q sqlx.ExecerContext, id, from, to string) error {
	res, err := q.ExecContext(ctx, `
		UPDATE products SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("product repository: transition %s->%s: %w", from, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("product repository: transition %s->%s: %w", from, to, err)
	}
	if n == 0 {
		return apperror.ErrProductUnavailable
	}
	return nil
}

// UpdateStatus sets the status unconditionally. Used by moderation
// (pending -> active / rejected) and by the dispute flow.
func (r *ProductRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("product repository: update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("product repository: update status: %w", err)
	}
	if n == 0 {
		return apperror.ErrProductNotFound
	}
	return nil
}
