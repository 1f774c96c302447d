package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ataurwd/vps-backend-server/internal/models"
)

type CartRepository struct {
	db *sqlx.DB
}

func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Add puts a product in the buyer's cart. Adding the same product twice
// is a no-op.
func (r *CartRepository) Add(ctx context.Context, item *models.CartItem) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO cart_items (buyer_email, product_id, product_name, seller_email, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		item.BuyerEmail, item.ProductID, item.ProductName, item.SellerEmail, item.Price,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil
		}
		return fmt.Errorf("cart repository: add: %w", err)
	}
	return nil
}

func (r *CartRepository) List(ctx context.Context, buyerEmail string) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM cart_items WHERE buyer_email = $1 ORDER BY created_at`, buyerEmail)
	if err != nil {
		return nil, fmt.Errorf("cart repository: list: %w", err)
	}
	return items, nil
}

func (r *CartRepository) Remove(ctx context.Context, buyerEmail, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE buyer_email = $1 AND product_id = $2`, buyerEmail, productID)
	if err != nil {
		return fmt.Errorf("cart repository: remove: %w", err)
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, buyerEmail string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE buyer_email = $1`, buyerEmail)
	if err != nil {
		return fmt.Errorf("cart repository: clear: %w", err)
	}
	return nil
}
