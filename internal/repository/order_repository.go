package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

// OrderRepository implements order settlement. Money is held on the
// platform from the moment the buyer is debited until the order is
// confirmed (seller and platform credited) or refunded/cancelled
// (buyer credited back). Every settlement path runs in one database
// transaction with the order row locked, so a confirm and a refund of
// the same order can never both take effect.
type OrderRepository struct {
	db                 *sqlx.DB
	sellerSharePercent int64
	platformEmail      string
}

func NewOrderRepository(db *sqlx.DB, sellerSharePercent int64, platformEmail string) *OrderRepository {
	return &OrderRepository{
		db:                 db,
		sellerSharePercent: sellerSharePercent,
		platformEmail:      platformEmail,
	}
}

// CreateFromCart checks out every item in the buyer's cart atomically.
// Each product is reserved with a status compare-and-set, the buyer is
// debited for the full total and the cart is cleared. If any product is
// no longer active or the balance does not cover the total, nothing
// happens.
func (r *OrderRepository) CreateFromCart(ctx context.Context, buyerEmail string) ([]models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: checkout: begin: %w", err)
	}
	defer tx.Rollback()

	items := []models.CartItem{}
	err = tx.SelectContext(ctx, &items, `
		SELECT * FROM cart_items WHERE buyer_email = $1 ORDER BY created_at`, buyerEmail)
	if err != nil {
		return nil, fmt.Errorf("order repository: checkout: load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, apperror.ErrCartEmpty
	}

	var total int64
	for _, it := range items {
		total += it.Price
	}

	if err := debitInTx(ctx, tx, buyerEmail, total); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(items))
	for _, it := range items {
		if err := reserveProduct(ctx, tx, it.ProductID.String()); err != nil {
			return nil, err
		}

		var o models.Order
		err = tx.GetContext(ctx, &o, `
			INSERT INTO orders (buyer_email, seller_email, product_id, product_name, price, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *`,
			buyerEmail, it.SellerEmail, it.ProductID, it.ProductName, it.Price, models.OrderStatusPending)
		if err != nil {
			return nil, fmt.Errorf("order repository: checkout: insert order: %w", err)
		}
		orders = append(orders, o)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE buyer_email = $1`, buyerEmail); err != nil {
		return nil, fmt.Errorf("order repository: checkout: clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("order repository: checkout: commit: %w", err)
	}
	return orders, nil
}

// CreateSingle buys one product directly, bypassing the cart.
func (r *OrderRepository) CreateSingle(ctx context.Context, buyerEmail, productID string) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: create: begin: %w", err)
	}
	defer tx.Rollback()

	var p models.Product
	err = tx.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1 FOR UPDATE`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProductNotFound
		}
		return nil, fmt.Errorf("order repository: create: load product: %w", err)
	}
	if p.Status != models.ProductStatusActive {
		return nil, apperror.ErrProductUnavailable
	}

	if err := debitInTx(ctx, tx, buyerEmail, p.Price); err != nil {
		return nil, err
	}
	if err := reserveProduct(ctx, tx, productID); err != nil {
		return nil, err
	}

	var o models.Order
	err = tx.GetContext(ctx, &o, `
		INSERT INTO orders (buyer_email, seller_email, product_id, product_name, price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`,
		buyerEmail, p.SellerEmail, p.ID, p.Name, p.Price, models.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("order repository: create: insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("order repository: create: commit: %w", err)
	}
	return &o, nil
}

// Confirm settles a pending order in the seller's favor: the seller
// receives their share, the platform account keeps the remainder and
// the product becomes sold. Confirming a non-pending order returns
// ErrInvalidTransition, which makes the operation idempotent for
// callers that retry.
func (r *OrderRepository) Confirm(ctx context.Context, orderID string) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: confirm: begin: %w", err)
	}
	defer tx.Rollback()

	o, err := r.confirmInTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("order repository: confirm: commit: %w", err)
	}
	return o, nil
}

// Refund settles a pending order in the buyer's favor: the full price
// goes back to the buyer and the product returns to sale.
func (r *OrderRepository) Refund(ctx context.Context, orderID string) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: refund: begin: %w", err)
	}
	defer tx.Rollback()

	o, err := r.refundInTx(ctx, tx, orderID, models.OrderStatusRefunded)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("order repository: refund: commit: %w", err)
	}
	return o, nil
}

// Cancel returns the buyer's money and puts the product back on sale.
func (r *OrderRepository) Cancel(ctx context.Context, orderID string) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: cancel: begin: %w", err)
	}
	defer tx.Rollback()

	o, err := r.refundInTx(ctx, tx, orderID, models.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("order repository: cancel: commit: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id: %w", err)
	}
	return &o, nil
}

// ListByParticipant returns orders where email is buyer or seller,
// newest purchases first.
func (r *OrderRepository) ListByParticipant(ctx context.Context, email string, limit, offset int) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE buyer_email = $1 OR seller_email = $1
		ORDER BY purchase_date DESC
		LIMIT $2 OFFSET $3`, email, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by participant: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders ORDER BY purchase_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list all: %w", err)
	}
	return orders, nil
}

// ListPendingOlderThan returns pending orders purchased before the
// cutoff that have no unresolved report. These are the sweep candidates.
func (r *OrderRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT o.* FROM orders o
		WHERE o.status = $1
		  AND o.purchase_date < $2
		  AND NOT EXISTS (
			SELECT 1 FROM reports rp WHERE rp.order_id = o.id AND rp.status = $3
		  )
		ORDER BY o.purchase_date
		LIMIT $4`,
		models.OrderStatusPending, cutoff, models.ReportStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("order repository: list pending older than: %w", err)
	}
	return orders, nil
}

// confirmInTx is the confirm settlement step shared by Confirm, the
// dispute resolution and the sweep.
func (r *OrderRepository) confirmInTx(ctx context.Context, tx *sqlx.Tx, orderID string) (*models.Order, error) {
	o, err := lockOrderInTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusPending {
		return nil, apperror.ErrInvalidTransition
	}

	sellerShare := o.Price * r.sellerSharePercent / 100
	platformShare := o.Price - sellerShare

	if err := creditInTx(ctx, tx, o.SellerEmail, sellerShare); err != nil {
		return nil, err
	}
	if platformShare > 0 {
		if err := creditInTx(ctx, tx, r.platformEmail, platformShare); err != nil {
			return nil, err
		}
	}

	if err := finalizeProduct(ctx, tx, o.ProductID.String()); err != nil {
		return nil, err
	}

	return finishOrderInTx(ctx, tx, o, models.OrderStatusCompleted)
}

// refundInTx is the buyer-favor settlement step shared by Refund,
// Cancel, the dispute resolution and the sweep. The buyer gets the full
// price back and the product goes back on sale.
func (r *OrderRepository) refundInTx(ctx context.Context, tx *sqlx.Tx, orderID, orderStatus string) (*models.Order, error) {
	o, err := lockOrderInTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusPending {
		return nil, apperror.ErrInvalidTransition
	}

	if err := creditInTx(ctx, tx, o.BuyerEmail, o.Price); err != nil {
		return nil, err
	}
	if err := releaseProduct(ctx, tx, o.ProductID.String()); err != nil {
		return nil, err
	}

	return finishOrderInTx(ctx, tx, o, orderStatus)
}

func lockOrderInTx(ctx context.Context, tx *sqlx.Tx, orderID string) (*models.Order, error) {
	var o models.Order
	err := tx.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: lock order: %w", err)
	}
	return &o, nil
}

func finishOrderInTx(ctx context.Context, tx *sqlx.Tx, o *models.Order, status string) (*models.Order, error) {
	err := tx.GetContext(ctx, o, `
		UPDATE orders SET status = $1, resolved_at = now()
		WHERE id = $2
		RETURNING *`, status, o.ID)
	if err != nil {
		return nil, fmt.Errorf("order repository: finish order: %w", err)
	}
	return o, nil
}

func debitInTx(ctx context.Context, tx *sqlx.Tx, email string, amount int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance = balance - $1, updated_at = now()
		WHERE email = $2 AND balance >= $1`, amount, email)
	if err != nil {
		return fmt.Errorf("order repository: debit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order repository: debit: %w", err)
	}
	if n == 0 {
		return apperror.ErrInsufficientFunds
	}
	return nil
}

func creditInTx(ctx context.Context, tx *sqlx.Tx, email string, amount int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET balance = balance + $1, updated_at = now()
		WHERE email = $2`, amount, email)
	if err != nil {
		return fmt.Errorf("order repository: credit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("order repository: credit: %w", err)
	}
	if n == 0 {
		return apperror.ErrAccountNotFound
	}
	return nil
}
