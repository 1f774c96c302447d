package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. An order starts pending and ends in exactly one of the
// terminal states; no transition leaves a terminal state.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusRefunded  = "refunded"
	OrderStatusCancelled = "cancelled"
)

// Order records a purchase. While pending the buyer's money is held in
// escrow: debited from the buyer but not yet credited to the seller.
type Order struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	BuyerEmail   string     `db:"buyer_email" json:"buyer_email"`
	SellerEmail  string     `db:"seller_email" json:"seller_email"`
	ProductID    uuid.UUID  `db:"product_id" json:"product_id"`
	ProductName  string     `db:"product_name" json:"product_name"`
	Price        int64      `db:"price" json:"price"`
	Status       string     `db:"status" json:"status"`
	PurchaseDate time.Time  `db:"purchase_date" json:"purchase_date"`
	ResolvedAt   *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// CartItem is a product staged for checkout.
type CartItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BuyerEmail  string    `db:"buyer_email" json:"buyer_email"`
	ProductID   uuid.UUID `db:"product_id" json:"product_id"`
	ProductName string    `db:"product_name" json:"product_name"`
	SellerEmail string    `db:"seller_email" json:"seller_email"`
	Price       int64     `db:"price" json:"price"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
