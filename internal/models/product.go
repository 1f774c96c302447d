package models

import (
	"time"

	"github.com/google/uuid"
)

// Product statuses. Only "active" products can be purchased; "ongoing"
// marks a reservation held by exactly one pending order.
const (
	ProductStatusPending  = "pending"
	ProductStatusActive   = "active"
	ProductStatusOngoing  = "ongoing"
	ProductStatusSold     = "sold"
	ProductStatusRefunded = "refunded"
	ProductStatusRejected = "rejected"
)

// Product is a listing put up by a seller. Price is in minor units.
type Product struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	SellerEmail string     `db:"seller_email" json:"seller_email"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Price       int64      `db:"price" json:"price"`
	Status      string     `db:"status" json:"status"`
	PhotoID     *uuid.UUID `db:"photo_id" json:"photo_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
