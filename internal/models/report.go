package models

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses mirror how the dispute was resolved.
const (
	ReportStatusPending  = "Pending"
	ReportStatusSold     = "Sold"
	ReportStatusRefunded = "Refunded"
)

// Report is a dispute raised against a pending order. Resolving it
// settles or reverses the referenced order in the same transaction.
type Report struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	OrderID       uuid.UUID  `db:"order_id" json:"order_id"`
	ReporterEmail string     `db:"reporter_email" json:"reporter_email"`
	SellerEmail   string     `db:"seller_email" json:"seller_email"`
	Reason        string     `db:"reason" json:"reason"`
	Message       *string    `db:"message" json:"message,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt    *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}
