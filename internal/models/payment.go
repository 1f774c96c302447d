package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment gateway providers.
const (
	ProviderFlutterwave = "flutterwave"
	ProviderKorapay     = "korapay"
)

// Payment statuses as reported by the gateway.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusSuccessful = "successful"
	PaymentStatusFailed     = "failed"
)

// Payment tracks a gateway charge from initialization to settlement.
// The reference is unique per charge and is the idempotency key for
// webhook processing: the ledger is credited exactly once per reference.
type Payment struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Reference  string     `db:"reference" json:"reference"`
	Provider   string     `db:"provider" json:"provider"`
	Email      string     `db:"email" json:"email"`
	Name       string     `db:"name" json:"name"`
	Amount     int64      `db:"amount" json:"amount"`
	Currency   string     `db:"currency" json:"currency"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	VerifiedAt *time.Time `db:"verified_at" json:"verified_at,omitempty"`
}
