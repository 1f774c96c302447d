package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	WithdrawalStatusPending    = "pending"
	WithdrawalStatusProcessing = "processing"
	WithdrawalStatusCompleted  = "completed"
	WithdrawalStatusRejected   = "rejected"
)

type Withdrawal struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	AccountEmail    string     `db:"account_email" json:"account_email"`
	Amount          int64      `db:"amount" json:"amount"`
	Status          string     `db:"status" json:"status"`
	BankName        *string    `db:"bank_name" json:"bank_name,omitempty"`
	AccountNumber   *string    `db:"account_number" json:"account_number,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt     *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}
