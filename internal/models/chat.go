package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a message exchanged between the two parties of an order.
type ChatMessage struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrderID        uuid.UUID `db:"order_id" json:"order_id"`
	SenderEmail    string    `db:"sender_email" json:"sender_email"`
	RecipientEmail string    `db:"recipient_email" json:"recipient_email"`
	Body           string    `db:"body" json:"body"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
