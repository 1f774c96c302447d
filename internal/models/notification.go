package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted event payload for one account. The
// payload carries {"event": ..., "data": ...} as produced by the
// notification service.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserEmail string          `db:"user_email" json:"user_email"`
	OrderID   *uuid.UUID      `db:"order_id" json:"order_id,omitempty"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
