package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ataurwd/vps-backend-server/internal/models"
)

type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, m *models.ChatMessage) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO chat_messages (order_id, sender_email, recipient_email, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		m.OrderID, m.SenderEmail, m.RecipientEmail, m.Body,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("chat repository: create: %w", err)
	}
	return nil
}

func (r *ChatRepository) ListByOrder(ctx context.Context, orderID string, limit, offset int) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM chat_messages
		WHERE order_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`, orderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("chat repository: list by order: %w", err)
	}
	return messages, nil
}
