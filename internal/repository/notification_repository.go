package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ataurwd/vps-backend-server/internal/models"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO notifications (user_email, order_id, payload)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at`,
		n.UserEmail, n.OrderID, n.Payload,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("notification repository: create: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, email string, limit, offset int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT * FROM notifications
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, email, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("notification repository: list by user: %w", err)
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, email, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_email = $2`, id, email)
	if err != nil {
		return fmt.Errorf("notification repository: mark read: %w", err)
	}
	return nil
}

// MarkReadByOrder marks every notification about one order as read.
func (r *NotificationRepository) MarkReadByOrder(ctx context.Context, email, orderID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE user_email = $1 AND order_id = $2`, email, orderID)
	if err != nil {
		return fmt.Errorf("notification repository: mark read by order: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE user_email = $1 AND is_read = FALSE`, email)
	if err != nil {
		return fmt.Errorf("notification repository: mark all read: %w", err)
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, email string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT count(*) FROM notifications
		WHERE user_email = $1 AND is_read = FALSE`, email)
	if err != nil {
		return 0, fmt.Errorf("notification repository: count unread: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) ClearAll(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_email = $1`, email)
	if err != nil {
		return fmt.Errorf("notification repository: clear all: %w", err)
	}
	return nil
}
