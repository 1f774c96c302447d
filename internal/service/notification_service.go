package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/models"
)

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, email string, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, email, id string) error
	MarkReadByOrder(ctx context.Context, email, orderID string) error
	MarkAllRead(ctx context.Context, email string) error
	CountUnread(ctx context.Context, email string) (int, error)
	ClearAll(ctx context.Context, email string) error
}

// Pusher delivers a payload to an account's live connections.
type Pusher interface {
	SendToUser(email string, payload any)
}

// NotificationService persists notifications and pushes them over
// websocket when the account is connected.
type NotificationService struct {
	store  NotificationStore
	pusher Pusher
}

func NewNotificationService(store NotificationStore, pusher Pusher) *NotificationService {
	return &NotificationService{store: store, pusher: pusher}
}

// Notify records an event for the account. Persistence failures are
// logged, not returned: a missed notification never fails a settlement.
func (s *NotificationService) Notify(ctx context.Context, email string, orderID *uuid.UUID, event string, data any) {
	payload, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		logger.Log.WithError(err).WithField("event", event).Error("notification marshal failed")
		return
	}

	n := &models.Notification{
		UserEmail: email,
		OrderID:   orderID,
		Payload:   payload,
	}
	if err := s.store.Create(ctx, n); err != nil {
		logger.Log.WithError(err).WithField("email", email).Error("notification persist failed")
		return
	}

	if s.pusher != nil {
		s.pusher.SendToUser(email, n)
	}
}

func (s *NotificationService) List(ctx context.Context, email string, limit, offset int) ([]models.Notification, error) {
	return s.store.ListByUser(ctx, email, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, email, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("notification service: %w", err)
	}
	return s.store.MarkRead(ctx, email, id)
}

func (s *NotificationService) MarkReadByOrder(ctx context.Context, email, orderID string) error {
	return s.store.MarkReadByOrder(ctx, email, orderID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, email string) error {
	return s.store.MarkAllRead(ctx, email)
}

func (s *NotificationService) CountUnread(ctx context.Context, email string) (int, error) {
	return s.store.CountUnread(ctx, email)
}

func (s *NotificationService) ClearAll(ctx context.Context, email string) error {
	return s.store.ClearAll(ctx, email)
}
