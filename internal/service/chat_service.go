package service

import (
	"context"
	"strings"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

type ChatStore interface {
	Create(ctx context.Context, m *models.ChatMessage) error
	ListByOrder(ctx context.Context, orderID string, limit, offset int) ([]models.ChatMessage, error)
}

// ChatService lets the two parties of an order message each other.
type ChatService struct {
	chat   ChatStore
	orders OrderStore
	pusher Pusher
}

func NewChatService(chat ChatStore, orders OrderStore, pusher Pusher) *ChatService {
	return &ChatService{chat: chat, orders: orders, pusher: pusher}
}

// Send delivers a message from one order participant to the other.
func (s *ChatService) Send(ctx context.Context, senderEmail, orderID, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.BadRequest("message body is required")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var recipient string
	switch senderEmail {
	case order.BuyerEmail:
		recipient = order.SellerEmail
	case order.SellerEmail:
		recipient = order.BuyerEmail
	default:
		return nil, apperror.ErrForbidden
	}

	msg := &models.ChatMessage{
		OrderID:        order.ID,
		SenderEmail:    senderEmail,
		RecipientEmail: recipient,
		Body:           body,
	}
	if err := s.chat.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.SendToUser(recipient, msg)
	}
	return msg, nil
}

// ListByOrder returns the conversation to either participant or an
// admin.
func (s *ChatService) ListByOrder(ctx context.Context, actorEmail, actorRole, orderID string, limit, offset int) ([]models.ChatMessage, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && order.BuyerEmail != actorEmail && order.SellerEmail != actorEmail {
		return nil, apperror.ErrForbidden
	}
	return s.chat.ListByOrder(ctx, orderID, limit, offset)
}
