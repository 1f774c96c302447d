package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

type fakeChatStore struct {
	messages []models.ChatMessage
}

func (f *fakeChatStore) Create(_ context.Context, m *models.ChatMessage) error {
	m.ID = uuid.New()
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeChatStore) ListByOrder(_ context.Context, orderID string, limit, offset int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.OrderID.String() == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func setupChatTest(t *testing.T) (*ChatService, *models.Order) {
	t.Helper()
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 50_00)

	order, err := newTestOrderService(store).BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	return NewChatService(&fakeChatStore{}, store, nil), order
}

func TestChatSendRoutesToOtherParty(t *testing.T) {
	svc, order := setupChatTest(t)

	msg, err := svc.Send(context.Background(), "buyer@test", order.ID.String(), "when will it ship?")
	require.NoError(t, err)
	assert.Equal(t, "seller@test", msg.RecipientEmail)

	reply, err := svc.Send(context.Background(), "seller@test", order.ID.String(), "tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "buyer@test", reply.RecipientEmail)
}

func TestChatSendRejectsStranger(t *testing.T) {
	svc, order := setupChatTest(t)

	_, err := svc.Send(context.Background(), "stranger@test", order.ID.String(), "hi")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestChatSendRejectsEmptyBody(t *testing.T) {
	svc, order := setupChatTest(t)

	_, err := svc.Send(context.Background(), "buyer@test", order.ID.String(), "   ")
	assert.Error(t, err)
}

func TestChatListVisibleToParticipants(t *testing.T) {
	svc, order := setupChatTest(t)

	_, err := svc.Send(context.Background(), "buyer@test", order.ID.String(), "hello")
	require.NoError(t, err)

	messages, err := svc.ListByOrder(context.Background(), "seller@test", models.RoleSeller, order.ID.String(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = svc.ListByOrder(context.Background(), "stranger@test", models.RoleBuyer, order.ID.String(), 20, 0)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
