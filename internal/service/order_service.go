package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ataurwd/vps-backend-server/internal/events"
	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/metrics"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

const sweepBatchSize = 200

type OrderStore interface {
	CreateFromCart(ctx context.Context, buyerEmail string) ([]models.Order, error)
	CreateSingle(ctx context.Context, buyerEmail, productID string) (*models.Order, error)
	Confirm(ctx context.Context, orderID string) (*models.Order, error)
	Refund(ctx context.Context, orderID string) (*models.Order, error)
	Cancel(ctx context.Context, orderID string) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByParticipant(ctx context.Context, email string, limit, offset int) ([]models.Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Order, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// EventPublisher pushes settlement events to the message bus.
type EventPublisher interface {
	Publish(key, eventType string, data any)
}

// Notifier records an event for one account.
type Notifier interface {
	Notify(ctx context.Context, email string, orderID *uuid.UUID, event string, data any)
}

// SweepResult summarizes one auto-resolution pass.
type SweepResult struct {
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Skipped   int `json:"skipped"`
}

// OrderService drives the order state machine. Orders are created
// pending with the buyer debited, then settle exactly once: completed
// (seller paid), refunded or cancelled (buyer repaid). Settlement is
// enforced in the repository; this layer adds authorization,
// notifications and events.
type OrderService struct {
	orders   OrderStore
	notifier Notifier
	events   EventPublisher

	autoConfirmWindow time.Duration
	autoCancelWindow  time.Duration
}

func NewOrderService(orders OrderStore, notifier Notifier, publisher EventPublisher, autoConfirmWindow, autoCancelWindow time.Duration) *OrderService {
	return &OrderService{
		orders:            orders,
		notifier:          notifier,
		events:            publisher,
		autoConfirmWindow: autoConfirmWindow,
		autoCancelWindow:  autoCancelWindow,
	}
}

// Checkout buys every item in the buyer's cart in one atomic step.
func (s *OrderService) Checkout(ctx context.Context, buyerEmail string) ([]models.Order, error) {
	orders, err := s.orders.CreateFromCart(ctx, buyerEmail)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.afterCreate(ctx, &orders[i])
	}
	return orders, nil
}

// BuyNow buys one product directly.
func (s *OrderService) BuyNow(ctx context.Context, buyerEmail, productID string) (*models.Order, error) {
	order, err := s.orders.CreateSingle(ctx, buyerEmail, productID)
	if err != nil {
		return nil, err
	}
	s.afterCreate(ctx, order)
	return order, nil
}

// Confirm settles the order in the seller's favor. Only the buyer or an
// admin may confirm.
func (s *OrderService) Confirm(ctx context.Context, actorEmail, actorRole, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && order.BuyerEmail != actorEmail {
		return nil, apperror.ErrForbidden
	}

	order, err = s.orders.Confirm(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.afterSettle(ctx, order, events.TypeOrderCompleted, "completed")
	return order, nil
}

// Refund settles the order in the buyer's favor. Admin only; buyers go
// through the report flow.
func (s *OrderService) Refund(ctx context.Context, actorRole, orderID string) (*models.Order, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	order, err := s.orders.Refund(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.afterSettle(ctx, order, events.TypeOrderRefunded, "refunded")
	return order, nil
}

// Cancel returns the buyer's money and relists the product. The buyer
// or an admin may cancel while the order is still pending.
func (s *OrderService) Cancel(ctx context.Context, actorEmail, actorRole, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && order.BuyerEmail != actorEmail {
		return nil, apperror.ErrForbidden
	}

	order, err = s.orders.Cancel(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.afterSettle(ctx, order, events.TypeOrderCancelled, "cancelled")
	return order, nil
}

// Get returns one order to its buyer, its seller or an admin.
func (s *OrderService) Get(ctx context.Context, actorEmail, actorRole, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && order.BuyerEmail != actorEmail && order.SellerEmail != actorEmail {
		return nil, apperror.ErrForbidden
	}
	return order, nil
}

// List returns the caller's orders, or all orders for admins.
func (s *OrderService) List(ctx context.Context, actorEmail, actorRole string, limit, offset int) ([]models.Order, error) {
	if actorRole == models.RoleAdmin {
		return s.orders.ListAll(ctx, limit, offset)
	}
	return s.orders.ListByParticipant(ctx, actorEmail, limit, offset)
}

// RunSweep settles pending orders past their resolution window: the
// confirm window pays the seller, the cancel window (when enabled)
// repays the buyer. Orders with an open report are left alone. Races
// with manual settlement surface as invalid transitions and are
// skipped.
func (s *OrderService) RunSweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	if s.autoCancelWindow > 0 {
		stale, err := s.orders.ListPendingOlderThan(ctx, time.Now().Add(-s.autoCancelWindow), sweepBatchSize)
		if err != nil {
			return result, err
		}
		for i := range stale {
			order, err := s.orders.Cancel(ctx, stale[i].ID.String())
			if err != nil {
				if errors.Is(err, apperror.ErrInvalidTransition) {
					result.Skipped++
					continue
				}
				return result, err
			}
			result.Cancelled++
			metrics.SweepResolutionsTotal.WithLabelValues("cancelled").Inc()
			s.afterSettle(ctx, order, events.TypeOrderCancelled, "cancelled")
		}
	}

	if s.autoConfirmWindow > 0 {
		expired, err := s.orders.ListPendingOlderThan(ctx, time.Now().Add(-s.autoConfirmWindow), sweepBatchSize)
		if err != nil {
			return result, err
		}
		for i := range expired {
			order, err := s.orders.Confirm(ctx, expired[i].ID.String())
			if err != nil {
				if errors.Is(err, apperror.ErrInvalidTransition) {
					result.Skipped++
					continue
				}
				return result, err
			}
			result.Confirmed++
			metrics.SweepResolutionsTotal.WithLabelValues("confirmed").Inc()
			s.afterSettle(ctx, order, events.TypeOrderCompleted, "completed")
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"confirmed": result.Confirmed,
		"cancelled": result.Cancelled,
		"skipped":   result.Skipped,
	}).Info("sweep finished")
	return result, nil
}

func (s *OrderService) afterCreate(ctx context.Context, order *models.Order) {
	metrics.OrdersTotal.WithLabelValues("created").Inc()
	s.publish(order, events.TypeOrderCreated)
	if s.notifier != nil {
		s.notifier.Notify(ctx, order.SellerEmail, &order.ID, "order_created", order)
		s.notifier.Notify(ctx, order.BuyerEmail, &order.ID, "order_created", order)
	}
}

func (s *OrderService) afterSettle(ctx context.Context, order *models.Order, eventType, outcome string) {
	metrics.OrdersTotal.WithLabelValues(outcome).Inc()
	s.publish(order, eventType)
	if s.notifier != nil {
		s.notifier.Notify(ctx, order.BuyerEmail, &order.ID, "order_"+outcome, order)
		s.notifier.Notify(ctx, order.SellerEmail, &order.ID, "order_"+outcome, order)
	}
}

func (s *OrderService) publish(order *models.Order, eventType string) {
	if s.events == nil {
		return
	}
	s.events.Publish(order.ID.String(), eventType, events.OrderEvent{
		OrderID:     order.ID.String(),
		BuyerEmail:  order.BuyerEmail,
		SellerEmail: order.SellerEmail,
		ProductID:   order.ProductID.String(),
		Price:       order.Price,
		Status:      order.Status,
	})
}
