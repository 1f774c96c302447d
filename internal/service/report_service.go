package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ataurwd/vps-backend-server/internal/events"
	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/metrics"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

type ReportStore interface {
	Create(ctx context.Context, rep *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Report, error)
	HasPendingForOrder(ctx context.Context, orderID string) (bool, error)
	Resolve(ctx context.Context, reportID, verdict string) (*models.Report, *models.Order, error)
}

// ReportService is the dispute flow. A buyer files a report against
// their pending order; an open report parks the order until an admin
// resolves it in favor of the seller (confirm) or the buyer (refund).
type ReportService struct {
	reports  ReportStore
	orders   OrderStore
	notifier Notifier
	events   EventPublisher
}

func NewReportService(reports ReportStore, orders OrderStore, notifier Notifier, publisher EventPublisher) *ReportService {
	return &ReportService{reports: reports, orders: orders, notifier: notifier, events: publisher}
}

// Create files a report. Only the buyer of a pending order may report
// it, and only once.
func (s *ReportService) Create(ctx context.Context, reporterEmail, orderID, reason string, message *string) (*models.Report, error) {
	if reason == "" {
		return nil, apperror.BadRequest("reason is required")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerEmail != reporterEmail {
		return nil, apperror.ErrForbidden
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperror.ErrInvalidTransition
	}

	open, err := s.reports.HasPendingForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperror.Conflict("order already has an open report")
	}

	rep := &models.Report{
		OrderID:       order.ID,
		ReporterEmail: reporterEmail,
		SellerEmail:   order.SellerEmail,
		Reason:        reason,
		Message:       message,
		Status:        models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(order.ID.String(), events.TypeOrderReported, events.OrderEvent{
			OrderID:     order.ID.String(),
			BuyerEmail:  order.BuyerEmail,
			SellerEmail: order.SellerEmail,
			ProductID:   order.ProductID.String(),
			Price:       order.Price,
			Status:      order.Status,
		})
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, order.SellerEmail, &order.ID, "order_reported", rep)
	}

	logger.Log.WithFields(logrus.Fields{"report_id": rep.ID, "order_id": order.ID}).Info("report filed")
	return rep, nil
}

// ResolveMarkSold closes the report in the seller's favor: the order is
// confirmed and the seller paid. Admin only.
func (s *ReportService) ResolveMarkSold(ctx context.Context, actorRole, reportID string) (*models.Report, error) {
	return s.resolve(ctx, actorRole, reportID, models.ReportStatusSold, events.TypeOrderCompleted, "completed")
}

// ResolveRefund closes the report in the buyer's favor: the order is
// refunded. Admin only.
func (s *ReportService) ResolveRefund(ctx context.Context, actorRole, reportID string) (*models.Report, error) {
	return s.resolve(ctx, actorRole, reportID, models.ReportStatusRefunded, events.TypeOrderRefunded, "refunded")
}

func (s *ReportService) resolve(ctx context.Context, actorRole, reportID, verdict, eventType, outcome string) (*models.Report, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	rep, order, err := s.reports.Resolve(ctx, reportID, verdict)
	if err != nil {
		return nil, err
	}

	metrics.OrdersTotal.WithLabelValues(outcome).Inc()
	if s.events != nil {
		s.events.Publish(order.ID.String(), eventType, events.OrderEvent{
			OrderID:     order.ID.String(),
			BuyerEmail:  order.BuyerEmail,
			SellerEmail: order.SellerEmail,
			ProductID:   order.ProductID.String(),
			Price:       order.Price,
			Status:      order.Status,
		})
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, order.BuyerEmail, &order.ID, "report_"+outcome, rep)
		s.notifier.Notify(ctx, order.SellerEmail, &order.ID, "report_"+outcome, rep)
	}

	logger.Log.WithFields(logrus.Fields{"report_id": rep.ID, "verdict": verdict}).Info("report resolved")
	return rep, nil
}

func (s *ReportService) Get(ctx context.Context, actorEmail, actorRole, id string) (*models.Report, error) {
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && rep.ReporterEmail != actorEmail && rep.SellerEmail != actorEmail {
		return nil, apperror.ErrForbidden
	}
	return rep, nil
}

func (s *ReportService) List(ctx context.Context, actorRole, status string, limit, offset int) ([]models.Report, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.reports.List(ctx, status, limit, offset)
}
