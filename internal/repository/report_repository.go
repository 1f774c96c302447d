package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

// ReportRepository stores buyer reports against pending orders and
// resolves them. Resolution settles the underlying order and closes the
// report in the same transaction, so a report can never end up resolved
// with its order still pending.
type ReportRepository struct {
	db     *sqlx.DB
	orders *OrderRepository
}

func NewReportRepository(db *sqlx.DB, orders *OrderRepository) *ReportRepository {
	return &ReportRepository{db: db, orders: orders}
}

func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reports (order_id, reporter_email, seller_email, reason, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		rep.OrderID, rep.ReporterEmail, rep.SellerEmail, rep.Reason, rep.Message, rep.Status,
	).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("report repository: create: %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var rep models.Report
	err := r.db.GetContext(ctx, &rep, `SELECT * FROM reports WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by id: %w", err)
	}
	return &rep, nil
}

func (r *ReportRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	query := `SELECT * FROM reports`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	reports := []models.Report{}
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("report repository: list: %w", err)
	}
	return reports, nil
}

func (r *ReportRepository) HasPendingForOrder(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM reports WHERE order_id = $1 AND status = $2)`,
		orderID, models.ReportStatusPending)
	if err != nil {
		return false, fmt.Errorf("report repository: has pending for order: %w", err)
	}
	return exists, nil
}

// Resolve closes a pending report. verdict is either the sold status
// (seller wins, order confirmed) or the refunded status (buyer wins,
// order refunded). Both the report row and the order settlement commit
// together.
func (r *ReportRepository) Resolve(ctx context.Context, reportID, verdict string) (*models.Report, *models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("report repository: resolve: begin: %w", err)
	}
	defer tx.Rollback()

	var rep models.Report
	err = tx.GetContext(ctx, &rep, `SELECT * FROM reports WHERE id = $1 FOR UPDATE`, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperror.ErrReportNotFound
		}
		return nil, nil, fmt.Errorf("report repository: resolve: lock: %w", err)
	}
	if rep.Status != models.ReportStatusPending {
		return nil, nil, apperror.ErrReportResolved
	}

	var order *models.Order
	switch verdict {
	case models.ReportStatusSold:
		order, err = r.orders.confirmInTx(ctx, tx, rep.OrderID.String())
	case models.ReportStatusRefunded:
		order, err = r.orders.refundInTx(ctx, tx, rep.OrderID.String(), models.OrderStatusRefunded)
	default:
		return nil, nil, apperror.BadRequest("unknown verdict")
	}
	if err != nil {
		return nil, nil, err
	}

	err = tx.GetContext(ctx, &rep, `
		UPDATE reports SET status = $1, resolved_at = now()
		WHERE id = $2
		RETURNING *`, verdict, reportID)
	if err != nil {
		return nil, nil, fmt.Errorf("report repository: resolve: close: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("report repository: resolve: commit: %w", err)
	}
	return &rep, order, nil
}
