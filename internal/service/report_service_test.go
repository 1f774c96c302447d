package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

// fakeReportStore resolves reports against a fakeOrderStore the same
// way the repository does: report close and order settlement together.
type fakeReportStore struct {
	orders  *fakeOrderStore
	reports map[string]*models.Report
}

func newFakeReportStore(orders *fakeOrderStore) *fakeReportStore {
	return &fakeReportStore{orders: orders, reports: map[string]*models.Report{}}
}

func (f *fakeReportStore) Create(_ context.Context, rep *models.Report) error {
	rep.ID = uuid.New()
	rep.CreatedAt = time.Now()
	f.reports[rep.ID.String()] = rep
	f.orders.reported[rep.OrderID.String()] = true
	return nil
}

func (f *fakeReportStore) GetByID(_ context.Context, id string) (*models.Report, error) {
	rep, ok := f.reports[id]
	if !ok {
		return nil, apperror.ErrReportNotFound
	}
	return rep, nil
}

func (f *fakeReportStore) List(_ context.Context, status string, limit, offset int) ([]models.Report, error) {
	var out []models.Report
	for _, rep := range f.reports {
		if status == "" || rep.Status == status {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (f *fakeReportStore) HasPendingForOrder(_ context.Context, orderID string) (bool, error) {
	for _, rep := range f.reports {
		if rep.OrderID.String() == orderID && rep.Status == models.ReportStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReportStore) Resolve(ctx context.Context, reportID, verdict string) (*models.Report, *models.Order, error) {
	rep, ok := f.reports[reportID]
	if !ok {
		return nil, nil, apperror.ErrReportNotFound
	}
	if rep.Status != models.ReportStatusPending {
		return nil, nil, apperror.ErrReportResolved
	}

	var order *models.Order
	var err error
	switch verdict {
	case models.ReportStatusSold:
		order, err = f.orders.Confirm(ctx, rep.OrderID.String())
	case models.ReportStatusRefunded:
		order, err = f.orders.Refund(ctx, rep.OrderID.String())
	}
	if err != nil {
		return nil, nil, err
	}

	rep.Status = verdict
	now := time.Now()
	rep.ResolvedAt = &now
	f.orders.reported[rep.OrderID.String()] = false
	return rep, order, nil
}

func setupReportTest(t *testing.T) (*ReportService, *fakeOrderStore, *models.Order) {
	t.Helper()
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 100_00)

	orderSvc := newTestOrderService(store)
	order, err := orderSvc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	reports := newFakeReportStore(store)
	return NewReportService(reports, store, nil, nil), store, order
}

func TestReportCreateByBuyer(t *testing.T) {
	svc, _, order := setupReportTest(t)

	rep, err := svc.Create(context.Background(), "buyer@test", order.ID.String(), "not delivered", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, rep.Status)
	assert.Equal(t, "seller@test", rep.SellerEmail)
}

func TestReportCreateRejectsNonBuyer(t *testing.T) {
	svc, _, order := setupReportTest(t)

	_, err := svc.Create(context.Background(), "seller@test", order.ID.String(), "bogus", nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestReportCreateRejectsSettledOrder(t *testing.T) {
	svc, store, order := setupReportTest(t)
	_, err := store.Confirm(context.Background(), order.ID.String())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "buyer@test", order.ID.String(), "late", nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestReportCreateRejectsDuplicate(t *testing.T) {
	svc, _, order := setupReportTest(t)

	_, err := svc.Create(context.Background(), "buyer@test", order.ID.String(), "not delivered", nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "buyer@test", order.ID.String(), "still not delivered", nil)
	assert.Error(t, err)
}

func TestResolveMarkSoldPaysSeller(t *testing.T) {
	svc, store, order := setupReportTest(t)

	rep, err := svc.Create(context.Background(), "buyer@test", order.ID.String(), "not delivered", nil)
	require.NoError(t, err)

	resolved, err := svc.ResolveMarkSold(context.Background(), models.RoleAdmin, rep.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusSold, resolved.Status)
	assert.Equal(t, int64(80_00), store.balances["seller@test"])
	assert.Equal(t, models.OrderStatusCompleted, store.orders[order.ID.String()].Status)
}

func TestResolveRefundRepaysBuyer(t *testing.T) {
	svc, store, order := setupReportTest(t)

	rep, err := svc.Create(context.Background(), "buyer@test", order.ID.String(), "not delivered", nil)
	require.NoError(t, err)

	resolved, err := svc.ResolveRefund(context.Background(), models.RoleAdmin, rep.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusRefunded, resolved.Status)
	assert.Equal(t, int64(100_00), store.balances["buyer@test"])
	assert.Equal(t, int64(0), store.balances["seller@test"])
	assert.Equal(t, models.ProductStatusActive, store.products[order.ProductID.String()].Status)
}

func TestResolveRequiresAdmin(t *testing.T) {
	svc, _, order := setupReportTest(t)

	rep, err := svc.Create(context.Background(), "buyer@test", order.ID.String(), "not delivered", nil)
	require.NoError(t, err)

	_, err = svc.ResolveRefund(context.Background(), models.RoleBuyer, rep.ID.String())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestResolveTwiceFails(t *testing.T) {
	svc, store, order := setupReportTest(t)

	rep, err := svc.Create(context.Background(), "buyer@test", order.ID.String(), "not delivered", nil)
	require.NoError(t, err)

	_, err = svc.ResolveRefund(context.Background(), models.RoleAdmin, rep.ID.String())
	require.NoError(t, err)

	_, err = svc.ResolveMarkSold(context.Background(), models.RoleAdmin, rep.ID.String())
	assert.ErrorIs(t, err, apperror.ErrReportResolved)
	// The buyer keeps the refund; the seller still gets nothing.
	assert.Equal(t, int64(100_00), store.balances["buyer@test"])
	assert.Equal(t, int64(0), store.balances["seller@test"])
}
