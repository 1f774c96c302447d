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

// fakeOrderStore mimics the repository's settlement semantics in
// memory: conditional debits, product status compare-and-set and
// exactly-once order transitions.
type fakeOrderStore struct {
	balances  map[string]int64
	products  map[string]*models.Product
	orders    map[string]*models.Order
	cart      map[string][]models.CartItem
	reported  map[string]bool
	sellerPct int64
	platform  string
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		balances:  map[string]int64{},
		products:  map[string]*models.Product{},
		orders:    map[string]*models.Order{},
		cart:      map[string][]models.CartItem{},
		reported:  map[string]bool{},
		sellerPct: 80,
		platform:  "platform@test",
	}
}

func (f *fakeOrderStore) addProduct(seller string, price int64) *models.Product {
	p := &models.Product{
		ID:          uuid.New(),
		SellerEmail: seller,
		Name:        "item",
		Price:       price,
		Status:      models.ProductStatusActive,
	}
	f.products[p.ID.String()] = p
	return p
}

func (f *fakeOrderStore) debit(email string, amount int64) error {
	if f.balances[email] < amount {
		return apperror.ErrInsufficientFunds
	}
	f.balances[email] -= amount
	return nil
}

func (f *fakeOrderStore) reserve(productID string) error {
	p, ok := f.products[productID]
	if !ok {
		return apperror.ErrProductNotFound
	}
	if p.Status != models.ProductStatusActive {
		return apperror.ErrProductUnavailable
	}
	p.Status = models.ProductStatusOngoing
	return nil
}

func (f *fakeOrderStore) CreateFromCart(_ context.Context, buyerEmail string) ([]models.Order, error) {
	items := f.cart[buyerEmail]
	if len(items) == 0 {
		return nil, apperror.ErrCartEmpty
	}

	var total int64
	for _, it := range items {
		total += it.Price
	}

	// All-or-nothing: check everything before mutating.
	if f.balances[buyerEmail] < total {
		return nil, apperror.ErrInsufficientFunds
	}
	for _, it := range items {
		p, ok := f.products[it.ProductID.String()]
		if !ok {
			return nil, apperror.ErrProductNotFound
		}
		if p.Status != models.ProductStatusActive {
			return nil, apperror.ErrProductUnavailable
		}
	}

	f.balances[buyerEmail] -= total
	orders := make([]models.Order, 0, len(items))
	for _, it := range items {
		f.products[it.ProductID.String()].Status = models.ProductStatusOngoing
		o := &models.Order{
			ID:           uuid.New(),
			BuyerEmail:   buyerEmail,
			SellerEmail:  it.SellerEmail,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			Price:        it.Price,
			Status:       models.OrderStatusPending,
			PurchaseDate: time.Now(),
		}
		f.orders[o.ID.String()] = o
		orders = append(orders, *o)
	}
	f.cart[buyerEmail] = nil
	return orders, nil
}

func (f *fakeOrderStore) CreateSingle(_ context.Context, buyerEmail, productID string) (*models.Order, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.ErrProductNotFound
	}
	if p.Status != models.ProductStatusActive {
		return nil, apperror.ErrProductUnavailable
	}
	if err := f.debit(buyerEmail, p.Price); err != nil {
		return nil, err
	}
	if err := f.reserve(productID); err != nil {
		return nil, err
	}
	o := &models.Order{
		ID:           uuid.New(),
		BuyerEmail:   buyerEmail,
		SellerEmail:  p.SellerEmail,
		ProductID:    p.ID,
		ProductName:  p.Name,
		Price:        p.Price,
		Status:       models.OrderStatusPending,
		PurchaseDate: time.Now(),
	}
	f.orders[o.ID.String()] = o
	return o, nil
}

func (f *fakeOrderStore) Confirm(_ context.Context, orderID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, apperror.ErrOrderNotFound
	}
	if o.Status != models.OrderStatusPending {
		return nil, apperror.ErrInvalidTransition
	}
	sellerShare := o.Price * f.sellerPct / 100
	f.balances[o.SellerEmail] += sellerShare
	f.balances[f.platform] += o.Price - sellerShare
	f.products[o.ProductID.String()].Status = models.ProductStatusSold
	o.Status = models.OrderStatusCompleted
	now := time.Now()
	o.ResolvedAt = &now
	return o, nil
}

func (f *fakeOrderStore) settleBuyer(orderID, orderStatus, productStatus string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, apperror.ErrOrderNotFound
	}
	if o.Status != models.OrderStatusPending {
		return nil, apperror.ErrInvalidTransition
	}
	f.balances[o.BuyerEmail] += o.Price
	f.products[o.ProductID.String()].Status = productStatus
	o.Status = orderStatus
	now := time.Now()
	o.ResolvedAt = &now
	return o, nil
}

func (f *fakeOrderStore) Refund(_ context.Context, orderID string) (*models.Order, error) {
	return f.settleBuyer(orderID, models.OrderStatusRefunded, models.ProductStatusActive)
}

func (f *fakeOrderStore) Cancel(_ context.Context, orderID string) (*models.Order, error) {
	return f.settleBuyer(orderID, models.OrderStatusCancelled, models.ProductStatusActive)
}

func (f *fakeOrderStore) GetByID(_ context.Context, id string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, apperror.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderStore) ListByParticipant(_ context.Context, email string, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.BuyerEmail == email || o.SellerEmail == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListAll(_ context.Context, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderStore) ListPendingOlderThan(_ context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.Status == models.OrderStatusPending && o.PurchaseDate.Before(cutoff) && !f.reported[o.ID.String()] {
			out = append(out, *o)
		}
	}
	return out, nil
}

func newTestOrderService(store *fakeOrderStore) *OrderService {
	return NewOrderService(store, nil, nil, 24*time.Hour, 0)
}

func TestBuyNowDebitsBuyerAndReservesProduct(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 60_00)

	svc := newTestOrderService(store)
	order, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, int64(40_00), store.balances["buyer@test"])
	assert.Equal(t, models.ProductStatusOngoing, p.Status)
	// Seller sees nothing until the buyer confirms.
	assert.Equal(t, int64(0), store.balances["seller@test"])
}

func TestBuyNowInsufficientFunds(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 50_00
	p := store.addProduct("seller@test", 60_00)

	svc := newTestOrderService(store)
	_, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	assert.ErrorIs(t, err, apperror.ErrInsufficientFunds)
	assert.Equal(t, int64(50_00), store.balances["buyer@test"])
	assert.Equal(t, models.ProductStatusActive, p.Status)
}

func TestBuyNowProductAlreadyReserved(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["first@test"] = 100_00
	store.balances["second@test"] = 100_00
	p := store.addProduct("seller@test", 60_00)

	svc := newTestOrderService(store)
	_, err := svc.BuyNow(context.Background(), "first@test", p.ID.String())
	require.NoError(t, err)

	_, err = svc.BuyNow(context.Background(), "second@test", p.ID.String())
	assert.ErrorIs(t, err, apperror.ErrProductUnavailable)
	assert.Equal(t, int64(100_00), store.balances["second@test"])
}

func TestConfirmPaysSellerShareOnce(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 100_00)

	svc := newTestOrderService(store)
	order, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), "buyer@test", models.RoleBuyer, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, confirmed.Status)
	assert.Equal(t, int64(80_00), store.balances["seller@test"])
	assert.Equal(t, int64(20_00), store.balances["platform@test"])
	assert.Equal(t, models.ProductStatusSold, p.Status)

	// Second confirm must not pay again.
	_, err = svc.Confirm(context.Background(), "buyer@test", models.RoleBuyer, order.ID.String())
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Equal(t, int64(80_00), store.balances["seller@test"])
}

func TestConfirmForbiddenForStranger(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 50_00)

	svc := newTestOrderService(store)
	order, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), "seller@test", models.RoleSeller, order.ID.String())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, int64(0), store.balances["seller@test"])
}

func TestRefundRestoresBuyerExactlyOnce(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 70_00)

	svc := newTestOrderService(store)
	order, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)
	require.Equal(t, int64(30_00), store.balances["buyer@test"])

	refunded, err := svc.Refund(context.Background(), models.RoleAdmin, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, refunded.Status)
	assert.Equal(t, int64(100_00), store.balances["buyer@test"])
	assert.Equal(t, models.ProductStatusActive, p.Status)

	_, err = svc.Refund(context.Background(), models.RoleAdmin, order.ID.String())
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
	assert.Equal(t, int64(100_00), store.balances["buyer@test"])

	// The freed listing is sellable again.
	store.balances["second@test"] = 70_00
	_, err = svc.BuyNow(context.Background(), "second@test", p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusOngoing, p.Status)
}

func TestRefundRequiresAdmin(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 70_00)

	svc := newTestOrderService(store)
	order, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	_, err = svc.Refund(context.Background(), models.RoleBuyer, order.ID.String())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestCancelRelistsProduct(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 40_00)

	svc := newTestOrderService(store)
	order, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), "buyer@test", models.RoleBuyer, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(100_00), store.balances["buyer@test"])
	assert.Equal(t, models.ProductStatusActive, p.Status)
}

func TestCheckoutAllOrNothing(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p1 := store.addProduct("seller@test", 60_00)
	p2 := store.addProduct("other@test", 60_00)
	store.cart["buyer@test"] = []models.CartItem{
		{ProductID: p1.ID, ProductName: p1.Name, SellerEmail: p1.SellerEmail, Price: p1.Price},
		{ProductID: p2.ID, ProductName: p2.Name, SellerEmail: p2.SellerEmail, Price: p2.Price},
	}

	svc := newTestOrderService(store)
	_, err := svc.Checkout(context.Background(), "buyer@test")
	assert.ErrorIs(t, err, apperror.ErrInsufficientFunds)
	assert.Equal(t, int64(100_00), store.balances["buyer@test"])
	assert.Equal(t, models.ProductStatusActive, p1.Status)
	assert.Equal(t, models.ProductStatusActive, p2.Status)
}

func TestCheckoutCreatesOrderPerItem(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p1 := store.addProduct("seller@test", 30_00)
	p2 := store.addProduct("other@test", 50_00)
	store.cart["buyer@test"] = []models.CartItem{
		{ProductID: p1.ID, ProductName: p1.Name, SellerEmail: p1.SellerEmail, Price: p1.Price},
		{ProductID: p2.ID, ProductName: p2.Name, SellerEmail: p2.SellerEmail, Price: p2.Price},
	}

	svc := newTestOrderService(store)
	orders, err := svc.Checkout(context.Background(), "buyer@test")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, int64(20_00), store.balances["buyer@test"])
	assert.Empty(t, store.cart["buyer@test"])
	assert.Equal(t, models.ProductStatusOngoing, p1.Status)
	assert.Equal(t, models.ProductStatusOngoing, p2.Status)
}

func TestCheckoutEmptyCart(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestOrderService(store)

	_, err := svc.Checkout(context.Background(), "buyer@test")
	assert.ErrorIs(t, err, apperror.ErrCartEmpty)
}

func TestSweepConfirmsExpiredOrders(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 200_00
	p1 := store.addProduct("seller@test", 100_00)
	p2 := store.addProduct("seller@test", 100_00)

	svc := newTestOrderService(store)
	old, err := svc.BuyNow(context.Background(), "buyer@test", p1.ID.String())
	require.NoError(t, err)
	_, err = svc.BuyNow(context.Background(), "buyer@test", p2.ID.String())
	require.NoError(t, err)

	// Age the first order past the confirm window.
	store.orders[old.ID.String()].PurchaseDate = time.Now().Add(-25 * time.Hour)

	result, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Confirmed)
	assert.Equal(t, 0, result.Cancelled)
	assert.Equal(t, int64(80_00), store.balances["seller@test"])
	assert.Equal(t, models.OrderStatusCompleted, store.orders[old.ID.String()].Status)
}

func TestSweepSkipsReportedOrders(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 100_00)

	svc := newTestOrderService(store)
	order, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	store.orders[order.ID.String()].PurchaseDate = time.Now().Add(-48 * time.Hour)
	store.reported[order.ID.String()] = true

	result, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Confirmed)
	assert.Equal(t, models.OrderStatusPending, store.orders[order.ID.String()].Status)
	assert.Equal(t, int64(0), store.balances["seller@test"])
}

func TestSweepCancelWindow(t *testing.T) {
	store := newFakeOrderStore()
	store.balances["buyer@test"] = 100_00
	p := store.addProduct("seller@test", 100_00)

	// Auto-confirm off, auto-cancel after 72h.
	svc := NewOrderService(store, nil, nil, 0, 72*time.Hour)
	order, err := svc.BuyNow(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)

	store.orders[order.ID.String()].PurchaseDate = time.Now().Add(-80 * time.Hour)

	result, err := svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Cancelled)
	assert.Equal(t, int64(100_00), store.balances["buyer@test"])
	assert.Equal(t, models.ProductStatusActive, p.Status)
}
