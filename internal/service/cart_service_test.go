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

type fakeCartStore struct {
	items map[string][]models.CartItem
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{items: map[string][]models.CartItem{}}
}

func (f *fakeCartStore) Add(_ context.Context, item *models.CartItem) error {
	for _, existing := range f.items[item.BuyerEmail] {
		if existing.ProductID == item.ProductID {
			return nil
		}
	}
	item.ID = uuid.New()
	f.items[item.BuyerEmail] = append(f.items[item.BuyerEmail], *item)
	return nil
}

func (f *fakeCartStore) List(_ context.Context, buyerEmail string) ([]models.CartItem, error) {
	return f.items[buyerEmail], nil
}

func (f *fakeCartStore) Remove(_ context.Context, buyerEmail, productID string) error {
	kept := f.items[buyerEmail][:0]
	for _, it := range f.items[buyerEmail] {
		if it.ProductID.String() != productID {
			kept = append(kept, it)
		}
	}
	f.items[buyerEmail] = kept
	return nil
}

func (f *fakeCartStore) Clear(_ context.Context, buyerEmail string) error {
	delete(f.items, buyerEmail)
	return nil
}

// fakeProductStore serves the catalog reads cart and product services
// need.
type fakeProductStore struct {
	products map[string]*models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[string]*models.Product{}}
}

func (f *fakeProductStore) add(seller string, price int64, status string) *models.Product {
	p := &models.Product{
		ID:          uuid.New(),
		SellerEmail: seller,
		Name:        "item",
		Price:       price,
		Status:      status,
	}
	f.products[p.ID.String()] = p
	return p
}

func (f *fakeProductStore) Create(_ context.Context, p *models.Product) error {
	p.ID = uuid.New()
	f.products[p.ID.String()] = p
	return nil
}

func (f *fakeProductStore) GetByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductStore) List(_ context.Context, status, sellerEmail string, limit, offset int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if status != "" && p.Status != status {
			continue
		}
		if sellerEmail != "" && p.SellerEmail != sellerEmail {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductStore) UpdateStatus(_ context.Context, id, status string) error {
	p, ok := f.products[id]
	if !ok {
		return apperror.ErrProductNotFound
	}
	p.Status = status
	return nil
}

func TestCartAddActiveProduct(t *testing.T) {
	products := newFakeProductStore()
	p := products.add("seller@test", 30_00, models.ProductStatusActive)

	svc := NewCartService(newFakeCartStore(), products)
	item, err := svc.Add(context.Background(), "buyer@test", p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.Price, item.Price)
	assert.Equal(t, "seller@test", item.SellerEmail)
}

func TestCartAddRejectsOwnProduct(t *testing.T) {
	products := newFakeProductStore()
	p := products.add("seller@test", 30_00, models.ProductStatusActive)

	svc := NewCartService(newFakeCartStore(), products)
	_, err := svc.Add(context.Background(), "seller@test", p.ID.String())
	assert.Error(t, err)
}

func TestCartAddRejectsInactiveProduct(t *testing.T) {
	products := newFakeProductStore()
	p := products.add("seller@test", 30_00, models.ProductStatusOngoing)

	svc := NewCartService(newFakeCartStore(), products)
	_, err := svc.Add(context.Background(), "buyer@test", p.ID.String())
	assert.ErrorIs(t, err, apperror.ErrProductUnavailable)
}

func TestCartListTotals(t *testing.T) {
	products := newFakeProductStore()
	p1 := products.add("seller@test", 30_00, models.ProductStatusActive)
	p2 := products.add("other@test", 45_00, models.ProductStatusActive)

	svc := NewCartService(newFakeCartStore(), products)
	_, err := svc.Add(context.Background(), "buyer@test", p1.ID.String())
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), "buyer@test", p2.ID.String())
	require.NoError(t, err)

	items, total, err := svc.List(context.Background(), "buyer@test")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(75_00), total)
}

func TestCreateListingStartsPending(t *testing.T) {
	accounts := newFakeAccountStore()
	registerBuyer(t, accounts, "seller@test.com", 0)
	accounts.accounts["seller@test.com"].Role = models.RoleSeller
	accounts.accounts["seller@test.com"].SalesCredit = 1

	products := newFakeProductStore()
	svc := NewProductService(products, accounts)

	p, err := svc.CreateListing(context.Background(), "seller@test.com", "My Listing", nil, 50_00, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusPending, p.Status)
}

func TestCreateListingRejectsBuyer(t *testing.T) {
	accounts := newFakeAccountStore()
	registerBuyer(t, accounts, "buyer@test.com", 0)

	svc := NewProductService(newFakeProductStore(), accounts)
	_, err := svc.CreateListing(context.Background(), "buyer@test.com", "Nope", nil, 50_00, nil)
	assert.ErrorIs(t, err, apperror.ErrNotSeller)
}

func TestModerateApprovesPending(t *testing.T) {
	accounts := newFakeAccountStore()
	products := newFakeProductStore()
	p := products.add("seller@test", 50_00, models.ProductStatusPending)

	svc := NewProductService(products, accounts)
	approved, err := svc.Moderate(context.Background(), models.RoleAdmin, p.ID.String(), true)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusActive, approved.Status)

	// Already moderated.
	_, err = svc.Moderate(context.Background(), models.RoleAdmin, p.ID.String(), false)
	assert.Error(t, err)
}

func TestModerateRequiresAdmin(t *testing.T) {
	products := newFakeProductStore()
	p := products.add("seller@test", 50_00, models.ProductStatusPending)

	svc := NewProductService(products, newFakeAccountStore())
	_, err := svc.Moderate(context.Background(), models.RoleSeller, p.ID.String(), true)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
