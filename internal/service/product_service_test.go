package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

// fakeListingStore spends one listing credit per insert the way the
// repository does, failing the whole create when none are left.
type fakeListingStore struct {
	*fakeProductStore
	accounts *fakeAccountStore
}

func (f *fakeListingStore) Create(ctx context.Context, p *models.Product) error {
	a, ok := f.accounts.accounts[p.SellerEmail]
	if !ok {
		return apperror.ErrAccountNotFound
	}
	if a.SalesCredit <= 0 {
		return apperror.ErrNoCredit
	}
	a.SalesCredit--
	return f.fakeProductStore.Create(ctx, p)
}

func newSellerWithCredits(t *testing.T, accounts *fakeAccountStore, email string, credits int) {
	t.Helper()
	registerBuyer(t, accounts, email, 0)
	accounts.accounts[email].Role = models.RoleSeller
	accounts.accounts[email].SalesCredit = credits
}

func TestCreateListingSpendsOneCredit(t *testing.T) {
	accounts := newFakeAccountStore()
	newSellerWithCredits(t, accounts, "seller@test.com", 2)

	store := &fakeListingStore{fakeProductStore: newFakeProductStore(), accounts: accounts}
	svc := NewProductService(store, accounts)

	p, err := svc.CreateListing(context.Background(), "seller@test.com", "First Listing", nil, 50_00, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusPending, p.Status)
	assert.Equal(t, 1, accounts.accounts["seller@test.com"].SalesCredit)
}

func TestCreateListingFailsWithoutCredit(t *testing.T) {
	accounts := newFakeAccountStore()
	newSellerWithCredits(t, accounts, "seller@test.com", 1)

	store := &fakeListingStore{fakeProductStore: newFakeProductStore(), accounts: accounts}
	svc := NewProductService(store, accounts)

	_, err := svc.CreateListing(context.Background(), "seller@test.com", "First Listing", nil, 50_00, nil)
	require.NoError(t, err)

	_, err = svc.CreateListing(context.Background(), "seller@test.com", "Second Listing", nil, 50_00, nil)
	assert.ErrorIs(t, err, apperror.ErrNoCredit)
	assert.Equal(t, 0, accounts.accounts["seller@test.com"].SalesCredit)
	assert.Len(t, store.products, 1)
}

func TestModerateRejectSetsRejected(t *testing.T) {
	accounts := newFakeAccountStore()
	products := newFakeProductStore()
	p := products.add("seller@test", 50_00, models.ProductStatusPending)

	svc := NewProductService(products, accounts)
	rejected, err := svc.Moderate(context.Background(), models.RoleAdmin, p.ID.String(), false)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusRejected, rejected.Status)
}
