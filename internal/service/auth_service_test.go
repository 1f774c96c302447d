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

type fakeAccountStore struct {
	accounts map[string]*models.Account
	sessions map[string]*models.Session
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts: map[string]*models.Account{},
		sessions: map[string]*models.Session{},
	}
}

func (f *fakeAccountStore) Create(_ context.Context, a *models.Account) error {
	if _, exists := f.accounts[a.Email]; exists {
		return apperror.ErrAccountExists
	}
	a.ID = uuid.New()
	a.Status = models.AccountStatusActive
	a.CreatedAt = time.Now()
	f.accounts[a.Email] = a
	return nil
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	a, ok := f.accounts[email]
	if !ok {
		return nil, apperror.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, id string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.ID.String() == id {
			return a, nil
		}
	}
	return nil, apperror.ErrAccountNotFound
}

func (f *fakeAccountStore) GetByReferralCode(_ context.Context, code string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.ReferralCode == code {
			return a, nil
		}
	}
	return nil, apperror.ErrInvalidReferralCode
}

func (f *fakeAccountStore) Credit(_ context.Context, email string, amount int64) error {
	a, ok := f.accounts[email]
	if !ok {
		return apperror.ErrAccountNotFound
	}
	a.Balance += amount
	return nil
}

func (f *fakeAccountStore) Debit(_ context.Context, email string, amount int64) error {
	a, ok := f.accounts[email]
	if !ok {
		return apperror.ErrAccountNotFound
	}
	if a.Balance < amount {
		return apperror.ErrInsufficientFunds
	}
	a.Balance -= amount
	return nil
}

func (f *fakeAccountStore) BecomeSeller(_ context.Context, email string, fee int64) error {
	a, ok := f.accounts[email]
	if !ok {
		return apperror.ErrAccountNotFound
	}
	if a.Balance < fee {
		return apperror.ErrInsufficientFunds
	}
	a.Balance -= fee
	a.Role = models.RoleSeller
	return nil
}

func (f *fakeAccountStore) PurchasePlan(_ context.Context, email, plan string, price int64, credits int) error {
	a, ok := f.accounts[email]
	if !ok {
		return apperror.ErrAccountNotFound
	}
	if a.Balance < price {
		return apperror.ErrInsufficientFunds
	}
	a.Balance -= price
	a.Plan = &plan
	a.SalesCredit += credits
	return nil
}

func (f *fakeAccountStore) UpdateLastLogin(_ context.Context, email string) error { return nil }

func (f *fakeAccountStore) ListReferred(_ context.Context, code string) ([]models.Account, error) {
	var out []models.Account
	for _, a := range f.accounts {
		if a.ReferredBy != nil && *a.ReferredBy == code {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountStore) CreateSession(_ context.Context, s *models.Session) error {
	s.ID = uuid.New()
	f.sessions[s.RefreshToken] = s
	return nil
}

func (f *fakeAccountStore) GetSessionByToken(_ context.Context, token string) (*models.Session, error) {
	s, ok := f.sessions[token]
	if !ok || s.ExpiresAt.Before(time.Now()) {
		return nil, apperror.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeAccountStore) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func newTestAuthService(store *fakeAccountStore) *AuthService {
	tokens := NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	return NewAuthService(store, tokens, 5_00)
}

func TestRegisterCreatesBuyerWithZeroBalance(t *testing.T) {
	store := newFakeAccountStore()
	svc := newTestAuthService(store)

	account, err := svc.Register(context.Background(), "new@test.com", "New User", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, account.Role)
	assert.Zero(t, account.Balance)
	assert.NotEmpty(t, account.ReferralCode)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := newTestAuthService(newFakeAccountStore())

	_, err := svc.Register(context.Background(), "not-an-email", "Name", "password123", "")
	assert.Error(t, err)

	_, err = svc.Register(context.Background(), "ok@test.com", "", "password123", "")
	assert.Error(t, err)

	_, err = svc.Register(context.Background(), "ok@test.com", "Name", "short", "")
	assert.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeAccountStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), "dup@test.com", "First", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "dup@test.com", "Second", "password123", "")
	assert.ErrorIs(t, err, apperror.ErrAccountExists)
}

func TestRegisterCreditsReferrer(t *testing.T) {
	store := newFakeAccountStore()
	svc := newTestAuthService(store)

	referrer, err := svc.Register(context.Background(), "ref@test.com", "Referrer", "password123", "")
	require.NoError(t, err)

	referred, err := svc.Register(context.Background(), "friend@test.com", "Friend", "password123", referrer.ReferralCode)
	require.NoError(t, err)

	assert.Equal(t, int64(5_00), store.accounts["ref@test.com"].Balance)
	require.NotNil(t, referred.ReferredBy)
	assert.Equal(t, referrer.ReferralCode, *referred.ReferredBy)
}

func TestRegisterRejectsUnknownReferralCode(t *testing.T) {
	svc := newTestAuthService(newFakeAccountStore())

	_, err := svc.Register(context.Background(), "x@test.com", "X", "password123", "no-such-code")
	assert.ErrorIs(t, err, apperror.ErrInvalidReferralCode)
}

func TestLoginAndRefresh(t *testing.T) {
	store := newFakeAccountStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), "login@test.com", "User", "password123", "")
	require.NoError(t, err)

	account, pair, err := svc.Login(context.Background(), "login@test.com", "password123", "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "login@test.com", account.Email)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Refresh rotates the session.
	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// The old token is dead.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrSessionNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeAccountStore()
	svc := newTestAuthService(store)

	_, err := svc.Register(context.Background(), "login@test.com", "User", "password123", "")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "login@test.com", "wrong-password", "", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService(newFakeAccountStore())

	_, _, err := svc.Login(context.Background(), "ghost@test.com", "password123", "", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	id := uuid.New()

	signed, err := tokens.NewAccessToken(id, "user@test.com", models.RoleSeller)
	require.NoError(t, err)

	claims, err := tokens.ParseAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, "user@test.com", claims.Email)
	assert.Equal(t, models.RoleSeller, claims.Role)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	tokens := NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	other := NewTokenManager("other-secret", 15*time.Minute, time.Hour)

	signed, err := tokens.NewAccessToken(uuid.New(), "user@test.com", models.RoleBuyer)
	require.NoError(t, err)

	_, err = other.ParseAccessToken(signed)
	assert.Error(t, err)
}
