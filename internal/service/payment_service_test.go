package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataurwd/vps-backend-server/internal/gateway"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

type fakePaymentStore struct {
	payments map[string]*models.Payment
	balances map[string]int64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[string]*models.Payment{}, balances: map[string]int64{}}
}

func (f *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	if _, exists := f.payments[p.Reference]; exists {
		return apperror.ErrDuplicatePayment
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.payments[p.Reference] = p
	return nil
}

func (f *fakePaymentStore) GetByReference(_ context.Context, reference string) (*models.Payment, error) {
	p, ok := f.payments[reference]
	if !ok {
		return nil, apperror.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentStore) MarkSuccessful(_ context.Context, reference string) (*models.Payment, error) {
	p, ok := f.payments[reference]
	if !ok {
		return nil, apperror.ErrPaymentNotFound
	}
	if p.Status != models.PaymentStatusPending {
		return nil, apperror.ErrDuplicatePayment
	}
	p.Status = models.PaymentStatusSuccessful
	now := time.Now()
	p.VerifiedAt = &now
	f.balances[p.Email] += p.Amount
	return p, nil
}

func (f *fakePaymentStore) MarkFailed(_ context.Context, reference string) error {
	p, ok := f.payments[reference]
	if !ok {
		return apperror.ErrPaymentNotFound
	}
	if p.Status == models.PaymentStatusPending {
		p.Status = models.PaymentStatusFailed
	}
	return nil
}

func (f *fakePaymentStore) ListByEmail(_ context.Context, email string, limit, offset int) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.Email == email {
			out = append(out, *p)
		}
	}
	return out, nil
}

// fakeProvider accepts any charge and reports the scripted status.
type fakeProvider struct {
	name         string
	verifyStatus string
	validSig     string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) CreateCharge(_ context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	return &gateway.Charge{
		Reference:   req.Reference,
		CheckoutURL: "https://checkout.test/" + req.Reference,
	}, nil
}

func (f *fakeProvider) VerifyCharge(_ context.Context, reference string) (*gateway.ChargeStatus, error) {
	return &gateway.ChargeStatus{
		Reference:  reference,
		Status:     f.verifyStatus,
		Successful: f.verifyStatus == "successful",
	}, nil
}

func (f *fakeProvider) VerifyWebhook(signature string, _ []byte) bool {
	return signature == f.validSig
}

type fakeGuard struct {
	seen map[string]bool
}

func (g *fakeGuard) FirstSeen(_ context.Context, key string, _ time.Duration) (bool, error) {
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

func (g *fakeGuard) Forget(_ context.Context, key string) error {
	delete(g.seen, key)
	return nil
}

func setupPaymentTest(status string) (*PaymentService, *fakePaymentStore, *fakeProvider) {
	store := newFakePaymentStore()
	provider := &fakeProvider{name: "testpay", verifyStatus: status, validSig: "good-sig"}
	guard := &fakeGuard{seen: map[string]bool{}}
	svc := NewPaymentService(store, []gateway.Provider{provider}, guard, nil, nil)
	return svc, store, provider
}

func TestInitializeChargeReturnsCheckoutLink(t *testing.T) {
	svc, store, _ := setupPaymentTest("successful")

	payment, link, err := svc.InitializeCharge(context.Background(), "testpay", "buyer@test", "Buyer", 50_00)
	require.NoError(t, err)
	assert.Contains(t, link, payment.Reference)
	assert.Equal(t, models.PaymentStatusPending, store.payments[payment.Reference].Status)
	assert.Zero(t, store.balances["buyer@test"])
}

func TestInitializeChargeUnknownProvider(t *testing.T) {
	svc, _, _ := setupPaymentTest("successful")

	_, _, err := svc.InitializeCharge(context.Background(), "nope", "buyer@test", "Buyer", 50_00)
	assert.Error(t, err)
}

func TestVerifyChargeCreditsOnce(t *testing.T) {
	svc, store, _ := setupPaymentTest("successful")

	payment, _, err := svc.InitializeCharge(context.Background(), "testpay", "buyer@test", "Buyer", 50_00)
	require.NoError(t, err)

	settled, err := svc.VerifyCharge(context.Background(), payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccessful, settled.Status)
	assert.Equal(t, int64(50_00), store.balances["buyer@test"])

	// Verifying again is a no-op.
	_, err = svc.VerifyCharge(context.Background(), payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, int64(50_00), store.balances["buyer@test"])
}

func TestVerifyChargeFailed(t *testing.T) {
	svc, store, _ := setupPaymentTest("failed")

	payment, _, err := svc.InitializeCharge(context.Background(), "testpay", "buyer@test", "Buyer", 50_00)
	require.NoError(t, err)

	result, err := svc.VerifyCharge(context.Background(), payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, result.Status)
	assert.Zero(t, store.balances["buyer@test"])
}

func webhookBody(reference, status string) []byte {
	return []byte(fmt.Sprintf(`{"event":"charge.completed","data":{"reference":%q,"status":%q}}`, reference, status))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc, store, _ := setupPaymentTest("successful")

	payment, _, err := svc.InitializeCharge(context.Background(), "testpay", "buyer@test", "Buyer", 50_00)
	require.NoError(t, err)

	err = svc.HandleWebhook(context.Background(), "testpay", "wrong-sig", webhookBody(payment.Reference, "successful"))
	assert.ErrorIs(t, err, apperror.ErrInvalidSignature)
	assert.Zero(t, store.balances["buyer@test"])
}

func TestWebhookSettlesExactlyOnce(t *testing.T) {
	svc, store, _ := setupPaymentTest("successful")

	payment, _, err := svc.InitializeCharge(context.Background(), "testpay", "buyer@test", "Buyer", 50_00)
	require.NoError(t, err)

	body := webhookBody(payment.Reference, "successful")
	require.NoError(t, svc.HandleWebhook(context.Background(), "testpay", "good-sig", body))
	assert.Equal(t, int64(50_00), store.balances["buyer@test"])

	// Replayed deliveries are dropped.
	require.NoError(t, svc.HandleWebhook(context.Background(), "testpay", "good-sig", body))
	require.NoError(t, svc.HandleWebhook(context.Background(), "testpay", "good-sig", body))
	assert.Equal(t, int64(50_00), store.balances["buyer@test"])
}

func TestWebhookFailedStatus(t *testing.T) {
	svc, store, _ := setupPaymentTest("successful")

	payment, _, err := svc.InitializeCharge(context.Background(), "testpay", "buyer@test", "Buyer", 50_00)
	require.NoError(t, err)

	err = svc.HandleWebhook(context.Background(), "testpay", "good-sig", webhookBody(payment.Reference, "failed"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, store.payments[payment.Reference].Status)
	assert.Zero(t, store.balances["buyer@test"])
}

func TestWebhookIgnoresUnknownStatus(t *testing.T) {
	svc, store, _ := setupPaymentTest("successful")

	payment, _, err := svc.InitializeCharge(context.Background(), "testpay", "buyer@test", "Buyer", 50_00)
	require.NoError(t, err)

	err = svc.HandleWebhook(context.Background(), "testpay", "good-sig", webhookBody(payment.Reference, "processing"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, store.payments[payment.Reference].Status)
}
