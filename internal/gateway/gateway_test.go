package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKorapayWebhookSignature(t *testing.T) {
	k := NewKorapay("http://unused", "secret-key", "http://callback")
	body := []byte(`{"event":"charge.success","data":{"reference":"mp_1","status":"success"}}`)

	mac := hmac.New(sha256.New, []byte("secret-key"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, k.VerifyWebhook(good, body))
	assert.False(t, k.VerifyWebhook("deadbeef", body))
	assert.False(t, k.VerifyWebhook("", body))
}

func TestFlutterwaveWebhookSignature(t *testing.T) {
	f := NewFlutterwave("http://unused", "verif-secret", "http://callback")

	assert.True(t, f.VerifyWebhook("verif-secret", nil))
	assert.False(t, f.VerifyWebhook("wrong", nil))
	assert.False(t, f.VerifyWebhook("", nil))
}

func TestFlutterwaveCreateCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"ok","data":{"link":"https://pay.test/abc"}}`))
	}))
	defer srv.Close()

	f := NewFlutterwave(srv.URL, "sk_test", "http://callback")
	charge, err := f.CreateCharge(context.Background(), ChargeRequest{
		Reference: "mp_1",
		Email:     "buyer@test",
		Name:      "Buyer",
		Amount:    150_00,
		Currency:  "NGN",
	})
	require.NoError(t, err)
	assert.Equal(t, "mp_1", charge.Reference)
	assert.Equal(t, "https://pay.test/abc", charge.CheckoutURL)
}

func TestFlutterwaveVerifyCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/verify_by_reference", r.URL.Path)
		assert.Equal(t, "mp_1", r.URL.Query().Get("tx_ref"))
		w.Write([]byte(`{"status":"success","data":{"tx_ref":"mp_1","status":"successful","amount":150,"currency":"NGN"}}`))
	}))
	defer srv.Close()

	f := NewFlutterwave(srv.URL, "sk_test", "http://callback")
	status, err := f.VerifyCharge(context.Background(), "mp_1")
	require.NoError(t, err)
	assert.True(t, status.Successful)
	assert.Equal(t, int64(150_00), status.Amount)
}

func TestKorapayCreateChargeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"invalid amount"}`))
	}))
	defer srv.Close()

	k := NewKorapay(srv.URL, "sk_test", "http://callback")
	_, err := k.CreateCharge(context.Background(), ChargeRequest{Reference: "mp_2", Amount: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestMinorToMajor(t *testing.T) {
	assert.Equal(t, "150.00", minorToMajor(150_00))
	assert.Equal(t, "0.05", minorToMajor(5))
	assert.Equal(t, "12.34", minorToMajor(12_34))
}
