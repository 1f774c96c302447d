package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// ChargeRequest initializes a hosted checkout. Amount is in minor
// currency units.
type ChargeRequest struct {
	Reference string
	Email     string
	Name      string
	Amount    int64
	Currency  string
}

// Charge is the gateway's answer to an initialization: where to send
// the payer.
type Charge struct {
	Reference   string
	CheckoutURL string
}

// ChargeStatus is the result of a verification call.
type ChargeStatus struct {
	Reference  string
	Status     string
	Amount     int64
	Currency   string
	Successful bool
}

// Provider is one hosted-checkout payment gateway.
type Provider interface {
	Name() string
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	VerifyCharge(ctx context.Context, reference string) (*ChargeStatus, error)
	// VerifyWebhook checks the delivery signature before the body is
	// trusted.
	VerifyWebhook(signature string, body []byte) bool
}

func hmacSHA256Hex(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
