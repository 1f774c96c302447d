package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ataurwd/vps-backend-server/internal/models"
)

// Korapay talks to the Korapay merchant charges API.
type Korapay struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	redirectURL string
}

func NewKorapay(baseURL, secretKey, redirectURL string) *Korapay {
	return &Korapay{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		secretKey:   secretKey,
		redirectURL: redirectURL,
	}
}

func (k *Korapay) Name() string { return models.ProviderKorapay }

type koraChargeRequest struct {
	Reference   string       `json:"reference"`
	Amount      string       `json:"amount"`
	Currency    string       `json:"currency"`
	RedirectURL string       `json:"redirect_url"`
	Customer    koraCustomer `json:"customer"`
}

type koraCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type koraResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (k *Korapay) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	payload := koraChargeRequest{
		Reference:   req.Reference,
		Amount:      minorToMajor(req.Amount),
		Currency:    req.Currency,
		RedirectURL: k.redirectURL,
		Customer:    koraCustomer{Email: req.Email, Name: req.Name},
	}

	var resp koraResponse
	if err := k.do(ctx, http.MethodPost, "/charges/initialize", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("korapay: create charge: %s", resp.Message)
	}

	var data struct {
		CheckoutURL string `json:"checkout_url"`
		Reference   string `json:"reference"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("korapay: create charge: decode data: %w", err)
	}

	return &Charge{Reference: req.Reference, CheckoutURL: data.CheckoutURL}, nil
}

func (k *Korapay) VerifyCharge(ctx context.Context, reference string) (*ChargeStatus, error) {
	var resp koraResponse
	if err := k.do(ctx, http.MethodGet, "/charges/"+reference, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("korapay: verify: %s", resp.Message)
	}

	var data struct {
		Reference string  `json:"reference"`
		Status    string  `json:"status"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("korapay: verify: decode data: %w", err)
	}

	return &ChargeStatus{
		Reference:  data.Reference,
		Status:     data.Status,
		Amount:     majorToMinor(data.Amount),
		Currency:   data.Currency,
		Successful: data.Status == "success",
	}, nil
}

// VerifyWebhook checks the x-korapay-signature header, an HMAC-SHA256
// of the raw body keyed with the secret.
func (k *Korapay) VerifyWebhook(signature string, body []byte) bool {
	if signature == "" {
		return false
	}
	return constantTimeEqual(signature, hmacSHA256Hex(k.secretKey, body))
}

func (k *Korapay) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("korapay: encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, k.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("korapay: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+k.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("korapay: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("korapay: %s %s: status %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("korapay: decode response: %w", err)
	}
	return nil
}

// minorToMajor renders a minor-unit amount as a decimal string the
// gateways expect.
func minorToMajor(amount int64) string {
	return strconv.FormatInt(amount/100, 10) + "." + fmt.Sprintf("%02d", amount%100)
}

func majorToMinor(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
