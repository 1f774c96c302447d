package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ataurwd/vps-backend-server/internal/models"
)

// Flutterwave talks to the Flutterwave v3 hosted payments API.
type Flutterwave struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	redirectURL string
}

func NewFlutterwave(baseURL, secretKey, redirectURL string) *Flutterwave {
	return &Flutterwave{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		secretKey:   secretKey,
		redirectURL: redirectURL,
	}
}

func (f *Flutterwave) Name() string { return models.ProviderFlutterwave }

type flwPaymentRequest struct {
	TxRef       string      `json:"tx_ref"`
	Amount      string      `json:"amount"`
	Currency    string      `json:"currency"`
	RedirectURL string      `json:"redirect_url"`
	Customer    flwCustomer `json:"customer"`
}

type flwCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type flwResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *Flutterwave) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	payload := flwPaymentRequest{
		TxRef:       req.Reference,
		Amount:      minorToMajor(req.Amount),
		Currency:    req.Currency,
		RedirectURL: f.redirectURL,
		Customer:    flwCustomer{Email: req.Email, Name: req.Name},
	}

	var resp flwResponse
	if err := f.do(ctx, http.MethodPost, "/payments", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("flutterwave: create charge: %s", resp.Message)
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("flutterwave: create charge: decode data: %w", err)
	}

	return &Charge{Reference: req.Reference, CheckoutURL: data.Link}, nil
}

func (f *Flutterwave) VerifyCharge(ctx context.Context, reference string) (*ChargeStatus, error) {
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)

	var resp flwResponse
	if err := f.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("flutterwave: verify: %s", resp.Message)
	}

	var data struct {
		TxRef    string  `json:"tx_ref"`
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("flutterwave: verify: decode data: %w", err)
	}

	return &ChargeStatus{
		Reference:  data.TxRef,
		Status:     data.Status,
		Amount:     majorToMinor(data.Amount),
		Currency:   data.Currency,
		Successful: data.Status == "successful",
	}, nil
}

// VerifyWebhook compares the verif-hash header against the configured
// secret hash.
func (f *Flutterwave) VerifyWebhook(signature string, _ []byte) bool {
	return signature != "" && constantTimeEqual(signature, f.secretKey)
}

func (f *Flutterwave) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("flutterwave: encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("flutterwave: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("flutterwave: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("flutterwave: %s %s: status %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("flutterwave: decode response: %w", err)
	}
	return nil
}
