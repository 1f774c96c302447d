package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ataurwd/vps-backend-server/internal/cache"
	"github.com/ataurwd/vps-backend-server/internal/events"
	"github.com/ataurwd/vps-backend-server/internal/gateway"
	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/metrics"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
	"github.com/ataurwd/vps-backend-server/internal/validation"
)

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	MarkSuccessful(ctx context.Context, reference string) (*models.Payment, error)
	MarkFailed(ctx context.Context, reference string) error
	ListByEmail(ctx context.Context, email string, limit, offset int) ([]models.Payment, error)
}

// ReplayGuard drops webhook deliveries already seen.
type ReplayGuard interface {
	FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

// PaymentService funds account balances through hosted gateway
// checkouts. A charge is credited to the ledger exactly once no matter
// how many times its webhook or verification callback arrives: replays
// are dropped at the redis guard first and at the payment row's status
// transition second.
type PaymentService struct {
	payments  PaymentStore
	providers map[string]gateway.Provider
	guard     ReplayGuard
	notifier  Notifier
	events    EventPublisher
	currency  string
}

func NewPaymentService(payments PaymentStore, providers []gateway.Provider, guard ReplayGuard, notifier Notifier, publisher EventPublisher) *PaymentService {
	byName := make(map[string]gateway.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &PaymentService{
		payments:  payments,
		providers: byName,
		guard:     guard,
		notifier:  notifier,
		events:    publisher,
		currency:  "NGN",
	}
}

// InitializeCharge creates a pending payment and returns the hosted
// checkout link.
func (s *PaymentService) InitializeCharge(ctx context.Context, providerName, email, name string, amount int64) (*models.Payment, string, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, "", apperror.BadRequest("unknown payment provider")
	}
	if !validation.Amount(amount) {
		return nil, "", apperror.BadRequest("amount must be positive")
	}

	payment := &models.Payment{
		Reference: "mp_" + uuid.NewString(),
		Provider:  providerName,
		Email:     email,
		Name:      name,
		Amount:    amount,
		Currency:  s.currency,
		Status:    models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, "", err
	}

	charge, err := provider.CreateCharge(ctx, gateway.ChargeRequest{
		Reference: payment.Reference,
		Email:     email,
		Name:      name,
		Amount:    amount,
		Currency:  s.currency,
	})
	if err != nil {
		return nil, "", err
	}

	return payment, charge.CheckoutURL, nil
}

// VerifyCharge asks the gateway for the charge outcome and settles the
// payment accordingly. Safe to call repeatedly.
func (s *PaymentService) VerifyCharge(ctx context.Context, reference string) (*models.Payment, error) {
	payment, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusPending {
		return payment, nil
	}

	provider, ok := s.providers[payment.Provider]
	if !ok {
		return nil, apperror.Internal("payment provider not configured", nil)
	}

	status, err := provider.VerifyCharge(ctx, reference)
	if err != nil {
		return nil, err
	}

	if !status.Successful {
		if status.Status == "failed" {
			if err := s.payments.MarkFailed(ctx, reference); err != nil {
				return nil, err
			}
			metrics.PaymentsTotal.WithLabelValues(payment.Provider, models.PaymentStatusFailed).Inc()
		}
		return s.payments.GetByReference(ctx, reference)
	}

	return s.settle(ctx, payment.Provider, reference)
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		TxRef     string `json:"tx_ref"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// HandleWebhook processes a gateway delivery: signature check, replay
// guard, then settlement.
func (s *PaymentService) HandleWebhook(ctx context.Context, providerName, signature string, body []byte) error {
	provider, ok := s.providers[providerName]
	if !ok {
		return apperror.BadRequest("unknown payment provider")
	}
	if !provider.VerifyWebhook(signature, body) {
		return apperror.ErrInvalidSignature
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperror.BadRequest("malformed webhook body")
	}
	reference := payload.Data.TxRef
	if reference == "" {
		reference = payload.Data.Reference
	}
	if reference == "" {
		return apperror.BadRequest("webhook has no reference")
	}

	key := cache.PaymentDedupKey(reference)
	if s.guard != nil {
		first, err := s.guard.FirstSeen(ctx, key, cache.PaymentDedupTTL)
		if err != nil {
			// Redis being down must not drop real payments; the
			// payment row transition still dedupes.
			logger.Log.WithError(err).Warn("replay guard unavailable")
		} else if !first {
			metrics.WebhookDuplicatesTotal.WithLabelValues(providerName).Inc()
			return nil
		}
	}

	switch payload.Data.Status {
	case "successful", "success":
		if _, err := s.settle(ctx, providerName, reference); err != nil {
			if s.guard != nil {
				if forgetErr := s.guard.Forget(ctx, key); forgetErr != nil {
					logger.Log.WithError(forgetErr).Warn("replay guard forget failed")
				}
			}
			return err
		}
		return nil
	case "failed":
		if err := s.payments.MarkFailed(ctx, reference); err != nil {
			return err
		}
		metrics.PaymentsTotal.WithLabelValues(providerName, models.PaymentStatusFailed).Inc()
		return nil
	default:
		logger.Log.WithFields(logrus.Fields{
			"provider": providerName,
			"event":    payload.Event,
			"status":   payload.Data.Status,
		}).Debug("ignoring webhook status")
		return nil
	}
}

func (s *PaymentService) settle(ctx context.Context, providerName, reference string) (*models.Payment, error) {
	payment, err := s.payments.MarkSuccessful(ctx, reference)
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicatePayment) {
			metrics.WebhookDuplicatesTotal.WithLabelValues(providerName).Inc()
			return s.payments.GetByReference(ctx, reference)
		}
		return nil, err
	}

	metrics.PaymentsTotal.WithLabelValues(providerName, models.PaymentStatusSuccessful).Inc()
	if s.events != nil {
		s.events.Publish(reference, events.TypePaymentSettled, events.PaymentEvent{
			Reference: payment.Reference,
			Provider:  payment.Provider,
			Email:     payment.Email,
			Amount:    payment.Amount,
			Status:    payment.Status,
		})
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, payment.Email, nil, "payment_settled", payment)
	}

	logger.Log.WithFields(logrus.Fields{
		"reference": reference,
		"provider":  providerName,
		"amount":    payment.Amount,
	}).Info("payment settled")
	return payment, nil
}

func (s *PaymentService) History(ctx context.Context, email string, limit, offset int) ([]models.Payment, error) {
	return s.payments.ListByEmail(ctx, email, limit, offset)
}
