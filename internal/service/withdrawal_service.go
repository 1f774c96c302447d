package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
	"github.com/ataurwd/vps-backend-server/internal/validation"
)

type WithdrawalStore interface {
	Create(ctx context.Context, w *models.Withdrawal) error
	GetByID(ctx context.Context, id string) (*models.Withdrawal, error)
	ListByAccount(ctx context.Context, email string, limit, offset int) ([]models.Withdrawal, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]models.Withdrawal, error)
	MarkProcessing(ctx context.Context, id string) (*models.Withdrawal, error)
	Complete(ctx context.Context, id string) (*models.Withdrawal, error)
	Reject(ctx context.Context, id, reason string) (*models.Withdrawal, error)
}

// WithdrawalService handles payout requests. The amount is held back
// from the balance when the request is filed; rejection returns it.
type WithdrawalService struct {
	withdrawals WithdrawalStore
	notifier    Notifier
}

func NewWithdrawalService(withdrawals WithdrawalStore, notifier Notifier) *WithdrawalService {
	return &WithdrawalService{withdrawals: withdrawals, notifier: notifier}
}

func (s *WithdrawalService) Request(ctx context.Context, email string, amount int64, bankName, accountNumber string) (*models.Withdrawal, error) {
	if !validation.Amount(amount) {
		return nil, apperror.BadRequest("amount must be positive")
	}
	if bankName == "" || accountNumber == "" {
		return nil, apperror.BadRequest("bank details are required")
	}

	w := &models.Withdrawal{
		AccountEmail:  email,
		Amount:        amount,
		BankName:      &bankName,
		AccountNumber: &accountNumber,
	}
	if err := s.withdrawals.Create(ctx, w); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{"withdrawal_id": w.ID, "email": email}).Info("withdrawal requested")
	return w, nil
}

// MarkProcessing moves a request into the payout queue. Admin only.
func (s *WithdrawalService) MarkProcessing(ctx context.Context, actorRole, id string) (*models.Withdrawal, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.withdrawals.MarkProcessing(ctx, id)
}

// Complete marks a payout as done. Admin only.
func (s *WithdrawalService) Complete(ctx context.Context, actorRole, id string) (*models.Withdrawal, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	w, err := s.withdrawals.Complete(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, w.AccountEmail, nil, "withdrawal_completed", w)
	}
	return w, nil
}

// Reject refuses a payout and returns the held amount. Admin only.
func (s *WithdrawalService) Reject(ctx context.Context, actorRole, id, reason string) (*models.Withdrawal, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	if reason == "" {
		return nil, apperror.BadRequest("rejection reason is required")
	}
	w, err := s.withdrawals.Reject(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, w.AccountEmail, nil, "withdrawal_rejected", w)
	}
	return w, nil
}

func (s *WithdrawalService) ListMine(ctx context.Context, email string, limit, offset int) ([]models.Withdrawal, error) {
	return s.withdrawals.ListByAccount(ctx, email, limit, offset)
}

func (s *WithdrawalService) ListAll(ctx context.Context, actorRole, status string, limit, offset int) ([]models.Withdrawal, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.withdrawals.ListAll(ctx, status, limit, offset)
}
