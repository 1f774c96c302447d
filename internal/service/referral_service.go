package service

import (
	"context"

	"github.com/ataurwd/vps-backend-server/internal/models"
)

// ReferralStats is what an account sees about its referral program.
type ReferralStats struct {
	ReferralCode string           `json:"referral_code"`
	Referred     []models.Account `json:"referred"`
	Count        int              `json:"count"`
	TotalEarned  int64            `json:"total_earned"`
}

// ReferralService reports referral earnings. The bonus itself is
// credited at registration time by the auth service.
type ReferralService struct {
	accounts AccountStore
	bonus    int64
}

func NewReferralService(accounts AccountStore, bonus int64) *ReferralService {
	return &ReferralService{accounts: accounts, bonus: bonus}
}

func (s *ReferralService) Stats(ctx context.Context, email string) (*ReferralStats, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	referred, err := s.accounts.ListReferred(ctx, account.ReferralCode)
	if err != nil {
		return nil, err
	}

	return &ReferralStats{
		ReferralCode: account.ReferralCode,
		Referred:     referred,
		Count:        len(referred),
		TotalEarned:  int64(len(referred)) * s.bonus,
	}, nil
}
