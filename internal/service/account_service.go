package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
)

// Plan pricing in minor units and the listing credits each grants.
var planCatalog = map[string]struct {
	Price   int64
	Credits int
}{
	"basic":      {Price: 250_00, Credits: 5},
	"pro":        {Price: 500_00, Credits: 12},
	"business":   {Price: 1_000_00, Credits: 30},
	"enterprise": {Price: 2_000_00, Credits: 75},
}

// SettingsProvider yields the current platform settings.
type SettingsProvider interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// AccountService covers the profile and seller-upgrade operations.
type AccountService struct {
	accounts AccountStore
	settings SettingsProvider
}

func NewAccountService(accounts AccountStore, settings SettingsProvider) *AccountService {
	return &AccountService{accounts: accounts, settings: settings}
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.accounts.GetByEmail(ctx, email)
}

// BecomeSeller charges the registration fee from settings and upgrades
// the role.
func (s *AccountService) BecomeSeller(ctx context.Context, email string) (*models.Account, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.BecomeSeller(ctx, email, settings.RegistrationFee); err != nil {
		return nil, err
	}
	logger.Log.WithField("email", email).Info("account became seller")
	return s.accounts.GetByEmail(ctx, email)
}

// PurchasePlan debits the plan price and grants its listing credits.
// Only sellers can buy plans.
func (s *AccountService) PurchasePlan(ctx context.Context, email, plan string) (*models.Account, error) {
	entry, ok := planCatalog[plan]
	if !ok || !models.ValidPlans[plan] {
		return nil, apperror.BadRequest("unknown plan")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account.Role != models.RoleSeller && account.Role != models.RoleAdmin {
		return nil, apperror.ErrNotSeller
	}

	if err := s.accounts.PurchasePlan(ctx, email, plan, entry.Price, entry.Credits); err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{"email": email, "plan": plan}).Info("plan purchased")
	return s.accounts.GetByEmail(ctx, email)
}
