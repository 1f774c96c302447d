package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ataurwd/vps-backend-server/internal/logger"
	"github.com/ataurwd/vps-backend-server/internal/models"
	"github.com/ataurwd/vps-backend-server/internal/pkg/apperror"
	"github.com/ataurwd/vps-backend-server/internal/validation"
)

// AccountStore is the account ledger surface the services depend on.
type AccountStore interface {
	Create(ctx context.Context, a *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByReferralCode(ctx context.Context, code string) (*models.Account, error)
	Credit(ctx context.Context, email string, amount int64) error
	Debit(ctx context.Context, email string, amount int64) error
	BecomeSeller(ctx context.Context, email string, fee int64) error
	PurchasePlan(ctx context.Context, email, plan string, price int64, credits int) error
	UpdateLastLogin(ctx context.Context, email string) error
	ListReferred(ctx context.Context, code string) ([]models.Account, error)
	CreateSession(ctx context.Context, s *models.Session) error
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles registration, login and the refresh-token
// session lifecycle.
type AuthService struct {
	accounts      AccountStore
	tokens        *TokenManager
	referralBonus int64
}

func NewAuthService(accounts AccountStore, tokens *TokenManager, referralBonus int64) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, referralBonus: referralBonus}
}

// Register creates a buyer account with a zero balance. When a valid
// referral code is supplied the referrer is credited the bonus.
func (s *AuthService) Register(ctx context.Context, email, name, password, referralCode string) (*models.Account, error) {
	if !validation.Email(email) {
		return nil, apperror.BadRequest("invalid email")
	}
	if !validation.Name(name) {
		return nil, apperror.BadRequest("invalid name")
	}
	if !validation.Password(password) {
		return nil, apperror.BadRequest("password must be at least 8 characters")
	}

	var referrer *models.Account
	if referralCode != "" {
		var err error
		referrer, err = s.accounts.GetByReferralCode(ctx, referralCode)
		if err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	account := &models.Account{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleBuyer,
		Balance:      0,
		ReferralCode: newReferralCode(),
	}
	if referrer != nil {
		account.ReferredBy = &referrer.ReferralCode
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	if referrer != nil && s.referralBonus > 0 {
		if err := s.accounts.Credit(ctx, referrer.Email, s.referralBonus); err != nil {
			logger.Log.WithError(err).WithField("referrer", referrer.Email).
				Error("referral bonus credit failed")
		}
	}

	logger.Log.WithField("email", account.Email).Info("account registered")
	return account, nil
}

// Login checks the credentials and opens a refresh session.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ip string) (*models.Account, *TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrAccountNotFound) {
			return nil, nil, apperror.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if account.Status == models.AccountStatusBlocked {
		return nil, nil, apperror.Forbidden("account is blocked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperror.ErrInvalidCredentials
	}

	pair, err := s.openSession(ctx, account, userAgent, ip)
	if err != nil {
		return nil, nil, err
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.Email); err != nil {
		logger.Log.WithError(err).Warn("update last login failed")
	}
	return account, pair, nil
}

// Refresh rotates the session: the presented token is deleted and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	session, err := s.accounts.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByID(ctx, session.AccountID.String())
	if err != nil {
		return nil, err
	}
	if err := s.accounts.DeleteSession(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.openSession(ctx, account, "", "")
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.accounts.DeleteSession(ctx, refreshToken)
}

func (s *AuthService) openSession(ctx context.Context, account *models.Account, userAgent, ip string) (*TokenPair, error) {
	access, err := s.tokens.NewAccessToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, err
	}
	refresh, expiresAt := s.tokens.NewRefreshToken()

	session := &models.Session{
		AccountID:    account.ID,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}
	if userAgent != "" {
		session.UserAgent = &userAgent
	}
	if ip != "" {
		session.IPAddress = &ip
	}
	if err := s.accounts.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func newReferralCode() string {
	var b [6]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
