package models

import (
	"time"

	"github.com/google/uuid"
)

// Account roles.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Account statuses.
const (
	AccountStatusActive  = "active"
	AccountStatusBlocked = "blocked"
)

// Account is a marketplace user. The email is the business identifier;
// every ledger operation is keyed by it. Balance is kept in minor
// currency units (kobo) so arithmetic stays exact.
type Account struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Status       string     `db:"status" json:"status"`
	Balance      int64      `db:"balance" json:"balance"`
	SalesCredit  int        `db:"sales_credit" json:"sales_credit"`
	Plan         *string    `db:"plan" json:"plan,omitempty"`
	ReferralCode string     `db:"referral_code" json:"referral_code"`
	ReferredBy   *string    `db:"referred_by" json:"referred_by,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Session is a stored refresh-token session.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AccountID    uuid.UUID `db:"account_id" json:"account_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Subscription plans sellers can purchase for listing credits.
var ValidPlans = map[string]bool{
	"basic":      true,
	"pro":        true,
	"business":   true,
	"enterprise": true,
}
