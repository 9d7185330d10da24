package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus enumerates the lifecycle states of a sending email account.
type AccountStatus string

const (
	AccountActive     AccountStatus = "active"
	AccountUnverified AccountStatus = "unverified"
	AccountDisabled   AccountStatus = "disabled"
)

// EmailAccount is a sender identity owned by a user: the From address used
// on outbound mail, its display name, and daily volume cap.
type EmailAccount struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	UserID      uuid.UUID     `json:"user_id" db:"user_id"`
	Address     string        `json:"address" db:"address"`
	DisplayName string        `json:"display_name" db:"display_name"`
	ReplyTo     string        `json:"reply_to,omitempty" db:"reply_to"`
	Signature   string        `json:"signature,omitempty" db:"signature"`
	DailyLimit  int           `json:"daily_limit" db:"daily_limit"`
	SentToday   int           `json:"sent_today" db:"sent_today"`
	IsDefault   bool          `json:"is_default" db:"is_default"`
	Status      AccountStatus `json:"status" db:"status"`
	VerifiedAt  *time.Time    `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// CanSend reports whether the account may send right now.
func (a *EmailAccount) CanSend() bool {
	return a.Status == AccountActive && (a.DailyLimit == 0 || a.SentToday < a.DailyLimit)
}
