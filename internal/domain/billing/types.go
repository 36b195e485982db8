package billing

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrEventSeen       = errors.New("webhook event already processed")
)

type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
)

// CheckoutSession tracks one credit purchase from checkout creation to
// webhook confirmation. ProviderRef is the payment provider's session id.
type CheckoutSession struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	ProviderRef string        `json:"provider_ref"`
	Credits     int           `json:"credits"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
