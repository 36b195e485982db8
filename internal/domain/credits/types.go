package credits

import (
	"errors"
	"time"
)

var ErrInsufficientCredits = errors.New("insufficient credits")

type TransactionType string

const (
	TypePurchase TransactionType = "purchase"
	TypeUsage    TransactionType = "usage"
	TypeRefund   TransactionType = "refund"
)

// Transaction is one signed entry in the append-only ledger. The balance
// row always equals the sum of a user's transactions; both are written in
// the same database transaction.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      int             `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description,omitempty"`
	SessionRef  *string         `json:"session_ref,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
