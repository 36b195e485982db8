package claims

import (
	"errors"
	"time"
)

var ErrAlreadyClaimed = errors.New("review already claimed")

type ClaimType string

const (
	TypeDirect       ClaimType = "direct_claim"
	TypeCreditUnlock ClaimType = "credit_unlock"
	TypeConversation ClaimType = "conversation"
	TypeSubscription ClaimType = "subscription_response"
)

// Claim links a review to the customer account claiming to be its
// subject. At most one claim exists per review, enforced by a unique
// index on review_id.
type Claim struct {
	ID        int64     `json:"id"`
	ReviewID  int64     `json:"review_id"`
	ClaimedBy int64     `json:"claimed_by"`
	ClaimType ClaimType `json:"claim_type"`
	ClaimedAt time.Time `json:"claimed_at"`
}
