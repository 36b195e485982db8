package conversations

import (
	"errors"
	"time"
)

var (
	ErrConversationExists = errors.New("conversation already exists for this review")
	ErrNoConversation     = errors.New("no conversation exists for this review")
	ErrNotParticipant     = errors.New("user is not a participant in this conversation")
	ErrNotYourTurn        = errors.New("waiting for the other participant to respond")
	ErrNotAuthor          = errors.New("only the author can modify this message")
	ErrReviewGone         = errors.New("review not found or deleted")
)

type AuthorType string

const (
	AuthorBusiness AuthorType = "business"
	AuthorCustomer AuthorType = "customer"
)

// Participant binds exactly one customer and one business to a review's
// conversation. Created once, never reassigned.
type Participant struct {
	ID                      int64      `json:"id"`
	ReviewID                int64      `json:"review_id"`
	CustomerID              int64      `json:"customer_id"`
	BusinessID              int64      `json:"business_id"`
	FirstCustomerResponseAt *time.Time `json:"first_customer_response_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

// Message is one entry in a review's conversation. MessageOrder is
// assigned server-side, gapless and monotonic per review; it determines
// turn order, not wall-clock time.
type Message struct {
	ID           int64      `json:"id"`
	ReviewID     int64      `json:"review_id"`
	AuthorID     int64      `json:"author_id"`
	AuthorType   AuthorType `json:"author_type"`
	Content      string     `json:"content"`
	MessageOrder int        `json:"message_order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
