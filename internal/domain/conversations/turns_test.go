package conversations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	businessID = int64(10)
	customerID = int64(20)
	strangerID = int64(30)
)

func boundParticipant() *Participant {
	return &Participant{ID: 1, ReviewID: 1, CustomerID: customerID, BusinessID: businessID}
}

func lastFrom(at AuthorType) *Message {
	return &Message{AuthorType: at, MessageOrder: 3}
}

func TestAnonymousAuthorCanNeverRespond(t *testing.T) {
	tc := TurnContext{
		ReviewBusinessID: businessID,
		ReviewAnonymous:  true,
		Participant:      boundParticipant(),
	}

	// regardless of message history
	for _, last := range []*Message{nil, lastFrom(AuthorCustomer), lastFrom(AuthorBusiness)} {
		tc.LastMessage = last
		assert.False(t, CanRespond(tc, businessID, AuthorBusiness))
	}

	// the bound customer is unaffected by the anonymity flag
	tc.LastMessage = lastFrom(AuthorBusiness)
	assert.True(t, CanRespond(tc, customerID, AuthorCustomer))
}

func TestNoConversationOnlyCustomerMayStart(t *testing.T) {
	tc := TurnContext{ReviewBusinessID: businessID}

	assert.False(t, CanRespond(tc, businessID, AuthorBusiness))
	// subject unknown: any customer may start
	assert.True(t, CanRespond(tc, strangerID, AuthorCustomer))

	// subject known: only that customer
	subject := customerID
	tc.ReviewCustomerID = &subject
	assert.True(t, CanRespond(tc, customerID, AuthorCustomer))
	assert.False(t, CanRespond(tc, strangerID, AuthorCustomer))
}

func TestStrictAlternation(t *testing.T) {
	tc := TurnContext{
		ReviewBusinessID: businessID,
		Participant:      boundParticipant(),
	}

	// messages [customer, business, customer]: only the business may post
	tc.LastMessage = lastFrom(AuthorCustomer)
	assert.True(t, CanRespond(tc, businessID, AuthorBusiness))
	assert.False(t, CanRespond(tc, customerID, AuthorCustomer))

	// after the business replies the turn flips back
	tc.LastMessage = lastFrom(AuthorBusiness)
	assert.True(t, CanRespond(tc, customerID, AuthorCustomer))
	assert.False(t, CanRespond(tc, businessID, AuthorBusiness))
}

func TestNonParticipantsRejected(t *testing.T) {
	tc := TurnContext{
		ReviewBusinessID: businessID,
		Participant:      boundParticipant(),
		LastMessage:      lastFrom(AuthorCustomer),
	}

	assert.False(t, CanRespond(tc, strangerID, AuthorBusiness))
	assert.False(t, CanRespond(tc, strangerID, AuthorCustomer))
}

func TestParticipantRowWithoutMessages(t *testing.T) {
	// participant created but the first message insert raced or failed:
	// the customer still owes the opening message
	tc := TurnContext{
		ReviewBusinessID: businessID,
		Participant:      boundParticipant(),
	}

	assert.True(t, CanRespond(tc, customerID, AuthorCustomer))
	assert.False(t, CanRespond(tc, businessID, AuthorBusiness))
}
