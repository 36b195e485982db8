package conversations

// TurnContext is everything the turn rule needs, loaded from the review
// row, the participant row (nil when unclaimed), and the last remaining
// message by message_order (nil when the thread is empty).
type TurnContext struct {
	ReviewBusinessID int64
	ReviewAnonymous  bool
	// ReviewCustomerID is the customer the review concerns, when known.
	// Nil for unclaimed reviews whose subject has no account yet.
	ReviewCustomerID *int64
	Participant      *Participant
	LastMessage      *Message
}

// CanRespond reports whether a user may post the next message.
//
// An anonymous review's author can never post into its own thread: a
// reply from the business would out the reviewer. Before a conversation
// exists only a customer may act, and only the specific customer the
// review concerns when that identity is known. Once a conversation
// exists the requester must be one of the two bound participants, and
// turns strictly alternate based on the author type of the last
// remaining message.
func CanRespond(tc TurnContext, userID int64, userType AuthorType) bool {
	if tc.ReviewAnonymous && userType == AuthorBusiness && userID == tc.ReviewBusinessID {
		return false
	}

	if tc.Participant == nil {
		if userType != AuthorCustomer {
			return false
		}
		if tc.ReviewCustomerID != nil {
			return *tc.ReviewCustomerID == userID
		}
		// subject identity unknown: any customer may start the claim
		return true
	}

	switch userType {
	case AuthorCustomer:
		if tc.Participant.CustomerID != userID {
			return false
		}
	case AuthorBusiness:
		if tc.Participant.BusinessID != userID {
			return false
		}
	default:
		return false
	}

	// Participant row without messages: the customer's first insert raced
	// or failed, so the customer still owes the opening message.
	if tc.LastMessage == nil {
		return userType == AuthorCustomer
	}

	return tc.LastMessage.AuthorType != userType
}
