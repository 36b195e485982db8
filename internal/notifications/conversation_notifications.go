package notifications

import (
	"context"
	"errors"
	"fmt"

	"welp/internal/store"

	"github.com/9ssi7/exponent"
)

type ConversationEvent string

const (
	ConversationStarted ConversationEvent = "STARTED"
	ConversationReply   ConversationEvent = "REPLY"
)

// SendConversationNotification pushes a conversation update to every
// device of the recipient. Callers run this in the background; a user
// with no registered tokens is not an error worth surfacing.
func SendConversationNotification(ctx context.Context, push PushSender, storage *store.Storage, recipientID, reviewID int64, event ConversationEvent, senderName string) error {
	tokensMap, err := storage.PushTokens.GetByUserIDs(ctx, []int64{recipientID})
	if err != nil {
		return err
	}
	tokens := tokensMap[recipientID]
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	var title, body string
	switch event {
	case ConversationStarted:
		title = "New Conversation"
		body = fmt.Sprintf("%s responded to your review", senderName)
	case ConversationReply:
		title = "New Reply"
		body = fmt.Sprintf("%s replied in your conversation", senderName)
	default:
		title = "Conversation Update"
		body = "Your conversation has an update"
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":     "conversation",
				"event":    string(event),
				"reviewId": fmt.Sprintf("%d", reviewID),
				"screen":   "conversation-screen",
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}

// SendMatchNotification tells a customer a review looks like it is
// about them.
func SendMatchNotification(ctx context.Context, push PushSender, storage *store.Storage, customerID, reviewID int64, businessName string) error {
	tokensMap, err := storage.PushTokens.GetByUserIDs(ctx, []int64{customerID})
	if err != nil {
		return err
	}
	tokens := tokensMap[customerID]
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: "A business reviewed you",
			Body:  fmt.Sprintf("%s posted a review that may be about you", businessName),
			Data: map[string]string{
				"type":     "match",
				"reviewId": fmt.Sprintf("%d", reviewID),
				"screen":   "matched-reviews-screen",
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}
