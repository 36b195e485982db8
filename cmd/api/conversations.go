package main

import (
	"errors"
	"net/http"
	"strconv"

	"welp/internal/domain/conversations"
	"welp/internal/mailer"
	"welp/internal/notifications"
	"welp/internal/store"

	"github.com/go-chi/chi/v5"
)

type StartConversationPayload struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type AddMessagePayload struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type EditMessagePayload struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// getConversationHandler godoc
//
//	@Summary		Get a review's conversation
//	@Description	Returns every message in order. Only the two participants and admins can read it.
//	@Tags			conversations
//	@Produce		json
//	@Param			reviewID	path		int							true	"Review ID"
//	@Success		200			{array}		conversations.Message		"Messages"
//	@Failure		403			{object}	error						"Forbidden"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/conversation [get]
func (app *application) getConversationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	ctx := r.Context()

	participant, err := app.conversations.GetParticipant(ctx, reviewID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if participant == nil {
		app.notFoundResponse(w, r, conversations.ErrNoConversation)
		return
	}

	if user.Type != store.UserAdmin &&
		participant.CustomerID != user.ID && participant.BusinessID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	messages, err := app.conversations.GetMessages(ctx, reviewID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, messages); err != nil {
		app.internalServerError(w, r, err)
	}
}

// startConversationHandler godoc
//
//	@Summary		Respond to a review
//	@Description	Opens the conversation on a review. Only the customer the review is about can start it, and starting it claims the review for them.
//	@Tags			conversations
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int							true	"Review ID"
//	@Param			payload		body		StartConversationPayload	true	"First message"
//	@Success		201			{object}	map[string]int64			"Message created"
//	@Failure		400			{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		409			{object}	error						"Conversation already exists"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/conversation [post]
func (app *application) startConversationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	var payload StartConversationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	messageID, err := app.conversations.StartConversation(ctx, reviewID, user.ID, payload.Content)
	if err != nil {
		switch err {
		case conversations.ErrReviewGone:
			app.notFoundResponse(w, r, err)
		case conversations.ErrConversationExists:
			app.conflictResponse(w, r, err)
		case conversations.ErrNotParticipant:
			app.forbiddenResponse(w, r)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Tell the business their review got a response. Fire and forget.
	go app.notifyConversation(reviewID, user, notifications.ConversationStarted)

	if err := app.jsonResponse(w, http.StatusCreated, map[string]int64{"message_id": messageID}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// addMessageHandler godoc
//
//	@Summary		Add a message to a conversation
//	@Description	Appends a message. Participants strictly alternate: whoever wrote the last message has to wait for the other side.
//	@Tags			conversations
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int							true	"Review ID"
//	@Param			payload		body		AddMessagePayload			true	"Message"
//	@Success		201			{object}	map[string]int64			"Message created"
//	@Failure		403			{object}	error						"Not a participant"
//	@Failure		409			{object}	error						"Not your turn"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/conversation/messages [post]
func (app *application) addMessageHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	var payload AddMessagePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	authorType := conversations.AuthorCustomer
	if user.Type == store.UserBusiness {
		authorType = conversations.AuthorBusiness
	}

	ctx := r.Context()

	messageID, err := app.conversations.AddMessage(ctx, reviewID, user.ID, authorType, payload.Content)
	if err != nil {
		switch err {
		case conversations.ErrNoConversation:
			app.notFoundResponse(w, r, err)
		case conversations.ErrNotParticipant:
			app.forbiddenResponse(w, r)
		case conversations.ErrNotYourTurn:
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	go app.notifyConversation(reviewID, user, notifications.ConversationReply)

	if err := app.jsonResponse(w, http.StatusCreated, map[string]int64{"message_id": messageID}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// editMessageHandler godoc
//
//	@Summary		Edit a message
//	@Description	Edits a message's content. Ordering and turn state are unaffected.
//	@Tags			conversations
//	@Accept			json
//	@Param			reviewID	path	int					true	"Review ID"
//	@Param			messageID	path	int					true	"Message ID"
//	@Param			payload		body	EditMessagePayload	true	"New content"
//	@Success		204
//	@Failure		403	{object}	error	"Not the author"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/conversation/messages/{messageID} [patch]
func (app *application) editMessageHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid message ID"))
		return
	}

	var payload EditMessagePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.conversations.UpdateMessage(r.Context(), messageID, user.ID, payload.Content); err != nil {
		switch err {
		case conversations.ErrNotAuthor:
			app.forbiddenResponse(w, r)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteMessageHandler godoc
//
//	@Summary		Delete a message
//	@Description	Deletes a message the caller wrote. Remaining messages keep their order numbers.
//	@Tags			conversations
//	@Param			reviewID	path	int	true	"Review ID"
//	@Param			messageID	path	int	true	"Message ID"
//	@Success		204
//	@Failure		403	{object}	error	"Not the author"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/conversation/messages/{messageID} [delete]
func (app *application) deleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid message ID"))
		return
	}

	if err := app.conversations.DeleteMessage(r.Context(), messageID, user.ID); err != nil {
		switch err {
		case conversations.ErrNotAuthor:
			app.forbiddenResponse(w, r)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// notifyConversation pushes the update to the other participant and, for
// the business, sends an email fallback.
func (app *application) notifyConversation(reviewID int64, sender *store.User, event notifications.ConversationEvent) {
	ctx, cancel := detachedContext()
	defer cancel()

	participant, err := app.conversations.GetParticipant(ctx, reviewID)
	if err != nil || participant == nil {
		return
	}

	recipientID := participant.BusinessID
	if sender.ID == participant.BusinessID {
		recipientID = participant.CustomerID
	}

	senderName := sender.FullName()

	if err := notifications.SendConversationNotification(ctx, app.push, &app.store, recipientID, reviewID, event, senderName); err != nil {
		app.logger.Warnw("conversation push failed", "review_id", reviewID, "error", err)
	}

	recipient, err := app.store.Users.GetByID(ctx, recipientID)
	if err != nil {
		return
	}

	vars := struct {
		Username   string
		SenderName string
		Link       string
	}{
		Username:   recipient.FirstName,
		SenderName: senderName,
		Link:       app.config.frontendURL + "/reviews/" + strconv.FormatInt(reviewID, 10) + "/conversation",
	}

	if _, err := app.mailer.Send(mailer.ConversationTemplate, recipient.FirstName, recipient.Email, vars); err != nil {
		app.logger.Warnw("conversation email failed", "review_id", reviewID, "error", err)
	}
}
