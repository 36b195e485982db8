package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"welp/internal/domain/billing"
	"welp/internal/domain/credits"
	"welp/internal/payments"

	"github.com/google/uuid"
)

type CreateCheckoutPayload struct {
	Credits int `json:"credits" validate:"required,min=1,max=100"`
}

// createCheckoutHandler godoc
//
//	@Summary		Buy credits
//	@Description	Opens a hosted checkout session for a credit pack and records it as pending
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateCheckoutPayload		true	"Credit pack"
//	@Success		201		{object}	map[string]string			"Checkout URL"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/payments/checkout [post]
func (app *application) createCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateCheckoutPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	amountCents := int64(payload.Credits) * app.config.credits.pricePerCredit

	ctx := r.Context()

	checkout, err := app.gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		ReferenceID:   uuid.New().String(),
		AmountCents:   amountCents,
		Currency:      app.config.credits.currency,
		ProductName:   fmt.Sprintf("%d Welp credits", payload.Credits),
		CustomerEmail: user.Email,
		SuccessURL:    app.config.frontendURL + "/credits/success",
		CancelURL:     app.config.frontendURL + "/credits/cancel",
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	session := &billing.CheckoutSession{
		UserID:      user.ID,
		ProviderRef: checkout.ProviderRef,
		Credits:     payload.Credits,
		AmountCents: amountCents,
		Currency:    app.config.credits.currency,
		Status:      billing.StatusPending,
	}
	if err := app.billing.CreateSession(ctx, session); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]string{
		"provider_ref": checkout.ProviderRef,
		"payment_url":  checkout.PaymentURL,
	}

	if err := app.jsonResponse(w, http.StatusCreated, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ConfirmCheckoutPayload struct {
	ProviderRef string `json:"provider_ref" validate:"required"`
}

// confirmCheckoutHandler godoc
//
//	@Summary		Confirm a checkout
//	@Description	Verifies payment state with the provider and credits the account. Safe to call repeatedly; credits are granted at most once per session.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ConfirmCheckoutPayload		true	"Session reference"
//	@Success		200		{object}	map[string]any				"Result"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/payments/confirm [post]
func (app *application) confirmCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload ConfirmCheckoutPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	session, err := app.billing.GetSessionByProviderRef(ctx, payload.ProviderRef)
	if err != nil {
		switch err {
		case billing.ErrSessionNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if session.UserID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if session.Status != billing.StatusPending {
		if err := app.jsonResponse(w, http.StatusOK, map[string]any{"status": session.Status}); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	result, err := app.gateway.VerifyPayment(ctx, payments.VerifyRequest{ProviderRef: payload.ProviderRef})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if !result.Success {
		if result.Terminal {
			if err := app.billing.MarkSessionStatus(ctx, payload.ProviderRef, billing.StatusFailed); err != nil {
				app.logger.Errorw("marking session failed", "error", err)
			}
		}
		if err := app.jsonResponse(w, http.StatusOK, map[string]any{"status": "pending", "state": result.State}); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	balance, err := app.settleSession(r, session)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]any{"status": "completed", "balance": balance}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// settleSession flips the session out of pending and applies the credit
// purchase. The status flip is the idempotency gate: only the caller that
// wins it credits the account. If the ledger write then fails the flip is
// undone, so a later retry can still settle instead of short-circuiting
// on a completed-but-never-credited session.
func (app *application) settleSession(r *http.Request, session *billing.CheckoutSession) (int, error) {
	ctx := r.Context()

	if err := app.billing.MarkSessionStatus(ctx, session.ProviderRef, billing.StatusCompleted); err != nil {
		if errors.Is(err, billing.ErrSessionNotFound) {
			// Someone else settled it first.
			return app.credits.GetBalance(ctx, session.UserID)
		}
		return 0, err
	}

	ref := session.ProviderRef
	description := fmt.Sprintf("purchase of %d credits", session.Credits)
	balance, err := app.credits.Apply(ctx, session.UserID, session.Credits, credits.TypePurchase, description, &ref)
	if err != nil {
		if rerr := app.billing.ReopenSession(ctx, session.ProviderRef); rerr != nil {
			app.logger.Errorw("reopening session after failed credit grant",
				"provider_ref", session.ProviderRef, "error", rerr)
		}
		return 0, err
	}
	return balance, nil
}

// paymentWebhookHandler godoc
//
//	@Summary		Payment provider webhook
//	@Description	Receives signed provider events. Events are deduplicated by id, so provider retries are harmless.
//	@Tags			payments
//	@Accept			json
//	@Success		200
//	@Failure		400	{object}	ErrorBadRequestResponse	"Bad signature or payload"
//	@Router			/payments/webhook [post]
func (app *application) paymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	event, err := app.gateway.ParseWebhook(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	if err := app.billing.RecordWebhookEvent(ctx, event.ID, event.Type); err != nil {
		if errors.Is(err, billing.ErrEventSeen) {
			w.WriteHeader(http.StatusOK)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		session, err := app.billing.GetSessionByProviderRef(ctx, event.ProviderRef)
		if err != nil {
			if errors.Is(err, billing.ErrSessionNotFound) {
				app.logger.Warnw("webhook for unknown session", "provider_ref", event.ProviderRef)
				w.WriteHeader(http.StatusOK)
				return
			}
			app.internalServerError(w, r, err)
			return
		}
		if session.Status == billing.StatusPending {
			if _, err := app.settleSession(r, session); err != nil {
				app.internalServerError(w, r, err)
				return
			}
		}
	case "checkout.session.expired":
		if err := app.billing.MarkSessionStatus(ctx, event.ProviderRef, billing.StatusFailed); err != nil && !errors.Is(err, billing.ErrSessionNotFound) {
			app.internalServerError(w, r, err)
			return
		}
	default:
		app.logger.Infow("ignoring webhook event", "type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
