package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"welp/internal/domain/accesscontrol"

	"github.com/go-chi/chi/v5"
)

// getSubscriptionHandler godoc
//
//	@Summary		Get my subscription
//	@Description	Returns the caller's subscription row, or an inactive placeholder if none exists
//	@Tags			subscriptions
//	@Produce		json
//	@Success		200	{object}	accesscontrol.Subscription	"Subscription"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/subscriptions/me [get]
func (app *application) getSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	sub, err := app.access.GetSubscription(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if sub == nil {
		sub = &accesscontrol.Subscription{UserID: user.ID, Plan: "none", Active: false}
	}

	if err := app.jsonResponse(w, http.StatusOK, sub); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpsertSubscriptionPayload struct {
	Plan      string     `json:"plan" validate:"required,oneof=monthly yearly none"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// upsertSubscriptionHandler godoc
//
//	@Summary		Set a user's subscription
//	@Description	Admin-only override of a user's subscription row
//	@Tags			subscriptions
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		int							true	"User ID"
//	@Param			payload	body		UpsertSubscriptionPayload	true	"Subscription"
//	@Success		200		{object}	accesscontrol.Subscription	"Updated subscription"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		500		{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/subscriptions/{userID} [put]
func (app *application) upsertSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	var payload UpsertSubscriptionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sub := &accesscontrol.Subscription{
		UserID:    userID,
		Plan:      payload.Plan,
		Active:    payload.Active,
		ExpiresAt: payload.ExpiresAt,
	}

	if err := app.access.UpsertSubscription(r.Context(), sub); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, sub); err != nil {
		app.internalServerError(w, r, err)
	}
}
