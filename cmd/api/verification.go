package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"welp/internal/mailer"
	"welp/internal/store"
)

const (
	verificationTTL      = 15 * time.Minute
	verificationCooldown = time.Minute
	emailChannel         = "email"
)

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// issueVerificationCode stores a fresh code and emails it.
func (app *application) issueVerificationCode(ctx context.Context, user *store.User) error {
	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	err = app.store.Verifications.Issue(ctx, user.Email, emailChannel, code,
		time.Now().Add(verificationTTL), verificationCooldown)
	if err != nil {
		return err
	}

	vars := struct {
		Username  string
		Code      string
		ExpiresIn int
	}{
		Username:  user.FirstName,
		Code:      code,
		ExpiresIn: int(verificationTTL.Minutes()),
	}

	_, err = app.mailer.Send(mailer.VerificationCodeTemplate, user.FirstName, user.Email, vars)
	return err
}

// requestVerificationHandler godoc
//
//	@Summary		Request a verification code
//	@Description	Emails a fresh 6-digit code. Requests inside the cooldown window are rejected.
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	map[string]string			"Code sent"
//	@Failure		429	{object}	error						"Requested too soon"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/verification/request [post]
func (app *application) requestVerificationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if user.IsVerified {
		app.badRequestResponse(w, r, fmt.Errorf("account is already verified"))
		return
	}

	if err := app.issueVerificationCode(r.Context(), user); err != nil {
		switch err {
		case store.ErrCodeCooldown:
			writeJSONError(w, http.StatusTooManyRequests, err.Error())
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"status": "sent"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ConfirmVerificationPayload struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// confirmVerificationHandler godoc
//
//	@Summary		Confirm a verification code
//	@Description	Validates the code and marks the account verified. Codes expire and lock after repeated wrong guesses.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ConfirmVerificationPayload	true	"Code"
//	@Success		200		{object}	map[string]string			"Verified"
//	@Failure		400		{object}	ErrorBadRequestResponse		"Invalid code"
//	@Failure		429		{object}	error						"Too many attempts"
//	@Security		ApiKeyAuth
//	@Router			/users/verification/confirm [post]
func (app *application) confirmVerificationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload ConfirmVerificationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	if err := app.store.Verifications.Validate(ctx, user.Email, emailChannel, payload.Code); err != nil {
		switch err {
		case store.ErrCodeInvalid:
			app.badRequestResponse(w, r, err)
		case store.ErrTooManyAttempts:
			writeJSONError(w, http.StatusTooManyRequests, err.Error())
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.store.Users.UpdateUser(ctx, user.ID, map[string]interface{}{"is_verified": true}); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"status": "verified"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
