package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"welp/internal/domain/claims"
	"welp/internal/domain/credits"
	"welp/internal/store"

	"github.com/go-chi/chi/v5"
)

// getCreditBalanceHandler godoc
//
//	@Summary		Get my credit balance
//	@Tags			credits
//	@Produce		json
//	@Success		200	{object}	map[string]int				"Balance"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/credits/balance [get]
func (app *application) getCreditBalanceHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	balance, err := app.credits.GetBalance(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]int{"balance": balance}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listCreditTransactionsHandler godoc
//
//	@Summary		List my credit transactions
//	@Description	Returns the full ledger, newest first
//	@Tags			credits
//	@Produce		json
//	@Success		200	{array}		credits.Transaction			"Transactions"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/credits/transactions [get]
func (app *application) listCreditTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	txs, err := app.credits.ListTransactions(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, txs); err != nil {
		app.internalServerError(w, r, err)
	}
}

// unlockReviewHandler godoc
//
//	@Summary		Unlock a review with credits
//	@Description	Spends credits for permanent full access to one review and claims it for the caller. The balance check and the grant are atomic; racing unlocks cannot overdraw.
//	@Tags			credits
//	@Produce		json
//	@Param			reviewID	path		int							true	"Review ID"
//	@Success		200			{object}	map[string]int				"New balance"
//	@Failure		402			{object}	error						"Insufficient credits"
//	@Failure		409			{object}	error						"Already claimed"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/unlock [post]
func (app *application) unlockReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	ctx := r.Context()

	review, err := app.store.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if review.CustomerID != nil && *review.CustomerID != user.ID {
		app.conflictResponse(w, r, claims.ErrAlreadyClaimed)
		return
	}

	// Optimistic pre-check for a friendlier error; the ledger re-checks
	// under its row lock either way.
	balance, err := app.credits.GetBalance(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	cost := app.config.credits.unlockCost
	if balance < cost {
		writeJSONError(w, http.StatusPaymentRequired, credits.ErrInsufficientCredits.Error())
		return
	}

	description := fmt.Sprintf("unlock review %d", reviewID)
	newBalance, err := app.credits.Apply(ctx, user.ID, -cost, credits.TypeUsage, description, nil)
	if err != nil {
		switch err {
		case credits.ErrInsufficientCredits:
			writeJSONError(w, http.StatusPaymentRequired, err.Error())
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.access.RecordGrant(ctx, user.ID, reviewID); err != nil {
		// Refund: the user paid for access they did not get.
		if _, rerr := app.credits.Apply(ctx, user.ID, cost, credits.TypeRefund, description, nil); rerr != nil {
			app.logger.Errorw("refund after failed grant", "user_id", user.ID, "error", rerr)
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.claims.Claim(ctx, reviewID, user.ID, claims.TypeCreditUnlock); err != nil && err != claims.ErrAlreadyClaimed {
		app.logger.Errorw("claim after unlock", "review_id", reviewID, "error", err)
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]int{"balance": newBalance}); err != nil {
		app.internalServerError(w, r, err)
	}
}
