package main

import (
	"errors"
	"net/http"
	"strconv"

	"welp/internal/domain/claims"
	"welp/internal/matching"
	"welp/internal/store"

	"github.com/go-chi/chi/v5"
)

// claimReviewHandler godoc
//
//	@Summary		Claim a review
//	@Description	Marks a review as being about the caller. The review must match the caller's profile and not be claimed by anyone else. First claim wins, globally.
//	@Tags			matching
//	@Produce		json
//	@Param			reviewID	path		int							true	"Review ID"
//	@Success		200			{object}	map[string]string			"Claimed"
//	@Failure		400			{object}	ErrorBadRequestResponse		"Bad request"
//	@Failure		409			{object}	error						"Already claimed"
//	@Failure		500			{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/claim [post]
func (app *application) claimReviewHandler(w http.ResponseWriter, r *http.Request) {
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

	// A claim asserts "this review is about me"; at least two independent
	// fields have to agree before we bind the review to the account. This
	// gate is stricter than the feed's ranking policy on purpose.
	res := app.claimGate.Evaluate(matching.ReviewFields{
		CustomerName:    review.CustomerName,
		CustomerPhone:   review.CustomerPhone.Value,
		CustomerAddress: review.CustomerAddress.Value,
	}, matching.Profile{
		Name:    user.FullName(),
		Phone:   user.Phone,
		Address: user.Address.Value,
		City:    user.City.Value,
		Zip:     user.Zipcode.Value,
	})
	if res.Type == matching.MatchNone {
		app.badRequestResponse(w, r, errors.New("review does not match your profile"))
		return
	}

	if err := app.claims.Claim(ctx, reviewID, user.ID, claims.TypeDirect); err != nil {
		switch err {
		case claims.ErrAlreadyClaimed:
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"status": "claimed"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
