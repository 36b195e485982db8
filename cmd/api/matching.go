package main

import (
	"net/http"

	"welp/internal/matching"
	"welp/internal/store"
)

// MatchedReview pairs a categorized match with its (gated) review body.
type MatchedReview struct {
	Match  matching.Match  `json:"match"`
	Review *ReviewResponse `json:"review"`
}

// getMatchedReviewsHandler godoc
//
//	@Summary		Get reviews that may be about me
//	@Description	Scores every unclaimed review against the caller's profile and returns potential, high-quality, and already-claimed matches. Reviews claimed by someone else never appear.
//	@Tags			matching
//	@Produce		json
//	@Success		200	{array}		MatchedReview				"Categorized matches"
//	@Failure		500	{object}	ErrorInternalServerResponse	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/matches [get]
func (app *application) getMatchedReviewsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	ctx := r.Context()

	// Stamp last_login now; the previous stamp decides which matches are
	// flagged as new.
	lastLogin, err := app.store.Sessions.TouchLastLogin(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	reviews, err := app.store.Reviews.ListCandidates(ctx)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	claimed, err := app.claims.ListForUser(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	claimedByMe := make(map[int64]bool, len(claimed))
	for _, c := range claimed {
		claimedByMe[c.ReviewID] = true
	}

	byID := make(map[int64]*store.Review, len(reviews))
	candidates := make([]matching.Candidate, 0, len(reviews))
	for i := range reviews {
		review := &reviews[i]
		byID[review.ID] = review

		var claimedBy *int64
		if claimedByMe[review.ID] {
			id := user.ID
			claimedBy = &id
		}

		candidates = append(candidates, matching.Candidate{
			ReviewID:   review.ID,
			BusinessID: review.BusinessID,
			ClaimedBy:  claimedBy,
			CustomerID: review.CustomerID,
			Fields: matching.ReviewFields{
				CustomerName:    review.CustomerName,
				CustomerPhone:   review.CustomerPhone.Value,
				CustomerAddress: review.CustomerAddress.Value,
			},
			CreatedAt: review.CreatedAt,
		})
	}

	profile := matching.Profile{
		Name:    user.FullName(),
		Phone:   user.Phone,
		Address: user.Address.Value,
		City:    user.City.Value,
		Zip:     user.Zipcode.Value,
	}

	matches := matching.Categorize(candidates, user.ID, profile, lastLogin, app.matchPolicy)

	out := make([]MatchedReview, 0, len(matches))
	for _, m := range matches {
		review := byID[m.ReviewID]
		resp, err := app.buildReviewResponse(r, user, review)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		out = append(out, MatchedReview{Match: m, Review: resp})
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}
