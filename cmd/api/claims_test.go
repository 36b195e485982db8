package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"welp/internal/matching"
	"welp/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestClaimReviewRejectsSingleFieldMatch(t *testing.T) {
	review := &store.Review{
		ID:            1,
		BusinessID:    42,
		CustomerName:  "Somebody Else",
		CustomerPhone: store.NullString{Value: "(555) 123-4567", Valid: true},
	}
	claimed := &claimsStub{}

	app := testApplication()
	app.store = store.Storage{Reviews: &reviewsStub{review: review}}
	app.claims = claimed
	app.claimGate = matching.TwoOfThreePolicy{}

	user := &store.User{
		ID:        7,
		Type:      store.UserCustomer,
		FirstName: "Robert",
		LastName:  "Brown",
		Phone:     "555-123-4567",
	}
	r := withURLParam(requestWithUser(http.MethodPost, "/v1/reviews/1/claim", user), "reviewID", "1")
	rec := httptest.NewRecorder()

	app.claimReviewHandler(rec, r)

	// The phone matches but nothing else does. One field alone must not
	// bind the review to the account.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, claimed.claimed)
}

func TestClaimReviewAcceptsTwoFieldMatch(t *testing.T) {
	review := &store.Review{
		ID:            1,
		BusinessID:    42,
		CustomerName:  "Robert Brown",
		CustomerPhone: store.NullString{Value: "(555) 123-4567", Valid: true},
	}
	claimed := &claimsStub{}

	app := testApplication()
	app.store = store.Storage{Reviews: &reviewsStub{review: review}}
	app.claims = claimed
	app.claimGate = matching.TwoOfThreePolicy{}

	user := &store.User{
		ID:        7,
		Type:      store.UserCustomer,
		FirstName: "Robert",
		LastName:  "Brown",
		Phone:     "555-123-4567",
	}
	r := withURLParam(requestWithUser(http.MethodPost, "/v1/reviews/1/claim", user), "reviewID", "1")
	rec := httptest.NewRecorder()

	app.claimReviewHandler(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1}, claimed.claimed)
}
