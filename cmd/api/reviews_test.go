package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"welp/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anonymousReview() *store.Review {
	return &store.Review{
		ID:            3,
		BusinessID:    42,
		CustomerName:  "Jane Doe",
		CustomerPhone: store.NullString{Value: "5559876543", Valid: true},
		Rating:        2,
		Content:       "no-show on two appointments",
		IsAnonymous:   true,
	}
}

func TestAnonymousReviewHidesAuthorFromOtherViewers(t *testing.T) {
	app := testApplication()
	app.access = &accessStub{}

	viewer := &store.User{ID: 7, Type: store.UserCustomer, FirstName: "Sam", LastName: "Reed"}
	r := requestWithUser(http.MethodGet, "/v1/reviews/3", viewer)

	resp, err := app.buildReviewResponse(r, viewer, anonymousReview())

	require.NoError(t, err)
	assert.Zero(t, resp.BusinessID)
	assert.False(t, resp.CustomerPhone.Valid)
}

func TestAnonymousReviewStillVisibleToAuthor(t *testing.T) {
	app := testApplication()
	app.access = &accessStub{}

	author := &store.User{
		ID:           42,
		Type:         store.UserBusiness,
		BusinessName: store.NullString{Value: "Reed Plumbing", Valid: true},
	}
	r := requestWithUser(http.MethodGet, "/v1/reviews/3", author)

	resp, err := app.buildReviewResponse(r, author, anonymousReview())

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.BusinessID)
	assert.True(t, resp.FullAccess)
}

func TestAnonymousReviewStillVisibleToAdmin(t *testing.T) {
	app := testApplication()
	app.access = &accessStub{fullAccess: true}

	admin := &store.User{ID: 99, Type: store.UserAdmin}
	r := requestWithUser(http.MethodGet, "/v1/reviews/3", admin)

	resp, err := app.buildReviewResponse(r, admin, anonymousReview())

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.BusinessID)
}

func TestSharedAnonymousReviewHidesAuthor(t *testing.T) {
	codec, err := store.NewShareCodec("test-salt")
	require.NoError(t, err)
	code, err := codec.Encode(3)
	require.NoError(t, err)

	review := anonymousReview()
	review.ShareCode = store.NullString{Value: code, Valid: true}

	app := testApplication()
	app.shareCodes = codec
	app.store = store.Storage{Reviews: &reviewsStub{review: review}}

	r := withURLParam(httptest.NewRequest(http.MethodGet, "/v1/reviews/shared/"+code, nil), "shareCode", code)
	rec := httptest.NewRecorder()

	app.getSharedReviewHandler(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			BusinessID    int64  `json:"business_id"`
			CustomerPhone string `json:"customer_phone"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Zero(t, envelope.Data.BusinessID)
	assert.Empty(t, envelope.Data.CustomerPhone)
}
