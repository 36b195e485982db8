package main

import (
	"context"
	"net/http"
	"net/http/httptest"

	"welp/internal/domain/accesscontrol"
	"welp/internal/domain/billing"
	"welp/internal/domain/claims"
	"welp/internal/domain/credits"
	"welp/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func testApplication() *application {
	return &application{logger: zap.NewNop().Sugar()}
}

func requestWithUser(method, target string, user *store.User) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return r.WithContext(context.WithValue(r.Context(), userCtx, user))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// reviewsStub serves a single canned review for every lookup.
type reviewsStub struct {
	review *store.Review
	err    error
}

func (s *reviewsStub) Create(ctx context.Context, r *store.Review) error { return s.err }
func (s *reviewsStub) GetByID(ctx context.Context, id int64) (*store.Review, error) {
	return s.review, s.err
}
func (s *reviewsStub) GetByShareCode(ctx context.Context, code string) (*store.Review, error) {
	return s.review, s.err
}
func (s *reviewsStub) ListByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]store.Review, int, error) {
	return nil, 0, s.err
}
func (s *reviewsStub) ListCandidates(ctx context.Context) ([]store.Review, error) {
	return nil, s.err
}
func (s *reviewsStub) SoftDelete(ctx context.Context, id, businessID int64) error { return s.err }
func (s *reviewsStub) SetShareCode(ctx context.Context, id int64, code string) error {
	return s.err
}
func (s *reviewsStub) AddPhotoURL(ctx context.Context, id int64, url string) error    { return s.err }
func (s *reviewsStub) RemovePhotoURL(ctx context.Context, id int64, url string) error { return s.err }

// claimsStub records claim attempts.
type claimsStub struct {
	claimed  []int64
	claimErr error
}

func (s *claimsStub) Claim(ctx context.Context, reviewID, userID int64, claimType claims.ClaimType) error {
	if s.claimErr != nil {
		return s.claimErr
	}
	s.claimed = append(s.claimed, reviewID)
	return nil
}
func (s *claimsStub) GetForReview(ctx context.Context, reviewID int64) (*claims.Claim, error) {
	return nil, nil
}
func (s *claimsStub) ListForUser(ctx context.Context, userID int64) ([]claims.Claim, error) {
	return nil, nil
}
func (s *claimsStub) IsClaimedBy(ctx context.Context, reviewID, userID int64) (bool, error) {
	return false, nil
}

// billingStub records status transitions.
type billingStub struct {
	markErr  error
	reopened []string
}

func (s *billingStub) CreateSession(ctx context.Context, cs *billing.CheckoutSession) error {
	return nil
}
func (s *billingStub) GetSessionByProviderRef(ctx context.Context, ref string) (*billing.CheckoutSession, error) {
	return nil, billing.ErrSessionNotFound
}
func (s *billingStub) MarkSessionStatus(ctx context.Context, ref string, status billing.SessionStatus) error {
	return s.markErr
}
func (s *billingStub) ReopenSession(ctx context.Context, ref string) error {
	s.reopened = append(s.reopened, ref)
	return nil
}
func (s *billingStub) RecordWebhookEvent(ctx context.Context, eventID, eventType string) error {
	return nil
}

// creditsStub records ledger applications.
type creditsStub struct {
	balance  int
	applyErr error
	applied  []int
}

func (s *creditsStub) GetBalance(ctx context.Context, userID int64) (int, error) {
	return s.balance, nil
}
func (s *creditsStub) ListTransactions(ctx context.Context, userID int64) ([]credits.Transaction, error) {
	return nil, nil
}
func (s *creditsStub) Apply(ctx context.Context, userID int64, amount int, txType credits.TransactionType, description string, sessionRef *string) (int, error) {
	if s.applyErr != nil {
		return 0, s.applyErr
	}
	s.applied = append(s.applied, amount)
	s.balance += amount
	return s.balance, nil
}

// accessStub answers every full-access question the same way.
type accessStub struct {
	fullAccess bool
}

func (s *accessStub) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	return false, nil
}
func (s *accessStub) GetSubscription(ctx context.Context, userID int64) (*accesscontrol.Subscription, error) {
	return nil, nil
}
func (s *accessStub) UpsertSubscription(ctx context.Context, sub *accesscontrol.Subscription) error {
	return nil
}
func (s *accessStub) RecordGrant(ctx context.Context, userID, reviewID int64) error { return nil }
func (s *accessStub) HasGrant(ctx context.Context, userID, reviewID int64) (bool, error) {
	return false, nil
}
func (s *accessStub) ListGrantedReviewIDs(ctx context.Context, userID int64) ([]int64, error) {
	return nil, nil
}
func (s *accessStub) HasFullAccess(ctx context.Context, userID, reviewID int64, role accesscontrol.RoleName) (bool, error) {
	return s.fullAccess, nil
}
