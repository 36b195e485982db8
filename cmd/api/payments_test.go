package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"welp/internal/domain/billing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleSessionAppliesCreditsOnce(t *testing.T) {
	billingStore := &billingStub{}
	ledger := &creditsStub{balance: 2}

	app := testApplication()
	app.billing = billingStore
	app.credits = ledger

	session := &billing.CheckoutSession{UserID: 7, ProviderRef: "cs_test_1", Credits: 5}
	r := httptest.NewRequest(http.MethodPost, "/v1/payments/confirm", nil)

	balance, err := app.settleSession(r, session)

	require.NoError(t, err)
	assert.Equal(t, 7, balance)
	assert.Equal(t, []int{5}, ledger.applied)
	assert.Empty(t, billingStore.reopened)
}

func TestSettleSessionReopensWhenCreditGrantFails(t *testing.T) {
	billingStore := &billingStub{}
	ledger := &creditsStub{applyErr: errors.New("ledger unavailable")}

	app := testApplication()
	app.billing = billingStore
	app.credits = ledger

	session := &billing.CheckoutSession{UserID: 7, ProviderRef: "cs_test_1", Credits: 5}
	r := httptest.NewRequest(http.MethodPost, "/v1/payments/confirm", nil)

	_, err := app.settleSession(r, session)

	// The session went back to pending, so a retry can still settle it
	// instead of finding a completed session with no credits behind it.
	require.Error(t, err)
	assert.Equal(t, []string{"cs_test_1"}, billingStore.reopened)
	assert.Empty(t, ledger.applied)
}

func TestSettleSessionLosingRaceReturnsBalance(t *testing.T) {
	billingStore := &billingStub{markErr: billing.ErrSessionNotFound}
	ledger := &creditsStub{balance: 9}

	app := testApplication()
	app.billing = billingStore
	app.credits = ledger

	session := &billing.CheckoutSession{UserID: 7, ProviderRef: "cs_test_1", Credits: 5}
	r := httptest.NewRequest(http.MethodPost, "/v1/payments/confirm", nil)

	balance, err := app.settleSession(r, session)

	require.NoError(t, err)
	assert.Equal(t, 9, balance)
	assert.Empty(t, ledger.applied)
	assert.Empty(t, billingStore.reopened)
}
