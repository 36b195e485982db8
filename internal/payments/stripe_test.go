package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedHeader(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestParseWebhookAcceptsValidSignature(t *testing.T) {
	adapter := NewStripeAdapter("sk_test", "whsec_test")
	now := time.Now()
	adapter.now = func() time.Time { return now }

	payload := []byte(`{
		"id": "evt_123",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_abc", "amount_total": 999}}
	}`)

	event, err := adapter.ParseWebhook(payload, signedHeader("whsec_test", now.Unix(), payload))
	require.NoError(t, err)
	assert.Equal(t, "evt_123", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, "cs_test_abc", event.ProviderRef)
	assert.Equal(t, int64(999), event.AmountCents)
}

func TestParseWebhookRejectsWrongSecret(t *testing.T) {
	adapter := NewStripeAdapter("sk_test", "whsec_test")
	now := time.Now()
	adapter.now = func() time.Time { return now }

	payload := []byte(`{"id": "evt_123", "type": "x", "data": {"object": {}}}`)
	_, err := adapter.ParseWebhook(payload, signedHeader("whsec_other", now.Unix(), payload))
	assert.ErrorContains(t, err, "signature mismatch")
}

func TestParseWebhookRejectsTamperedPayload(t *testing.T) {
	adapter := NewStripeAdapter("sk_test", "whsec_test")
	now := time.Now()
	adapter.now = func() time.Time { return now }

	payload := []byte(`{"id": "evt_123", "type": "x", "data": {"object": {}}}`)
	header := signedHeader("whsec_test", now.Unix(), payload)

	tampered := []byte(`{"id": "evt_999", "type": "x", "data": {"object": {}}}`)
	_, err := adapter.ParseWebhook(tampered, header)
	assert.ErrorContains(t, err, "signature mismatch")
}

func TestParseWebhookRejectsStaleTimestamp(t *testing.T) {
	adapter := NewStripeAdapter("sk_test", "whsec_test")
	now := time.Now()
	adapter.now = func() time.Time { return now }

	payload := []byte(`{"id": "evt_123", "type": "x", "data": {"object": {}}}`)
	stale := now.Add(-10 * time.Minute).Unix()
	_, err := adapter.ParseWebhook(payload, signedHeader("whsec_test", stale, payload))
	assert.ErrorContains(t, err, "tolerance")
}

func TestParseWebhookRejectsMalformedHeader(t *testing.T) {
	adapter := NewStripeAdapter("sk_test", "whsec_test")

	_, err := adapter.ParseWebhook([]byte(`{}`), "not-a-header")
	assert.ErrorContains(t, err, "malformed")
}
