package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const stripeAPIBase = "https://api.stripe.com/v1"

// webhookTolerance bounds how old a signed webhook timestamp may be
// before the event is rejected as a replay.
const webhookTolerance = 5 * time.Minute

type StripeAdapter struct {
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
	now           func() time.Time
}

func NewStripeAdapter(secretKey, webhookSecret string) *StripeAdapter {
	return &StripeAdapter{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		httpClient:    http.DefaultClient,
		now:           time.Now,
	}
}

// CreateCheckout opens a hosted checkout session. Stripe's API is
// form-encoded, not JSON.
func (s *StripeAdapter) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResponse, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("client_reference_id", req.ReferenceID)
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ProductName)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		stripeAPIBase+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return CheckoutResponse{}, err
	}
	httpReq.SetBasicAuth(s.secretKey, "")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return CheckoutResponse{}, fmt.Errorf("stripe checkout request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return CheckoutResponse{}, fmt.Errorf("stripe checkout failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var res struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return CheckoutResponse{}, fmt.Errorf("stripe checkout decode: %w", err)
	}

	return CheckoutResponse{ProviderRef: res.ID, PaymentURL: res.URL}, nil
}

func (s *StripeAdapter) VerifyPayment(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		stripeAPIBase+"/checkout/sessions/"+url.PathEscape(req.ProviderRef), nil)
	if err != nil {
		return VerifyResult{}, err
	}
	httpReq.SetBasicAuth(s.secretKey, "")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("stripe session lookup: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return VerifyResult{}, fmt.Errorf("stripe session lookup failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var res struct {
		ID            string `json:"id"`
		PaymentStatus string `json:"payment_status"`
		Status        string `json:"status"`
		AmountTotal   int64  `json:"amount_total"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return VerifyResult{}, fmt.Errorf("stripe session decode: %w", err)
	}

	// payment_status "paid" is the only success. Session status "expired"
	// is terminal; "open" means the customer may still pay.
	success := res.PaymentStatus == "paid"
	terminal := success || res.Status == "expired"

	return VerifyResult{
		Success:     success,
		State:       res.PaymentStatus,
		Terminal:    terminal,
		ProviderRef: res.ID,
		AmountCents: res.AmountTotal,
	}, nil
}

// ParseWebhook checks the Stripe-Signature header (t=...,v1=... with an
// HMAC-SHA256 over "<t>.<payload>") and decodes the event.
func (s *StripeAdapter) ParseWebhook(payload []byte, signatureHeader string) (WebhookEvent, error) {
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return WebhookEvent{}, err
	}

	if s.now().Sub(time.Unix(timestamp, 0)) > webhookTolerance {
		return WebhookEvent{}, fmt.Errorf("webhook timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	expected := mac.Sum(nil)

	valid := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err == nil && hmac.Equal(decoded, expected) {
			valid = true
			break
		}
	}
	if !valid {
		return WebhookEvent{}, fmt.Errorf("webhook signature mismatch")
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID          string `json:"id"`
				AmountTotal int64  `json:"amount_total"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("webhook decode: %w", err)
	}

	return WebhookEvent{
		ID:          event.ID,
		Type:        event.Type,
		ProviderRef: event.Data.Object.ID,
		AmountCents: event.Data.Object.AmountTotal,
	}, nil
}

func parseSignatureHeader(header string) (int64, []string, error) {
	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("bad webhook timestamp: %w", err)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, v)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("malformed signature header")
	}
	return timestamp, signatures, nil
}
