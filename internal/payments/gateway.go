package payments

import "context"

// Gateway defines a common interface for payment providers.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResponse, error)
	VerifyPayment(ctx context.Context, req VerifyRequest) (VerifyResult, error)
	ParseWebhook(payload []byte, signatureHeader string) (WebhookEvent, error)
}
