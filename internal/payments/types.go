package payments

type CheckoutRequest struct {
	ReferenceID   string
	AmountCents   int64
	Currency      string
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutResponse struct {
	ProviderRef string
	PaymentURL  string
}

type VerifyRequest struct {
	ProviderRef string
}

type VerifyResult struct {
	Success     bool
	State       string
	Terminal    bool
	ProviderRef string
	AmountCents int64
}

// WebhookEvent is a provider callback after signature verification.
type WebhookEvent struct {
	ID          string
	Type        string
	ProviderRef string
	AmountCents int64
}
