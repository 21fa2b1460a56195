package payments

import "context"

type InitializeRequest struct {
	Email     string
	Amount    float64 // major units, as read from the payment request
	PaymentID string
	ReturnURL string
	CancelURL string
	Currency  string
}

type InitializeResponse struct {
	RedirectURL       string
	ProviderReference string
}

// Checkout is the normalized view of a provider-side checkout/transaction
// session. Status keeps the provider's own vocabulary; Succeeded is the
// provider adapter's interpretation of it.
type Checkout struct {
	Reference         string // equals the payment-request id by convention
	ProviderReference string // provider-assigned, needed for refunds
	Status            string
	Succeeded         bool
	Amount            float64
	Currency          string
}

type RefundRequest struct {
	ProviderReference string
	Amount            int64 // minor units, as delivered by the refund webhook
	Currency          string
	Reason            string
}

// RefundResult carries business failure in Success/Error; the CreateRefund
// error return is reserved for transport failure. Callers must check the
// flag, not only the error.
type RefundResult struct {
	Success   bool
	Reference string
	Error     string
}

// Provider abstracts one payment-service provider's hosted-checkout API.
type Provider interface {
	Name() string

	// InitializeCheckout receives the major-unit amount; each
	// implementation converts to its own wire unit.
	InitializeCheckout(ctx context.Context, req InitializeRequest) (InitializeResponse, error)

	// GetCheckout resolves the session by the shared reference. Fails with
	// an upstream error on non-2xx.
	GetCheckout(ctx context.Context, reference string) (Checkout, error)

	CreateRefund(ctx context.Context, req RefundRequest) (RefundResult, error)
}
