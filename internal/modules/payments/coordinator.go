package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aminebenkeroum/tiks-straumur/internal/modules/vivenu"
	"github.com/aminebenkeroum/tiks-straumur/internal/shared/apperr"
)

// Registry is the ticketing platform's payment API, the source of truth
// for payment-request status.
type Registry interface {
	GetPaymentRequest(ctx context.Context, paymentID string) (vivenu.PaymentRequest, error)
	CompletePaymentRequest(ctx context.Context, paymentID string) (vivenu.PaymentRequest, error)
	GetTransaction(ctx context.Context, transactionID string) (vivenu.Transaction, error)
	GetCheckoutPayments(ctx context.Context, checkoutID string) (vivenu.CheckoutPayments, error)
}

// Webhook event types that drive completion. Everything else is
// acknowledged without action.
const (
	EventAuthorization = "Authorization"
	EventCapture       = "Capture"
)

// Event is a provider webhook notification. Success is the exact wire
// string, not a parsed boolean; only "true" counts.
type Event struct {
	Type              string
	Success           string
	MerchantReference string // the payment-request id
	CheckoutReference string
	PayfacReference   string
	Amount            string
	Currency          string
	Reason            string
}

type RefundOutcome struct {
	Success   bool
	Reference string // the resolved payment-request id
	Error     string
}

// Coordinator applies the payment-completion state machine. Every entry
// point re-reads the payment request from the registry first; a request
// that already left NEW is never completed again, no matter which channel
// (redirect, webhook, refund webhook) reports the outcome or how often.
type Coordinator struct {
	registry        Registry
	provider        Provider
	defaultCurrency string
	logger          *slog.Logger
}

func NewCoordinator(registry Registry, provider Provider, defaultCurrency string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{registry: registry, provider: provider, defaultCurrency: defaultCurrency, logger: logger}
}

// StartCheckout initializes a provider checkout for a NEW payment request
// and returns the hosted-payment redirect URL. An already-resolved request
// is rejected with already_processed.
func (c *Coordinator) StartCheckout(ctx context.Context, paymentID, returnURL, cancelURL string) (string, error) {
	pr, err := c.registry.GetPaymentRequest(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if pr.Status != vivenu.StatusNew {
		c.logger.WarnContext(ctx, "payment request already processed", "payment_id", paymentID, "status", pr.Status)
		return "", apperr.AlreadyProcessedErr("payment request already processed")
	}

	currency := pr.Currency
	if currency == "" {
		currency = c.defaultCurrency
	}

	resp, err := c.provider.InitializeCheckout(ctx, InitializeRequest{
		Email:     pr.Customer.Email,
		Amount:    pr.Amount,
		PaymentID: paymentID,
		ReturnURL: returnURL,
		CancelURL: cancelURL,
		Currency:  currency,
	})
	if err != nil {
		return "", err
	}

	c.logger.InfoContext(ctx, "checkout initialized",
		"provider", c.provider.Name(), "payment_id", paymentID, "currency", currency)
	return resp.RedirectURL, nil
}

// ConfirmReturn handles the browser redirect back from the provider.
// providerRef is the provider-specific correlation query param; empty
// means the shared reference (the payment id) is used for the poll.
func (c *Coordinator) ConfirmReturn(ctx context.Context, paymentID, providerRef string) (string, error) {
	pr, err := c.registry.GetPaymentRequest(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if pr.Status != vivenu.StatusNew {
		// Another channel already resolved this request. Converge on the
		// matching return URL without touching the registry again.
		c.logger.InfoContext(ctx, "payment request already resolved", "payment_id", paymentID, "status", pr.Status)
		return returnURLFor(pr), nil
	}

	ref := providerRef
	if ref == "" {
		ref = paymentID
	}
	co, err := c.provider.GetCheckout(ctx, ref)
	if err != nil {
		return "", err
	}

	if !co.Succeeded {
		// No registry mutation on failure: the platform expires unresolved
		// requests itself.
		c.logger.WarnContext(ctx, "checkout not successful on return",
			"payment_id", paymentID, "provider_status", co.Status)
		return pr.FailureReturnURL, nil
	}

	completed, err := c.registry.CompletePaymentRequest(ctx, paymentID)
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "payment request completed",
		"payment_id", paymentID, "channel", "redirect", "provider", c.provider.Name())
	return completed.SuccessReturnURL, nil
}

// FailReturn handles the provider's explicit failure redirect. The request
// is left untouched on the registry; only the browser is sent back.
func (c *Coordinator) FailReturn(ctx context.Context, paymentID string) (string, error) {
	pr, err := c.registry.GetPaymentRequest(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if pr.Status != vivenu.StatusNew {
		return returnURLFor(pr), nil
	}
	return pr.FailureReturnURL, nil
}

// HandleEvent applies a provider webhook event. Only Authorization and
// Capture with the exact wire string success == "true" drive completion;
// every other event is acknowledged without side effects, because the
// provider stops redelivery only on acknowledgment.
func (c *Coordinator) HandleEvent(ctx context.Context, ev Event) error {
	if ev.Type != EventAuthorization && ev.Type != EventCapture {
		c.logger.WarnContext(ctx, "ignoring webhook event type", "event_type", ev.Type)
		return nil
	}
	if ev.Success != "true" {
		c.logger.InfoContext(ctx, "webhook event not successful, acknowledged",
			"event_type", ev.Type, "success", ev.Success, "payment_id", ev.MerchantReference)
		return nil
	}

	pr, err := c.registry.GetPaymentRequest(ctx, ev.MerchantReference)
	if err != nil {
		return err
	}
	if pr.Status != vivenu.StatusNew {
		c.logger.InfoContext(ctx, "payment request already resolved, webhook acknowledged",
			"payment_id", ev.MerchantReference, "status", pr.Status)
		return nil
	}

	if _, err := c.registry.CompletePaymentRequest(ctx, ev.MerchantReference); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "payment request completed",
		"payment_id", ev.MerchantReference, "channel", "webhook", "event_type", ev.Type)
	return nil
}

// ProcessRefund relays a platform refund notification to the provider.
// The chain transaction -> checkout -> docs[0].paymentRequestId resolves
// the provider-side session; resolution failures are errors, but a
// rejected or failed refund call surfaces in the outcome so the caller
// can decide on retry.
func (c *Coordinator) ProcessRefund(ctx context.Context, transactionID string, amountMinor int64) (RefundOutcome, error) {
	tx, err := c.registry.GetTransaction(ctx, transactionID)
	if err != nil {
		return RefundOutcome{}, err
	}

	page, err := c.registry.GetCheckoutPayments(ctx, tx.CheckoutID)
	if err != nil {
		return RefundOutcome{}, err
	}
	if len(page.Docs) == 0 {
		return RefundOutcome{}, apperr.NotFoundErr("no payment found for checkout")
	}
	paymentID := page.Docs[0].PaymentRequestID

	co, err := c.provider.GetCheckout(ctx, paymentID)
	if err != nil {
		return RefundOutcome{}, err
	}
	if co.ProviderReference == "" {
		return RefundOutcome{
			Success:   false,
			Reference: paymentID,
			Error:     fmt.Sprintf("no provider transaction reference for payment %s", paymentID),
		}, nil
	}

	res, err := c.provider.CreateRefund(ctx, RefundRequest{
		ProviderReference: co.ProviderReference,
		Amount:            amountMinor,
		Currency:          co.Currency,
	})
	if err != nil {
		// Transport failure after resolution: structured outcome, the
		// platform's redelivery is the retry mechanism.
		c.logger.ErrorContext(ctx, "refund call failed",
			"payment_id", paymentID, "transaction_id", transactionID, "err", err)
		return RefundOutcome{Success: false, Reference: paymentID, Error: err.Error()}, nil
	}
	if !res.Success {
		c.logger.WarnContext(ctx, "refund rejected by provider",
			"payment_id", paymentID, "provider_error", res.Error)
		return RefundOutcome{Success: false, Reference: paymentID, Error: res.Error}, nil
	}

	c.logger.InfoContext(ctx, "refund created",
		"payment_id", paymentID, "provider", c.provider.Name(), "amount_minor", amountMinor)
	return RefundOutcome{Success: true, Reference: paymentID}, nil
}

func returnURLFor(pr vivenu.PaymentRequest) string {
	if pr.Status == vivenu.StatusSucceeded {
		return pr.SuccessReturnURL
	}
	return pr.FailureReturnURL
}
