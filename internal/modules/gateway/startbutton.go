package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/aminebenkeroum/tiks-straumur/internal/modules/payments"
	"github.com/aminebenkeroum/tiks-straumur/internal/shared/apperr"
)

const startButtonBaseURL = "https://api.startbutton.tech"

// StartButtonClient talks to the StartButton transaction API (Paystack
// partner). Two credentials: secretKey authorizes initialization,
// paymentKey authorizes status polls and refunds.
type StartButtonClient struct {
	baseURL    string
	secretKey  string
	paymentKey string
	partner    string
	api        *apiClient
}

func NewStartButtonClient(secretKey, paymentKey string) *StartButtonClient {
	return &StartButtonClient{
		baseURL:    startButtonBaseURL,
		secretKey:  secretKey,
		paymentKey: paymentKey,
		partner:    "Paystack",
		api:        newAPIClient("startbutton"),
	}
}

func (c *StartButtonClient) Name() string { return "startbutton" }

type sbInitializeBody struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	RedirectURL string            `json:"redirectUrl"`
	Reference   string            `json:"reference"`
	Partner     string            `json:"partner"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
}

type sbEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type sbTransaction struct {
	Status               string  `json:"status"`
	TransactionReference string  `json:"transactionReference"`
	Amount               float64 `json:"amount"`
	Currency             string  `json:"currency"`
}

// InitializeTransaction expects the amount in MINOR units; callers convert
// the registry's major-unit amount before invoking it. Non-2xx is an
// upstream error carrying the provider's response body.
func (c *StartButtonClient) InitializeTransaction(ctx context.Context, email string, amountMinor int64, reference, redirectURL, cancelURL, currency string) (string, error) {
	body := sbInitializeBody{
		Email:       email,
		Amount:      amountMinor,
		RedirectURL: redirectURL,
		Reference:   reference,
		Partner:     c.partner,
		Currency:    currency,
		Metadata:    map[string]string{"cancel_action": cancelURL},
	}

	resp, err := c.api.do(ctx, http.MethodPost, c.baseURL+"/transaction/initialize",
		map[string]string{"Authorization": "Bearer " + c.secretKey}, body)
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", apperr.UpstreamErr("transaction initialization failed",
			fmt.Errorf("startbutton initialize: status %d: %s", resp.status, resp.body))
	}

	var env sbEnvelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return "", apperr.UpstreamErr("malformed provider response", fmt.Errorf("startbutton initialize: %w", err))
	}
	if !env.Success {
		return "", apperr.UpstreamErr("transaction initialization rejected",
			fmt.Errorf("startbutton initialize: %s", resp.body))
	}

	// data is the hosted-payment redirect URL.
	var redirect string
	if err := json.Unmarshal(env.Data, &redirect); err != nil || redirect == "" {
		return "", apperr.UpstreamErr("malformed provider response",
			fmt.Errorf("startbutton initialize: unexpected data: %s", env.Data))
	}
	return redirect, nil
}

// GetTransaction polls the transaction by the shared reference (the
// payment-request id).
func (c *StartButtonClient) GetTransaction(ctx context.Context, reference string) (payments.Checkout, error) {
	resp, err := c.api.do(ctx, http.MethodGet, c.baseURL+"/transaction/status/"+reference,
		map[string]string{"Authorization": "Bearer " + c.paymentKey}, nil)
	if err != nil {
		return payments.Checkout{}, err
	}
	if !resp.ok() {
		return payments.Checkout{}, apperr.UpstreamErr("transaction lookup failed",
			fmt.Errorf("startbutton status: status %d: %s", resp.status, resp.body))
	}

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Transaction sbTransaction `json:"transaction"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return payments.Checkout{}, apperr.UpstreamErr("malformed provider response", fmt.Errorf("startbutton status: %w", err))
	}

	tx := env.Data.Transaction
	return payments.Checkout{
		Reference:         reference,
		ProviderReference: tx.TransactionReference,
		Status:            tx.Status,
		Succeeded:         env.Success && tx.Status == "successful",
		Amount:            tx.Amount,
		Currency:          tx.Currency,
	}, nil
}

// CreateRefund follows the success-flag contract: provider rejection lands
// in the result, the error return is transport-only.
func (c *StartButtonClient) CreateRefund(ctx context.Context, req payments.RefundRequest) (payments.RefundResult, error) {
	body := map[string]any{
		"transactionReference": req.ProviderReference,
		"amount":               req.Amount,
	}

	resp, err := c.api.do(ctx, http.MethodPost, c.baseURL+"/transaction/refunds",
		map[string]string{"Authorization": "Bearer " + c.paymentKey}, body)
	if err != nil {
		return payments.RefundResult{}, err
	}
	if !resp.ok() {
		return payments.RefundResult{Success: false, Error: string(resp.body)}, nil
	}

	var env sbEnvelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return payments.RefundResult{Success: false, Error: string(resp.body)}, nil
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = string(resp.body)
		}
		return payments.RefundResult{Success: false, Error: msg}, nil
	}
	return payments.RefundResult{Success: true, Reference: req.ProviderReference}, nil
}

// InitializeCheckout implements payments.Provider. StartButton is a
// minor-unit provider, so the major-unit amount is converted here, before
// the client's own contract begins.
func (c *StartButtonClient) InitializeCheckout(ctx context.Context, req payments.InitializeRequest) (payments.InitializeResponse, error) {
	minor := int64(math.Round(req.Amount * 100))
	redirect, err := c.InitializeTransaction(ctx, req.Email, minor, req.PaymentID, req.ReturnURL, req.CancelURL, req.Currency)
	if err != nil {
		return payments.InitializeResponse{}, err
	}
	return payments.InitializeResponse{RedirectURL: redirect}, nil
}

// GetCheckout implements payments.Provider.
func (c *StartButtonClient) GetCheckout(ctx context.Context, reference string) (payments.Checkout, error) {
	return c.GetTransaction(ctx, reference)
}
