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

const straumurBaseURL = "https://checkout-api.straumur.is"

// StraumurClient talks to the Straumur hosted-checkout API.
type StraumurClient struct {
	baseURL  string
	apiKey   string
	terminal string
	api      *apiClient
}

func NewStraumurClient(apiKey, terminal string) *StraumurClient {
	return &StraumurClient{
		baseURL:  straumurBaseURL,
		apiKey:   apiKey,
		terminal: terminal,
		api:      newAPIClient("straumur"),
	}
}

func (c *StraumurClient) Name() string { return "straumur" }

func (c *StraumurClient) headers() map[string]string {
	return map[string]string{"X-API-key": c.apiKey}
}

type straumurCheckout struct {
	CheckoutReference string `json:"checkoutReference"`
	PayfacReference   string `json:"payfacReference"`
	Status            string `json:"status"`
	Amount            int64  `json:"amount"` // minor units
	Currency          string `json:"currency"`
	CheckoutURL       string `json:"checkoutUrl"`
}

// CreateCheckout expects the amount in MAJOR units and performs its own
// rounding to the wire's minor units. Non-2xx is an upstream error
// carrying the provider's response body.
func (c *StraumurClient) CreateCheckout(ctx context.Context, email string, amount float64, reference, returnURL, currency string) (payments.InitializeResponse, error) {
	body := map[string]any{
		"amount":             int64(math.Round(amount * 100)),
		"currency":           currency,
		"reference":          reference,
		"returnUrl":          returnURL,
		"shopperEmail":       email,
		"terminalIdentifier": c.terminal,
		"expiresInMinutes":   30,
	}

	resp, err := c.api.do(ctx, http.MethodPost, c.baseURL+"/api/v1/hostedcheckout", c.headers(), body)
	if err != nil {
		return payments.InitializeResponse{}, err
	}
	if !resp.ok() {
		return payments.InitializeResponse{}, apperr.UpstreamErr("checkout creation failed",
			fmt.Errorf("straumur checkout: status %d: %s", resp.status, resp.body))
	}

	var out straumurCheckout
	if err := json.Unmarshal(resp.body, &out); err != nil || out.CheckoutURL == "" {
		return payments.InitializeResponse{}, apperr.UpstreamErr("malformed provider response",
			fmt.Errorf("straumur checkout: unexpected body: %s", resp.body))
	}
	return payments.InitializeResponse{
		RedirectURL:       out.CheckoutURL,
		ProviderReference: out.CheckoutReference,
	}, nil
}

// GetCheckout implements payments.Provider. Straumur's success vocabulary
// is "Completed".
func (c *StraumurClient) GetCheckout(ctx context.Context, reference string) (payments.Checkout, error) {
	resp, err := c.api.do(ctx, http.MethodGet, c.baseURL+"/api/v1/hostedcheckout/status/"+reference, c.headers(), nil)
	if err != nil {
		return payments.Checkout{}, err
	}
	if !resp.ok() {
		return payments.Checkout{}, apperr.UpstreamErr("checkout lookup failed",
			fmt.Errorf("straumur status: status %d: %s", resp.status, resp.body))
	}

	var out straumurCheckout
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return payments.Checkout{}, apperr.UpstreamErr("malformed provider response", fmt.Errorf("straumur status: %w", err))
	}
	return payments.Checkout{
		Reference:         reference,
		ProviderReference: out.PayfacReference,
		Status:            out.Status,
		Succeeded:         out.Status == "Completed",
		Amount:            float64(out.Amount) / 100,
		Currency:          out.Currency,
	}, nil
}

// InitializeCheckout implements payments.Provider; major units pass
// straight through to the client's own contract.
func (c *StraumurClient) InitializeCheckout(ctx context.Context, req payments.InitializeRequest) (payments.InitializeResponse, error) {
	return c.CreateCheckout(ctx, req.Email, req.Amount, req.PaymentID, req.ReturnURL, req.Currency)
}

// CreateRefund follows the success-flag contract: provider rejection lands
// in the result, the error return is transport-only.
func (c *StraumurClient) CreateRefund(ctx context.Context, req payments.RefundRequest) (payments.RefundResult, error) {
	body := map[string]any{
		"payfacReference": req.ProviderReference,
		"amount":          req.Amount,
		"currency":        req.Currency,
	}
	if req.Reason != "" {
		body["reason"] = req.Reason
	}

	resp, err := c.api.do(ctx, http.MethodPost, c.baseURL+"/api/v1/refund", c.headers(), body)
	if err != nil {
		return payments.RefundResult{}, err
	}
	if !resp.ok() {
		return payments.RefundResult{Success: false, Error: string(resp.body)}, nil
	}

	var out struct {
		PayfacReference string `json:"payfacReference"`
	}
	_ = json.Unmarshal(resp.body, &out)
	ref := out.PayfacReference
	if ref == "" {
		ref = req.ProviderReference
	}
	return payments.RefundResult{Success: true, Reference: ref}, nil
}
