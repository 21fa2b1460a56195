package vivenu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aminebenkeroum/tiks-straumur/internal/shared/apperr"
)

// Client talks to the vivenu payment API. It is the source of truth for
// payment-request status; every handler re-fetches instead of caching.
type Client struct {
	baseURL       string
	apiKey        string
	gatewaySecret string
	http          *http.Client
}

func NewClient(baseURL, apiKey, gatewaySecret string) *Client {
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		gatewaySecret: gatewaySecret,
		http:          &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) GetPaymentRequest(ctx context.Context, paymentID string) (PaymentRequest, error) {
	var pr PaymentRequest
	err := c.do(ctx, http.MethodGet, "/api/payments/requests/"+paymentID, nil, &pr)
	return pr, err
}

// CompletePaymentRequest asks the platform to transition the request to
// its terminal success state. Each call carries a freshly generated
// reference; the platform endpoint is idempotent per request id.
func (c *Client) CompletePaymentRequest(ctx context.Context, paymentID string) (PaymentRequest, error) {
	body := map[string]string{
		"gatewaySecret": c.gatewaySecret,
		"reference":     uuid.NewString(),
	}
	var pr PaymentRequest
	err := c.do(ctx, http.MethodPost, "/api/payments/requests/"+paymentID+"/confirm", body, &pr)
	return pr, err
}

func (c *Client) GetTransaction(ctx context.Context, transactionID string) (Transaction, error) {
	var tx Transaction
	err := c.do(ctx, http.MethodGet, "/api/transactions/"+transactionID, nil, &tx)
	return tx, err
}

func (c *Client) GetCheckoutPayments(ctx context.Context, checkoutID string) (CheckoutPayments, error) {
	var page CheckoutPayments
	err := c.do(ctx, http.MethodGet, "/api/payments?checkoutId="+checkoutID, nil, &page)
	return page, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return apperr.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.UpstreamErr("registry unreachable", fmt.Errorf("vivenu %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.UpstreamErr("registry read failed", fmt.Errorf("vivenu %s %s: %w", method, path, err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return apperr.NotFoundErr("payment request not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.UpstreamErr("registry request failed",
			fmt.Errorf("vivenu %s %s: status %d: %s", method, path, resp.StatusCode, raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperr.UpstreamErr("registry returned malformed response",
				fmt.Errorf("vivenu %s %s: %w", method, path, err))
		}
	}
	return nil
}
