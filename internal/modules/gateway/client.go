package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aminebenkeroum/tiks-straumur/internal/shared/apperr"
)

// apiClient is the shared HTTP core for both provider clients: explicit
// timeout plus a circuit breaker so a flapping provider does not hold the
// registry-facing handlers hostage.
type apiClient struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

func newAPIClient(name string) *apiClient {
	return &apiClient{
		http: &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type apiResponse struct {
	status int
	body   []byte
}

// do performs the request through the breaker. Transport failures and 5xx
// responses count against the breaker; 4xx responses are the provider
// answering and pass through for the caller to classify.
func (c *apiClient) do(ctx context.Context, method, url string, headers map[string]string, payload any) (apiResponse, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		var rdr io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			rdr = bytes.NewReader(raw)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, rdr)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Cache-Control", "no-cache")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		out := apiResponse{status: resp.StatusCode, body: raw}
		if resp.StatusCode >= 500 {
			return out, fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, raw)
		}
		return out, nil
	})

	if err != nil {
		if out, ok := res.(apiResponse); ok && out.status >= 500 {
			return out, apperr.UpstreamErr("provider request failed", err)
		}
		return apiResponse{}, apperr.UpstreamErr("provider unreachable", fmt.Errorf("%s %s: %w", method, url, err))
	}
	return res.(apiResponse), nil
}

func (r apiResponse) ok() bool { return r.status >= 200 && r.status < 300 }
