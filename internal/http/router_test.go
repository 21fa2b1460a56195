package apphttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/aminebenkeroum/tiks-straumur/internal/config"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/payments"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/signature"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/vivenu"
)

const testHMACKeyHex = "4eab969bd65a39c17c906dfcef1fe69d481716b0845a6c0892284cf9c06e4314"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRegistry struct {
	pr          vivenu.PaymentRequest
	prErr       error
	completions int
	tx          vivenu.Transaction
	page        vivenu.CheckoutPayments
}

func (f *fakeRegistry) GetPaymentRequest(context.Context, string) (vivenu.PaymentRequest, error) {
	return f.pr, f.prErr
}

func (f *fakeRegistry) CompletePaymentRequest(context.Context, string) (vivenu.PaymentRequest, error) {
	f.completions++
	done := f.pr
	done.Status = vivenu.StatusSucceeded
	return done, nil
}

func (f *fakeRegistry) GetTransaction(context.Context, string) (vivenu.Transaction, error) {
	return f.tx, nil
}

func (f *fakeRegistry) GetCheckoutPayments(context.Context, string) (vivenu.CheckoutPayments, error) {
	return f.page, nil
}

type fakeProvider struct {
	redirect string
	checkout payments.Checkout
	refund   payments.RefundResult
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) InitializeCheckout(context.Context, payments.InitializeRequest) (payments.InitializeResponse, error) {
	return payments.InitializeResponse{RedirectURL: f.redirect}, nil
}

func (f *fakeProvider) GetCheckout(context.Context, string) (payments.Checkout, error) {
	return f.checkout, nil
}

func (f *fakeProvider) CreateRefund(context.Context, payments.RefundRequest) (payments.RefundResult, error) {
	return f.refund, nil
}

func testConfig() config.Config {
	return config.Config{
		Port:            "8080",
		AppURL:          "https://adapter.example",
		VivenuURL:       "https://vivenu.example",
		VivenuAPIKey:    "key",
		GatewaySecret:   "gw_sup3r_s3cret",
		StraumurHMACKey: testHMACKeyHex,
		Currency:        "ISK",
	}
}

func newPR(status string) vivenu.PaymentRequest {
	return vivenu.PaymentRequest{
		ID:               "pr_1",
		Status:           status,
		Amount:           10.00,
		Currency:         "GHS",
		Customer:         vivenu.Customer{Email: "buyer@example.com"},
		SuccessReturnURL: "https://shop.example/ok",
		FailureReturnURL: "https://shop.example/fail",
	}
}

func startButtonRouter(reg *fakeRegistry, prov *fakeProvider) *gin.Engine {
	coord := payments.NewCoordinator(reg, prov, "GHS", nil)
	return NewStartButtonRouter(slog.Default(), testConfig(), coord)
}

func straumurRouter(t *testing.T, reg *fakeRegistry, prov *fakeProvider) *gin.Engine {
	t.Helper()
	coord := payments.NewCoordinator(reg, prov, "ISK", nil)
	r, err := NewStraumurRouter(slog.Default(), testConfig(), coord)
	require.NoError(t, err)
	return r
}

func TestStartCheckout_RedirectsToProvider(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusNew)}
	prov := &fakeProvider{redirect: "https://pay.example/s/1"}
	r := startButtonRouter(reg, prov)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pay/callback?paymentId=pr_1", nil))

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://pay.example/s/1", w.Header().Get("Location"))
}

func TestStartCheckout_AlreadyProcessedIs403(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusSucceeded)}
	r := startButtonRouter(reg, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pay/callback?paymentId=pr_1", nil))

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Zero(t, reg.completions)
}

func TestStartCheckout_MissingParamIs400(t *testing.T) {
	r := startButtonRouter(&fakeRegistry{}, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pay/callback", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmReturn_CompletesAndRedirects(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusNew)}
	prov := &fakeProvider{checkout: payments.Checkout{Status: "successful", Succeeded: true}}
	r := startButtonRouter(reg, prov)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paystack/callback?paymentRequestId=pr_1", nil))

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://shop.example/ok", w.Header().Get("Location"))
	require.Equal(t, 1, reg.completions)
}

func TestConfirmReturn_TerminalRequestConvergesWithoutCompletion(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusSucceeded)}
	r := startButtonRouter(reg, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paystack/callback?paymentRequestId=pr_1", nil))

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://shop.example/ok", w.Header().Get("Location"))
	require.Zero(t, reg.completions)
}

func TestFailReturn_RedirectsWithoutMutation(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusNew)}
	r := startButtonRouter(reg, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paystack/failure?paymentRequestId=pr_1", nil))

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "https://shop.example/fail", w.Header().Get("Location"))
	require.Zero(t, reg.completions)
}

func refundBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"type": "payment.refund",
		"data": map[string]any{"transactionId": "tx_5", "amount": 500.0},
	})
	require.NoError(t, err)
	return body
}

func signedRefundRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/paystack/refund", bytes.NewReader(body))
	req.Header.Set("x-vivenu-signature", signature.NewRawBodySigner("gw_sup3r_s3cret").Sign(body))
	return req
}

func TestRefundWebhook_FullChain(t *testing.T) {
	reg := &fakeRegistry{
		tx:   vivenu.Transaction{ID: "tx_5", CheckoutID: "co_9"},
		page: vivenu.CheckoutPayments{Docs: []vivenu.CheckoutPayment{{PaymentRequestID: "pr_1"}}},
	}
	prov := &fakeProvider{
		checkout: payments.Checkout{ProviderReference: "sb_tx_9", Currency: "GHS", Succeeded: true},
		refund:   payments.RefundResult{Success: true},
	}
	r := startButtonRouter(reg, prov)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRefundRequest(t, refundBody(t)))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"reference":"pr_1"}`, w.Body.String())
}

func TestRefundWebhook_MissingSignatureIs403(t *testing.T) {
	r := startButtonRouter(&fakeRegistry{}, &fakeProvider{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/paystack/refund", bytes.NewReader(refundBody(t)))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefundWebhook_TamperedBodyIs403(t *testing.T) {
	r := startButtonRouter(&fakeRegistry{}, &fakeProvider{})

	body := refundBody(t)
	req := signedRefundRequest(t, body)
	// Tamper one byte after signing.
	tampered := bytes.Replace(body, []byte("tx_5"), []byte("tx_6"), 1)
	req.Body = io.NopCloser(bytes.NewReader(tampered))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefundWebhook_WrongTypeIs400(t *testing.T) {
	r := startButtonRouter(&fakeRegistry{}, &fakeProvider{})

	body := []byte(`{"type":"payment.captured","data":{"transactionId":"tx_5","amount":500}}`)
	req := httptest.NewRequest(http.MethodPost, "/paystack/refund", bytes.NewReader(body))
	req.Header.Set("x-vivenu-signature", signature.NewRawBodySigner("gw_sup3r_s3cret").Sign(body))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefundWebhook_ProviderRejectionIsStructuredFailure(t *testing.T) {
	reg := &fakeRegistry{
		tx:   vivenu.Transaction{ID: "tx_5", CheckoutID: "co_9"},
		page: vivenu.CheckoutPayments{Docs: []vivenu.CheckoutPayment{{PaymentRequestID: "pr_1"}}},
	}
	prov := &fakeProvider{
		checkout: payments.Checkout{ProviderReference: "sb_tx_9", Currency: "GHS"},
		refund:   payments.RefundResult{Success: false, Error: "transaction not refundable"},
	}
	r := startButtonRouter(reg, prov)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRefundRequest(t, refundBody(t)))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, false, out["success"])
	require.Contains(t, out["error"], "not refundable")
}

func eventBody(t *testing.T, eventType, success string, sign bool) []byte {
	t.Helper()
	payload := map[string]any{
		"eventType":         eventType,
		"success":           success,
		"checkoutReference": nil,
		"payfacReference":   "21135253156",
		"merchantReference": "pr_1",
		"amount":            "48900",
		"currency":          "ISK",
		"reason":            nil,
	}
	if sign {
		signer, err := signature.NewFieldSignerHex(testHMACKeyHex, signature.NullAsLiteral)
		require.NoError(t, err)
		pf, mr, am, cu := "21135253156", "pr_1", "48900", "ISK"
		payload["hmacSignature"] = signer.Sign([]*string{nil, &pf, &mr, &am, &cu, nil, &success})
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestEventWebhook_CaptureCompletesOnce(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusNew)}
	r := straumurRouter(t, reg, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/straumur/webhook", bytes.NewReader(eventBody(t, "Capture", "true", true))))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, reg.completions)
}

func TestEventWebhook_IgnoredTypeIsAckedWithoutCompletion(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusNew)}
	r := straumurRouter(t, reg, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/straumur/webhook", bytes.NewReader(eventBody(t, "Refund", "true", true))))

	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, reg.completions)
}

func TestEventWebhook_TerminalRequestIsAckedWithoutCompletion(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusSucceeded)}
	r := straumurRouter(t, reg, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/straumur/webhook", bytes.NewReader(eventBody(t, "Authorization", "true", true))))

	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, reg.completions)
}

func TestEventWebhook_MissingSignatureIs403(t *testing.T) {
	r := straumurRouter(t, &fakeRegistry{}, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/straumur/webhook", bytes.NewReader(eventBody(t, "Capture", "true", false))))

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestEventWebhook_TamperedFieldIs403(t *testing.T) {
	reg := &fakeRegistry{pr: newPR(vivenu.StatusNew)}
	r := straumurRouter(t, reg, &fakeProvider{})

	body := eventBody(t, "Capture", "true", true)
	tampered := bytes.Replace(body, []byte(`"48900"`), []byte(`"48901"`), 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/straumur/webhook", bytes.NewReader(tampered)))

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Zero(t, reg.completions)
}

func TestHealth(t *testing.T) {
	r := startButtonRouter(&fakeRegistry{}, &fakeProvider{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "API RUNNING FOR MERCHANT")
}
