package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aminebenkeroum/tiks-straumur/internal/http/middleware"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/payments"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/signature"
	"github.com/aminebenkeroum/tiks-straumur/internal/shared/apperr"
)

const vivenuSignatureHeader = "x-vivenu-signature"

// RefundWebhookHandler receives the ticketing platform's refund
// notification. The signature covers the raw body bytes, so the body is
// captured before any JSON parsing.
type RefundWebhookHandler struct {
	Logger *slog.Logger
	Coord  *payments.Coordinator
	Signer *signature.RawBodySigner
}

func NewRefundWebhookHandler(logger *slog.Logger, coord *payments.Coordinator, signer *signature.RawBodySigner) *RefundWebhookHandler {
	return &RefundWebhookHandler{Logger: logger, Coord: coord, Signer: signer}
}

type refundWebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		TransactionID string  `json:"transactionId"`
		Amount        float64 `json:"amount"`
	} `json:"data"`
}

// POST /<provider>/refund
func (h *RefundWebhookHandler) Handle(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("invalid body"))
		return
	}

	var payload refundWebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		middleware.Fail(c, apperr.InvalidErr("invalid payload"))
		return
	}
	if payload.Type != "payment.refund" {
		middleware.Fail(c, apperr.InvalidErr("unsupported type"))
		return
	}

	provided := c.GetHeader(vivenuSignatureHeader)
	if provided == "" {
		middleware.Fail(c, apperr.InvalidSignatureErr("missing signature"))
		return
	}
	if !h.Signer.Verify(rawBody, provided) {
		middleware.Fail(c, apperr.InvalidSignatureErr("invalid signature"))
		return
	}

	amountMinor := int64(math.Round(payload.Data.Amount))
	outcome, err := h.Coord.ProcessRefund(c.Request.Context(), payload.Data.TransactionID, amountMinor)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if !outcome.Success {
		// Structured failure so the platform can decide on redelivery.
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": outcome.Error})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": outcome.Reference})
}

// EventWebhookHandler receives provider payment events. The signature is
// a body field computed over an ordered field tuple extracted from the
// parsed payload, a deliberately different protocol from the raw-body one.
type EventWebhookHandler struct {
	Logger *slog.Logger
	Coord  *payments.Coordinator
	Signer *signature.FieldSigner
}

func NewEventWebhookHandler(logger *slog.Logger, coord *payments.Coordinator, signer *signature.FieldSigner) *EventWebhookHandler {
	return &EventWebhookHandler{Logger: logger, Coord: coord, Signer: signer}
}

type providerEventPayload struct {
	EventType         string  `json:"eventType"`
	Success           string  `json:"success"`
	CheckoutReference *string `json:"checkoutReference"`
	PayfacReference   *string `json:"payfacReference"`
	MerchantReference *string `json:"merchantReference"`
	Amount            *string `json:"amount"`
	Currency          *string `json:"currency"`
	Reason            *string `json:"reason"`
	HmacSignature     string  `json:"hmacSignature"`
}

// canonicalFields is the wire-contract field order; it is part of the
// signature, not a representation choice.
func (p *providerEventPayload) canonicalFields() []*string {
	return []*string{
		p.CheckoutReference,
		p.PayfacReference,
		p.MerchantReference,
		p.Amount,
		p.Currency,
		p.Reason,
		&p.Success,
	}
}

// POST /<provider>/webhook
func (h *EventWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("invalid body"))
		return
	}

	var payload providerEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		middleware.Fail(c, apperr.InvalidErr("invalid payload"))
		return
	}

	if payload.HmacSignature == "" {
		middleware.Fail(c, apperr.InvalidSignatureErr("missing signature"))
		return
	}
	if !h.Signer.Verify(payload.canonicalFields(), payload.HmacSignature) {
		middleware.Fail(c, apperr.InvalidSignatureErr("invalid signature"))
		return
	}

	ev := payments.Event{
		Type:    payload.EventType,
		Success: payload.Success,
	}
	if payload.MerchantReference != nil {
		ev.MerchantReference = *payload.MerchantReference
	}
	if payload.CheckoutReference != nil {
		ev.CheckoutReference = *payload.CheckoutReference
	}
	if payload.PayfacReference != nil {
		ev.PayfacReference = *payload.PayfacReference
	}
	if payload.Amount != nil {
		ev.Amount = *payload.Amount
	}
	if payload.Currency != nil {
		ev.Currency = *payload.Currency
	}
	if payload.Reason != nil {
		ev.Reason = *payload.Reason
	}

	if err := h.Coord.HandleEvent(c.Request.Context(), ev); err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
