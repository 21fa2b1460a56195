package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aminebenkeroum/tiks-straumur/internal/http/middleware"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/payments"
	"github.com/aminebenkeroum/tiks-straumur/internal/shared/apperr"
)

// PaymentHandler serves the redirect flow: checkout initiation and the
// browser's return from the provider.
type PaymentHandler struct {
	Logger *slog.Logger
	Coord  *payments.Coordinator

	// ReturnURL is the absolute URL the provider redirects the browser
	// back to; the payment id is appended as paymentRequestId.
	ReturnURL string

	// CorrelationParam is the provider-specific query param on the return
	// redirect that carries the provider's own session reference. Empty
	// means the shared reference is used for the status poll.
	CorrelationParam string
}

func NewPaymentHandler(logger *slog.Logger, coord *payments.Coordinator, returnURL, correlationParam string) *PaymentHandler {
	return &PaymentHandler{Logger: logger, Coord: coord, ReturnURL: returnURL, CorrelationParam: correlationParam}
}

// GET /pay/callback?paymentId=...
func (h *PaymentHandler) StartCheckout(c *gin.Context) {
	paymentID := c.Query("paymentId")
	if paymentID == "" {
		middleware.Fail(c, apperr.InvalidErr("paymentId is required"))
		return
	}

	returnURL := h.ReturnURL + "?paymentRequestId=" + paymentID
	redirect, err := h.Coord.StartCheckout(c.Request.Context(), paymentID, returnURL, returnURL)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, redirect)
}

// GET /<provider>/callback?paymentRequestId=...
func (h *PaymentHandler) ConfirmReturn(c *gin.Context) {
	paymentID := c.Query("paymentRequestId")
	if paymentID == "" {
		middleware.Fail(c, apperr.InvalidErr("paymentRequestId is required"))
		return
	}

	var providerRef string
	if h.CorrelationParam != "" {
		providerRef = c.Query(h.CorrelationParam)
	}

	redirect, err := h.Coord.ConfirmReturn(c.Request.Context(), paymentID, providerRef)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, redirect)
}

// GET /<provider>/failure?paymentRequestId=...
func (h *PaymentHandler) FailReturn(c *gin.Context) {
	paymentID := c.Query("paymentRequestId")
	if paymentID == "" {
		middleware.Fail(c, apperr.InvalidErr("paymentRequestId is required"))
		return
	}

	redirect, err := h.Coord.FailReturn(c.Request.Context(), paymentID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, redirect)
}
