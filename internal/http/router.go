package apphttp

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/aminebenkeroum/tiks-straumur/internal/config"
	"github.com/aminebenkeroum/tiks-straumur/internal/http/handlers"
	"github.com/aminebenkeroum/tiks-straumur/internal/http/middleware"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/payments"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/signature"
)

func newEngine(logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ErrorHandler(logger))
	return r
}

// NewStartButtonRouter wires the StartButton (Paystack) variant: redirect
// flow under /paystack plus the platform refund webhook authenticated
// over raw body bytes.
func NewStartButtonRouter(logger *slog.Logger, cfg config.Config, coord *payments.Coordinator) *gin.Engine {
	r := newEngine(logger)

	pay := handlers.NewPaymentHandler(logger, coord, cfg.AppURL+"/paystack/callback", "")
	refund := handlers.NewRefundWebhookHandler(logger, coord, signature.NewRawBodySigner(cfg.GatewaySecret))

	r.GET("/", handlers.Health(cfg.MerchantID))
	r.GET("/pay/callback", pay.StartCheckout)
	r.GET("/paystack/callback", pay.ConfirmReturn)
	r.GET("/paystack/failure", pay.FailReturn)
	r.POST("/paystack/refund", refund.Handle)

	return r
}

// NewStraumurRouter wires the Straumur variant: redirect flow under
// /straumur, the provider's field-tuple-signed event webhook, and the
// platform refund webhook.
func NewStraumurRouter(logger *slog.Logger, cfg config.Config, coord *payments.Coordinator) (*gin.Engine, error) {
	fieldSigner, err := signature.NewFieldSignerHex(cfg.StraumurHMACKey, signature.NullAsLiteral)
	if err != nil {
		return nil, err
	}

	r := newEngine(logger)

	pay := handlers.NewPaymentHandler(logger, coord, cfg.AppURL+"/straumur/callback", "checkoutReference")
	events := handlers.NewEventWebhookHandler(logger, coord, fieldSigner)
	refund := handlers.NewRefundWebhookHandler(logger, coord, signature.NewRawBodySigner(cfg.GatewaySecret))

	r.GET("/", handlers.Health(cfg.MerchantID))
	r.GET("/pay/callback", pay.StartCheckout)
	r.GET("/straumur/callback", pay.ConfirmReturn)
	r.GET("/straumur/failure", pay.FailReturn)
	r.POST("/straumur/webhook", events.Handle)
	r.POST("/straumur/refund", refund.Handle)

	return r, nil
}
