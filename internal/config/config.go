package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Config is the explicit, startup-time configuration for one adapter
// instance. Secrets and URLs come from the environment exactly once;
// nothing reads os.Getenv after construction.
type Config struct {
	Port   string `validate:"required,numeric"`
	AppURL string `validate:"required,url"`

	VivenuURL    string `validate:"required,url"`
	VivenuAPIKey string `validate:"required"`

	// Shared secret: signs the confirm call body and keys the HMAC on the
	// vivenu refund webhook.
	GatewaySecret string `validate:"required"`

	// StartButton credentials. SecretKey authorizes transaction
	// initialization, PaymentKey authorizes status polls and refunds.
	StartButtonSecretKey  string
	StartButtonPaymentKey string

	// Straumur credentials. HMACKey is hex-encoded on the wire.
	StraumurAPIKey   string
	StraumurHMACKey  string
	StraumurTerminal string

	// MerchantID only labels log lines and the health probe.
	MerchantID string

	Currency string `validate:"required,len=3,uppercase"`
}

func Load() (Config, error) {
	cfg := Config{
		Port:                  getenv("PORT", "8080"),
		AppURL:                os.Getenv("APP_URL"),
		VivenuURL:             getenv("VIVENU_URL", "https://vivenu.com"),
		VivenuAPIKey:          os.Getenv("API_KEY"),
		GatewaySecret:         os.Getenv("GATEWAY_SECRET"),
		StartButtonSecretKey:  os.Getenv("SECRET_KEY"),
		StartButtonPaymentKey: os.Getenv("SECRET_KEY_P"),
		StraumurAPIKey:        os.Getenv("STRAUMUR_API_KEY"),
		StraumurHMACKey:       os.Getenv("STRAUMUR_HMAC_KEY"),
		StraumurTerminal:      os.Getenv("STRAUMUR_TERMINAL_ID"),
		MerchantID:            os.Getenv("MERCHANT_ID"),
		Currency:              getenv("CURRENCY", "GHS"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
