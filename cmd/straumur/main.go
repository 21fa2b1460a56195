package main

import (
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"

	"github.com/aminebenkeroum/tiks-straumur/internal/config"
	apphttp "github.com/aminebenkeroum/tiks-straumur/internal/http"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/gateway"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/payments"
	"github.com/aminebenkeroum/tiks-straumur/internal/modules/vivenu"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.StraumurAPIKey == "" || cfg.StraumurHMACKey == "" {
		log.Fatal("STRAUMUR_API_KEY and STRAUMUR_HMAC_KEY environment variables are required")
	}

	registry := vivenu.NewClient(cfg.VivenuURL, cfg.VivenuAPIKey, cfg.GatewaySecret)
	provider := gateway.NewStraumurClient(cfg.StraumurAPIKey, cfg.StraumurTerminal)
	coord := payments.NewCoordinator(registry, provider, cfg.Currency, logger)

	r, err := apphttp.NewStraumurRouter(logger, cfg, coord)
	if err != nil {
		log.Fatalf("router setup failed: %v", err)
	}

	logger.Info("listening", "port", cfg.Port, "provider", provider.Name())
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
