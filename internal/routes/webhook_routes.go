package routes

import (
	"ndara/internal/config"
	"ndara/internal/handlers"
	"ndara/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

// SetupWebhookRoutes mounts payment provider callbacks. They carry no user
// token; the optional shared secret authenticates them instead.
func SetupWebhookRoutes(e *echo.Echo, activator handlers.PaymentActivator, security handlers.SecurityRecorder, cfg config.PaymentsConfig) {
	log := logger.New("webhook_routes")

	webhookHandler := handlers.NewWebhookHandler(activator, security, cfg.MonerooWebhookSecret)

	hooks := e.Group("/webhooks")
	hooks.POST("/moneroo", webhookHandler.Moneroo)

	if cfg.MonerooWebhookSecret == "" {
		log.Warn("MONEROO_WEBHOOK_SECRET is empty; webhook signatures are not checked")
	}
}
