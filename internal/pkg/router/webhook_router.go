package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/palmora-app/palmora/app/controllers"
)

type WebhookRouter struct {
}

// InstallRouter mounts the gateway-facing webhook endpoint. The route is
// deliberately outside the API group: it authenticates by signature, not by
// API key, and must not sit behind the rate limiter (the gateway retries).
func (h WebhookRouter) InstallRouter(app *fiber.App) {
	app.Post("/webhooks/payment", controllers.HandlePaymentWebhook)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
