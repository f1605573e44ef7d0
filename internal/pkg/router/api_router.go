package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/palmora-app/palmora/app/controllers"
	"github.com/palmora-app/palmora/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware())

	v1.Post("/coupons/validate", controllers.HandleValidateCoupon)
	v1.Post("/orders", controllers.HandleCreateOrder)
	v1.Get("/orders/:reference", controllers.HandleGetOrder)
	v1.Get("/me/entitlement", controllers.HandleGetEntitlement)

	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Post("/coupons", controllers.HandleAdminCoupons)
	admin.Get("/coupons", controllers.HandleAdminCoupons)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
