package routes

import (
	"github.com/anjiri1684/fundipay/handlers"
	"github.com/anjiri1684/fundipay/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments/initiate", handlers.InitiatePayment)
	api.Post("/payments/webhook", handlers.HandlePaymentWebhook)
	api.Get("/payments/status", handlers.GetPaymentStatus)

	api.Post("/payments/reconcile-offline", handlers.ReconcileOfflinePayment)
	api.Post("/payments/reconcile-offline/batch", middleware.Protected(), handlers.ReconcileOfflineBatch)
}
