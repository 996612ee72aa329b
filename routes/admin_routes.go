package routes

import (
	"github.com/anjiri1684/fundipay/handlers"
	"github.com/anjiri1684/fundipay/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Post("/blacklist", handlers.AddBlacklistEntry)
	admin.Delete("/blacklist/:phone", handlers.RemoveBlacklistEntry)
	admin.Get("/fraud-checks", handlers.ListFraudChecks)
	admin.Get("/payouts/failed", handlers.ListFailedPayouts)
}
