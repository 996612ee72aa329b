package routes

import (
	"github.com/anjiri1684/fundipay/handlers"
	"github.com/gofiber/fiber/v2"
)

func WorkerRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/workers", handlers.RegisterWorker)
	api.Get("/workers/:id", handlers.GetWorker)
}
