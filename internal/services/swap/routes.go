package swap

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API заявок на обмен
func (s *SwapService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/swaps")
	api.Use(authMiddleware)

	api.Get("/", s.GetRequests)
	api.Post("/", s.CreateRequest)
	api.Put("/:id/status", s.UpdateStatus)
}
