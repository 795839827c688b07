package feedback

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API отзывов
func (s *FeedbackService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/feedback")
	api.Use(authMiddleware)

	api.Post("/", s.CreateFeedback)

	// Группа /api/users принадлежит каталогу профилей, поэтому middleware
	// передается в маршрут: в Fiber v3 он идет после обработчика
	app.Get("/api/users/:id/feedback", s.GetUserFeedback, authMiddleware)
}
