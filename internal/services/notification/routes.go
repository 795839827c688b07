package notification

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API уведомлений
func (s *NotificationService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/notifications")
	api.Use(authMiddleware)

	api.Get("/", s.GetNotifications)
	api.Post("/:id/read", s.MarkNotificationRead)
}
