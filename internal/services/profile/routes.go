package profile

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API профилей
func (s *ProfileService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	// Профиль текущего пользователя
	me := app.Group("/api/profile")
	me.Use(authMiddleware)

	me.Get("/", s.GetMyProfile)
	me.Put("/", s.UpdateMyProfile)

	// Каталог пользователей
	api := app.Group("/api/users")
	api.Use(authMiddleware)

	api.Get("/", s.ListUsers)
	api.Get("/:id", s.GetUser)
}
