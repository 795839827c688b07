package auth

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth")

	api.Post("/signup", s.SignUpHandler)
	api.Post("/signin", s.SignInHandler)
	api.Post("/telegram", s.TelegramAuthHandler)
}
