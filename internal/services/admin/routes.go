package admin

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// SetupRoutes настраивает маршруты жалоб и модерации
func (s *AdminService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler, isAdmin func(userID string) bool) {
	reports := app.Group("/api/reports")
	reports.Use(authMiddleware)

	reports.Post("/", s.SubmitReport)

	api := app.Group("/api/admin")
	api.Use(authMiddleware)
	api.Use(middleware.AdminOnly(isAdmin))

	api.Get("/reports", s.GetReports)
	api.Post("/users/:id/ban", s.BanUserHandler)
}
