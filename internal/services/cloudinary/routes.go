package cloudinary

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты загрузки изображений
func (s *CloudinaryService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	// Защищенные маршруты
	protected := app.Group("/api/upload")
	protected.Use(authMiddleware)

	protected.Get("/params", s.GenerateUploadParams)
}
