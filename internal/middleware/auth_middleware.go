package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

const userIDKey = "userID"

// AuthMiddleware создаёт middleware для проверки JWT
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Проверяем Bearer токен
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		userID, err := jwtService.ExtractUserID(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Проверяем, что userID является валидным UUID
		if _, err := uuid.Parse(userID); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid user ID",
			})
		}

		c.Locals(userIDKey, userID)

		return c.Next()
	}
}

// AdminOnly пропускает только администраторов; ставится после AuthMiddleware
func AdminOnly(isAdmin func(userID string) bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !isAdmin(CurrentUserID(c)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentUserID возвращает ID пользователя, установленный AuthMiddleware
func CurrentUserID(c fiber.Ctx) string {
	userID, _ := c.Locals(userIDKey).(string)
	return userID
}
