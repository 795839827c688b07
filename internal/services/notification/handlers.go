package notification

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// GetNotifications возвращает уведомления текущего пользователя
func (s *NotificationService) GetNotifications(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	feed, err := s.List(ctx, middleware.CurrentUserID(c))
	if err != nil {
		s.log.WithError(err).Error("Ошибка получения уведомлений")
		return fiber.NewError(fiber.StatusInternalServerError, "Ошибка получения уведомлений")
	}
	return c.JSON(feed)
}

// MarkNotificationRead отмечает уведомление прочитанным
func (s *NotificationService) MarkNotificationRead(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	err := s.MarkRead(ctx, c.Params("id"), middleware.CurrentUserID(c))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true})
	case errors.Is(err, ErrNotificationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotRecipient):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	s.log.WithError(err).Error("Ошибка обновления уведомления")
	return fiber.NewError(fiber.StatusInternalServerError, "Ошибка обновления уведомления")
}
