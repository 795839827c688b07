package feedback

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// CreateFeedback сохраняет отзыв текущего пользователя
func (s *FeedbackService) CreateFeedback(c fiber.Ctx) error {
	var in CreateInput
	if err := c.Bind().Body(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Неверный формат данных")
	}
	in.FromUserID = middleware.CurrentUserID(c)

	ctx, cancel := db.GetContext()
	defer cancel()

	fb, err := s.Create(ctx, in)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "feedback": fb})
}

// GetUserFeedback возвращает последние отзывы о пользователе
func (s *FeedbackService) GetUserFeedback(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	list, err := s.ForUser(ctx, c.Params("id"))
	if err != nil {
		s.log.WithError(err).Error("Ошибка получения отзывов")
		return httpError(err)
	}
	return c.JSON(fiber.Map{"feedback": list})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidRating), errors.Is(err, ErrSelfFeedback), errors.Is(err, ErrNotCompleted):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotParticipant):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrRequestNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateFeedback):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Ошибка работы с отзывами")
}
