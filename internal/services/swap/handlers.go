package swap

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
)

type createRequestBody struct {
	ToUserID    string `json:"toUserId"`
	SkillWanted string `json:"skillWanted"`
	Message     string `json:"message"`
}

type statusBody struct {
	Status models.SwapStatus `json:"status"`
}

// CreateRequest создает заявку от имени текущего пользователя
func (s *SwapService) CreateRequest(c fiber.Ctx) error {
	var body createRequestBody
	if err := c.Bind().Body(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Неверный формат данных")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	result, err := s.Create(ctx, CreateInput{
		FromUserID:  middleware.CurrentUserID(c),
		ToUserID:    body.ToUserID,
		SkillWanted: body.SkillWanted,
		Message:     body.Message,
	})
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"request": result.Request,
		"effects": result.Effects,
	})
}

// UpdateStatus меняет статус заявки от имени текущего пользователя
func (s *SwapService) UpdateStatus(c fiber.Ctx) error {
	var body statusBody
	if err := c.Bind().Body(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Неверный формат данных")
	}
	if !body.Status.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Неизвестный статус заявки")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	result, err := s.TransitionAs(ctx, middleware.CurrentUserID(c), c.Params("id"), body.Status)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"request": result.Request,
		"effects": result.Effects,
	})
}

// GetRequests возвращает входящие, исходящие и завершенные заявки
func (s *SwapService) GetRequests(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	view, err := s.views.Snapshot(ctx, middleware.CurrentUserID(c))
	if err != nil {
		s.log.WithError(err).Error("Ошибка получения заявок")
		return httpError(err)
	}
	return c.JSON(view)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrMissingUserID), errors.Is(err, ErrSelfRequest),
		errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrInvalidStatus):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrRequestNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Ошибка обработки заявки")
}
