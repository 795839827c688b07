package profile

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// GetMyProfile возвращает профиль текущего пользователя
func (s *ProfileService) GetMyProfile(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	p, err := s.Get(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"user": p})
}

// UpdateMyProfile обновляет профиль текущего пользователя
func (s *ProfileService) UpdateMyProfile(c fiber.Ctx) error {
	var upd ProfileUpdate
	if err := c.Bind().Body(&upd); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Неверный формат данных")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	p, err := s.Update(ctx, middleware.CurrentUserID(c), upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "user": p})
}

// GetUser возвращает профиль другого пользователя
func (s *ProfileService) GetUser(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	p, err := s.Get(ctx, c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	// Скрытые профили видит только владелец
	if !p.IsPublic && p.ID != middleware.CurrentUserID(c) {
		return fiber.NewError(fiber.StatusNotFound, ErrProfileNotFound.Error())
	}
	return c.JSON(fiber.Map{"user": p})
}

// ListUsers возвращает каталог публичных пользователей
func (s *ProfileService) ListUsers(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	users, err := s.ListPublic(ctx, c.Query("skill"))
	if err != nil {
		s.log.WithError(err).Error("Ошибка получения списка пользователей")
		return fiber.NewError(fiber.StatusInternalServerError, "Ошибка получения списка пользователей")
	}
	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidProfile):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrProfileExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Ошибка работы с профилем")
}
