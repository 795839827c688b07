package auth

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/services/profile"
)

// SignUpHandler регистрирует пользователя по email и паролю
func (s *AuthService) SignUpHandler(c fiber.Ctx) error {
	var in SignUpInput
	if err := c.Bind().Body(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}
	in.IP = c.IP()

	ctx, cancel := db.GetContext()
	defer cancel()

	session, err := s.SignUp(ctx, in)
	if err != nil {
		return s.httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// SignInHandler выполняет вход по email и паролю
func (s *AuthService) SignInHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	session, err := s.SignIn(ctx, payload.Email, payload.Password)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(session)
}

// TelegramAuthHandler проверяет initData, создает JWT и возвращает его
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	session, err := s.TelegramLogin(ctx, payload.InitData)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(session)
}

func (s *AuthService) httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidSignUp), errors.Is(err, profile.ErrInvalidProfile):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidInitData):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUserBanned):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrEmailTaken):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	s.log.WithError(err).Error("❌ Ошибка авторизации")
	return fiber.NewError(fiber.StatusInternalServerError, "Authorization failed")
}
