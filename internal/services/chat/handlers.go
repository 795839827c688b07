package chat

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
)

// GetChats возвращает все чаты пользователя
func (s *ChatService) GetChats(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	chats, err := s.Chats(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(fiber.Map{
		"chats": chats,
		"count": len(chats),
	})
}

// GetPartners возвращает пользователей, с которыми можно переписываться
func (s *ChatService) GetPartners(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	partners, err := s.Partners(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(fiber.Map{"users": partners})
}

// CreateChat открывает прямой чат с пользователем
func (s *ChatService) CreateChat(c fiber.Ctx) error {
	var requestData struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Неверный формат данных")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	chatID, err := s.OpenDirect(ctx, middleware.CurrentUserID(c), requestData.UserID)
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "chat_id": chatID})
}

// GetChatMessages возвращает сообщения чата
func (s *ChatService) GetChatMessages(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	messages, err := s.Messages(ctx, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// SendMessage отправляет сообщение в чат
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	var requestData struct {
		Text string `json:"text"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Неверный формат данных")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	msg, err := s.AppendMessage(ctx, c.Params("id"), middleware.CurrentUserID(c), requestData.Text)
	if err != nil {
		return s.httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": msg})
}

func (s *ChatService) httpError(err error) error {
	switch {
	case errors.Is(err, ErrMissingParticipant), errors.Is(err, ErrSelfChat), errors.Is(err, ErrEmptyMessage):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrChatNotFound), errors.Is(err, ErrUserNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotParticipant), errors.Is(err, ErrUserBanned):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	s.log.WithError(err).Error("Ошибка работы с чатом")
	return fiber.NewError(fiber.StatusInternalServerError, "Ошибка работы с чатом")
}
