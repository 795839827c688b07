package admin

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/services/profile"
)

type reportBody struct {
	ReportedUserID string `json:"reportedUserId"`
	Reason         string `json:"reason"`
	Description    string `json:"description"`
}

// SubmitReport сохраняет жалобу текущего пользователя
func (s *AdminService) SubmitReport(c fiber.Ctx) error {
	var body reportBody
	if err := c.Bind().Body(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Неверный формат данных")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	report, err := s.CreateReport(ctx, models.Report{
		ReporterID:     middleware.CurrentUserID(c),
		ReportedUserID: body.ReportedUserID,
		Reason:         body.Reason,
		Description:    body.Description,
	})
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "report": report})
}

// GetReports возвращает последние жалобы
func (s *AdminService) GetReports(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	reports, err := s.Reports(ctx)
	if err != nil {
		s.log.WithError(err).Error("Ошибка получения жалоб")
		return httpError(err)
	}
	return c.JSON(fiber.Map{"reports": reports, "count": len(reports)})
}

// BanUserHandler блокирует пользователя
func (s *AdminService) BanUserHandler(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	action, err := s.BanUser(ctx, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"success": true, "action": action})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidReport), errors.Is(err, ErrSelfReport):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrProfileNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Ошибка модерации")
}
