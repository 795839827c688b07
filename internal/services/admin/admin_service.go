package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/store"
)

var (
	ErrInvalidReport = errors.New("invalid report")
	ErrSelfReport    = errors.New("cannot report yourself")
)

const (
	reportsLimit  = 50
	actionBanUser = "ban_user"
)

// StatusSetter меняет статус пользователя
type StatusSetter interface {
	SetStatus(ctx context.Context, userID string, status models.UserStatus) error
}

// AdminService принимает жалобы и выполняет действия модерации
type AdminService struct {
	store    store.Store
	profiles StatusSetter
	log      *logrus.Entry
	now      func() time.Time
}

// NewAdminService создает новый экземпляр AdminService
func NewAdminService(st store.Store, profiles StatusSetter, log *logrus.Entry) *AdminService {
	return &AdminService{store: st, profiles: profiles, log: log, now: time.Now}
}

// CreateReport сохраняет жалобу в статусе pending
func (s *AdminService) CreateReport(ctx context.Context, r models.Report) (models.Report, error) {
	if r.ReporterID == "" || r.ReportedUserID == "" {
		return models.Report{}, fmt.Errorf("%w: reported user is required", ErrInvalidReport)
	}
	if r.ReporterID == r.ReportedUserID {
		return models.Report{}, ErrSelfReport
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return models.Report{}, fmt.Errorf("%w: reason is required", ErrInvalidReport)
	}

	r.Description = strings.TrimSpace(r.Description)
	r.Status = models.ReportStatusPending
	r.CreatedAt = s.now().UTC()

	id, err := s.store.Create(ctx, models.CollectionReports, "", r.Fields())
	if err != nil {
		return models.Report{}, fmt.Errorf("ошибка сохранения жалобы: %w", err)
	}
	r.ID = id
	return r, nil
}

// Reports возвращает последние жалобы
func (s *AdminService) Reports(ctx context.Context) ([]models.Report, error) {
	docs, err := s.store.Query(ctx, store.From(models.CollectionReports).
		Order("createdAt", true).
		Take(reportsLimit))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения жалоб: %w", err)
	}

	out := make([]models.Report, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.ReportFromDocument(doc))
	}
	return out, nil
}

// BanUser блокирует пользователя и записывает действие в журнал
func (s *AdminService) BanUser(ctx context.Context, userID, adminID string) (models.AdminAction, error) {
	if err := s.profiles.SetStatus(ctx, userID, models.UserStatusBanned); err != nil {
		return models.AdminAction{}, err
	}

	action := models.AdminAction{
		AdminID:    adminID,
		ActionType: actionBanUser,
		TargetID:   userID,
		Details:    "User banned by admin",
		CreatedAt:  s.now().UTC(),
	}
	id, err := s.store.Create(ctx, models.CollectionAdminActions, "", action.Fields())
	if err != nil {
		return models.AdminAction{}, fmt.Errorf("ошибка записи действия администратора: %w", err)
	}
	action.ID = id

	s.log.WithFields(logrus.Fields{
		"admin_id": adminID,
		"user_id":  userID,
	}).Info("✅ Пользователь заблокирован")
	return action, nil
}
