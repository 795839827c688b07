package swap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/metrics"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/store"
)

var (
	ErrMissingUserID     = errors.New("user id is required")
	ErrSelfRequest       = errors.New("cannot send a swap request to yourself")
	ErrEmptyMessage      = errors.New("message is required")
	ErrRequestNotFound   = errors.New("swap request not found")
	ErrInvalidStatus     = errors.New("invalid swap request status")
	ErrInvalidTransition = errors.New("swap request cannot move to this status")
	ErrForbidden         = errors.New("not allowed to change this swap request")
)

// ProfileDirectory загружает профили участников
type ProfileDirectory interface {
	Resolve(ctx context.Context, userIDs []string) map[string]models.UserProfile
}

// Notifier создает уведомления
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) (string, error)
}

// ChatMaterializer гарантирует существование чата пары пользователей
type ChatMaterializer interface {
	FindOrCreate(ctx context.Context, swapRequestID, userA, userB string) (string, error)
}

// SwapService управляет жизненным циклом заявок на обмен навыками
type SwapService struct {
	store    store.Store
	profiles ProfileDirectory
	notifier Notifier
	chats    ChatMaterializer
	views    *Reconciler
	log      *logrus.Entry
	now      func() time.Time
}

// NewSwapService создает новый экземпляр SwapService
func NewSwapService(st store.Store, profiles ProfileDirectory, notifier Notifier, chats ChatMaterializer, log *logrus.Entry) *SwapService {
	return &SwapService{
		store:    st,
		profiles: profiles,
		notifier: notifier,
		chats:    chats,
		views:    NewReconciler(st, profiles, log),
		log:      log,
		now:      time.Now,
	}
}

// Views возвращает сборщик сводного представления заявок
func (s *SwapService) Views() *Reconciler {
	return s.views
}

// CreateInput - данные новой заявки
type CreateInput struct {
	FromUserID  string `json:"fromUserId"`
	ToUserID    string `json:"toUserId"`
	SkillWanted string `json:"skillWanted"`
	Message     string `json:"message"`
}

// Result - итог операции: заявка после основной записи и исходы побочных эффектов
type Result struct {
	Request models.SwapRequest `json:"request"`
	Effects []EffectOutcome    `json:"effects"`
}

// Create создает заявку в статусе pending и уведомляет получателя
func (s *SwapService) Create(ctx context.Context, in CreateInput) (Result, error) {
	if in.FromUserID == "" || in.ToUserID == "" {
		return Result{}, ErrMissingUserID
	}
	if in.FromUserID == in.ToUserID {
		return Result{}, ErrSelfRequest
	}
	if strings.TrimSpace(in.Message) == "" {
		return Result{}, ErrEmptyMessage
	}

	now := s.now().UTC()
	req := models.SwapRequest{
		FromUserID:  in.FromUserID,
		ToUserID:    in.ToUserID,
		SkillWanted: strings.TrimSpace(in.SkillWanted),
		Message:     strings.TrimSpace(in.Message),
		Status:      models.SwapStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.store.Create(ctx, models.CollectionSwapRequests, "", req.Fields())
	if err != nil {
		return Result{}, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	req.ID = id

	effects := []effect{
		{name: "notify_recipient", run: func(ctx context.Context) error {
			return s.notifyCreated(ctx, req)
		}},
	}

	return Result{Request: req, Effects: s.runEffects(ctx, req.ID, effects)}, nil
}

// Transition переводит заявку в новый статус.
// Запись статуса условная: она применяется, только если текущий статус - допустимый предшественник.
func (s *SwapService) Transition(ctx context.Context, requestID string, status models.SwapStatus) (Result, error) {
	return s.transition(ctx, requestID, status, nil)
}

// TransitionAs выполняет переход от имени участника: принять или отклонить может получатель,
// отменить - отправитель, завершить - любой из участников.
func (s *SwapService) TransitionAs(ctx context.Context, actorID, requestID string, status models.SwapStatus) (Result, error) {
	return s.transition(ctx, requestID, status, func(req models.SwapRequest) error {
		var allowed bool
		switch status {
		case models.SwapStatusAccepted, models.SwapStatusRejected:
			allowed = req.ToUserID == actorID
		case models.SwapStatusCancelled:
			allowed = req.FromUserID == actorID
		case models.SwapStatusCompleted:
			allowed = req.Involves(actorID)
		}
		if !allowed {
			return ErrForbidden
		}
		return nil
	})
}

func (s *SwapService) transition(ctx context.Context, requestID string, status models.SwapStatus, authorize func(models.SwapRequest) error) (Result, error) {
	if requestID == "" {
		return Result{}, ErrRequestNotFound
	}
	predecessor, ok := status.Predecessor()
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	req, err := s.Get(ctx, requestID)
	if err != nil {
		return Result{}, err
	}
	if authorize != nil {
		if err := authorize(req); err != nil {
			return Result{}, err
		}
	}
	// Завершенную заявку не трогаем; гонки ловит условие записи ниже
	if req.Status.Terminal() {
		return Result{}, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, req.Status, status)
	}

	updatedAt := nextUpdatedAt(s.now().UTC(), req.UpdatedAt)
	err = s.store.Update(ctx, models.CollectionSwapRequests, requestID, store.Fields{
		"status":    string(status),
		"updatedAt": updatedAt,
	}, store.Where("status", store.OpEqual, string(predecessor)))

	switch {
	case errors.Is(err, store.ErrPreconditionFailed):
		return Result{}, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, req.Status, status)
	case errors.Is(err, store.ErrNotFound):
		return Result{}, ErrRequestNotFound
	case err != nil:
		return Result{}, fmt.Errorf("ошибка обновления статуса заявки: %w", err)
	}

	req.Status = status
	req.UpdatedAt = updatedAt
	metrics.SwapTransitions.WithLabelValues(string(status)).Inc()

	effects := s.transitionEffects(&req)
	outcomes := s.runEffects(ctx, req.ID, effects)
	return Result{Request: req, Effects: outcomes}, nil
}

// Get возвращает заявку по ID
func (s *SwapService) Get(ctx context.Context, requestID string) (models.SwapRequest, error) {
	doc, err := s.store.Get(ctx, models.CollectionSwapRequests, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.SwapRequest{}, ErrRequestNotFound
		}
		return models.SwapRequest{}, fmt.Errorf("ошибка получения заявки: %w", err)
	}
	return models.SwapRequestFromDocument(doc), nil
}

// nextUpdatedAt гарантирует строгое возрастание updatedAt даже при отставании часов
func nextUpdatedAt(now, previous time.Time) time.Time {
	if !now.After(previous) {
		return previous.Add(time.Microsecond)
	}
	return now
}
