package swap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/metrics"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/store"
)

// effect - побочное действие после зафиксированной записи
type effect struct {
	name string
	run  func(ctx context.Context) error
}

// EffectOutcome - исход побочного действия. Ошибка не влияет на результат основной операции.
type EffectOutcome struct {
	Name  string `json:"name"`
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Failed возвращает неуспешные побочные действия
func (r Result) Failed() []EffectOutcome {
	var failed []EffectOutcome
	for _, o := range r.Effects {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// runEffects выполняет действия по порядку; ошибка или паника одного не останавливает остальные
func (s *SwapService) runEffects(ctx context.Context, requestID string, effects []effect) []EffectOutcome {
	outcomes := make([]EffectOutcome, 0, len(effects))
	for _, e := range effects {
		outcome := EffectOutcome{Name: e.name}
		if err := runEffect(ctx, e); err != nil {
			outcome.Err = err
			outcome.Error = err.Error()

			metrics.SideEffectFailures.WithLabelValues(e.name).Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"request_id": requestID,
				"effect":     e.name,
			}).Warn("⚠️ Побочное действие заявки не выполнено")
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func runEffect(ctx context.Context, e effect) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.run(ctx)
}

// transitionEffects собирает действия для нового статуса заявки
func (s *SwapService) transitionEffects(req *models.SwapRequest) []effect {
	switch req.Status {
	case models.SwapStatusAccepted:
		return []effect{
			s.statusNotification(req, req.FromUserID, func(from, to models.UserProfile) string {
				return fmt.Sprintf("%s accepted your skill swap request!", to.DisplayName("User"))
			}),
			s.ensureChat(req),
		}
	case models.SwapStatusRejected:
		return []effect{
			s.statusNotification(req, req.FromUserID, func(from, to models.UserProfile) string {
				return fmt.Sprintf("%s declined your skill swap request.", to.DisplayName("User"))
			}),
		}
	case models.SwapStatusCancelled:
		return []effect{
			s.statusNotification(req, req.ToUserID, func(from, to models.UserProfile) string {
				return fmt.Sprintf("%s cancelled their skill swap request.", from.DisplayName("User"))
			}),
		}
	case models.SwapStatusCompleted:
		return []effect{
			s.statusNotification(req, req.FromUserID, func(from, to models.UserProfile) string {
				return fmt.Sprintf("Your skill swap with %s is completed!", to.DisplayName("User"))
			}),
			s.ensureChat(req),
		}
	}
	return nil
}

// notifyCreated уведомляет получателя о новой заявке, если оба профиля найдены
func (s *SwapService) notifyCreated(ctx context.Context, req models.SwapRequest) error {
	profiles := s.profiles.Resolve(ctx, []string{req.FromUserID, req.ToUserID})
	from, okFrom := profiles[req.FromUserID]
	_, okTo := profiles[req.ToUserID]
	if !okFrom || !okTo {
		return fmt.Errorf("профили участников заявки %s не найдены", req.ID)
	}

	_, err := s.notifier.Notify(ctx, models.Notification{
		UserID:          req.ToUserID,
		Message:         fmt.Sprintf("%s sent you a new skill swap request!", from.DisplayName("Someone")),
		Type:            models.NotificationSwapRequest,
		RelatedEntityID: req.ID,
	})
	return err
}

// statusNotification уведомляет recipient об изменении статуса.
// Ненайденный профиль заменяется именем по умолчанию.
func (s *SwapService) statusNotification(req *models.SwapRequest, recipient string, text func(from, to models.UserProfile) string) effect {
	return effect{
		name: "notify_" + string(req.Status),
		run: func(ctx context.Context) error {
			profiles := s.profiles.Resolve(ctx, []string{req.FromUserID, req.ToUserID})

			_, err := s.notifier.Notify(ctx, models.Notification{
				UserID:          recipient,
				Message:         text(profiles[req.FromUserID], profiles[req.ToUserID]),
				Type:            models.NotificationSwapRequestStatus,
				RelatedEntityID: req.ID,
			})
			return err
		},
	}
}

// ensureChat создает чат заявки, если его еще нет, и сохраняет chatId.
// chatId не перезаписывается: ID чата заявки детерминирован.
func (s *SwapService) ensureChat(req *models.SwapRequest) effect {
	return effect{
		name: "ensure_chat",
		run: func(ctx context.Context) error {
			if req.ChatID != "" {
				return nil
			}

			chatID, err := s.chats.FindOrCreate(ctx, req.ID, req.FromUserID, req.ToUserID)
			if err != nil {
				return fmt.Errorf("ошибка создания чата заявки: %w", err)
			}

			err = s.store.Update(ctx, models.CollectionSwapRequests, req.ID, store.Fields{"chatId": chatID})
			if err != nil {
				return fmt.Errorf("ошибка сохранения chatId: %w", err)
			}
			req.ChatID = chatID
			return nil
		},
	}
}
