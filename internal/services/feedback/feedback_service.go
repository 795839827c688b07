package feedback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/store"
)

var (
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrSelfFeedback      = errors.New("cannot leave feedback for yourself")
	ErrRequestNotFound   = errors.New("swap request not found")
	ErrNotCompleted      = errors.New("feedback is allowed only for completed swaps")
	ErrNotParticipant    = errors.New("only swap participants can leave feedback")
	ErrDuplicateFeedback = errors.New("feedback already left for this swap")
)

const recentFeedbackLimit = 10

// Notifier создает уведомления
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) (string, error)
}

// FeedbackService принимает отзывы об участниках завершенных обменов
type FeedbackService struct {
	store    store.Store
	notifier Notifier
	log      *logrus.Entry
	now      func() time.Time
}

// NewFeedbackService создает новый экземпляр FeedbackService
func NewFeedbackService(st store.Store, notifier Notifier, log *logrus.Entry) *FeedbackService {
	return &FeedbackService{store: st, notifier: notifier, log: log, now: time.Now}
}

// CreateInput - данные нового отзыва
type CreateInput struct {
	SwapRequestID string `json:"swapRequestId"`
	FromUserID    string `json:"-"`
	ToUserID      string `json:"toUserId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
}

// feedbackID - один отзыв от пользователя на заявку
func feedbackID(swapRequestID, fromUserID string) string {
	return swapRequestID + "_" + fromUserID
}

// Create сохраняет отзыв, пересчитывает рейтинг получателя и уведомляет его
func (s *FeedbackService) Create(ctx context.Context, in CreateInput) (models.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return models.Feedback{}, ErrInvalidRating
	}
	if in.FromUserID == in.ToUserID {
		return models.Feedback{}, ErrSelfFeedback
	}

	doc, err := s.store.Get(ctx, models.CollectionSwapRequests, in.SwapRequestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Feedback{}, ErrRequestNotFound
		}
		return models.Feedback{}, fmt.Errorf("ошибка получения заявки: %w", err)
	}
	req := models.SwapRequestFromDocument(doc)
	if req.Status != models.SwapStatusCompleted {
		return models.Feedback{}, ErrNotCompleted
	}
	if !req.Involves(in.FromUserID) || !req.Involves(in.ToUserID) {
		return models.Feedback{}, ErrNotParticipant
	}

	fb := models.Feedback{
		SwapRequestID: req.ID,
		FromUserID:    in.FromUserID,
		ToUserID:      in.ToUserID,
		Rating:        in.Rating,
		Comment:       strings.TrimSpace(in.Comment),
		CreatedAt:     s.now().UTC(),
	}

	id, err := s.store.Create(ctx, models.CollectionFeedback, feedbackID(req.ID, in.FromUserID), fb.Fields())
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return models.Feedback{}, ErrDuplicateFeedback
		}
		return models.Feedback{}, fmt.Errorf("ошибка сохранения отзыва: %w", err)
	}
	fb.ID = id

	if err := s.recomputeRating(ctx, fb.ToUserID); err != nil {
		s.log.WithError(err).WithField("user_id", fb.ToUserID).Warn("⚠️ Не удалось пересчитать рейтинг")
	}

	_, err = s.notifier.Notify(ctx, models.Notification{
		UserID:          fb.ToUserID,
		Message:         fmt.Sprintf("You received a %d-star review!", fb.Rating),
		Type:            models.NotificationFeedback,
		RelatedEntityID: fb.ID,
	})
	if err != nil {
		s.log.WithError(err).WithField("feedback_id", fb.ID).Warn("⚠️ Не удалось отправить уведомление об отзыве")
	}

	return fb, nil
}

// recomputeRating записывает в профиль средний рейтинг, округленный до десятых
func (s *FeedbackService) recomputeRating(ctx context.Context, userID string) error {
	docs, err := s.store.Query(ctx, store.From(models.CollectionFeedback).
		Filter("toUserId", store.OpEqual, userID))
	if err != nil {
		return fmt.Errorf("ошибка получения отзывов: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	var sum int
	for _, doc := range docs {
		sum += doc.Fields.Int("rating")
	}
	avg := math.Round(float64(sum)/float64(len(docs))*10) / 10

	return s.store.Update(ctx, models.CollectionUsers, userID, store.Fields{"rating": avg})
}

// ForUser возвращает последние отзывы о пользователе
func (s *FeedbackService) ForUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	docs, err := s.store.Query(ctx, store.From(models.CollectionFeedback).
		Filter("toUserId", store.OpEqual, userID).
		Order("createdAt", true).
		Take(recentFeedbackLimit))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отзывов: %w", err)
	}

	out := make([]models.Feedback, 0, len(docs))
	for _, doc := range docs {
		out = append(out, models.FeedbackFromDocument(doc))
	}
	return out, nil
}
