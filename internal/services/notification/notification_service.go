package notification

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
	ErrInvalidNotification  = errors.New("invalid notification")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("notification belongs to another user")
)

// NotificationService создает уведомления и отдает их получателю
type NotificationService struct {
	store store.Store
	log   *logrus.Entry
	now   func() time.Time
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(st store.Store, log *logrus.Entry) *NotificationService {
	return &NotificationService{store: st, log: log, now: time.Now}
}

// Notify создает непрочитанное уведомление и возвращает его ID
func (s *NotificationService) Notify(ctx context.Context, n models.Notification) (string, error) {
	if n.UserID == "" {
		return "", fmt.Errorf("%w: recipient is required", ErrInvalidNotification)
	}
	if strings.TrimSpace(n.Message) == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidNotification)
	}

	n.Read = false
	n.Timestamp = s.now().UTC()

	id, err := s.store.Create(ctx, models.CollectionNotifications, "", n.Fields())
	if err != nil {
		return "", fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return id, nil
}

// MarkRead отмечает уведомление прочитанным; менять его может только получатель
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	doc, err := s.store.Get(ctx, models.CollectionNotifications, notificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("ошибка получения уведомления: %w", err)
	}

	if models.NotificationFromDocument(doc).UserID != userID {
		return ErrNotRecipient
	}

	err = s.store.Update(ctx, models.CollectionNotifications, notificationID, store.Fields{"read": true})
	if err != nil {
		return fmt.Errorf("ошибка обновления уведомления: %w", err)
	}
	return nil
}

func userQuery(userID string) store.Query {
	return store.From(models.CollectionNotifications).
		Filter("userId", store.OpEqual, userID).
		Order("timestamp", true)
}

// Feed - уведомления пользователя и число непрочитанных
type Feed struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

func feedFromDocuments(docs []store.Document) Feed {
	feed := Feed{Notifications: make([]models.Notification, 0, len(docs))}
	for _, doc := range docs {
		n := models.NotificationFromDocument(doc)
		if !n.Read {
			feed.Unread++
		}
		feed.Notifications = append(feed.Notifications, n)
	}
	return feed
}

// List возвращает уведомления пользователя, новые первыми
func (s *NotificationService) List(ctx context.Context, userID string) (Feed, error) {
	docs, err := s.store.Query(ctx, userQuery(userID))
	if err != nil {
		return Feed{}, fmt.Errorf("ошибка получения уведомлений: %w", err)
	}
	return feedFromDocuments(docs), nil
}

// Subscribe доставляет актуальную ленту уведомлений при каждом изменении.
// Возвращаемую функцию отписки нужно вызвать, когда лента больше не нужна.
func (s *NotificationService) Subscribe(ctx context.Context, userID string, onUpdate func(Feed)) (func(), error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidNotification)
	}

	stream, err := s.store.Subscribe(ctx, userQuery(userID))
	if err != nil {
		return nil, fmt.Errorf("ошибка подписки на уведомления: %w", err)
	}

	return store.Watch(stream, func(snap store.Snapshot) {
		if snap.Err != nil {
			s.log.WithError(snap.Err).WithField("user_id", userID).Warn("⚠️ Ошибка живого запроса уведомлений")
			return
		}
		onUpdate(feedFromDocuments(snap.Docs))
	}), nil
}
