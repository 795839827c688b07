package chat

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
	ErrMissingParticipant = errors.New("both participant ids are required")
	ErrSelfChat           = errors.New("cannot start a chat with yourself")
	ErrChatNotFound       = errors.New("chat not found")
	ErrNotParticipant     = errors.New("not a participant")
	ErrEmptyMessage       = errors.New("message text is required")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserBanned         = errors.New("user is banned")
)

// ProfileResolver загружает профили пачкой
type ProfileResolver interface {
	Resolve(ctx context.Context, userIDs []string) map[string]models.UserProfile
}

// ChatService представляет сервис для работы с чатами
type ChatService struct {
	store    store.Store
	profiles ProfileResolver
	log      *logrus.Entry
	now      func() time.Time
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(st store.Store, profiles ProfileResolver, log *logrus.Entry) *ChatService {
	return &ChatService{store: st, profiles: profiles, log: log, now: time.Now}
}

// RequestChatID - ID чата, привязанного к заявке
func RequestChatID(swapRequestID string) string {
	return "swap_" + swapRequestID
}

// DirectChatID - ID прямого чата; не зависит от порядка участников
func DirectChatID(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return "direct_" + userA + "_" + userB
}

// OpenDirect открывает прямой чат с существующим и не заблокированным пользователем
func (s *ChatService) OpenDirect(ctx context.Context, userID, partnerID string) (string, error) {
	if userID == "" || partnerID == "" {
		return "", ErrMissingParticipant
	}
	if userID == partnerID {
		return "", ErrSelfChat
	}

	partner, ok := s.profiles.Resolve(ctx, []string{partnerID})[partnerID]
	if !ok {
		return "", ErrUserNotFound
	}
	if partner.Status == models.UserStatusBanned {
		return "", ErrUserBanned
	}

	return s.FindOrCreate(ctx, "", userID, partnerID)
}

// FindOrCreate возвращает чат пары пользователей, создавая его при отсутствии.
// С swapRequestID чат привязан к заявке, без него - прямой чат пары.
// Повторные и конкурентные вызовы возвращают один и тот же ID.
func (s *ChatService) FindOrCreate(ctx context.Context, swapRequestID, userA, userB string) (string, error) {
	if userA == "" || userB == "" {
		return "", ErrMissingParticipant
	}
	if userA == userB {
		return "", ErrSelfChat
	}

	if swapRequestID != "" {
		docs, err := s.store.Query(ctx, store.From(models.CollectionChats).
			Filter("swapRequestId", store.OpEqual, swapRequestID).
			Take(1))
		if err != nil {
			return "", fmt.Errorf("ошибка поиска чата заявки: %w", err)
		}
		if len(docs) > 0 {
			return docs[0].ID, nil
		}
		return s.create(ctx, RequestChatID(swapRequestID), swapRequestID, userA, userB)
	}

	docs, err := s.store.Query(ctx, store.From(models.CollectionChats).
		Filter("participants", store.OpArrayContains, userA))
	if err != nil {
		return "", fmt.Errorf("ошибка поиска прямого чата: %w", err)
	}
	for _, doc := range docs {
		chat := models.ChatFromDocument(doc)
		if chat.SwapRequestID == "" && chat.HasParticipant(userB) {
			return chat.ID, nil
		}
	}
	return s.create(ctx, DirectChatID(userA, userB), "", userA, userB)
}

func (s *ChatService) create(ctx context.Context, chatID, swapRequestID, userA, userB string) (string, error) {
	now := s.now().UTC()
	chat := models.Chat{
		Participants:  []string{userA, userB},
		SwapRequestID: swapRequestID,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	}

	id, err := s.store.Create(ctx, models.CollectionChats, chatID, chat.Fields())
	if errors.Is(err, store.ErrAlreadyExists) {
		// Чат создан параллельным вызовом
		return chatID, nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка создания чата: %w", err)
	}
	return id, nil
}

// Chat возвращает чат, если пользователь в нем участвует
func (s *ChatService) Chat(ctx context.Context, chatID, userID string) (models.Chat, error) {
	doc, err := s.store.Get(ctx, models.CollectionChats, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Chat{}, ErrChatNotFound
		}
		return models.Chat{}, fmt.Errorf("ошибка получения чата: %w", err)
	}

	chat := models.ChatFromDocument(doc)
	if !chat.HasParticipant(userID) {
		return models.Chat{}, ErrNotParticipant
	}
	return chat, nil
}

// AppendMessage добавляет сообщение в чат от имени участника
func (s *ChatService) AppendMessage(ctx context.Context, chatID, senderID, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyMessage
	}

	if _, err := s.Chat(ctx, chatID, senderID); err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      text,
		Timestamp: s.now().UTC(),
	}

	id, err := s.store.Create(ctx, models.MessagesCollection(chatID), "", msg.Fields())
	if err != nil {
		return models.Message{}, fmt.Errorf("ошибка сохранения сообщения: %w", err)
	}
	msg.ID = id

	// Сообщение уже отправлено, lastMessageAt только для сортировки
	err = s.store.Update(ctx, models.CollectionChats, chatID, store.Fields{
		"lastMessageAt": msg.Timestamp,
		"updatedAt":     msg.Timestamp,
	})
	if err != nil {
		s.log.WithError(err).WithField("chat_id", chatID).Warn("⚠️ Не удалось обновить время последнего сообщения")
	}

	return msg, nil
}

func messagesQuery(chatID string) store.Query {
	return store.From(models.MessagesCollection(chatID)).Order("timestamp", false)
}

func messagesFromDocuments(docs []store.Document) []models.Message {
	messages := make([]models.Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, models.MessageFromDocument(doc))
	}
	return messages
}

// Messages возвращает сообщения чата по возрастанию времени
func (s *ChatService) Messages(ctx context.Context, chatID, userID string) ([]models.Message, error) {
	if _, err := s.Chat(ctx, chatID, userID); err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, messagesQuery(chatID))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сообщений: %w", err)
	}
	return messagesFromDocuments(docs), nil
}

// SubscribeMessages доставляет полный список сообщений чата при каждом изменении.
// Функцию отписки нужно вызвать, иначе подписка продолжит работать.
func (s *ChatService) SubscribeMessages(ctx context.Context, chatID string, onUpdate func([]models.Message)) (func(), error) {
	if chatID == "" {
		return nil, ErrChatNotFound
	}

	stream, err := s.store.Subscribe(ctx, messagesQuery(chatID))
	if err != nil {
		return nil, fmt.Errorf("ошибка подписки на сообщения: %w", err)
	}

	return store.Watch(stream, func(snap store.Snapshot) {
		if snap.Err != nil {
			s.log.WithError(snap.Err).WithField("chat_id", chatID).Warn("⚠️ Ошибка живого запроса сообщений")
			return
		}
		onUpdate(messagesFromDocuments(snap.Docs))
	}), nil
}

// Partners возвращает собеседников пользователя: вторые стороны принятых заявок
func (s *ChatService) Partners(ctx context.Context, userID string) ([]models.UserProfile, error) {
	accepted := string(models.SwapStatusAccepted)
	queries := []struct {
		query   store.Query
		partner func(models.SwapRequest) string
	}{
		{
			query: store.From(models.CollectionSwapRequests).
				Filter("fromUserId", store.OpEqual, userID).
				Filter("status", store.OpEqual, accepted),
			partner: func(r models.SwapRequest) string { return r.ToUserID },
		},
		{
			query: store.From(models.CollectionSwapRequests).
				Filter("toUserId", store.OpEqual, userID).
				Filter("status", store.OpEqual, accepted),
			partner: func(r models.SwapRequest) string { return r.FromUserID },
		},
	}

	var ids []string
	seen := map[string]bool{}
	for _, q := range queries {
		docs, err := s.store.Query(ctx, q.query)
		if err != nil {
			return nil, fmt.Errorf("ошибка получения принятых заявок: %w", err)
		}
		for _, doc := range docs {
			id := q.partner(models.SwapRequestFromDocument(doc))
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	profiles := s.profiles.Resolve(ctx, ids)
	partners := make([]models.UserProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			partners = append(partners, p)
		}
	}
	return partners, nil
}

// ChatSummary - чат с профилем собеседника
type ChatSummary struct {
	models.Chat
	Partner *models.UserProfile `json:"partner,omitempty"`
}

// Chats возвращает чаты пользователя, недавно активные первыми
func (s *ChatService) Chats(ctx context.Context, userID string) ([]ChatSummary, error) {
	docs, err := s.store.Query(ctx, store.From(models.CollectionChats).
		Filter("participants", store.OpArrayContains, userID).
		Order("lastMessageAt", true))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения чатов: %w", err)
	}

	chats := make([]models.Chat, 0, len(docs))
	partnerIDs := make([]string, 0, len(docs))
	for _, doc := range docs {
		chat := models.ChatFromDocument(doc)
		chats = append(chats, chat)
		partnerIDs = append(partnerIDs, partnerOf(chat, userID))
	}

	profiles := s.profiles.Resolve(ctx, partnerIDs)
	summaries := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := ChatSummary{Chat: chat}
		if p, ok := profiles[partnerOf(chat, userID)]; ok {
			summary.Partner = &p
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func partnerOf(chat models.Chat, userID string) string {
	for _, id := range chat.Participants {
		if id != userID {
			return id
		}
	}
	return ""
}
