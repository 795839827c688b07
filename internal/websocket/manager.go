package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillswap-api/internal/metrics"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/services/notification"
)

// RequestsFeed отдает живое сводное представление заявок пользователя
type RequestsFeed interface {
	Subscribe(ctx context.Context, userID string, onUpdate func(models.RequestsView)) (func(), error)
}

// ChatFeed - операции чатов, доступные через WebSocket
type ChatFeed interface {
	Chat(ctx context.Context, chatID, userID string) (models.Chat, error)
	SubscribeMessages(ctx context.Context, chatID string, onUpdate func([]models.Message)) (func(), error)
	AppendMessage(ctx context.Context, chatID, senderID, text string) (models.Message, error)
}

// NotificationFeed отдает живой список уведомлений пользователя
type NotificationFeed interface {
	Subscribe(ctx context.Context, userID string, onUpdate func(notification.Feed)) (func(), error)
}

// Feeds - источники живых данных для клиентов
type Feeds struct {
	Requests      RequestsFeed
	Chats         ChatFeed
	Notifications NotificationFeed
}

// Manager представляет центральный менеджер для всех WebSocket соединений
type Manager struct {
	clients      map[uuid.UUID]*Client
	clientsMutex sync.RWMutex
	userClients  map[string]map[uuid.UUID]bool // userID -> map[clientID]bool
	userMutex    sync.RWMutex
	feeds        Feeds
	log          *logrus.Entry
	ctx          context.Context
	cancel       context.CancelFunc
}

// EventType определяет тип события WebSocket
type EventType string

const (
	EventRequestsView  EventType = "requests_view"
	EventChatMessages  EventType = "chat_messages"
	EventNotifications EventType = "notifications"
	EventSubscribed    EventType = "subscribed"
	EventUnsubscribed  EventType = "unsubscribed"
	EventError         EventType = "error"
)

// Event представляет структуру сообщения для WebSocket
type Event struct {
	Type      EventType       `json:"type"`
	Topic     string          `json:"topic,omitempty"`
	ChatID    string          `json:"chat_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewManager создает новый экземпляр Manager
func NewManager(feeds Feeds, log *logrus.Entry) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[string]map[uuid.UUID]bool),
		feeds:       feeds,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// AddClient регистрирует нового клиента
func (m *Manager) AddClient(client *Client) {
	m.clientsMutex.Lock()
	m.clients[client.ID] = client
	m.clientsMutex.Unlock()

	// Связываем клиент с пользователем
	m.userMutex.Lock()
	if _, exists := m.userClients[client.UserID]; !exists {
		m.userClients[client.UserID] = make(map[uuid.UUID]bool)
	}
	m.userClients[client.UserID][client.ID] = true
	m.userMutex.Unlock()

	metrics.RealtimeClients.Inc()
	m.log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   client.UserID,
	}).Info("WebSocket client connected")
}

// RemoveClient удаляет клиента
func (m *Manager) RemoveClient(clientID uuid.UUID) {
	m.clientsMutex.Lock()
	client, exists := m.clients[clientID]
	delete(m.clients, clientID)
	m.clientsMutex.Unlock()

	if !exists {
		return
	}

	userID := client.UserID

	// Удаляем клиент из связи с пользователем
	m.userMutex.Lock()
	if clients, ok := m.userClients[userID]; ok {
		delete(clients, clientID)
		// Если это был последний клиент пользователя, удаляем запись пользователя
		if len(clients) == 0 {
			delete(m.userClients, userID)
		}
	}
	m.userMutex.Unlock()

	metrics.RealtimeClients.Dec()
	m.log.WithFields(logrus.Fields{
		"client_id": clientID,
		"user_id":   userID,
	}).Info("WebSocket client disconnected")
}

// UserConnections возвращает число открытых соединений пользователя
func (m *Manager) UserConnections(userID string) int {
	m.userMutex.RLock()
	defer m.userMutex.RUnlock()
	return len(m.userClients[userID])
}

// Shutdown корректно завершает работу менеджера WebSocket
func (m *Manager) Shutdown() {
	m.cancel()

	m.clientsMutex.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.clientsMutex.RUnlock()

	// readPump каждого клиента сам снимет подписки и удалит клиента
	for _, client := range clients {
		client.conn.Close()
	}
}
