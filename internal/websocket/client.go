package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rajivgeraev/skillswap-api/internal/metrics"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/services/notification"
)

const (
	// Максимальное время ожидания для pong от клиента
	pongWait = 60 * time.Second

	// Отправлять ping-сообщения клиенту с этим интервалом
	pingPeriod = (pongWait * 9) / 10

	writeWait = 10 * time.Second

	// Максимальный размер сообщения от клиента
	maxMessageSize = 64 * 1024

	// Размер буфера для отправляемых сообщений
	writeBufferSize = 256

	// Входящие сообщения: в среднем 10 в секунду, всплеск до 20
	messageRate  = 10
	messageBurst = 20
)

const (
	TopicRequests      = "requests"
	TopicNotifications = "notifications"
	chatTopicPrefix    = "chat:"
)

// ChatTopic возвращает тему подписки на сообщения чата
func ChatTopic(chatID string) string {
	return chatTopicPrefix + chatID
}

// topicKind - метка метрики без ID чата
func topicKind(topic string) string {
	if strings.HasPrefix(topic, chatTopicPrefix) {
		return "chat"
	}
	return topic
}

// ClientMessage - входящее сообщение клиента
type ClientMessage struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id,omitempty"`
	Topic  string `json:"topic,omitempty"`
	Text   string `json:"text,omitempty"`
}

var (
	errRateLimited    = errors.New("rate limit exceeded")
	errUnknownMessage = errors.New("unknown message type")
	errMissingChatID  = errors.New("chat_id is required")
)

// Client представляет собой отдельное WebSocket соединение
type Client struct {
	ID        uuid.UUID
	UserID    string
	conn      *websocket.Conn
	send      chan []byte // Буферизованный канал исходящих сообщений
	manager   *Manager
	limiter   *rate.Limiter
	log       *logrus.Entry
	ctx       context.Context
	cancel    context.CancelFunc
	closeChan chan struct{}

	subsMutex     sync.Mutex
	subscriptions map[string]func() // тема -> функция отписки
	closed        bool
}

// NewClient создает новый экземпляр Client
func NewClient(userID string, conn *websocket.Conn, manager *Manager) *Client {
	ctx, cancel := context.WithCancel(manager.ctx)
	id := uuid.New()
	return &Client{
		ID:            id,
		UserID:        userID,
		conn:          conn,
		send:          make(chan []byte, writeBufferSize),
		manager:       manager,
		limiter:       rate.NewLimiter(rate.Limit(messageRate), messageBurst),
		log:           manager.log.WithFields(logrus.Fields{"client_id": id, "user_id": userID}),
		ctx:           ctx,
		cancel:        cancel,
		closeChan:     make(chan struct{}),
		subscriptions: make(map[string]func()),
	}
}

// Start запускает клиентские горутины для чтения и записи
func (c *Client) Start() {
	// Добавляем клиент к менеджеру
	c.manager.AddClient(c)

	// Запускаем горутины для чтения и записи
	go c.readPump()
	go c.writePump()
}

// readPump обрабатывает входящие сообщения от клиента
func (c *Client) readPump() {
	defer func() {
		c.log.WithField("topics", c.Topics()).Debug("Client disconnected")
		c.disposeAll()
		c.cancel()
		c.manager.RemoveClient(c.ID)
		c.conn.Close()
		close(c.closeChan)
	}()

	// Настраиваем соединение
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("Unexpected close error")
			}
			break
		}

		if !c.limiter.Allow() {
			c.sendError("", errRateLimited)
			continue
		}
		c.handleIncomingMessage(message)
	}
}

// writePump отправляет сообщения клиенту
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Debug("Error writing message")
				return
			}
		case <-ticker.C:
			// Отправляем ping для поддержания соединения
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// emit ставит событие в очередь отправки без блокировки
func (c *Client) emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		c.log.WithError(err).Error("Error marshaling event")
		return
	}

	select {
	case c.send <- data:
	case <-c.closeChan:
	default:
		// Канал заполнен, клиент слишком медленный - закрываем соединение
		c.log.Warn("Send channel full, closing connection")
		c.conn.Close()
	}
}

func (c *Client) emitPayload(eventType EventType, topic, chatID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.log.WithError(err).Error("Error marshaling payload")
		return
	}
	c.emit(Event{Type: eventType, Topic: topic, ChatID: chatID, Payload: raw})
}

func (c *Client) sendError(topic string, err error) {
	c.emit(Event{Type: EventError, Topic: topic, Error: err.Error()})
}

// handleIncomingMessage обрабатывает входящие сообщения от клиента
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError("", errors.New("invalid message format"))
		return
	}

	switch msg.Type {
	case "subscribe_requests":
		c.subscribe(TopicRequests, func(ctx context.Context) (func(), error) {
			return c.manager.feeds.Requests.Subscribe(ctx, c.UserID, func(view models.RequestsView) {
				c.emitPayload(EventRequestsView, TopicRequests, "", view)
			})
		})

	case "subscribe_notifications":
		c.subscribe(TopicNotifications, func(ctx context.Context) (func(), error) {
			return c.manager.feeds.Notifications.Subscribe(ctx, c.UserID, func(feed notification.Feed) {
				c.emitPayload(EventNotifications, TopicNotifications, "", feed)
			})
		})

	case "subscribe_chat":
		if msg.ChatID == "" {
			c.sendError("", errMissingChatID)
			return
		}
		topic := ChatTopic(msg.ChatID)
		c.subscribe(topic, func(ctx context.Context) (func(), error) {
			if _, err := c.manager.feeds.Chats.Chat(ctx, msg.ChatID, c.UserID); err != nil {
				return nil, err
			}
			return c.manager.feeds.Chats.SubscribeMessages(ctx, msg.ChatID, func(messages []models.Message) {
				c.emitPayload(EventChatMessages, topic, msg.ChatID, messages)
			})
		})

	case "unsubscribe":
		if c.unsubscribe(msg.Topic) {
			c.emit(Event{Type: EventUnsubscribed, Topic: msg.Topic})
		}

	case "send_message":
		if msg.ChatID == "" {
			c.sendError("", errMissingChatID)
			return
		}
		// Новое сообщение придет подписчикам чата через живой запрос
		if _, err := c.manager.feeds.Chats.AppendMessage(c.ctx, msg.ChatID, c.UserID, msg.Text); err != nil {
			c.sendError(ChatTopic(msg.ChatID), err)
		}

	default:
		c.sendError("", errUnknownMessage)
	}
}

// subscribe открывает подписку, если по теме ее еще нет
func (c *Client) subscribe(topic string, start func(ctx context.Context) (func(), error)) {
	c.subsMutex.Lock()
	defer c.subsMutex.Unlock()

	if c.closed {
		return
	}
	if _, exists := c.subscriptions[topic]; exists {
		return
	}

	dispose, err := start(c.ctx)
	if err != nil {
		c.sendError(topic, err)
		return
	}

	c.subscriptions[topic] = dispose
	metrics.RealtimeSubscriptions.WithLabelValues(topicKind(topic)).Inc()
	c.emit(Event{Type: EventSubscribed, Topic: topic})
}

// unsubscribe снимает подписку; возвращает false, если ее не было
func (c *Client) unsubscribe(topic string) bool {
	c.subsMutex.Lock()
	dispose, exists := c.subscriptions[topic]
	delete(c.subscriptions, topic)
	c.subsMutex.Unlock()

	if !exists {
		return false
	}
	dispose()
	metrics.RealtimeSubscriptions.WithLabelValues(topicKind(topic)).Dec()
	return true
}

// disposeAll снимает все подписки клиента; новые после этого не открываются
func (c *Client) disposeAll() {
	c.subsMutex.Lock()
	c.closed = true
	subs := c.subscriptions
	c.subscriptions = make(map[string]func())
	c.subsMutex.Unlock()

	for topic, dispose := range subs {
		dispose()
		metrics.RealtimeSubscriptions.WithLabelValues(topicKind(topic)).Dec()
	}
}

// Topics возвращает активные темы подписок в алфавитном порядке
func (c *Client) Topics() []string {
	c.subsMutex.Lock()
	defer c.subsMutex.Unlock()

	topics := make([]string, 0, len(c.subscriptions))
	for topic := range c.subscriptions {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}
