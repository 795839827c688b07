package models

import (
	"time"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

// CollectionChats - коллекция чатов
const CollectionChats = "chats"

// MessagesCollection возвращает коллекцию сообщений чата
func MessagesCollection(chatID string) string {
	return CollectionChats + "/" + chatID + "/messages"
}

// Chat представляет чат двух пользователей
type Chat struct {
	ID            string    `json:"id"`
	Participants  []string  `json:"participants"`
	SwapRequestID string    `json:"swapRequestId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

func (c Chat) Fields() store.Fields {
	f := store.Fields{
		"participants":  c.Participants,
		"createdAt":     c.CreatedAt,
		"updatedAt":     c.UpdatedAt,
		"lastMessageAt": c.LastMessageAt,
	}
	if c.SwapRequestID != "" {
		f["swapRequestId"] = c.SwapRequestID
	}
	return f
}

func ChatFromDocument(doc store.Document) Chat {
	f := doc.Fields
	return Chat{
		ID:            doc.ID,
		Participants:  f.Strings("participants"),
		SwapRequestID: f.String("swapRequestId"),
		CreatedAt:     f.Time("createdAt"),
		UpdatedAt:     f.Time("updatedAt"),
		LastMessageAt: f.Time("lastMessageAt"),
	}
}

// HasParticipant проверяет, входит ли пользователь в чат
func (c Chat) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Message представляет сообщение в чате
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (m Message) Fields() store.Fields {
	return store.Fields{
		"chatId":    m.ChatID,
		"senderId":  m.SenderID,
		"text":      m.Text,
		"timestamp": m.Timestamp,
	}
}

func MessageFromDocument(doc store.Document) Message {
	f := doc.Fields
	return Message{
		ID:        doc.ID,
		ChatID:    f.String("chatId"),
		SenderID:  f.String("senderId"),
		Text:      f.String("text"),
		Timestamp: f.Time("timestamp"),
	}
}
