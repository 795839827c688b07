package models

import (
	"time"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

// CollectionSwapRequests - коллекция заявок на обмен навыками
const CollectionSwapRequests = "swapRequests"

// SwapStatus определяет статус заявки
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCancelled SwapStatus = "cancelled"
	SwapStatusCompleted SwapStatus = "completed"
)

// Valid сообщает, известен ли статус
func (s SwapStatus) Valid() bool {
	switch s {
	case SwapStatusPending, SwapStatusAccepted, SwapStatusRejected, SwapStatusCancelled, SwapStatusCompleted:
		return true
	}
	return false
}

// Terminal сообщает, что из статуса нет переходов
func (s SwapStatus) Terminal() bool {
	return s == SwapStatusRejected || s == SwapStatusCancelled || s == SwapStatusCompleted
}

// Predecessor возвращает единственный статус, из которого допустим переход в s
func (s SwapStatus) Predecessor() (SwapStatus, bool) {
	switch s {
	case SwapStatusAccepted, SwapStatusRejected, SwapStatusCancelled:
		return SwapStatusPending, true
	case SwapStatusCompleted:
		return SwapStatusAccepted, true
	}
	return "", false
}

// SwapRequest представляет заявку на обмен навыками
type SwapRequest struct {
	ID          string     `json:"id"`
	FromUserID  string     `json:"fromUserId"`
	ToUserID    string     `json:"toUserId"`
	SkillWanted string     `json:"skillWanted"`
	Message     string     `json:"message"`
	Status      SwapStatus `json:"status"`
	ChatID      string     `json:"chatId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (r SwapRequest) Fields() store.Fields {
	f := store.Fields{
		"fromUserId":  r.FromUserID,
		"toUserId":    r.ToUserID,
		"skillWanted": r.SkillWanted,
		"message":     r.Message,
		"status":      string(r.Status),
		"createdAt":   r.CreatedAt,
		"updatedAt":   r.UpdatedAt,
	}
	if r.ChatID != "" {
		f["chatId"] = r.ChatID
	}
	return f
}

func SwapRequestFromDocument(doc store.Document) SwapRequest {
	f := doc.Fields
	return SwapRequest{
		ID:          doc.ID,
		FromUserID:  f.String("fromUserId"),
		ToUserID:    f.String("toUserId"),
		SkillWanted: f.String("skillWanted"),
		Message:     f.String("message"),
		Status:      SwapStatus(f.String("status")),
		ChatID:      f.String("chatId"),
		CreatedAt:   f.Time("createdAt"),
		UpdatedAt:   f.Time("updatedAt"),
	}
}

// Involves сообщает, является ли пользователь участником заявки
func (r SwapRequest) Involves(userID string) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

// JoinedSwapRequest - заявка с профилями отправителя и получателя
type JoinedSwapRequest struct {
	SwapRequest
	FromUser *UserProfile `json:"fromUser,omitempty"`
	ToUser   *UserProfile `json:"toUser,omitempty"`
}

// CompletedSwap - завершенный обмен с профилем партнера
type CompletedSwap struct {
	JoinedSwapRequest
	Partner        *UserProfile `json:"partner,omitempty"`
	CompletedDate  time.Time    `json:"completedDate"`
	SkillExchanged string       `json:"skillExchanged"`
}

// RequestsView - сводное представление заявок пользователя
type RequestsView struct {
	Received  []JoinedSwapRequest `json:"received"`
	Sent      []JoinedSwapRequest `json:"sent"`
	Completed []CompletedSwap     `json:"completed"`
}
