package models

import (
	"time"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

const CollectionNotifications = "notifications"

// NotificationType определяет тип уведомления
type NotificationType string

const (
	NotificationSwapRequest       NotificationType = "swap_request"
	NotificationSwapRequestStatus NotificationType = "swap_request_status"
	NotificationFeedback          NotificationType = "feedback"
)

// Notification представляет уведомление одному получателю
type Notification struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Message         string           `json:"message"`
	Type            NotificationType `json:"type"`
	RelatedEntityID string           `json:"relatedEntityId,omitempty"`
	Read            bool             `json:"read"`
	Timestamp       time.Time        `json:"timestamp"`
}

func (n Notification) Fields() store.Fields {
	f := store.Fields{
		"userId":    n.UserID,
		"message":   n.Message,
		"type":      string(n.Type),
		"read":      n.Read,
		"timestamp": n.Timestamp,
	}
	if n.RelatedEntityID != "" {
		f["relatedEntityId"] = n.RelatedEntityID
	}
	return f
}

func NotificationFromDocument(doc store.Document) Notification {
	f := doc.Fields
	return Notification{
		ID:              doc.ID,
		UserID:          f.String("userId"),
		Message:         f.String("message"),
		Type:            NotificationType(f.String("type")),
		RelatedEntityID: f.String("relatedEntityId"),
		Read:            f.BoolOr("read", false),
		Timestamp:       f.Time("timestamp"),
	}
}
