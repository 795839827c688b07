package models

import (
	"time"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

const CollectionFeedback = "feedback"

// Feedback представляет отзыв об участнике завершенного обмена
type Feedback struct {
	ID            string    `json:"id"`
	SwapRequestID string    `json:"swapRequestId"`
	FromUserID    string    `json:"fromUserId"`
	ToUserID      string    `json:"toUserId"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (f Feedback) Fields() store.Fields {
	return store.Fields{
		"swapRequestId": f.SwapRequestID,
		"fromUserId":    f.FromUserID,
		"toUserId":      f.ToUserID,
		"rating":        f.Rating,
		"comment":       f.Comment,
		"createdAt":     f.CreatedAt,
	}
}

func FeedbackFromDocument(doc store.Document) Feedback {
	f := doc.Fields
	return Feedback{
		ID:            doc.ID,
		SwapRequestID: f.String("swapRequestId"),
		FromUserID:    f.String("fromUserId"),
		ToUserID:      f.String("toUserId"),
		Rating:        f.Int("rating"),
		Comment:       f.String("comment"),
		CreatedAt:     f.Time("createdAt"),
	}
}
