package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/models"
	"github.com/rajivgeraev/skillswap-api/internal/store"
)

func newTestService() *NotificationService {
	s := NewNotificationService(store.NewMemoryStore(), logger.Discard())
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestNotifyCreatesUnread(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	id, err := s.Notify(ctx, models.Notification{
		UserID:          "b",
		Message:         "hello",
		Type:            models.NotificationSwapRequest,
		RelatedEntityID: "r1",
		Read:            true,
	})
	require.NoError(t, err)

	feed, err := s.List(ctx, "b")
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)

	n := feed.Notifications[0]
	assert.Equal(t, id, n.ID)
	assert.False(t, n.Read)
	assert.Equal(t, models.NotificationSwapRequest, n.Type)
	assert.Equal(t, "r1", n.RelatedEntityID)
	assert.Equal(t, 1, feed.Unread)
}

func TestNotifyValidation(t *testing.T) {
	s := newTestService()

	_, err := s.Notify(context.Background(), models.Notification{Message: "x"})
	assert.ErrorIs(t, err, ErrInvalidNotification)

	_, err = s.Notify(context.Background(), models.Notification{UserID: "b", Message: " "})
	assert.ErrorIs(t, err, ErrInvalidNotification)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	id, err := s.Notify(ctx, models.Notification{UserID: "b", Message: "hello"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.MarkRead(ctx, id, "a"), ErrNotRecipient)
	assert.ErrorIs(t, s.MarkRead(ctx, "missing", "b"), ErrNotificationNotFound)
	require.NoError(t, s.MarkRead(ctx, id, "b"))

	feed, err := s.List(ctx, "b")
	require.NoError(t, err)
	assert.True(t, feed.Notifications[0].Read)
	assert.Zero(t, feed.Unread)
}

func TestListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	first, err := s.Notify(ctx, models.Notification{UserID: "b", Message: "first"})
	require.NoError(t, err)
	second, err := s.Notify(ctx, models.Notification{UserID: "b", Message: "second"})
	require.NoError(t, err)
	_, err = s.Notify(ctx, models.Notification{UserID: "c", Message: "other"})
	require.NoError(t, err)

	feed, err := s.List(ctx, "b")
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 2)
	assert.Equal(t, second, feed.Notifications[0].ID)
	assert.Equal(t, first, feed.Notifications[1].ID)
}

func TestSubscribeDeliversFeed(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	feeds := make(chan Feed, 8)
	unsubscribe, err := s.Subscribe(ctx, "b", func(f Feed) { feeds <- f })
	require.NoError(t, err)
	defer unsubscribe()

	initial := <-feeds
	assert.Empty(t, initial.Notifications)

	_, err = s.Notify(ctx, models.Notification{UserID: "b", Message: "hello"})
	require.NoError(t, err)

	select {
	case f := <-feeds:
		assert.Len(t, f.Notifications, 1)
		assert.Equal(t, 1, f.Unread)
	case <-time.After(2 * time.Second):
		t.Fatal("feed not delivered")
	}
}
