package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillswap-api/internal/logger"
)

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "docstore:chats/c1/messages", channelName("chats/c1/messages"))

	collection, ok := collectionFromChannel("docstore:swapRequests")
	assert.True(t, ok)
	assert.Equal(t, "swapRequests", collection)

	_, ok = collectionFromChannel("other:swapRequests")
	assert.False(t, ok)
	_, ok = collectionFromChannel("docstore:")
	assert.False(t, ok)
}

// Нужен работающий Redis: REDIS_TEST_URL=redis://localhost:6379/0
func TestRedisBusDeliversAcrossInstances(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newBus := func() *RedisBus {
		client := redis.NewClient(opts)
		t.Cleanup(func() { client.Close() })
		bus := NewRedisBus(client, logger.Discard())
		go bus.Run(ctx)
		return bus
	}
	publisher, subscriber := newBus(), newBus()

	changes, stop := subscriber.Listen("swapRequests")
	defer stop()

	// Run подписывается асинхронно, поэтому публикуем до первого сигнала
	require.Eventually(t, func() bool {
		require.NoError(t, publisher.Publish(ctx, "swapRequests"))
		select {
		case <-changes:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}
