package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-c:
		require.True(t, ok, "stream closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
	return Snapshot{}
}

func TestStreamDeliversFullSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	stream, err := s.Subscribe(ctx, From("messages").Order("n", false))
	require.NoError(t, err)
	defer stream.Cancel()

	first := receive(t, stream.C)
	require.NoError(t, first.Err)
	assert.Empty(t, first.Docs)

	_, err = s.Create(ctx, "messages", "m1", Fields{"n": 1})
	require.NoError(t, err)
	_, err = s.Create(ctx, "messages", "m2", Fields{"n": 2})
	require.NoError(t, err)

	// Снимки могут схлопнуться, но последний всегда содержит оба документа
	var snap Snapshot
	for len(snap.Docs) < 2 {
		snap = receive(t, stream.C)
		require.NoError(t, snap.Err)
	}
	require.Len(t, snap.Docs, 2)
	assert.Equal(t, "m1", snap.Docs[0].ID)
	assert.Equal(t, "m2", snap.Docs[1].ID)
}

func TestStreamIgnoresOtherCollections(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	stream, err := s.Subscribe(ctx, From("messages"))
	require.NoError(t, err)
	defer stream.Cancel()
	receive(t, stream.C)

	_, err = s.Create(ctx, "users", "", Fields{})
	require.NoError(t, err)

	select {
	case snap := <-stream.C:
		t.Fatalf("unexpected snapshot: %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStreamCancelClosesChannelAndStopsListening(t *testing.T) {
	s := NewMemoryStore()

	stream, err := s.Subscribe(context.Background(), From("messages"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.bus.listenerCount("messages"))

	stream.Cancel()

	_, ok := <-stream.C
	assert.False(t, ok)
	assert.Equal(t, 0, s.bus.listenerCount("messages"))
}

func TestWatchStopsHandler(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	stream, err := s.Subscribe(ctx, From("messages"))
	require.NoError(t, err)

	calls := make(chan int, 16)
	stop := Watch(stream, func(snap Snapshot) { calls <- len(snap.Docs) })

	assert.Equal(t, 0, <-calls)
	_, err = s.Create(ctx, "messages", "", Fields{})
	require.NoError(t, err)
	assert.Equal(t, 1, <-calls)

	stop()
	stop()

	_, err = s.Create(ctx, "messages", "", Fields{})
	require.NoError(t, err)
	select {
	case n := <-calls:
		t.Fatalf("handler called after stop with %d docs", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCollectionFromChannel(t *testing.T) {
	collection, ok := collectionFromChannel(channelName("chats/c1/messages"))
	assert.True(t, ok)
	assert.Equal(t, "chats/c1/messages", collection)

	_, ok = collectionFromChannel("other")
	assert.False(t, ok)
}
