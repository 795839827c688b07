package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, "users", "", Fields{"name": "Ann", "skills": []string{"go"}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	doc, err := s.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Ann", doc.Fields.String("name"))
	assert.Equal(t, []string{"go"}, doc.Fields.Strings("skills"))

	_, err = s.Get(ctx, "users", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCreateWithExistingID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, "chats", "direct_a_b", Fields{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, "direct_a_b", id)

	_, err = s.Create(ctx, "chats", "direct_a_b", Fields{"n": 2})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	doc, err := s.Get(ctx, "chats", "direct_a_b")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Fields.Int("n"))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	skills := []string{"go"}
	id, err := s.Create(ctx, "users", "", Fields{"skills": skills})
	require.NoError(t, err)
	skills[0] = "changed"

	doc, err := s.Get(ctx, "users", id)
	require.NoError(t, err)
	doc.Fields["skills"].([]string)[0] = "mutated"

	again, err := s.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Fields.Strings("skills"))
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, "swapRequests", "", Fields{"status": "pending", "message": "hi"})
	require.NoError(t, err)

	t.Run("merges fields", func(t *testing.T) {
		require.NoError(t, s.Update(ctx, "swapRequests", id, Fields{"status": "accepted"}))

		doc, err := s.Get(ctx, "swapRequests", id)
		require.NoError(t, err)
		assert.Equal(t, "accepted", doc.Fields.String("status"))
		assert.Equal(t, "hi", doc.Fields.String("message"))
	})

	t.Run("rejects failed precondition", func(t *testing.T) {
		err := s.Update(ctx, "swapRequests", id, Fields{"status": "rejected"}, Where("status", OpEqual, "pending"))
		assert.ErrorIs(t, err, ErrPreconditionFailed)

		doc, err := s.Get(ctx, "swapRequests", id)
		require.NoError(t, err)
		assert.Equal(t, "accepted", doc.Fields.String("status"))
	})

	t.Run("fails for missing document", func(t *testing.T) {
		err := s.Update(ctx, "swapRequests", "missing", Fields{"status": "accepted"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStoreQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Create(ctx, "chats", "c1", Fields{"participants": []string{"a", "b"}, "createdAt": base})
	require.NoError(t, err)
	_, err = s.Create(ctx, "chats", "c2", Fields{"participants": []string{"a", "c"}, "createdAt": base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.Create(ctx, "chats", "c3", Fields{"participants": []string{"b", "c"}, "createdAt": base.Add(2 * time.Hour)})
	require.NoError(t, err)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "array contains ordered desc",
			query: From("chats").Filter("participants", OpArrayContains, "a").Order("createdAt", true),
			want:  []string{"c2", "c1"},
		},
		{
			name:  "ordered asc with limit",
			query: From("chats").Order("createdAt", false).Take(2),
			want:  []string{"c1", "c2"},
		},
		{
			name:  "in operator",
			query: From("chats").Filter("createdAt", OpIn, []any{base, base.Add(2 * time.Hour)}),
			want:  []string{"c1", "c3"},
		},
		{
			name:  "no matches",
			query: From("chats").Filter("participants", OpArrayContains, "z"),
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Query(ctx, tt.query)
			require.NoError(t, err)

			ids := make([]string, 0, len(docs))
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	_, err := s.Create(ctx, "users", "", Fields{})
	assert.ErrorIs(t, err, context.Canceled)
}
