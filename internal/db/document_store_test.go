package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name     string
		query    store.Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "collection only",
			query:    store.From("users"),
			wantSQL:  "SELECT id, data FROM documents WHERE collection = $1 ORDER BY id ASC",
			wantArgs: []any{"users"},
		},
		{
			name: "equality with order and limit",
			query: store.From("swapRequests").
				Filter("toUserId", store.OpEqual, "u1").
				Order("createdAt", true).
				Take(50),
			wantSQL: "SELECT id, data FROM documents WHERE collection = $1 AND data @> $2::jsonb" +
				" ORDER BY data->($3::text) DESC, id ASC LIMIT $4",
			wantArgs: []any{"swapRequests", `{"toUserId":"u1"}`, "createdAt", 50},
		},
		{
			name:     "array contains",
			query:    store.From("chats").Filter("participants", store.OpArrayContains, "a"),
			wantSQL:  "SELECT id, data FROM documents WHERE collection = $1 AND data @> $2::jsonb ORDER BY id ASC",
			wantArgs: []any{"chats", `{"participants":["a"]}`},
		},
		{
			name:    "in",
			query:   store.From("swapRequests").Filter("status", store.OpIn, []any{"pending", "accepted"}),
			wantSQL: "SELECT id, data FROM documents WHERE collection = $1 AND data->>($2::text) = ANY($3::text[]) ORDER BY id ASC",
			wantArgs: []any{"swapRequests", "status", []string{"pending", "accepted"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := buildSelect(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildSelectRejectsUnsafeField(t *testing.T) {
	_, _, err := buildSelect(store.From("users").Filter("name'; DROP TABLE documents;--", store.OpEqual, "x"))
	assert.Error(t, err)

	_, _, err = buildSelect(store.From("users").Order("a b", false))
	assert.Error(t, err)
}

func TestBuildUpdateWithPrecondition(t *testing.T) {
	sql, args, err := buildUpdate("swapRequests", "r1", `{"status":"accepted"}`,
		[]store.Predicate{store.Where("status", store.OpEqual, "pending")})
	require.NoError(t, err)

	assert.Equal(t, "UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()"+
		" WHERE collection = $1 AND id = $2 AND data @> $4::jsonb", sql)
	assert.Equal(t, []any{"swapRequests", "r1", `{"status":"accepted"}`, `{"status":"pending"}`}, args)
}

func TestEncodeFieldsUsesFixedWidthTime(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 600, time.FixedZone("X", 3600))

	data, err := encodeFields(store.Fields{"createdAt": ts, "n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"createdAt":"2025-01-02T02:04:05.000000600Z","n":1}`, data)

	fields, err := decodeFields([]byte(data))
	require.NoError(t, err)
	assert.True(t, fields.Time("createdAt").Equal(ts))
	assert.Equal(t, 1, fields.Int("n"))
}
