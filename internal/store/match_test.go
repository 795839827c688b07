package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type status string

func TestMatches(t *testing.T) {
	now := time.Now()
	f := Fields{
		"status":       "pending",
		"count":        float64(3),
		"isPublic":     true,
		"participants": []any{"a", "b"},
		"createdAt":    now,
	}

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"equal string", Where("status", OpEqual, "pending"), true},
		{"equal named string", Where("status", OpEqual, status("pending")), true},
		{"equal int vs float", Where("count", OpEqual, 3), true},
		{"equal bool", Where("isPublic", OpEqual, true), true},
		{"different type", Where("count", OpEqual, "3"), false},
		{"missing field", Where("chatId", OpEqual, ""), false},
		{"array contains", Where("participants", OpArrayContains, "b"), true},
		{"array does not contain", Where("participants", OpArrayContains, "c"), false},
		{"in", Where("status", OpIn, []string{"accepted", "pending"}), true},
		{"not in", Where("status", OpIn, []string{"accepted"}), false},
		{"equal time", Where("createdAt", OpEqual, now.UTC()), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(f, []Predicate{tt.pred}))
		})
	}
}

func TestFieldsAccessors(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 8, time.UTC)
	f := Fields{
		"name":    status("ann"),
		"rating":  4.5,
		"swaps":   float64(2),
		"skills":  []any{"go", 1, "sql"},
		"created": ts.Format(TimeLayout),
		"updated": ts,
	}

	assert.Equal(t, "ann", f.String("name"))
	assert.Equal(t, 4.5, f.Float("rating"))
	assert.Equal(t, 2, f.Int("swaps"))
	assert.Equal(t, []string{"go", "sql"}, f.Strings("skills"))
	assert.Equal(t, []string{}, f.Strings("missing"))
	assert.True(t, f.Time("created").Equal(ts))
	assert.True(t, f.Time("updated").Equal(ts))
	assert.True(t, f.BoolOr("isPublic", true))
}

func TestTimeLayoutSortsLexicographically(t *testing.T) {
	earlier := time.Date(2025, 1, 1, 0, 0, 5, 100_000_000, time.UTC).Format(TimeLayout)
	later := time.Date(2025, 1, 1, 0, 0, 5, 120_000_000, time.UTC).Format(TimeLayout)
	assert.Less(t, earlier, later)
}
