package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rajivgeraev/skillswap-api/internal/store"
)

func TestSwapStatusPredecessor(t *testing.T) {
	tests := []struct {
		status SwapStatus
		want   SwapStatus
		ok     bool
	}{
		{SwapStatusAccepted, SwapStatusPending, true},
		{SwapStatusRejected, SwapStatusPending, true},
		{SwapStatusCancelled, SwapStatusPending, true},
		{SwapStatusCompleted, SwapStatusAccepted, true},
		{SwapStatusPending, "", false},
		{SwapStatus("archived"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, ok := tt.status.Predecessor()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, SwapStatusCompleted.Terminal())
	assert.False(t, SwapStatusAccepted.Terminal())
	assert.False(t, SwapStatus("archived").Valid())
}

func TestProfileFromDocumentDefaults(t *testing.T) {
	p := ProfileFromDocument(store.Document{ID: "u1", Fields: store.Fields{"name": "Ann"}})

	assert.Equal(t, "u1", p.ID)
	assert.True(t, p.IsPublic)
	assert.Equal(t, UserStatusActive, p.Status)
	assert.Equal(t, []string{}, p.SkillsOffered)
	assert.Equal(t, []string{}, p.SkillsWanted)
}

func TestProfileDisplayNameAndSkills(t *testing.T) {
	p := UserProfile{FirstName: "Ann", LastName: "Lee", SkillsOffered: []string{"React"}, SkillsWanted: []string{"Go"}}

	assert.Equal(t, "Ann Lee", p.DisplayName("User"))
	assert.Equal(t, "User", UserProfile{}.DisplayName("User"))
	assert.True(t, p.HasSkill("rea"))
	assert.True(t, p.HasSkill("GO"))
	assert.False(t, p.HasSkill("python"))
}

func TestSwapRequestFieldsOmitEmptyChat(t *testing.T) {
	now := time.Now()
	r := SwapRequest{FromUserID: "a", ToUserID: "b", Status: SwapStatusPending, CreatedAt: now, UpdatedAt: now}

	f := r.Fields()
	assert.NotContains(t, f, "chatId")

	back := SwapRequestFromDocument(store.Document{ID: "r1", Fields: f})
	assert.Equal(t, "r1", back.ID)
	assert.Equal(t, SwapStatusPending, back.Status)
	assert.True(t, back.Involves("b"))
	assert.False(t, back.Involves("c"))
}

func TestChatHasParticipant(t *testing.T) {
	c := Chat{Participants: []string{"a", "b"}}
	assert.True(t, c.HasParticipant("a"))
	assert.False(t, c.HasParticipant("c"))
	assert.Equal(t, "chats/c1/messages", MessagesCollection("c1"))
}
