package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/huddle/models"
)

func reaction(userID, emoji string) models.Reaction {
	return models.Reaction{
		UserID:    userID,
		Username:  userID,
		Emoji:     emoji,
		CreatedAt: time.Now().UTC(),
	}
}

func TestReactionAddAndRead(t *testing.T) {
	idx := NewMemoryReactionIndex()

	idx.Add("m1", reaction("u1", "👍"))
	idx.Add("m1", reaction("u2", "👍"))
	idx.Add("m1", reaction("u1", "❤️"))

	state := idx.ReactionsOf("m1")
	require.Len(t, state["👍"], 2)
	require.Len(t, state["❤️"], 1)

	// Ekleme sırası korunmalı.
	assert.Equal(t, "u1", state["👍"][0].UserID)
	assert.Equal(t, "u2", state["👍"][1].UserID)
}

func TestReactionDuplicateAddIsNoop(t *testing.T) {
	idx := NewMemoryReactionIndex()

	idx.Add("m1", reaction("u1", "👍"))
	idx.Add("m1", reaction("u1", "👍"))

	require.Len(t, idx.ReactionsOf("m1")["👍"], 1)
}

func TestReactionRemoveCascades(t *testing.T) {
	idx := NewMemoryReactionIndex()

	idx.Add("m1", reaction("u1", "👍"))
	idx.Add("m1", reaction("u2", "👍"))
	idx.Add("m1", reaction("u1", "🔥"))

	idx.Remove("m1", "u1", "👍")
	state := idx.ReactionsOf("m1")
	require.Len(t, state["👍"], 1)
	assert.Equal(t, "u2", state["👍"][0].UserID)

	// Emoji kovası boşalınca silinir.
	idx.Remove("m1", "u2", "👍")
	state = idx.ReactionsOf("m1")
	_, ok := state["👍"]
	assert.False(t, ok)

	// Son tepki de gidince mesaj girdisi tamamen kaybolur.
	idx.Remove("m1", "u1", "🔥")
	assert.Empty(t, idx.ReactionsOf("m1"))
}

func TestReactionRemoveAbsentIsNoop(t *testing.T) {
	idx := NewMemoryReactionIndex()

	idx.Remove("ghost", "u1", "👍")

	idx.Add("m1", reaction("u1", "👍"))
	idx.Remove("m1", "u1", "❤️")
	idx.Remove("m1", "u2", "👍")
	require.Len(t, idx.ReactionsOf("m1")["👍"], 1)
}

func TestHasReacted(t *testing.T) {
	idx := NewMemoryReactionIndex()

	assert.False(t, idx.HasReacted("m1", "u1", "👍"))

	idx.Add("m1", reaction("u1", "👍"))
	assert.True(t, idx.HasReacted("m1", "u1", "👍"))
	assert.False(t, idx.HasReacted("m1", "u1", "❤️"))
	assert.False(t, idx.HasReacted("m1", "u2", "👍"))

	idx.Remove("m1", "u1", "👍")
	assert.False(t, idx.HasReacted("m1", "u1", "👍"))
}

func TestReactionsOfReturnsCopy(t *testing.T) {
	idx := NewMemoryReactionIndex()

	idx.Add("m1", reaction("u1", "👍"))

	state := idx.ReactionsOf("m1")
	state["👍"][0].UserID = "mutated"
	state["😂"] = []models.Reaction{reaction("u9", "😂")}

	fresh := idx.ReactionsOf("m1")
	require.Len(t, fresh, 1)
	assert.Equal(t, "u1", fresh["👍"][0].UserID)
}
