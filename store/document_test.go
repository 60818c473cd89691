package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAtPathCreatesBranches(t *testing.T) {
	doc := map[string]any{}
	doc = setAtPath(doc, splitPath("players/p1/name"), "Alice")

	assert.Equal(t, "Alice", getAtPath(doc, splitPath("players/p1/name")))
	assert.Nil(t, getAtPath(doc, splitPath("players/p2/name")))
}

func TestSetAtPathRootReplacesDocument(t *testing.T) {
	doc := map[string]any{"old": true}
	doc = setAtPath(doc, nil, map[string]any{"gameState": "lobby"})

	assert.Equal(t, map[string]any{"gameState": "lobby"}, doc)
}

func TestSetNilRemovesSubtree(t *testing.T) {
	doc := map[string]any{"paths": map[string]any{"k1": "M0,0"}, "round": 1.0}
	doc = setAtPath(doc, splitPath("paths"), nil)

	assert.Equal(t, map[string]any{"round": 1.0}, doc)
}

func TestUpdateAtPathMergesNestedFields(t *testing.T) {
	doc := map[string]any{
		"gameState": "lobby",
		"players": map[string]any{
			"p1": map[string]any{"score": 0.0, "hasGuessed": true},
		},
	}

	doc = updateAtPath(doc, nil, map[string]any{
		"gameState":            "guessing",
		"timeLeft":             60.0,
		"players/p1/hasGuessed": false,
	})

	assert.Equal(t, "guessing", doc["gameState"])
	assert.Equal(t, 60.0, doc["timeLeft"])
	assert.Equal(t, false, getAtPath(doc, splitPath("players/p1/hasGuessed")))
	// untouched sibling fields survive the merge
	assert.Equal(t, 0.0, getAtPath(doc, splitPath("players/p1/score")))
}

func TestRemoveAtPathPrunesEmptyBranches(t *testing.T) {
	doc := map[string]any{
		"players": map[string]any{
			"p1": map[string]any{"name": "Alice"},
		},
		"round": 1.0,
	}

	removeAtPath(doc, splitPath("players/p1"))

	_, hasPlayers := doc["players"]
	assert.False(t, hasPlayers, "empty players branch should be pruned")
	assert.Equal(t, 1.0, doc["round"])
}

func TestNormalizeProducesPureTree(t *testing.T) {
	type stroke struct {
		Path  string `json:"path"`
		Width int    `json:"strokeWidth"`
	}

	tree, err := normalize(stroke{Path: "M10,10 L20,20", Width: 4})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"path": "M10,10 L20,20", "strokeWidth": 4.0}, tree)
}

func TestCopyValueIsDeep(t *testing.T) {
	original := map[string]any{"players": map[string]any{"p1": map[string]any{"score": 1.0}}}
	copied := copyValue(original).(map[string]any)

	setAtPath(copied, splitPath("players/p1/score"), 99.0)

	assert.Equal(t, 1.0, getAtPath(original, splitPath("players/p1/score")))
}
