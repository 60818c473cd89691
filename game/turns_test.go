package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomWithPlayers(ids ...string) *Room {
	players := map[string]Player{}
	for _, id := range ids {
		players[id] = Player{ID: id, Name: "n-" + id}
	}
	return &Room{Players: players}
}

func TestDrawerRotationIsDeterministic(t *testing.T) {
	for n := 1; n <= 5; n++ {
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			ids = append(ids, fmt.Sprintf("player_%02d", i))
		}
		room := roomWithPlayers(ids...)

		for round := 1; round <= n; round++ {
			drawer, ok := DrawerForRound(room, round)
			require.True(t, ok)
			assert.Equal(t, ids[(round-1)%n], drawer.ID, "n=%d round=%d", n, round)
		}
	}
}

func TestDrawerIndependentOfMapInsertionOrder(t *testing.T) {
	// the same player set built in two different orders
	first := roomWithPlayers("player_c", "player_a", "player_b")
	second := roomWithPlayers("player_b", "player_c", "player_a")

	for round := 1; round <= 3; round++ {
		d1, _ := DrawerForRound(first, round)
		d2, _ := DrawerForRound(second, round)
		assert.Equal(t, d1.ID, d2.ID, "round=%d", round)
	}
}

func TestDrawerForEmptyRoom(t *testing.T) {
	_, ok := DrawerForRound(&Room{}, 1)
	assert.False(t, ok)
}

func TestTimerOwnerIsFirstSortedPlayer(t *testing.T) {
	room := roomWithPlayers("player_z", "player_a", "player_m")
	owner, ok := TimerOwnerID(room)
	require.True(t, ok)
	assert.Equal(t, "player_a", owner)
}

func TestAllNonDrawersGuessed(t *testing.T) {
	room := roomWithPlayers("player_a", "player_b", "player_c")
	room.CurrentDrawer = "player_a"

	assert.False(t, allNonDrawersGuessed(room))

	room.Players["player_b"] = Player{ID: "player_b", HasGuessed: true}
	assert.False(t, allNonDrawersGuessed(room), "one guesser still pending")

	room.Players["player_c"] = Player{ID: "player_c", HasGuessed: true}
	assert.True(t, allNonDrawersGuessed(room))
}

func TestAllNonDrawersGuessedNeedsTwoPlayers(t *testing.T) {
	room := roomWithPlayers("player_a")
	room.CurrentDrawer = "player_a"
	assert.False(t, allNonDrawersGuessed(room))
}
