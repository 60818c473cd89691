package game

import "sort"

type GameState string

const (
	StateLobby    GameState = "lobby"
	StateDrawing  GameState = "drawing"
	StateGuessing GameState = "guessing"
	StateReveal   GameState = "reveal"
	StateGameover GameState = "gameover"
)

// Player is one entry under players/{id}. A player's own client is the
// only writer of its score and hasGuessed fields.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	HasGuessed bool   `json:"hasGuessed"`
}

// Stroke is one completed drawing gesture. Immutable once appended; the
// whole paths collection is cleared by the drawer's clear action.
type Stroke struct {
	Path        string  `json:"path"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// GuessMessage is one chat/guess entry.
type GuessMessage struct {
	Player    string `json:"player"`
	Message   string `json:"message"`
	IsCorrect bool   `json:"isCorrect"`
}

// Room mirrors the shared room document. Paths and ChatMessages are keyed
// by store push id, whose lexicographic order is the append order.
type Room struct {
	GameState     GameState               `json:"gameState"`
	Players       map[string]Player       `json:"players"`
	CurrentDrawer string                  `json:"currentDrawer,omitempty"`
	CurrentWord   string                  `json:"currentWord"`
	TimeLeft      int                     `json:"timeLeft"`
	Round         int                     `json:"round"`
	Paths         map[string]Stroke       `json:"paths,omitempty"`
	ChatMessages  map[string]GuessMessage `json:"chatMessages,omitempty"`
}

// SortedPlayers returns the players ordered by id. The store's mapping
// does not preserve insertion order, so every client must index into the
// same stable ordering or drawer assignment would disagree across
// clients.
func (r *Room) SortedPlayers() []Player {
	players := make([]Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}

// Strokes returns the append-ordered stroke log (drawing z-order).
func (r *Room) Strokes() []Stroke {
	keys := sortedKeys(r.Paths)
	strokes := make([]Stroke, 0, len(keys))
	for _, k := range keys {
		strokes = append(strokes, r.Paths[k])
	}
	return strokes
}

// Messages returns the append-ordered chat log.
func (r *Room) Messages() []GuessMessage {
	keys := sortedKeys(r.ChatMessages)
	messages := make([]GuessMessage, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, r.ChatMessages[k])
	}
	return messages
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
