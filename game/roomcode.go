package game

import "math/rand"

const roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const roomCodeLength = 4

// NewRoomCode generates a short human-typeable room code. There is no
// collision check anywhere; a collision silently merges two games into
// one document, an accepted risk at this scale.
func NewRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
	}
	return string(code)
}
