package game

import (
	"encoding/binary"
	"os"
	"strconv"
	"strings"

	"doodleparty/logger"

	"github.com/google/uuid"
)

// Session is the per-install identity: an ephemeral player id generated
// once, plus the display name cached locally between launches. The name
// file is the only state this system ever persists.
type Session struct {
	PlayerID    string
	displayName string
	cachePath   string
}

func NewSession(cachePath string) *Session {
	s := &Session{
		PlayerID:  newPlayerID(),
		cachePath: cachePath,
	}
	if data, err := os.ReadFile(cachePath); err == nil {
		s.displayName = strings.TrimSpace(string(data))
	}
	return s
}

func (s *Session) DisplayName() string {
	return s.displayName
}

// SetDisplayName caches the name for the next launch. A failed write only
// costs the cache, so it is logged and swallowed.
func (s *Session) SetDisplayName(name string) {
	s.displayName = strings.TrimSpace(name)
	if s.cachePath == "" {
		return
	}
	if err := os.WriteFile(s.cachePath, []byte(s.displayName), 0o600); err != nil {
		logger.Warningf("[session] could not cache display name: %v", err)
	}
}

// newPlayerID mints "player_" plus nine base36 characters.
func newPlayerID() string {
	entropy := uuid.New()
	n := binary.BigEndian.Uint64(entropy[:8])
	tail := strconv.FormatUint(n, 36)
	for len(tail) < 9 {
		tail = "0" + tail
	}
	return "player_" + tail[:9]
}
