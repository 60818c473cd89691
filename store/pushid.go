package store

import (
	"time"

	"github.com/google/uuid"
)

// Push key alphabet, ordered by ASCII value so that keys compare the same
// way as the timestamps they encode.
const pushKeyChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// pushKeyGenerator mints 20-char child keys for append-only lists:
// 8 chars of millisecond timestamp followed by 12 chars of entropy.
// Keys generated within the same millisecond reuse the previous entropy
// tail incremented by one, which keeps them strictly increasing. Only the
// engine actor calls it, so no locking.
type pushKeyGenerator struct {
	lastMillis int64
	lastTail   [12]int
}

func newPushKeyGenerator() *pushKeyGenerator {
	return &pushKeyGenerator{lastMillis: -1}
}

func (g *pushKeyGenerator) next(now time.Time) string {
	millis := now.UnixMilli()

	// A wall clock stepping backwards must not mint a key that sorts
	// before one already issued; reuse the last timestamp and take the
	// increment path instead.
	if millis < g.lastMillis {
		millis = g.lastMillis
	}

	if millis == g.lastMillis {
		for i := len(g.lastTail) - 1; i >= 0; i-- {
			g.lastTail[i]++
			if g.lastTail[i] < len(pushKeyChars) {
				break
			}
			g.lastTail[i] = 0
		}
	} else {
		entropy := uuid.New()
		for i := range g.lastTail {
			g.lastTail[i] = int(entropy[i]) % len(pushKeyChars)
		}
	}
	g.lastMillis = millis

	key := make([]byte, 0, 20)
	stamp := [8]byte{}
	for i := 7; i >= 0; i-- {
		stamp[i] = pushKeyChars[millis%int64(len(pushKeyChars))]
		millis /= int64(len(pushKeyChars))
	}
	key = append(key, stamp[:]...)
	for _, idx := range g.lastTail {
		key = append(key, pushKeyChars[idx])
	}
	return string(key)
}
