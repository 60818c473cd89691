package game

import (
	"context"
	"time"

	"doodleparty/store"
)

// StoreOpener dials one room document. Production hands in the store
// engine; tests substitute mocks.
type StoreOpener interface {
	Connect(ctx context.Context, code string) (store.Conn, error)
}

// RandomWordsGenerator samples distinct entries from the word list.
type RandomWordsGenerator interface {
	Generate(count int) []string
}

// PeriodicTickerChannelCreator abstracts time for the client loop so
// tests can drive ticks by hand. stop releases the underlying ticker and
// must be called when the loop exits.
type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) (ticks <-chan time.Time, stop func())
}
