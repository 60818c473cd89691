package game

import "time"

type ticker struct{}

func (t ticker) Create(duration time.Duration) (<-chan time.Time, func()) {
	tick := time.NewTicker(duration)
	return tick.C, tick.Stop
}

func NewTickerGen() ticker {
	return ticker{}
}
