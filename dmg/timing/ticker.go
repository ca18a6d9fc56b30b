package timing

import "time"

// Ticker paces frames off a time.Ticker. Simple and steady; the ticker
// drops ticks rather than bunching them when the caller falls behind.
type Ticker struct {
	ticker *time.Ticker
}

func NewTicker() *Ticker {
	return &Ticker{ticker: time.NewTicker(FrameDuration())}
}

func (t *Ticker) Wait() {
	<-t.ticker.C
}

func (t *Ticker) Reset() {
	t.ticker.Reset(FrameDuration())
}

// Stop releases the ticker. The limiter must not be used afterwards.
func (t *Ticker) Stop() {
	t.ticker.Stop()
}
