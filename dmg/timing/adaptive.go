package timing

import "time"

// spinWindow is how much of each wait is busy-spun instead of slept.
// Sleep granularity on most schedulers is coarser than a frame slot.
const spinWindow = time.Millisecond

// Adaptive keeps an absolute frame schedule: it sleeps for the bulk of
// each wait and busy-spins the last stretch, so jitter does not
// accumulate across frames the way per-frame sleeps would.
type Adaptive struct {
	frameTime time.Duration
	next      time.Time
}

func NewAdaptive() *Adaptive {
	return &Adaptive{
		frameTime: FrameDuration(),
		next:      time.Now(),
	}
}

func (a *Adaptive) Wait() {
	now := time.Now()
	wait := a.next.Sub(now)

	switch {
	case wait > spinWindow:
		time.Sleep(wait - spinWindow)
		for time.Now().Before(a.next) {
		}
	case wait > 0:
		for time.Now().Before(a.next) {
		}
	case wait < -5*a.frameTime:
		// Hopelessly behind, restart the schedule from here instead of
		// sprinting to catch up.
		a.next = now
	}

	a.next = a.next.Add(a.frameTime)
}

func (a *Adaptive) Reset() {
	a.next = time.Now()
}
