// Package timing paces frame-based callers against the hardware frame
// rate. The machine itself never sleeps; a Limiter sits in the caller's
// loop between RunFrame calls.
package timing

import (
	"time"

	"github.com/dotmatrix-emu/go-dmg/dmg"
)

// Limiter paces a frame loop.
type Limiter interface {
	// Wait blocks until the next frame is due. Behind schedule it
	// returns immediately.
	Wait()

	// Reset clears the schedule, for use after pauses.
	Reset()
}

// TargetFPS is the exact hardware frame rate, just under 59.73.
func TargetFPS() float64 {
	return float64(dmg.CPUFrequency) / float64(dmg.CyclesPerFrame)
}

// FrameDuration is the wall-clock length of one frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// NewNoOp returns a limiter that never waits, for headless runs.
func NewNoOp() Limiter {
	return noOp{}
}

type noOp struct{}

func (noOp) Wait()  {}
func (noOp) Reset() {}
