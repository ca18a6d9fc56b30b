package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameRate(t *testing.T) {
	assert.InDelta(t, 59.7275, TargetFPS(), 0.0001)
	assert.InDelta(t, 16.742, float64(FrameDuration())/float64(time.Millisecond), 0.001)
}

func TestNoOpNeverBlocks(t *testing.T) {
	l := NewNoOp()

	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.Wait()
	}
	l.Reset()

	assert.Less(t, time.Since(start), FrameDuration())
}
