package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotmatrix-emu/go-dmg/dmg/addr"
)

func TestDividerAdvancesEveryCycle(t *testing.T) {
	tmr := New(nil)

	assert.Equal(t, uint8(0x00), tmr.Read(addr.DIV))

	tmr.Tick(255)
	assert.Equal(t, uint8(0x00), tmr.Read(addr.DIV), "DIV is the upper byte of the divider")

	tmr.Tick(1)
	assert.Equal(t, uint8(0x01), tmr.Read(addr.DIV))

	tmr.Tick(256 * 4)
	assert.Equal(t, uint8(0x05), tmr.Read(addr.DIV))
}

func TestDividerWriteResets(t *testing.T) {
	tmr := New(nil)
	tmr.Tick(0x1234)

	tmr.Write(addr.DIV, 0x77)

	assert.Equal(t, uint8(0x00), tmr.Read(addr.DIV), "any written value resets DIV")
	assert.Equal(t, uint16(0), tmr.Divider())
}

func TestSeedVisibleThroughDIV(t *testing.T) {
	tmr := New(nil)
	tmr.SetSeed(0xABCC)

	assert.Equal(t, uint8(0xAB), tmr.Read(addr.DIV))
}

func TestTIMACountsAtSelectedRate(t *testing.T) {
	testCases := []struct {
		desc   string
		tac    uint8
		period int
	}{
		{"rate 00 divider bit 9", 0x04, 1024},
		{"rate 01 divider bit 3", 0x05, 16},
		{"rate 10 divider bit 5", 0x06, 64},
		{"rate 11 divider bit 7", 0x07, 256},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			tmr := New(nil)
			tmr.Write(addr.TAC, tC.tac)

			tmr.Tick(tC.period)
			assert.Equal(t, uint8(1), tmr.Read(addr.TIMA))

			tmr.Tick(tC.period * 3)
			assert.Equal(t, uint8(4), tmr.Read(addr.TIMA))
		})
	}
}

func TestTIMADoesNotCountWhenDisabled(t *testing.T) {
	tmr := New(nil)
	tmr.Write(addr.TAC, 0x01) // fastest rate selected but enable bit clear

	tmr.Tick(1024)

	assert.Equal(t, uint8(0), tmr.Read(addr.TIMA))
}

func TestOverflowReloadsAfterOneMachineCycle(t *testing.T) {
	requests := 0
	tmr := New(func() { requests++ })
	tmr.Write(addr.TAC, 0x05)
	tmr.Write(addr.TMA, 0x42)
	tmr.Write(addr.TIMA, 0xFF)

	// The divider starts at zero, so the first falling edge of bit 3
	// lands after 16 cycles and wraps TIMA.
	tmr.Tick(16)
	assert.Equal(t, uint8(0x00), tmr.Read(addr.TIMA), "TIMA holds zero during the overflow window")
	assert.Equal(t, 0, requests, "the request waits for the reload point")

	tmr.Tick(3)
	assert.Equal(t, uint8(0x00), tmr.Read(addr.TIMA))
	assert.Equal(t, 0, requests)

	tmr.Tick(1)
	assert.Equal(t, uint8(0x42), tmr.Read(addr.TIMA), "TMA lands when the window expires")
	assert.Equal(t, 1, requests, "exactly one request per overflow")

	// Run through another full period: the counter resumes from TMA and
	// no duplicate request appears.
	tmr.Tick(12)
	assert.Equal(t, uint8(0x43), tmr.Read(addr.TIMA))
	assert.Equal(t, 1, requests)
}

func TestTIMAWriteAbortsPendingReload(t *testing.T) {
	requests := 0
	tmr := New(func() { requests++ })
	tmr.Write(addr.TAC, 0x05)
	tmr.Write(addr.TMA, 0x42)
	tmr.Write(addr.TIMA, 0xFF)

	tmr.Tick(16) // overflow, window open
	tmr.Write(addr.TIMA, 0x10)

	tmr.Tick(8)
	assert.Equal(t, uint8(0x10), tmr.Read(addr.TIMA), "the written value survives")
	assert.Equal(t, 0, requests, "aborted overflow raises no request")
}

func TestDividerResetCanClockTIMA(t *testing.T) {
	tmr := New(nil)
	tmr.Write(addr.TAC, 0x05)

	tmr.Tick(8) // divider bit 3 is now high
	tmr.Write(addr.DIV, 0x00)

	assert.Equal(t, uint8(1), tmr.Read(addr.TIMA), "resetting the divider drops the selected bit and clocks TIMA")
}

func TestDisablingTimerCanClockTIMA(t *testing.T) {
	tmr := New(nil)
	tmr.Write(addr.TAC, 0x05)

	tmr.Tick(8) // divider bit 3 is now high
	tmr.Write(addr.TAC, 0x01)

	assert.Equal(t, uint8(1), tmr.Read(addr.TIMA), "the enable bit gates the edge detector input")
}

func TestTACReadsWithUpperBitsSet(t *testing.T) {
	tmr := New(nil)

	tmr.Write(addr.TAC, 0x05)
	assert.Equal(t, uint8(0xFD), tmr.Read(addr.TAC))

	tmr.Write(addr.TAC, 0xFF)
	assert.Equal(t, uint8(0xFF), tmr.Read(addr.TAC), "only the low three bits are stored")
}
