// Package timer implements the DIV/TIMA/TMA/TAC subsystem: a free-running
// 16-bit divider and a configurable counter clocked off falling edges of a
// selected divider bit.
package timer

import (
	"github.com/dotmatrix-emu/go-dmg/dmg/addr"
	"github.com/dotmatrix-emu/go-dmg/dmg/bit"
)

// clockBit maps the TAC rate select (bits 1-0) to the divider bit whose
// falling edge clocks TIMA:
//
//	00 -> bit 9  (4096 Hz)
//	01 -> bit 3  (262144 Hz)
//	10 -> bit 5  (65536 Hz)
//	11 -> bit 7  (16384 Hz)
var clockBit = [4]uint8{9, 3, 5, 7}

// reloadDelay is how long TIMA reads zero after an overflow before TMA
// lands and the interrupt is requested, in T-cycles.
const reloadDelay = 4

// Timer drives the divider and counter registers. The divider advances
// every T-cycle unconditionally; DIV is its upper byte and any write
// resets the whole counter. TIMA increments when the selected divider
// bit, gated by the TAC enable, falls from 1 to 0. Because the gate and
// the divider both feed the edge detector, a DIV write, a rate change or
// disabling the timer can each produce one extra TIMA step, exactly as
// the hardware circuit does.
type Timer struct {
	counter uint16 // internal divider, DIV is the upper byte
	lastBit bool   // previous edge-detector input

	// reload counts down the overflow window. While nonzero TIMA has
	// already wrapped to zero; when it expires TMA is loaded and the
	// interrupt is requested.
	reload int

	tima uint8
	tma  uint8
	tac  uint8

	onOverflow func()
}

// New returns a timer. onOverflow is invoked at the reload point of every
// TIMA overflow and should be wired to request the Timer interrupt
// source.
func New(onOverflow func()) *Timer {
	return &Timer{onOverflow: onOverflow}
}

// SetSeed initializes the internal divider, discarding any overflow in
// flight. The machine uses this to start from the divider value the boot
// sequence leaves behind.
func (t *Timer) SetSeed(seed uint16) {
	t.counter = seed
	t.lastBit = t.detectorInput()
	t.reload = 0
}

// Divider returns the full internal counter, not just the DIV byte.
func (t *Timer) Divider() uint16 {
	return t.counter
}

// Tick advances the timer by the given number of T-cycles.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		t.counter++

		if t.reload > 0 {
			// Overflow window: TIMA holds zero, edges are ignored. The
			// shortest TIMA period is 16 T-cycles, so no edge can be
			// missed during the 4-cycle window.
			t.reload--
			if t.reload == 0 {
				t.tima = t.tma
				if t.onOverflow != nil {
					t.onOverflow()
				}
			}
			continue
		}

		t.checkEdge()
	}
}

// Read returns the value of one of the four timer registers.
func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return bit.High(t.counter)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	}
	return 0xFF
}

// Write stores one of the four timer registers, applying the hardware
// side effects: DIV writes reset the divider, TIMA writes during the
// overflow window abort the reload, and DIV/TAC writes feed the edge
// detector immediately.
func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		t.counter = 0
		t.checkEdge()
	case addr.TIMA:
		t.tima = value
		t.reload = 0
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
		t.checkEdge()
	}
}

// detectorInput is the signal the falling-edge detector watches: the
// selected divider bit ANDed with the enable bit.
func (t *Timer) detectorInput() bool {
	return bit.IsSet(2, t.tac) && bit.IsSet16(clockBit[t.tac&0x03], t.counter)
}

func (t *Timer) checkEdge() {
	current := t.detectorInput()
	if t.lastBit && !current {
		t.incrementTIMA()
	}
	t.lastBit = current
}

func (t *Timer) incrementTIMA() {
	t.tima++
	if t.tima == 0 {
		t.reload = reloadDelay
	}
}
