// Package interrupt implements the five-source interrupt controller: the
// IE/IF register pair, the master enable (IME) with its delayed EI
// semantics, and fixed-priority selection of the next source to service.
package interrupt

import "math/bits"

// Source identifies one of the five hardware interrupt sources. The
// numeric value is the bit position in IE/IF and doubles as the priority
// (0 is serviced first).
type Source uint8

const (
	// VBlank fires when the display controller finishes a frame.
	VBlank Source = iota
	// LCDStat fires on the display controller's STAT conditions.
	LCDStat
	// Timer fires when TIMA overflows and reloads.
	Timer
	// Serial fires when a serial transfer completes.
	Serial
	// Joypad fires when a selected input line goes low.
	Joypad
)

// sourceMask covers the five defined bits of IE and IF.
const sourceMask = 0x1F

// Mask returns the source's bit in the IE/IF registers.
func (s Source) Mask() uint8 {
	return 1 << s
}

// Vector returns the fixed address execution jumps to when the source is
// serviced: 0x0040, 0x0048, 0x0050, 0x0058 or 0x0060.
func (s Source) Vector() uint16 {
	return 0x0040 + uint16(s)*8
}

func (s Source) String() string {
	switch s {
	case VBlank:
		return "VBlank"
	case LCDStat:
		return "LCDStat"
	case Timer:
		return "Timer"
	case Serial:
		return "Serial"
	case Joypad:
		return "Joypad"
	}
	return "Unknown"
}

// Controller holds the enable mask, the request mask and the master
// enable. Any collaborator may request a source at an instruction
// boundary; the CPU polls after each step and performs the actual
// dispatch, so the controller never touches the stack or PC itself.
type Controller struct {
	enable  uint8
	request uint8
	ime     bool

	// scheduled defers an EI so it lands after the following
	// instruction. Committed by the CPU at the start of each step.
	scheduled bool
}

// NewController returns a controller with everything disabled and no
// requests pending.
func NewController() *Controller {
	return &Controller{}
}

// Request marks a source as pending. The request sticks regardless of
// IME or the enable mask, exactly as the hardware latches IF bits.
func (c *Controller) Request(s Source) {
	c.request |= s.Mask()
}

// Enable schedules the master enable to take effect after the next
// instruction completes (the EI delay).
func (c *Controller) Enable() {
	c.scheduled = true
}

// EnableNow sets the master enable immediately (RETI).
func (c *Controller) EnableNow() {
	c.ime = true
	c.scheduled = false
}

// Disable clears the master enable immediately and cancels a scheduled
// enable, so EI directly followed by DI never opens a service window.
func (c *Controller) Disable() {
	c.ime = false
	c.scheduled = false
}

// CommitEnable promotes a scheduled enable to the live master enable.
// The CPU calls this at the start of every step, one instruction after
// the EI that scheduled it.
func (c *Controller) CommitEnable() {
	if c.scheduled {
		c.scheduled = false
		c.ime = true
	}
}

// Enabled reports the master enable (IME).
func (c *Controller) Enabled() bool {
	return c.ime
}

// Pending reports whether any source is both enabled and requested.
// This ignores IME: it is the HALT wake condition.
func (c *Controller) Pending() bool {
	return c.enable&c.request&sourceMask != 0
}

// Next returns the highest-priority source that is both enabled and
// requested. The caller still gates on Enabled; priority is the bit
// position, lowest first.
func (c *Controller) Next() (Source, bool) {
	pending := c.enable & c.request & sourceMask
	if pending == 0 {
		return 0, false
	}
	return Source(bits.TrailingZeros8(pending)), true
}

// Acknowledge enters service for a source: the request bit and the
// master enable are cleared together, matching the hardware dispatch
// sequence.
func (c *Controller) Acknowledge(s Source) {
	c.request &^= s.Mask()
	c.ime = false
}

// ReadEnable returns the IE register. All eight bits are readable; the
// top three act as plain storage on hardware.
func (c *Controller) ReadEnable() uint8 {
	return c.enable
}

// WriteEnable stores the IE register.
func (c *Controller) WriteEnable(v uint8) {
	c.enable = v
}

// ReadFlags returns the IF register with the three unused bits high, as
// the hardware bus pulls them.
func (c *Controller) ReadFlags() uint8 {
	return c.request | 0xE0
}

// WriteFlags stores the IF register. Software may set or clear request
// bits directly; the unused bits are discarded.
func (c *Controller) WriteFlags(v uint8) {
	c.request = v & sourceMask
}
