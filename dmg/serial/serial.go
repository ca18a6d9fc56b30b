// Package serial implements the SB/SC link port. Transfers clocked by the
// internal clock complete against a pluggable Sink; with nothing plugged
// in the port behaves like an open cable and shifts in 0xFF.
package serial

import (
	"github.com/dotmatrix-emu/go-dmg/dmg/addr"
	"github.com/dotmatrix-emu/go-dmg/dmg/bit"
)

// transferCycles is the duration of one byte on the DMG internal clock:
// 8 bits at 8192 Hz, 512 T-cycles per bit.
const transferCycles = 4096

// disconnectedRX is what shifts in when no peer drives the line.
const disconnectedRX = 0xFF

// Sink receives each byte shifted out of the port.
type Sink interface {
	ReceiveByte(b uint8)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(uint8)

// ReceiveByte calls f(b).
func (f SinkFunc) ReceiveByte(b uint8) { f(b) }

// Port is the serial transfer unit. A transfer starts when SC is written
// with both the start bit (7) and the internal clock bit (0) set; when it
// completes the outgoing byte lands in the sink, SB receives the reply
// byte, the start bit clears and onComplete fires. Transfers on an
// external clock never complete, since no peer exists to drive them.
type Port struct {
	onComplete func()
	sink       Sink

	sb, sc    uint8
	active    bool
	countdown int

	immediate bool
}

// Option configures a Port.
type Option func(*Port)

// WithSink delivers completed bytes to s.
func WithSink(s Sink) Option {
	return func(p *Port) { p.sink = s }
}

// WithImmediateTransfers completes every transfer on the SC write instead
// of after the hardware's 4096 cycles. Intended for tests that do not
// want to pump the clock.
func WithImmediateTransfers() Option {
	return func(p *Port) { p.immediate = true }
}

// New returns a serial port. onComplete runs when a transfer finishes and
// should be wired to request the Serial interrupt source.
func New(onComplete func(), opts ...Option) *Port {
	p := &Port{onComplete: onComplete}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Read returns SB or SC. The unused SC bits read as 1.
func (p *Port) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return p.sb
	case addr.SC:
		return p.sc | 0x7E
	}
	return 0xFF
}

// Write stores SB or SC. An SC write may start a transfer.
func (p *Port) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		p.sb = value
	case addr.SC:
		p.sc = value & 0x81
		p.maybeStart()
	}
}

// Tick advances an active transfer by the given number of T-cycles.
func (p *Port) Tick(cycles int) {
	if !p.active {
		return
	}
	p.countdown -= cycles
	if p.countdown <= 0 {
		p.complete()
	}
}

// Reset aborts any transfer in flight and clears both registers.
func (p *Port) Reset() {
	p.sb = 0
	p.sc = 0
	p.active = false
	p.countdown = 0
}

func (p *Port) maybeStart() {
	if p.active {
		return
	}
	if !bit.IsSet(7, p.sc) || !bit.IsSet(0, p.sc) {
		return
	}

	if p.immediate {
		p.complete()
		return
	}
	p.active = true
	p.countdown = transferCycles
}

func (p *Port) complete() {
	if p.sink != nil {
		p.sink.ReceiveByte(p.sb)
	}
	p.sb = disconnectedRX
	p.sc = bit.Reset(7, p.sc)
	p.active = false
	p.countdown = 0
	if p.onComplete != nil {
		p.onComplete()
	}
}
