// Package cpu implements the SM83 core: fetch, decode via fixed opcode
// tables, execute with bit-exact flags, and interrupt dispatch.
package cpu

import (
	"github.com/dotmatrix-emu/go-dmg/dmg/addr"
	"github.com/dotmatrix-emu/go-dmg/dmg/bit"
	"github.com/dotmatrix-emu/go-dmg/dmg/interrupt"
)

// Bus provides the interface for component communication. Tick advances
// every clocked device on the bus by the given number of T-cycles.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles int)
}

// State is the CPU run state.
type State uint8

const (
	Running State = iota
	Halted
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

const (
	// idleCycles is consumed per step while halted or stopped.
	idleCycles = 4
	// dispatchCycles is the cost of an interrupt dispatch: two idle
	// machine cycles, the PC push and the vector jump.
	dispatchCycles = 20
)

// Action identifies what the most recent Step spent its cycles on.
type Action uint8

const (
	ActionInstruction Action = iota
	ActionInterrupt
	ActionHaltWait
	ActionStopWait
	ActionFault
)

func (a Action) String() string {
	switch a {
	case ActionInstruction:
		return "instruction"
	case ActionInterrupt:
		return "interrupt"
	case ActionHaltWait:
		return "halt"
	case ActionStopWait:
		return "stop"
	case ActionFault:
		return "fault"
	}
	return "unknown"
}

// CPU is the SM83 execution state. It owns its interrupt controller and
// drives the bus clock; see Step for the exact per-instruction sequence.
type CPU struct {
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	state State

	// haltBug suppresses exactly one PC increment at the next opcode
	// fetch. Set when HALT executes with IME clear and a request
	// already pending.
	haltBug bool

	// branched is set by a conditional instruction that took its
	// branch, selecting the longer cycle count for the step.
	branched bool

	// lastOpcode is the first opcode byte fetched by the most recent
	// instruction step, 0xCB included for prefixed instructions.
	lastOpcode uint8
	lastAction Action
	woke       bool

	cycles uint64
	fault  error

	bus Bus
	irq *interrupt.Controller
}

// New returns a CPU with the post-boot register snapshot, ready to
// execute at 0x0100 as if the boot ROM had just handed over.
func New(bus Bus, irq *interrupt.Controller) *CPU {
	c := &CPU{
		bus: bus,
		irq: irq,
	}

	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100

	return c
}

// ResetForBoot clears the register file so execution starts at 0x0000,
// used when a boot ROM is overlaid on the bus.
func (c *CPU) ResetForBoot() {
	c.setAF(0)
	c.setBC(0)
	c.setDE(0)
	c.setHL(0)
	c.sp = 0
	c.pc = 0
	c.state = Running
	c.haltBug = false
	c.lastOpcode = 0
	c.lastAction = ActionInstruction
	c.woke = false
}

// Step runs a single instruction (or idle/dispatch slot) and returns its
// cost in T-cycles. The bus is ticked by exactly that cost before Step
// returns, so timer and peripheral state always reflect it.
//
// A step is: wake from HALT if a request is pending; dispatch an
// interrupt if IME is set and a source is pending; commit an IME enable
// deferred by EI; then fetch, decode and execute one instruction.
// Dispatch is checked before the deferred commit so the instruction
// after EI always runs first, which is what makes EI;DI a no-op window.
//
// An illegal opcode surfaces as *IllegalOpcodeError and is sticky: every
// later call returns the same fault without executing anything.
func (c *CPU) Step() (int, error) {
	if c.fault != nil {
		return 0, c.fault
	}

	c.woke = false

	if c.state == Stopped {
		c.lastAction = ActionStopWait
		c.tick(idleCycles)
		return idleCycles, nil
	}

	if c.state == Halted {
		if !c.irq.Pending() {
			c.lastAction = ActionHaltWait
			c.tick(idleCycles)
			return idleCycles, nil
		}
		// Any pending request wakes the CPU, with or without IME.
		c.state = Running
		c.woke = true
	}

	if c.irq.Enabled() {
		if source, ok := c.irq.Next(); ok {
			c.lastAction = ActionInterrupt
			c.service(source)
			c.tick(dispatchCycles)
			return dispatchCycles, nil
		}
	}

	c.irq.CommitEnable()

	at := c.pc
	opcode := c.bus.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.pc++
	}
	c.lastOpcode = opcode

	instr := &baseTable[opcode]
	if opcode == prefixCB {
		instr = &cbTable[c.fetchByte()]
	}

	if instr.fn == nil {
		c.fault = &IllegalOpcodeError{Opcode: opcode, Addr: at}
		c.lastAction = ActionFault
		c.tick(idleCycles)
		return idleCycles, c.fault
	}

	c.lastAction = ActionInstruction

	c.branched = false
	instr.fn(c)

	cost := int(instr.cycles)
	if c.branched {
		cost += int(instr.branchCycles)
	}
	c.tick(cost)

	return cost, nil
}

// service dispatches one interrupt: acknowledge (clears the request bit
// and IME), push PC high byte then low byte, jump to the vector.
func (c *CPU) service(source interrupt.Source) {
	c.irq.Acknowledge(source)
	c.pushWord(c.pc)
	c.pc = source.Vector()
}

func (c *CPU) tick(cycles int) {
	c.cycles += uint64(cycles)
	c.bus.Tick(cycles)
}

// Resume wakes the CPU from the Stopped state. It is the external wake
// signal; interrupts alone never leave STOP.
func (c *CPU) Resume() {
	if c.state == Stopped {
		c.state = Running
	}
}

// fetchByte reads the byte at PC and advances PC.
func (c *CPU) fetchByte() uint8 {
	value := c.bus.Read(c.pc)
	c.pc++
	return value
}

// fetchWord reads a little-endian word at PC and advances PC twice.
func (c *CPU) fetchWord() uint16 {
	low := c.fetchByte()
	high := c.fetchByte()
	return bit.Combine(high, low)
}

func (c *CPU) pushWord(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popWord() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

// Snapshot is a read-only copy of the execution state, taken between
// steps for tracing and golden-state comparison.
type Snapshot struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	State                  State
	IME                    bool
	LastOpcode             uint8
	Cycles                 uint64
}

func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: c.a, F: c.f, B: c.b, C: c.c,
		D: c.d, E: c.e, H: c.h, L: c.l,
		SP:         c.sp,
		PC:         c.pc,
		State:      c.state,
		IME:        c.irq.Enabled(),
		LastOpcode: c.lastOpcode,
		Cycles:     c.cycles,
	}
}

func (s Snapshot) AF() uint16 { return bit.Combine(s.A, s.F) }
func (s Snapshot) BC() uint16 { return bit.Combine(s.B, s.C) }
func (s Snapshot) DE() uint16 { return bit.Combine(s.D, s.E) }
func (s Snapshot) HL() uint16 { return bit.Combine(s.H, s.L) }

// FlagString renders the flag nibble as "ZNHC" with dashes for clear
// bits, the usual debugger notation.
func (s Snapshot) FlagString() string {
	runes := []byte{'-', '-', '-', '-'}
	if s.F&uint8(zeroFlag) != 0 {
		runes[0] = 'Z'
	}
	if s.F&uint8(subFlag) != 0 {
		runes[1] = 'N'
	}
	if s.F&uint8(halfCarryFlag) != 0 {
		runes[2] = 'H'
	}
	if s.F&uint8(carryFlag) != 0 {
		runes[3] = 'C'
	}
	return string(runes)
}

func (c *CPU) PC() uint16     { return c.pc }
func (c *CPU) SP() uint16     { return c.sp }
func (c *CPU) State() State   { return c.state }
func (c *CPU) Cycles() uint64 { return c.cycles }

// LastAction reports what the most recent Step spent its cycles on.
func (c *CPU) LastAction() Action { return c.lastAction }

// WokeFromHalt reports whether the most recent Step left the Halted
// state before executing or dispatching.
func (c *CPU) WokeFromHalt() bool { return c.woke }

// Fault returns the sticky fault, or nil while the CPU is healthy.
func (c *CPU) Fault() error { return c.fault }

// stop enters the Stopped state. The instruction carries a padding byte,
// and entering STOP resets the divider.
func (c *CPU) stop() {
	c.fetchByte()
	c.bus.Write(addr.DIV, 0)
	c.state = Stopped
}

// halt enters the Halted state, or arms the HALT bug when IME is clear
// and a request is already pending: the next opcode byte is then fetched
// without advancing PC, so it executes twice in a row.
func (c *CPU) halt() {
	if !c.irq.Enabled() && c.irq.Pending() {
		c.haltBug = true
		return
	}
	c.state = Halted
}
