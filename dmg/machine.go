// Package dmg wires the SM83 core, memory bus, interrupt controller,
// timer, serial port and joypad into one deterministic machine. The
// machine never spins up goroutines or paces itself: callers drive it
// step by step or frame by frame and own the clock.
package dmg

import (
	"errors"
	"log/slog"

	"github.com/dotmatrix-emu/go-dmg/dmg/bit"
	"github.com/dotmatrix-emu/go-dmg/dmg/cpu"
	"github.com/dotmatrix-emu/go-dmg/dmg/interrupt"
	"github.com/dotmatrix-emu/go-dmg/dmg/memory"
	"github.com/dotmatrix-emu/go-dmg/dmg/serial"
	"github.com/dotmatrix-emu/go-dmg/dmg/timer"
	"github.com/dotmatrix-emu/go-dmg/dmg/trace"
)

const (
	// CyclesPerFrame is one LCD frame worth of T-cycles, the pacing
	// quantum for frame-based callers.
	CyclesPerFrame = 70224
	// CPUFrequency is the DMG master clock in T-cycles per second.
	CPUFrequency = 4194304
)

// dividerSeed is the internal divider value the boot sequence leaves
// behind when it hands control to the cartridge.
const dividerSeed = 0xABCC

// Machine owns one emulated unit. All methods are single-threaded.
type Machine struct {
	cpu    *cpu.CPU
	bus    *memory.Bus
	irq    *interrupt.Controller
	timer  *timer.Timer
	serial *serial.Port
	cart   *memory.Cartridge

	tracer trace.Sink
	logger *slog.Logger

	frameCycles int64
}

type config struct {
	cartridge []byte
	mapper    memory.Mapper
	bootROM   []byte
	sink      serial.Sink
	immediate bool
	tracer    trace.Sink
	logger    *slog.Logger
}

// Option configures a Machine at construction.
type Option func(*config)

// WithCartridge loads a ROM image through the flat cartridge mapper.
func WithCartridge(data []byte) Option {
	return func(c *config) { c.cartridge = data }
}

// WithMapper installs a custom cartridge mapper instead of the flat
// one.
func WithMapper(m memory.Mapper) Option {
	return func(c *config) { c.mapper = m }
}

// WithBootROM overlays a 256-byte boot image and starts execution at
// 0x0000 with a cleared register file instead of the post-boot state.
func WithBootROM(image []byte) Option {
	return func(c *config) { c.bootROM = image }
}

// WithSerialSink delivers completed serial transfers to s.
func WithSerialSink(s serial.Sink) Option {
	return func(c *config) { c.sink = s }
}

// WithImmediateSerial completes serial transfers on the SC write
// instead of after the hardware bit clock, for tests that do not pump
// cycles.
func WithImmediateSerial() Option {
	return func(c *config) { c.immediate = true }
}

// WithTracer emits one trace record per step to t.
func WithTracer(t trace.Sink) Option {
	return func(c *config) { c.tracer = t }
}

// WithLogger routes the machine's own log lines to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New builds a machine. Without a boot ROM it starts in the post-boot
// state: registers as the boot sequence leaves them, PC at 0x0100, the
// divider mid-count and the VBlank request already latched.
func New(opts ...Option) (*Machine, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.cartridge != nil && cfg.mapper != nil {
		return nil, errors.New("WithCartridge and WithMapper are mutually exclusive")
	}

	m := &Machine{
		tracer: cfg.tracer,
		logger: cfg.logger,
	}

	m.irq = interrupt.NewController()
	m.timer = timer.New(func() { m.irq.Request(interrupt.Timer) })
	m.bus = memory.NewBus(m.irq, m.timer)

	serialOpts := []serial.Option{}
	if cfg.sink != nil {
		serialOpts = append(serialOpts, serial.WithSink(cfg.sink))
	}
	if cfg.immediate {
		serialOpts = append(serialOpts, serial.WithImmediateTransfers())
	}
	m.serial = serial.New(func() { m.irq.Request(interrupt.Serial) }, serialOpts...)
	m.bus.SetSerial(m.serial)

	switch {
	case cfg.mapper != nil:
		m.bus.SetMapper(cfg.mapper)
	case cfg.cartridge != nil:
		m.LoadCartridge(cfg.cartridge)
	}

	m.cpu = cpu.New(m.bus, m.irq)

	if cfg.bootROM != nil {
		if err := m.bus.SetBootROM(cfg.bootROM); err != nil {
			return nil, err
		}
		m.cpu.ResetForBoot()
		return m, nil
	}

	// Hardware state at the 0x0100 handover.
	m.timer.SetSeed(dividerSeed)
	m.irq.WriteFlags(0x01)

	return m, nil
}

// LoadCartridge replaces the mapper with a flat cartridge built from
// data.
func (m *Machine) LoadCartridge(data []byte) {
	m.cart = memory.NewCartridge(data)
	m.bus.SetMapper(m.cart)
	m.logger.Info("cartridge loaded", "title", m.cart.Title(), "size", len(data))
}

// Title returns the loaded cartridge's header title, or "" when no flat
// cartridge is loaded.
func (m *Machine) Title() string {
	if m.cart == nil {
		return ""
	}
	return m.cart.Title()
}

// Step executes one CPU step and advances every clocked device by its
// cost. With a tracer installed it emits the step's record, stamped
// with the pre-step state.
func (m *Machine) Step() (int, error) {
	if m.tracer == nil {
		cycles, err := m.cpu.Step()
		m.frameCycles += int64(cycles)
		return cycles, err
	}

	pre := m.cpu.Snapshot()
	cycles, err := m.cpu.Step()
	m.frameCycles += int64(cycles)
	if cycles > 0 {
		m.emit(pre)
	}
	return cycles, err
}

// emit translates the step just taken into trace records. Waking from
// HALT gets its own record ahead of whatever the step then did.
func (m *Machine) emit(pre cpu.Snapshot) {
	rec := trace.Record{
		Cycle: pre.Cycles,
		PC:    pre.PC,
		A:     pre.A, F: pre.F, B: pre.B, C: pre.C,
		D: pre.D, E: pre.E, H: pre.H, L: pre.L,
		SP: pre.SP,
	}

	if m.cpu.WokeFromHalt() {
		wake := rec
		wake.Event = trace.Wake
		m.tracer.Emit(wake)
	}

	post := m.cpu.Snapshot()
	switch m.cpu.LastAction() {
	case cpu.ActionInstruction:
		rec.Event = trace.Instruction
		rec.Opcode = post.LastOpcode
	case cpu.ActionInterrupt:
		rec.Event = trace.Interrupt
		rec.Opcode = bit.Low(post.PC)
	case cpu.ActionHaltWait:
		rec.Event = trace.Halt
	case cpu.ActionStopWait:
		rec.Event = trace.Stop
	case cpu.ActionFault:
		rec.Event = trace.Fault
		rec.Opcode = post.LastOpcode
	}
	m.tracer.Emit(rec)
}

// Run steps until at least maxCycles T-cycles have elapsed or a fault
// surfaces, returning the cycles actually consumed.
func (m *Machine) Run(maxCycles int64) (int64, error) {
	var elapsed int64
	for elapsed < maxCycles {
		cycles, err := m.Step()
		elapsed += int64(cycles)
		if err != nil {
			return elapsed, err
		}
	}
	return elapsed, nil
}

// RunFrame runs one frame's worth of cycles. An instruction straddling
// the boundary carries its overshoot into the next frame, keeping the
// long-run pace exact.
func (m *Machine) RunFrame() error {
	for m.frameCycles < CyclesPerFrame {
		if _, err := m.Step(); err != nil {
			return err
		}
	}
	m.frameCycles -= CyclesPerFrame
	return nil
}

// Snapshot is the machine state between steps: the CPU register file
// plus the interrupt registers and the divider.
type Snapshot struct {
	cpu.Snapshot
	IE, IF  uint8
	Divider uint16
}

func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Snapshot: m.cpu.Snapshot(),
		IE:       m.irq.ReadEnable(),
		IF:       m.irq.ReadFlags(),
		Divider:  m.timer.Divider(),
	}
}

// ReadByte reads one byte through the bus routing, side-effect free for
// every core register.
func (m *Machine) ReadByte(address uint16) uint8 {
	return m.bus.Read(address)
}

// ReadRegion returns length bytes starting at start for tooling.
func (m *Machine) ReadRegion(start uint16, length int) []uint8 {
	return m.bus.ReadRegion(start, length)
}

// Bus exposes the memory bus for peripheral claims.
func (m *Machine) Bus() *memory.Bus {
	return m.bus
}

// Fault returns the CPU's sticky fault, or nil while it is healthy.
func (m *Machine) Fault() error {
	return m.cpu.Fault()
}

// Press pushes a button. A fresh press latches the Joypad request and
// is the one external signal that wakes the Stopped state.
func (m *Machine) Press(b memory.Button) {
	m.bus.Joypad().Press(b)
	m.cpu.Resume()
}

// Release lets a button up.
func (m *Machine) Release(b memory.Button) {
	m.bus.Joypad().Release(b)
}
