// Package memory implements the 16-bit memory bus: region routing, the
// I/O register dispatch, the cartridge mapper seam and the joypad.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/dotmatrix-emu/go-dmg/dmg/addr"
	"github.com/dotmatrix-emu/go-dmg/dmg/interrupt"
	"github.com/dotmatrix-emu/go-dmg/dmg/timer"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionHigh
)

// Mapper is the cartridge seam: it answers for 0x0000-0x7FFF and
// 0xA000-0xBFFF. Bank-switching side effects triggered by ROM-range
// writes are entirely the mapper's business.
type Mapper interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Peripheral is an external collaborator claiming a range of I/O
// registers, such as a display or audio unit built on top of the core.
type Peripheral interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// SerialPort is the device connected to SB/SC. Implementations only see
// reads and writes for those two addresses.
type SerialPort interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles int)
	Reset()
}

// Bus routes every CPU access to the owning region. Reads never fail:
// unmapped or unclaimed addresses resolve to 0xFF and writes there are
// dropped, matching the open-bus behavior of the hardware.
type Bus struct {
	regionMap [256]memRegion

	mapper Mapper
	boot   []byte
	bootOn bool

	vram [0x2000]uint8
	wram [0x2000]uint8
	oam  [0xA0]uint8
	hram [0x7F]uint8
	dma  uint8

	irq    *interrupt.Controller
	timer  *timer.Timer
	joypad *Joypad
	serial SerialPort

	// peripherals holds external claims on I/O registers, indexed by
	// address minus 0xFF00. Built-in registers are dispatched before
	// this table is consulted and never occupy a slot here.
	peripherals [0x80]Peripheral

	warnedNoMapper bool
}

// NewBus wires a bus to its interrupt controller and timer. The joypad
// is built in and requests the Joypad source on any fresh press.
func NewBus(irq *interrupt.Controller, tmr *timer.Timer) *Bus {
	b := &Bus{
		irq:   irq,
		timer: tmr,
	}
	b.joypad = NewJoypad(func() { irq.Request(interrupt.Joypad) })
	b.initRegionMap()
	return b
}

func (b *Bus) initRegionMap() {
	for i := 0x00; i <= 0x7F; i++ {
		b.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		b.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		b.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		b.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		b.regionMap[i] = regionEcho
	}
	b.regionMap[0xFE] = regionOAM
	b.regionMap[0xFF] = regionHigh
}

// SetMapper installs the cartridge mapper. A nil mapper models an empty
// cartridge slot: ROM reads 0xFF, writes vanish.
func (b *Bus) SetMapper(m Mapper) {
	b.mapper = m
}

// SetSerial connects a device to SB/SC.
func (b *Bus) SetSerial(p SerialPort) {
	b.serial = p
}

// SetBootROM overlays a 256-byte image on 0x0000-0x00FF until software
// writes to the BOOT register.
func (b *Bus) SetBootROM(image []byte) error {
	if len(image) != 0x100 {
		return &BusFaultError{Addr: 0x0000, Reason: fmt.Sprintf("boot image must be 256 bytes, got %d", len(image))}
	}
	b.boot = append([]byte(nil), image...)
	b.bootOn = true
	return nil
}

// AttachPeripheral claims the inclusive I/O register range [start, end]
// for an external collaborator. Core-owned registers inside the range
// (P1, SB/SC, the timer block, IF, DMA, BOOT) stay with the core: the
// bus dispatches them before consulting the claim table, so a display
// controller may claim its natural 0xFF40-0xFF4B block in one call even
// though DMA sits in the middle of it — the core keeps answering for
// 0xFF46 and the peripheral never sees it. Claims outside 0xFF00-0xFF7F
// or over an earlier claim fault.
func (b *Bus) AttachPeripheral(start, end uint16, p Peripheral) error {
	if p == nil {
		return &BusFaultError{Addr: start, Reason: "nil peripheral"}
	}
	if start > end {
		return &BusFaultError{Addr: start, Reason: "inverted address range"}
	}
	if start < addr.IOStart || end > addr.IOEnd {
		return &BusFaultError{Addr: start, Reason: "peripheral range outside the I/O registers"}
	}
	for a := start; a <= end; a++ {
		if !b.isBuiltin(a) && b.peripherals[a-addr.IOStart] != nil {
			return &BusFaultError{Addr: a, Reason: "register already claimed"}
		}
	}
	for a := start; a <= end; a++ {
		if b.isBuiltin(a) {
			continue
		}
		b.peripherals[a-addr.IOStart] = p
	}
	return nil
}

func (b *Bus) isBuiltin(address uint16) bool {
	switch address {
	case addr.P1, addr.SB, addr.SC, addr.IF, addr.DMA, addr.BOOT:
		return true
	}
	return address >= addr.DIV && address <= addr.TAC
}

// Joypad returns the built-in joypad.
func (b *Bus) Joypad() *Joypad {
	return b.joypad
}

// BootROMEnabled reports whether the boot overlay still answers for the
// first 256 bytes.
func (b *Bus) BootROMEnabled() bool {
	return b.bootOn
}

// Tick advances the clocked bus devices by the given number of T-cycles.
func (b *Bus) Tick(cycles int) {
	b.timer.Tick(cycles)
	if b.serial != nil {
		b.serial.Tick(cycles)
	}
}

func (b *Bus) Read(address uint16) uint8 {
	switch b.regionMap[address>>8] {
	case regionROM:
		if b.bootOn && address < 0x0100 {
			return b.boot[address]
		}
		if b.mapper == nil {
			b.warnNoMapper(address)
			return 0xFF
		}
		return b.mapper.Read(address)
	case regionVRAM:
		return b.vram[address-addr.VRAMStart]
	case regionExtRAM:
		if b.mapper == nil {
			return 0xFF
		}
		return b.mapper.Read(address)
	case regionWRAM:
		return b.wram[address-addr.WRAMStart]
	case regionEcho:
		return b.wram[address-addr.EchoStart]
	case regionOAM:
		if address <= addr.OAMEnd {
			return b.oam[address-addr.OAMStart]
		}
		// Prohibited area below the I/O registers.
		return 0xFF
	}
	return b.readHigh(address)
}

func (b *Bus) Write(address uint16, value uint8) {
	switch b.regionMap[address>>8] {
	case regionROM:
		if b.mapper == nil {
			return
		}
		b.mapper.Write(address, value)
	case regionVRAM:
		b.vram[address-addr.VRAMStart] = value
	case regionExtRAM:
		if b.mapper == nil {
			return
		}
		b.mapper.Write(address, value)
	case regionWRAM:
		b.wram[address-addr.WRAMStart] = value
	case regionEcho:
		b.wram[address-addr.EchoStart] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			b.oam[address-addr.OAMStart] = value
		}
	default:
		b.writeHigh(address, value)
	}
}

// readHigh dispatches page 0xFF: I/O registers, HRAM and IE.
func (b *Bus) readHigh(address uint16) uint8 {
	switch {
	case address >= addr.HRAMStart && address <= addr.HRAMEnd:
		return b.hram[address-addr.HRAMStart]
	case address == addr.IE:
		return b.irq.ReadEnable()
	case address == addr.P1:
		return b.joypad.Read()
	case address == addr.SB, address == addr.SC:
		if b.serial == nil {
			return 0xFF
		}
		return b.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return b.timer.Read(address)
	case address == addr.IF:
		return b.irq.ReadFlags()
	case address == addr.DMA:
		return b.dma
	}
	if p := b.peripherals[address-addr.IOStart]; p != nil {
		return p.Read(address)
	}
	return 0xFF
}

func (b *Bus) writeHigh(address uint16, value uint8) {
	switch {
	case address >= addr.HRAMStart && address <= addr.HRAMEnd:
		b.hram[address-addr.HRAMStart] = value
		return
	case address == addr.IE:
		b.irq.WriteEnable(value)
		return
	case address == addr.P1:
		b.joypad.Write(value)
		return
	case address == addr.SB, address == addr.SC:
		if b.serial != nil {
			b.serial.Write(address, value)
		}
		return
	case address >= addr.DIV && address <= addr.TAC:
		b.timer.Write(address, value)
		return
	case address == addr.IF:
		b.irq.WriteFlags(value)
		return
	case address == addr.DMA:
		b.dma = value
		b.dmaTransfer(uint16(value) << 8)
		return
	case address == addr.BOOT:
		if value != 0 && b.bootOn {
			b.bootOn = false
			slog.Debug("boot ROM unmapped")
		}
		return
	}
	if p := b.peripherals[address-addr.IOStart]; p != nil {
		p.Write(address, value)
		return
	}
	slog.Debug("write to unclaimed I/O register dropped",
		"addr", fmt.Sprintf("0x%04X", address),
		"value", fmt.Sprintf("0x%02X", value))
}

// dmaTransfer copies 160 bytes from the source address into OAM. The
// copy is performed in one shot; the cycle cost is borne by the program
// busy-waiting in HRAM as on hardware.
func (b *Bus) dmaTransfer(source uint16) {
	for i := uint16(0); i < 160; i++ {
		b.oam[i] = b.Read(source + i)
	}
}

// ReadRegion returns length bytes starting at start, reading through the
// normal routing. Used by tooling for golden-state comparison.
func (b *Bus) ReadRegion(start uint16, length int) []uint8 {
	if length <= 0 {
		return nil
	}
	if max := 0x10000 - int(start); length > max {
		length = max
	}
	out := make([]uint8, length)
	for i := range out {
		out[i] = b.Read(start + uint16(i))
	}
	return out
}

func (b *Bus) warnNoMapper(address uint16) {
	if b.warnedNoMapper {
		return
	}
	b.warnedNoMapper = true
	slog.Warn("ROM read with no cartridge attached", "addr", fmt.Sprintf("0x%04X", address))
}
