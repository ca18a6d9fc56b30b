// Package addr names the fixed addresses of the DMG memory map that the
// core routes or intercepts. Values are 16-bit bus addresses.
package addr

// joypad
const (
	// P1 selects and reads the joypad matrix. Bits 4-5 select a button
	// group (active low), bits 0-3 read the selected group, bits 6-7
	// always read as 1.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB holds the byte shifted out during a serial transfer. After
	// completion it holds the byte shifted in from the peer (0xFF when
	// nothing is connected).
	SB uint16 = 0xFF01
	// SC controls serial transfers. Bit 7 starts a transfer and is
	// cleared by hardware on completion, bit 0 selects the internal
	// clock. Bits 1-6 are unused and read as 1.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV exposes the upper byte of the internal 16-bit divider. Any
	// write resets the whole divider to zero.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter. Overflow reloads it from TMA and
	// requests the Timer interrupt.
	TIMA uint16 = 0xFF05
	// TMA is the value loaded into TIMA on overflow.
	TMA uint16 = 0xFF06
	// TAC enables the timer (bit 2) and selects its rate (bits 0-1).
	TAC uint16 = 0xFF07
)

// interrupts
const (
	// IF is the interrupt request register. The upper 3 bits are unused
	// and always read as 1.
	IF uint16 = 0xFF0F
	// IE is the interrupt enable register.
	IE uint16 = 0xFFFF
)

// system control
const (
	// DMA starts an OAM transfer: the written value is the source page,
	// 160 bytes are copied from value<<8 to OAM.
	DMA uint16 = 0xFF46
	// BOOT unmaps the boot ROM overlay. Any nonzero write is permanent
	// until power-off.
	BOOT uint16 = 0xFF50
)

// region boundaries
const (
	// ROMEnd is the last address routed to the cartridge mapper's ROM view.
	ROMEnd uint16 = 0x7FFF
	// VRAMStart is the first address of video RAM.
	VRAMStart uint16 = 0x8000
	// ExtRAMStart is the first address routed to the mapper's RAM view.
	ExtRAMStart uint16 = 0xA000
	// WRAMStart is the first address of work RAM.
	WRAMStart uint16 = 0xC000
	// EchoStart mirrors WRAMStart; reads and writes land 0x2000 below.
	EchoStart uint16 = 0xE000
	// EchoEnd is the last mirrored address.
	EchoEnd uint16 = 0xFDFF
	// OAMStart is the first byte of object attribute memory.
	OAMStart uint16 = 0xFE00
	// OAMEnd is the last byte of object attribute memory.
	OAMEnd uint16 = 0xFE9F
	// UnusedStart begins the prohibited area below the I/O registers.
	UnusedStart uint16 = 0xFEA0
	// UnusedEnd is the last prohibited address.
	UnusedEnd uint16 = 0xFEFF
	// IOStart is the first I/O register address.
	IOStart uint16 = 0xFF00
	// IOEnd is the last I/O register address.
	IOEnd uint16 = 0xFF7F
	// HRAMStart is the first byte of high RAM.
	HRAMStart uint16 = 0xFF80
	// HRAMEnd is the last byte of high RAM.
	HRAMEnd uint16 = 0xFFFE
)
