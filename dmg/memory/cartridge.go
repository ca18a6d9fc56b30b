package memory

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

const (
	titleAddress         = 0x0134
	titleLength          = 16
	cartridgeTypeAddress = 0x0147
	headerEnd            = 0x0150
)

// Cartridge is the flat mapper: the ROM image is addressed directly
// with no banking, and a fixed 8 KiB of external RAM answers for
// 0xA000-0xBFFF. Images that declare a banking chip in their header
// still load, but anything past the first 32 KiB is unreachable.
type Cartridge struct {
	rom   []uint8
	ram   [0x2000]uint8
	title string
}

// NewCartridge wraps a ROM image. Short images read as open bus past
// their end, so even a fragment can be executed.
func NewCartridge(data []byte) *Cartridge {
	c := &Cartridge{
		rom: append([]uint8(nil), data...),
	}
	if len(data) >= headerEnd {
		c.title = cleanTitle(data[titleAddress : titleAddress+titleLength])
		if t := data[cartridgeTypeAddress]; t != 0x00 {
			slog.Warn("cartridge declares a banking chip, mapping flat",
				"title", c.title,
				"type", fmt.Sprintf("0x%02X", t))
		}
	}
	return c
}

// Title returns the cleaned header title, or "" for headerless images.
func (c *Cartridge) Title() string {
	return c.title
}

func (c *Cartridge) Read(address uint16) uint8 {
	if address >= 0xA000 {
		return c.ram[address-0xA000]
	}
	if int(address) >= len(c.rom) {
		return 0xFF
	}
	return c.rom[address]
}

func (c *Cartridge) Write(address uint16, value uint8) {
	if address >= 0xA000 {
		c.ram[address-0xA000] = value
	}
	// ROM-range writes would steer a banking chip; flat mapping drops them.
}

// cleanTitle turns the raw header bytes into printable ASCII, dropping
// NUL padding and anything outside the printable range.
func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			r = ' '
		case !unicode.IsPrint(r):
			r = '?'
		}
		runes = append(runes, r)
	}
	return strings.TrimSpace(string(runes))
}
