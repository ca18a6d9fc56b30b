package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotmatrix-emu/go-dmg/dmg"
	"github.com/dotmatrix-emu/go-dmg/dmg/romfile"
	"github.com/dotmatrix-emu/go-dmg/dmg/serial"
)

// Long-running suite ROMs, as opposed to the per-instruction ROMs under
// test/blargg. Both report over the serial port and skip when the ROM
// files are absent.

const cartridgeTypeAddress = 0x0147

type IntegrationTestCase struct {
	ROMPath   string
	MaxFrames int
	Name      string
}

func GetIntegrationTests() []IntegrationTestCase {
	baseDir := "../../test-roms/game-boy-test-roms/blargg"

	return []IntegrationTestCase{
		{
			ROMPath:   filepath.Join(baseDir, "cpu_instrs", "cpu_instrs.gb"),
			MaxFrames: 5000,
			Name:      "cpu_instrs",
		},
		{
			ROMPath:   filepath.Join(baseDir, "instr_timing", "instr_timing.gb"),
			MaxFrames: 500,
			Name:      "instr_timing",
		},
	}
}

// mbc1 is the smallest banking chip the full-suite ROM needs: writes to
// 0x2000-0x3FFF pick the switchable ROM bank and external RAM is a
// single fixed 8 KiB bank. The suite ROMs never touch the upper bank
// bits or RAM bank switching.
type mbc1 struct {
	rom  []byte
	ram  [0x2000]byte
	bank int
}

func newMBC1(rom []byte) *mbc1 {
	return &mbc1{rom: rom, bank: 1}
}

func (m *mbc1) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.at(int(address))
	case address < 0x8000:
		return m.at(m.bank*0x4000 + int(address-0x4000))
	default:
		return m.ram[address-0xA000]
	}
}

func (m *mbc1) Write(address uint16, value uint8) {
	switch {
	case address >= 0x2000 && address < 0x4000:
		bank := int(value & 0x1F)
		if bank == 0 {
			bank = 1
		}
		m.bank = bank
	case address >= 0xA000:
		m.ram[address-0xA000] = value
	}
}

func (m *mbc1) at(offset int) uint8 {
	if offset >= len(m.rom) {
		return 0xFF
	}
	return m.rom[offset]
}

func runIntegrationTest(t *testing.T, testCase IntegrationTestCase) {
	if _, err := os.Stat(testCase.ROMPath); os.IsNotExist(err) {
		t.Skipf("ROM file not found: %s", testCase.ROMPath)
		return
	}

	data, err := romfile.Load(testCase.ROMPath)
	if err != nil {
		t.Fatalf("Failed to load ROM: %v", err)
	}

	transcript := &serial.BufferSink{}
	opts := []dmg.Option{dmg.WithSerialSink(transcript)}
	if len(data) > cartridgeTypeAddress && data[cartridgeTypeAddress] != 0x00 {
		opts = append(opts, dmg.WithMapper(newMBC1(data)))
	} else {
		opts = append(opts, dmg.WithCartridge(data))
	}

	machine, err := dmg.New(opts...)
	if err != nil {
		t.Fatalf("Failed to create machine: %v", err)
	}

	for frame := 0; frame < testCase.MaxFrames; frame++ {
		if err := machine.RunFrame(); err != nil {
			t.Fatalf("Machine faulted on frame %d: %v\nSerial output:\n%s", frame+1, err, transcript.String())
		}

		out := transcript.String()
		if strings.Contains(out, "Failed") {
			t.Fatalf("ROM reported failure:\n%s", out)
		}
		if strings.Contains(out, "Passed") {
			t.Logf("Verdict after %d frames:\n%s", frame+1, out)
			return
		}
	}

	t.Fatalf("No verdict after %d frames, serial output so far:\n%s",
		testCase.MaxFrames, transcript.String())
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long suite ROMs in short mode")
	}
	for _, testCase := range GetIntegrationTests() {
		t.Run(testCase.Name, func(t *testing.T) {
			runIntegrationTest(t, testCase)
		})
	}
}
