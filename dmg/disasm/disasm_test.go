package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func reader(bytes map[uint16]uint8) Read {
	return func(addr uint16) uint8 { return bytes[addr] }
}

func TestAt(t *testing.T) {
	tests := []struct {
		desc   string
		bytes  []uint8
		want   string
		length int
	}{
		{desc: "no operand", bytes: []uint8{0x00}, want: "NOP", length: 1},
		{desc: "byte immediate", bytes: []uint8{0x3E, 0x42}, want: "LD A,0x42", length: 2},
		{desc: "byte immediate to memory", bytes: []uint8{0x36, 0x99}, want: "LD (HL),0x99", length: 2},
		{desc: "word immediate", bytes: []uint8{0xC3, 0x34, 0x12}, want: "JP 0x1234", length: 3},
		{desc: "word address operand", bytes: []uint8{0x08, 0xCD, 0xAB}, want: "LD (0xABCD),SP", length: 3},
		{desc: "negative relative", bytes: []uint8{0x18, 0xFD}, want: "JR -3", length: 2},
		{desc: "positive relative with condition", bytes: []uint8{0x20, 0x05}, want: "JR NZ,+5", length: 2},
		{desc: "high page store", bytes: []uint8{0xE0, 0x44}, want: "LDH (0x44),A", length: 2},
		{desc: "stack offset", bytes: []uint8{0xF8, 0xFE}, want: "LD HL,SP-2", length: 2},
		{desc: "prefixed", bytes: []uint8{0xCB, 0x37}, want: "SWAP A", length: 2},
		{desc: "prefixed bit test", bytes: []uint8{0xCB, 0x7C}, want: "BIT 7,H", length: 2},
		{desc: "unassigned opcode", bytes: []uint8{0xF4}, want: "DB 0xF4", length: 1},
		{desc: "restart", bytes: []uint8{0xFF}, want: "RST 0x38", length: 1},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			mem := map[uint16]uint8{}
			for i, b := range tC.bytes {
				mem[0x0100+uint16(i)] = b
			}

			line := At(reader(mem), 0x0100)

			assert.Equal(t, tC.want, line.Text)
			assert.Equal(t, tC.length, line.Length)
			assert.Equal(t, uint16(0x0100), line.Addr)
			assert.Equal(t, tC.bytes, line.Bytes)
		})
	}
}

func TestAtWrapsAddressSpace(t *testing.T) {
	mem := map[uint16]uint8{0xFFFF: 0x3E, 0x0000: 0x77}

	line := At(reader(mem), 0xFFFF)

	assert.Equal(t, "LD A,0x77", line.Text)
	assert.Equal(t, []uint8{0x3E, 0x77}, line.Bytes)
}

func TestLineString(t *testing.T) {
	line := Line{Addr: 0x0100, Bytes: []uint8{0x3E, 0x42}, Text: "LD A,0x42", Length: 2}
	assert.Equal(t, "0x0100: 3E 42    LD A,0x42", line.String())
}

func TestWindow(t *testing.T) {
	mem := map[uint16]uint8{
		0x0100: 0x3E, 0x0101: 0x01, // LD A,0x01
		0x0102: 0x06, 0x0103: 0x02, // LD B,0x02
		0x0104: 0x80, // ADD A,B
		0x0105: 0xC3, 0x0106: 0x00, 0x0107: 0x01, // JP 0x0100
	}
	read := reader(mem)

	t.Run("centers on pc", func(t *testing.T) {
		lines := Window(read, 0x0104, 2, 1)

		assert.Len(t, lines, 4)
		assert.Equal(t, "LD A,0x01", lines[0].Text)
		assert.Equal(t, "LD B,0x02", lines[1].Text)
		assert.Equal(t, "ADD A,B", lines[2].Text)
		assert.Equal(t, "JP 0x0100", lines[3].Text)
		assert.Equal(t, uint16(0x0104), lines[2].Addr)
	})

	t.Run("shrinks near bottom of memory", func(t *testing.T) {
		lines := Window(read, 0x0001, 3, 0)

		assert.Len(t, lines, 2)
		assert.Equal(t, uint16(0x0000), lines[0].Addr)
		assert.Equal(t, uint16(0x0001), lines[1].Addr)
	})

	t.Run("gives up leading lines when streams do not align", func(t *testing.T) {
		// 0x0101 is the middle of LD A,0x01, so no scan start decodes
		// onto it; the window starts at pc instead.
		lines := Window(read, 0x0101, 2, 0)

		assert.Len(t, lines, 1)
		assert.Equal(t, uint16(0x0101), lines[0].Addr)
	})

	t.Run("after only", func(t *testing.T) {
		lines := Window(read, 0x0100, 0, 2)

		assert.Len(t, lines, 3)
		assert.Equal(t, []uint16{0x0100, 0x0102, 0x0104}, []uint16{lines[0].Addr, lines[1].Addr, lines[2].Addr})
	})
}
