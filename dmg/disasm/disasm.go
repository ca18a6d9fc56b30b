// Package disasm renders instruction streams as text using the decode
// metadata exported by the cpu package. It reads through a plain byte
// reader so it works against a live bus, a snapshot region or a test
// slice alike.
package disasm

import (
	"fmt"
	"strings"

	"github.com/dotmatrix-emu/go-dmg/dmg/bit"
	"github.com/dotmatrix-emu/go-dmg/dmg/cpu"
)

// Read is the byte source a disassembly walks. memory.Bus.Read
// satisfies it directly.
type Read func(addr uint16) uint8

// Line is one decoded instruction.
type Line struct {
	Addr   uint16
	Bytes  []uint8
	Text   string
	Length int
}

func (l Line) String() string {
	raw := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		raw[i] = fmt.Sprintf("%02X", b)
	}
	return fmt.Sprintf("0x%04X: %-8s %s", l.Addr, strings.Join(raw, " "), l.Text)
}

// At decodes the instruction starting at addr. Operand reads wrap at
// the top of the address space like the CPU's own fetch does. Opcodes
// without a handler render as a data byte.
func At(read Read, addr uint16) Line {
	opcode := read(addr)

	if opcode == 0xCB {
		prefixed := read(addr + 1)
		info := cpu.LookupPrefixed(prefixed)
		return Line{
			Addr:   addr,
			Bytes:  []uint8{opcode, prefixed},
			Text:   info.Mnemonic,
			Length: info.Length,
		}
	}

	info := cpu.LookupOpcode(opcode)
	if info.Illegal {
		return Line{
			Addr:   addr,
			Bytes:  []uint8{opcode},
			Text:   fmt.Sprintf("DB 0x%02X", opcode),
			Length: 1,
		}
	}

	raw := make([]uint8, info.Length)
	raw[0] = opcode
	for i := 1; i < info.Length; i++ {
		raw[i] = read(addr + uint16(i))
	}

	return Line{
		Addr:   addr,
		Bytes:  raw,
		Text:   expand(info.Mnemonic, raw),
		Length: info.Length,
	}
}

// expand substitutes the operand placeholders of a mnemonic template.
// The templates only ever use lowercase letters for placeholders, so a
// plain string replace cannot collide with register names. "nn" must go
// before "n", and "+e" before "e" so the signed offset does not end up
// double-signed.
func expand(template string, raw []uint8) string {
	switch {
	case strings.Contains(template, "nn"):
		value := bit.Combine(raw[2], raw[1])
		return strings.Replace(template, "nn", fmt.Sprintf("0x%04X", value), 1)
	case strings.Contains(template, "n"):
		return strings.Replace(template, "n", fmt.Sprintf("0x%02X", raw[1]), 1)
	case strings.Contains(template, "+e"):
		return strings.Replace(template, "+e", fmt.Sprintf("%+d", int8(raw[1])), 1)
	case strings.Contains(template, "e"):
		return strings.Replace(template, "e", fmt.Sprintf("%+d", int8(raw[1])), 1)
	default:
		return template
	}
}

// Window decodes around pc: up to before instructions preceding it, the
// instruction at pc, and after instructions following it. Instruction
// boundaries cannot be walked backwards, so the preceding lines come
// from the earliest scan start within reach that decodes forward onto
// pc exactly. Best effort; near the bottom of the address space the
// window is simply shorter.
func Window(read Read, pc uint16, before, after int) []Line {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	var leading []Line
	if before > 0 && pc > 0 {
		low := uint16(0)
		if span := uint16(before * 3); pc > span {
			low = pc - span
		}
		for candidate := low; candidate < pc; candidate++ {
			if lines := walk(read, candidate, pc); lines != nil {
				leading = lines
				break
			}
		}
		if len(leading) > before {
			leading = leading[len(leading)-before:]
		}
	}

	lines := append(leading, At(read, pc))
	next := pc + uint16(lines[len(lines)-1].Length)
	for i := 0; i < after; i++ {
		line := At(read, next)
		lines = append(lines, line)
		next += uint16(line.Length)
	}
	return lines
}

// walk decodes from one address toward another, returning the lines in
// between, or nil if the stream does not land on the target exactly.
func walk(read Read, from, to uint16) []Line {
	var lines []Line
	addr := int(from)
	for addr < int(to) {
		line := At(read, uint16(addr))
		lines = append(lines, line)
		addr += line.Length
	}
	if addr != int(to) {
		return nil
	}
	return lines
}
