package cpu

import (
	"fmt"

	"github.com/dotmatrix-emu/go-dmg/dmg/bit"
)

const prefixCB = 0xCB

// op is one decode-table entry: mnemonic (with n/nn/e standing in for
// operand bytes), total byte length, base T-cycle cost, the extra cost
// when a conditional branch is taken, and the handler. A nil handler
// marks an unassigned opcode.
type op struct {
	name         string
	length       uint8
	cycles       uint8
	branchCycles uint8
	fn           func(*CPU)
}

// OpcodeInfo describes one decode-table entry for tooling.
type OpcodeInfo struct {
	Mnemonic string
	Length   int
	Cycles   int
	Illegal  bool
}

// LookupOpcode returns the decode entry for a base-table opcode.
func LookupOpcode(opcode uint8) OpcodeInfo {
	entry := &baseTable[opcode]
	if entry.fn == nil {
		return OpcodeInfo{Length: 1, Cycles: idleCycles, Illegal: true}
	}
	return OpcodeInfo{
		Mnemonic: entry.name,
		Length:   int(entry.length),
		Cycles:   int(entry.cycles),
	}
}

// LookupPrefixed returns the decode entry for a CB-prefixed opcode.
// Every prefixed opcode is assigned.
func LookupPrefixed(opcode uint8) OpcodeInfo {
	entry := &cbTable[opcode]
	return OpcodeInfo{
		Mnemonic: entry.name,
		Length:   int(entry.length),
		Cycles:   int(entry.cycles),
	}
}

// baseTable holds the irregular opcodes as literal entries; the regular
// blocks (LD r,r', the ALU block, INC/DEC/LD r,n and RST) are generated
// in init. Unassigned opcodes keep a nil handler.
var baseTable = [256]op{
	0x00: {name: "NOP", length: 1, cycles: 4, fn: func(*CPU) {}},
	0x01: {name: "LD BC,nn", length: 3, cycles: 12, fn: func(c *CPU) { c.setBC(c.fetchWord()) }},
	0x02: {name: "LD (BC),A", length: 1, cycles: 8, fn: func(c *CPU) { c.bus.Write(c.getBC(), c.a) }},
	0x03: {name: "INC BC", length: 1, cycles: 8, fn: func(c *CPU) { c.setBC(c.getBC() + 1) }},
	0x07: {name: "RLCA", length: 1, cycles: 4, fn: (*CPU).rlca},
	0x08: {name: "LD (nn),SP", length: 3, cycles: 20, fn: func(c *CPU) {
		address := c.fetchWord()
		c.bus.Write(address, bit.Low(c.sp))
		c.bus.Write(address+1, bit.High(c.sp))
	}},
	0x09: {name: "ADD HL,BC", length: 1, cycles: 8, fn: func(c *CPU) { c.addToHL(c.getBC()) }},
	0x0A: {name: "LD A,(BC)", length: 1, cycles: 8, fn: func(c *CPU) { c.a = c.bus.Read(c.getBC()) }},
	0x0B: {name: "DEC BC", length: 1, cycles: 8, fn: func(c *CPU) { c.setBC(c.getBC() - 1) }},
	0x0F: {name: "RRCA", length: 1, cycles: 4, fn: (*CPU).rrca},

	0x10: {name: "STOP", length: 2, cycles: 4, fn: (*CPU).stop},
	0x11: {name: "LD DE,nn", length: 3, cycles: 12, fn: func(c *CPU) { c.setDE(c.fetchWord()) }},
	0x12: {name: "LD (DE),A", length: 1, cycles: 8, fn: func(c *CPU) { c.bus.Write(c.getDE(), c.a) }},
	0x13: {name: "INC DE", length: 1, cycles: 8, fn: func(c *CPU) { c.setDE(c.getDE() + 1) }},
	0x17: {name: "RLA", length: 1, cycles: 4, fn: (*CPU).rla},
	0x18: {name: "JR e", length: 2, cycles: 12, fn: func(c *CPU) { c.jr(true) }},
	0x19: {name: "ADD HL,DE", length: 1, cycles: 8, fn: func(c *CPU) { c.addToHL(c.getDE()) }},
	0x1A: {name: "LD A,(DE)", length: 1, cycles: 8, fn: func(c *CPU) { c.a = c.bus.Read(c.getDE()) }},
	0x1B: {name: "DEC DE", length: 1, cycles: 8, fn: func(c *CPU) { c.setDE(c.getDE() - 1) }},
	0x1F: {name: "RRA", length: 1, cycles: 4, fn: (*CPU).rra},

	0x20: {name: "JR NZ,e", length: 2, cycles: 8, branchCycles: 4, fn: func(c *CPU) { c.jr(!c.isSetFlag(zeroFlag)) }},
	0x21: {name: "LD HL,nn", length: 3, cycles: 12, fn: func(c *CPU) { c.setHL(c.fetchWord()) }},
	0x22: {name: "LD (HL+),A", length: 1, cycles: 8, fn: func(c *CPU) {
		c.bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() + 1)
	}},
	0x23: {name: "INC HL", length: 1, cycles: 8, fn: func(c *CPU) { c.setHL(c.getHL() + 1) }},
	0x27: {name: "DAA", length: 1, cycles: 4, fn: (*CPU).daa},
	0x28: {name: "JR Z,e", length: 2, cycles: 8, branchCycles: 4, fn: func(c *CPU) { c.jr(c.isSetFlag(zeroFlag)) }},
	0x29: {name: "ADD HL,HL", length: 1, cycles: 8, fn: func(c *CPU) { c.addToHL(c.getHL()) }},
	0x2A: {name: "LD A,(HL+)", length: 1, cycles: 8, fn: func(c *CPU) {
		c.a = c.bus.Read(c.getHL())
		c.setHL(c.getHL() + 1)
	}},
	0x2B: {name: "DEC HL", length: 1, cycles: 8, fn: func(c *CPU) { c.setHL(c.getHL() - 1) }},
	0x2F: {name: "CPL", length: 1, cycles: 4, fn: (*CPU).cpl},

	0x30: {name: "JR NC,e", length: 2, cycles: 8, branchCycles: 4, fn: func(c *CPU) { c.jr(!c.isSetFlag(carryFlag)) }},
	0x31: {name: "LD SP,nn", length: 3, cycles: 12, fn: func(c *CPU) { c.sp = c.fetchWord() }},
	0x32: {name: "LD (HL-),A", length: 1, cycles: 8, fn: func(c *CPU) {
		c.bus.Write(c.getHL(), c.a)
		c.setHL(c.getHL() - 1)
	}},
	0x33: {name: "INC SP", length: 1, cycles: 8, fn: func(c *CPU) { c.sp++ }},
	0x37: {name: "SCF", length: 1, cycles: 4, fn: (*CPU).scf},
	0x38: {name: "JR C,e", length: 2, cycles: 8, branchCycles: 4, fn: func(c *CPU) { c.jr(c.isSetFlag(carryFlag)) }},
	0x39: {name: "ADD HL,SP", length: 1, cycles: 8, fn: func(c *CPU) { c.addToHL(c.sp) }},
	0x3A: {name: "LD A,(HL-)", length: 1, cycles: 8, fn: func(c *CPU) {
		c.a = c.bus.Read(c.getHL())
		c.setHL(c.getHL() - 1)
	}},
	0x3B: {name: "DEC SP", length: 1, cycles: 8, fn: func(c *CPU) { c.sp-- }},
	0x3F: {name: "CCF", length: 1, cycles: 4, fn: (*CPU).ccf},

	0x76: {name: "HALT", length: 1, cycles: 4, fn: (*CPU).halt},

	0xC0: {name: "RET NZ", length: 1, cycles: 8, branchCycles: 12, fn: func(c *CPU) { c.retIf(!c.isSetFlag(zeroFlag)) }},
	0xC1: {name: "POP BC", length: 1, cycles: 12, fn: func(c *CPU) { c.setBC(c.popWord()) }},
	0xC2: {name: "JP NZ,nn", length: 3, cycles: 12, branchCycles: 4, fn: func(c *CPU) { c.jp(!c.isSetFlag(zeroFlag)) }},
	0xC3: {name: "JP nn", length: 3, cycles: 16, fn: func(c *CPU) { c.jp(true) }},
	0xC4: {name: "CALL NZ,nn", length: 3, cycles: 12, branchCycles: 12, fn: func(c *CPU) { c.call(!c.isSetFlag(zeroFlag)) }},
	0xC5: {name: "PUSH BC", length: 1, cycles: 16, fn: func(c *CPU) { c.pushWord(c.getBC()) }},
	0xC6: {name: "ADD A,n", length: 2, cycles: 8, fn: func(c *CPU) { c.add(c.fetchByte()) }},
	0xC8: {name: "RET Z", length: 1, cycles: 8, branchCycles: 12, fn: func(c *CPU) { c.retIf(c.isSetFlag(zeroFlag)) }},
	0xC9: {name: "RET", length: 1, cycles: 16, fn: (*CPU).ret},
	0xCA: {name: "JP Z,nn", length: 3, cycles: 12, branchCycles: 4, fn: func(c *CPU) { c.jp(c.isSetFlag(zeroFlag)) }},
	// Step consumes the prefix byte itself; this entry only feeds decode
	// metadata and is never dispatched.
	0xCB: {name: "PREFIX CB", length: 1, cycles: 4, fn: func(*CPU) {}},
	0xCC: {name: "CALL Z,nn", length: 3, cycles: 12, branchCycles: 12, fn: func(c *CPU) { c.call(c.isSetFlag(zeroFlag)) }},
	0xCD: {name: "CALL nn", length: 3, cycles: 24, fn: func(c *CPU) { c.call(true) }},
	0xCE: {name: "ADC A,n", length: 2, cycles: 8, fn: func(c *CPU) { c.adc(c.fetchByte()) }},

	0xD0: {name: "RET NC", length: 1, cycles: 8, branchCycles: 12, fn: func(c *CPU) { c.retIf(!c.isSetFlag(carryFlag)) }},
	0xD1: {name: "POP DE", length: 1, cycles: 12, fn: func(c *CPU) { c.setDE(c.popWord()) }},
	0xD2: {name: "JP NC,nn", length: 3, cycles: 12, branchCycles: 4, fn: func(c *CPU) { c.jp(!c.isSetFlag(carryFlag)) }},
	0xD4: {name: "CALL NC,nn", length: 3, cycles: 12, branchCycles: 12, fn: func(c *CPU) { c.call(!c.isSetFlag(carryFlag)) }},
	0xD5: {name: "PUSH DE", length: 1, cycles: 16, fn: func(c *CPU) { c.pushWord(c.getDE()) }},
	0xD6: {name: "SUB n", length: 2, cycles: 8, fn: func(c *CPU) { c.sub(c.fetchByte()) }},
	0xD8: {name: "RET C", length: 1, cycles: 8, branchCycles: 12, fn: func(c *CPU) { c.retIf(c.isSetFlag(carryFlag)) }},
	0xD9: {name: "RETI", length: 1, cycles: 16, fn: (*CPU).reti},
	0xDA: {name: "JP C,nn", length: 3, cycles: 12, branchCycles: 4, fn: func(c *CPU) { c.jp(c.isSetFlag(carryFlag)) }},
	0xDC: {name: "CALL C,nn", length: 3, cycles: 12, branchCycles: 12, fn: func(c *CPU) { c.call(c.isSetFlag(carryFlag)) }},
	0xDE: {name: "SBC A,n", length: 2, cycles: 8, fn: func(c *CPU) { c.sbc(c.fetchByte()) }},

	0xE0: {name: "LDH (n),A", length: 2, cycles: 12, fn: func(c *CPU) { c.bus.Write(0xFF00+uint16(c.fetchByte()), c.a) }},
	0xE1: {name: "POP HL", length: 1, cycles: 12, fn: func(c *CPU) { c.setHL(c.popWord()) }},
	0xE2: {name: "LD (C),A", length: 1, cycles: 8, fn: func(c *CPU) { c.bus.Write(0xFF00+uint16(c.c), c.a) }},
	0xE5: {name: "PUSH HL", length: 1, cycles: 16, fn: func(c *CPU) { c.pushWord(c.getHL()) }},
	0xE6: {name: "AND n", length: 2, cycles: 8, fn: func(c *CPU) { c.and(c.fetchByte()) }},
	0xE8: {name: "ADD SP,e", length: 2, cycles: 16, fn: func(c *CPU) { c.sp = c.spOffset() }},
	0xE9: {name: "JP HL", length: 1, cycles: 4, fn: func(c *CPU) { c.pc = c.getHL() }},
	0xEA: {name: "LD (nn),A", length: 3, cycles: 16, fn: func(c *CPU) { c.bus.Write(c.fetchWord(), c.a) }},
	0xEE: {name: "XOR n", length: 2, cycles: 8, fn: func(c *CPU) { c.xor(c.fetchByte()) }},

	0xF0: {name: "LDH A,(n)", length: 2, cycles: 12, fn: func(c *CPU) { c.a = c.bus.Read(0xFF00 + uint16(c.fetchByte())) }},
	0xF1: {name: "POP AF", length: 1, cycles: 12, fn: func(c *CPU) { c.setAF(c.popWord()) }},
	0xF2: {name: "LD A,(C)", length: 1, cycles: 8, fn: func(c *CPU) { c.a = c.bus.Read(0xFF00 + uint16(c.c)) }},
	0xF3: {name: "DI", length: 1, cycles: 4, fn: func(c *CPU) { c.irq.Disable() }},
	0xF5: {name: "PUSH AF", length: 1, cycles: 16, fn: func(c *CPU) { c.pushWord(c.getAF()) }},
	0xF6: {name: "OR n", length: 2, cycles: 8, fn: func(c *CPU) { c.or(c.fetchByte()) }},
	0xF8: {name: "LD HL,SP+e", length: 2, cycles: 12, fn: func(c *CPU) { c.setHL(c.spOffset()) }},
	0xF9: {name: "LD SP,HL", length: 1, cycles: 8, fn: func(c *CPU) { c.sp = c.getHL() }},
	0xFA: {name: "LD A,(nn)", length: 3, cycles: 16, fn: func(c *CPU) { c.a = c.bus.Read(c.fetchWord()) }},
	0xFB: {name: "EI", length: 1, cycles: 4, fn: func(c *CPU) { c.irq.Enable() }},
	0xFE: {name: "CP n", length: 2, cycles: 8, fn: func(c *CPU) { c.cp(c.fetchByte()) }},
}

func init() {
	// LD r,r' fills 0x40-0x7F; HALT sits in the middle of the block.
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			dst, src := dst, src
			opcode := 0x40 + dst*8 + src
			if opcode == 0x76 {
				continue
			}
			cycles := uint8(4)
			if dst == indexHL || src == indexHL {
				cycles = 8
			}
			baseTable[opcode] = op{
				name:   "LD " + reg8Names[dst] + "," + reg8Names[src],
				length: 1,
				cycles: cycles,
				fn:     func(c *CPU) { c.writeReg8(dst, c.readReg8(src)) },
			}
		}
	}

	// The ALU block fills 0x80-0xBF: eight operations over the eight
	// register columns.
	aluOps := [8]struct {
		format string
		fn     func(*CPU, uint8)
	}{
		{"ADD A,%s", (*CPU).add},
		{"ADC A,%s", (*CPU).adc},
		{"SUB %s", (*CPU).sub},
		{"SBC A,%s", (*CPU).sbc},
		{"AND %s", (*CPU).and},
		{"XOR %s", (*CPU).xor},
		{"OR %s", (*CPU).or},
		{"CP %s", (*CPU).cp},
	}
	for i, alu := range aluOps {
		for r := uint8(0); r < 8; r++ {
			alu, r := alu, r
			opcode := 0x80 + uint8(i)*8 + r
			cycles := uint8(4)
			if r == indexHL {
				cycles = 8
			}
			baseTable[opcode] = op{
				name:   fmt.Sprintf(alu.format, reg8Names[r]),
				length: 1,
				cycles: cycles,
				fn:     func(c *CPU) { alu.fn(c, c.readReg8(r)) },
			}
		}
	}

	// INC r, DEC r and LD r,n repeat at a stride of 8 down the first
	// quarter of the table.
	for r := uint8(0); r < 8; r++ {
		r := r
		aluCycles, loadCycles := uint8(4), uint8(8)
		if r == indexHL {
			aluCycles, loadCycles = 12, 12
		}
		baseTable[0x04+r*8] = op{
			name:   "INC " + reg8Names[r],
			length: 1,
			cycles: aluCycles,
			fn:     func(c *CPU) { c.writeReg8(r, c.inc(c.readReg8(r))) },
		}
		baseTable[0x05+r*8] = op{
			name:   "DEC " + reg8Names[r],
			length: 1,
			cycles: aluCycles,
			fn:     func(c *CPU) { c.writeReg8(r, c.dec(c.readReg8(r))) },
		}
		baseTable[0x06+r*8] = op{
			name:   "LD " + reg8Names[r] + ",n",
			length: 2,
			cycles: loadCycles,
			fn:     func(c *CPU) { c.writeReg8(r, c.fetchByte()) },
		}
	}

	// RST repeats at a stride of 8 down the last quarter.
	for i := uint8(0); i < 8; i++ {
		target := uint16(i) * 8
		baseTable[0xC7+i*8] = op{
			name:   fmt.Sprintf("RST 0x%02X", target),
			length: 1,
			cycles: 16,
			fn:     func(c *CPU) { c.rst(target) },
		}
	}
}
