package cpu

import (
	"fmt"

	"github.com/dotmatrix-emu/go-dmg/dmg/bit"
)

// cbTable holds the CB-prefixed set. Every entry is regular, so the
// whole table is generated: eight rotate/shift kinds over the register
// columns, then BIT, RES and SET over each bit/register combination.
var cbTable [256]op

func init() {
	kinds := [8]struct {
		name string
		fn   func(*CPU, uint8) uint8
	}{
		{"RLC", (*CPU).rlc},
		{"RRC", (*CPU).rrc},
		{"RL", (*CPU).rl},
		{"RR", (*CPU).rr},
		{"SLA", (*CPU).sla},
		{"SRA", (*CPU).sra},
		{"SWAP", (*CPU).swap},
		{"SRL", (*CPU).srl},
	}
	for i, kind := range kinds {
		for r := uint8(0); r < 8; r++ {
			kind, r := kind, r
			opcode := uint8(i)*8 + r
			cycles := uint8(8)
			if r == indexHL {
				cycles = 16
			}
			cbTable[opcode] = op{
				name:   kind.name + " " + reg8Names[r],
				length: 2,
				cycles: cycles,
				fn:     func(c *CPU) { c.writeReg8(r, kind.fn(c, c.readReg8(r))) },
			}
		}
	}

	for b := uint8(0); b < 8; b++ {
		for r := uint8(0); r < 8; r++ {
			b, r := b, r
			bitCycles, rmwCycles := uint8(8), uint8(8)
			if r == indexHL {
				bitCycles, rmwCycles = 12, 16
			}
			cbTable[0x40+b*8+r] = op{
				name:   fmt.Sprintf("BIT %d,%s", b, reg8Names[r]),
				length: 2,
				cycles: bitCycles,
				fn:     func(c *CPU) { c.bitTest(b, c.readReg8(r)) },
			}
			cbTable[0x80+b*8+r] = op{
				name:   fmt.Sprintf("RES %d,%s", b, reg8Names[r]),
				length: 2,
				cycles: rmwCycles,
				fn:     func(c *CPU) { c.writeReg8(r, bit.Reset(b, c.readReg8(r))) },
			}
			cbTable[0xC0+b*8+r] = op{
				name:   fmt.Sprintf("SET %d,%s", b, reg8Names[r]),
				length: 2,
				cycles: rmwCycles,
				fn:     func(c *CPU) { c.writeReg8(r, bit.Set(b, c.readReg8(r))) },
			}
		}
	}
}

// rotateFlags applies the shared flag rule of the CB rotates and shifts:
// zero per result, subtract and half-carry cleared, carry as computed.
func (c *CPU) rotateFlags(result uint8, carry bool) {
	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.rotateFlags(result, value > 0x7F)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.rotateFlags(result, value&1 == 1)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.flagToBit(carryFlag)
	c.rotateFlags(result, value > 0x7F)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.rotateFlags(result, value&1 == 1)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.rotateFlags(result, value > 0x7F)
	return result
}

// sra shifts right keeping the sign bit.
func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.rotateFlags(result, value&1 == 1)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.rotateFlags(result, false)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.rotateFlags(result, value&1 == 1)
	return result
}

// bitTest sets zero from the complement of the tested bit; carry is
// preserved.
func (c *CPU) bitTest(index uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}
