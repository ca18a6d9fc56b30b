package cpu

// add adds the value to A and sets all four flags.
func (c *CPU) add(value uint8) {
	result := c.a + value

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.a&0xF)+(value&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, uint16(c.a)+uint16(value) > 0xFF)

	c.a = result
}

// adc adds the value and the carry bit to A. The carry participates in
// both the half-carry and carry computations.
func (c *CPU) adc(value uint8) {
	carry := c.flagToBit(carryFlag)
	result := c.a + value + carry

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.a&0xF)+(value&0xF)+carry > 0xF)
	c.setFlagToCondition(carryFlag, uint16(c.a)+uint16(value)+uint16(carry) > 0xFF)

	c.a = result
}

// sub subtracts the value from A and sets all four flags.
func (c *CPU) sub(value uint8) {
	result := c.a - value

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, c.a&0xF < value&0xF)
	c.setFlagToCondition(carryFlag, c.a < value)

	c.a = result
}

// sbc subtracts the value and the carry bit from A.
func (c *CPU) sbc(value uint8) {
	carry := c.flagToBit(carryFlag)
	result := c.a - value - carry

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, uint16(c.a&0xF) < uint16(value&0xF)+uint16(carry))
	c.setFlagToCondition(carryFlag, uint16(c.a) < uint16(value)+uint16(carry))

	c.a = result
}

// cp compares the value against A: the flags of a subtraction without
// the writeback.
func (c *CPU) cp(value uint8) {
	c.setFlagToCondition(zeroFlag, c.a == value)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, c.a&0xF < value&0xF)
	c.setFlagToCondition(carryFlag, c.a < value)
}

// inc increments the value by one. Carry is preserved.
func (c *CPU) inc(value uint8) uint8 {
	result := value + 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, value&0xF == 0xF)

	return result
}

// dec decrements the value by one. Carry is preserved.
func (c *CPU) dec(value uint8) uint8 {
	result := value - 1

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, value&0xF == 0)

	return result
}

// addToHL adds a 16-bit value to HL. Zero is preserved; half-carry is
// computed at bit 11, carry at bit 15.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlagToCondition(carryFlag, uint32(hl)+uint32(value) > 0xFFFF)

	c.setHL(hl + value)
}

// spOffset fetches a signed operand byte and returns SP plus that
// offset. Half-carry and carry come from the unsigned low-byte addition
// regardless of the offset's sign; zero and subtract are cleared. Shared
// by ADD SP,e and LD HL,SP+e.
func (c *CPU) spOffset() uint16 {
	offset := uint16(int16(int8(c.fetchByte())))
	result := c.sp + offset

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.sp&0x0F)+(offset&0x0F) > 0x0F)
	c.setFlagToCondition(carryFlag, (c.sp&0xFF)+(offset&0xFF) > 0xFF)

	return result
}

// daa adjusts A back to packed binary-coded decimal after an arithmetic
// instruction, using the subtract flag to tell which direction the last
// operation went.
func (c *CPU) daa() {
	a := c.a

	if !c.isSetFlag(subFlag) {
		if c.isSetFlag(carryFlag) || a > 0x99 {
			a += 0x60
			c.setFlag(carryFlag)
		}
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if c.isSetFlag(carryFlag) {
			a -= 0x60
		}
		if c.isSetFlag(halfCarryFlag) {
			a -= 0x06
		}
	}

	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)

	c.a = a
}
