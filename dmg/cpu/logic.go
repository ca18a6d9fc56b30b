package cpu

// and sets A to A AND value. Half-carry is always set, a hardware quirk
// of the AND operation.
func (c *CPU) and(value uint8) {
	c.a &= value

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) or(value uint8) {
	c.a |= value

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// cpl complements A. Only subtract and half-carry are touched, both set.
func (c *CPU) cpl() {
	c.a = ^c.a
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) scf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
}

func (c *CPU) ccf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
}

// The accumulator rotates reuse the CB helpers but always clear zero,
// which is how they differ from their prefixed counterparts.

func (c *CPU) rlca() {
	c.a = c.rlc(c.a)
	c.resetFlag(zeroFlag)
}

func (c *CPU) rla() {
	c.a = c.rl(c.a)
	c.resetFlag(zeroFlag)
}

func (c *CPU) rrca() {
	c.a = c.rrc(c.a)
	c.resetFlag(zeroFlag)
}

func (c *CPU) rra() {
	c.a = c.rr(c.a)
	c.resetFlag(zeroFlag)
}
