package cpu

// The operand bytes of a jump are always consumed, branch taken or not,
// so PC ends up past the instruction either way.

// jr adds the signed operand byte to PC when the condition holds.
func (c *CPU) jr(condition bool) {
	offset := int8(c.fetchByte())
	if !condition {
		return
	}
	c.branched = true
	c.pc += uint16(int16(offset))
}

// jp jumps to the operand word when the condition holds.
func (c *CPU) jp(condition bool) {
	target := c.fetchWord()
	if !condition {
		return
	}
	c.branched = true
	c.pc = target
}

// call pushes the return address and jumps when the condition holds.
func (c *CPU) call(condition bool) {
	target := c.fetchWord()
	if !condition {
		return
	}
	c.branched = true
	c.pushWord(c.pc)
	c.pc = target
}

func (c *CPU) ret() {
	c.pc = c.popWord()
}

func (c *CPU) retIf(condition bool) {
	if !condition {
		return
	}
	c.branched = true
	c.ret()
}

// reti returns and enables IME immediately, without the EI delay.
func (c *CPU) reti() {
	c.ret()
	c.irq.EnableNow()
}

// rst pushes the return address and jumps to one of the eight fixed
// restart targets in page zero.
func (c *CPU) rst(target uint16) {
	c.pushWord(c.pc)
	c.pc = target
}
