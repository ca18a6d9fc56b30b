package cpu

import "fmt"

// IllegalOpcodeError is the hard fault raised when execution reaches one
// of the eleven unassigned opcodes. The fault is sticky: the CPU refuses
// to step past it, as real hardware locks up.
type IllegalOpcodeError struct {
	Opcode uint8
	Addr   uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at 0x%04X", e.Opcode, e.Addr)
}
