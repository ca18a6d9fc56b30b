package memory

import "fmt"

// BusFaultError reports an invalid bus configuration, such as a
// peripheral claiming a register the core owns. It is never produced by
// ordinary reads or writes.
type BusFaultError struct {
	Addr   uint16
	Reason string
}

func (e *BusFaultError) Error() string {
	return fmt.Sprintf("bus fault at 0x%04X: %s", e.Addr, e.Reason)
}
