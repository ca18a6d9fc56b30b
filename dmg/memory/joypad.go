package memory

import "github.com/dotmatrix-emu/go-dmg/dmg/bit"

// Button identifies one of the eight inputs.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonSelect:
		return "Select"
	case ButtonStart:
		return "Start"
	case ButtonRight:
		return "Right"
	case ButtonLeft:
		return "Left"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	}
	return "Unknown"
}

// Joypad models the P1 register: two active-low nibbles selected by
// bits 4 and 5, both as written back by software. Fresh presses invoke
// the onPress hook, which the bus uses to request the Joypad interrupt.
type Joypad struct {
	buttons uint8 // A, B, Select, Start in bits 0-3, active low
	dpad    uint8 // Right, Left, Up, Down in bits 0-3, active low
	sel     uint8
	onPress func()
}

func NewJoypad(onPress func()) *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
		onPress: onPress,
	}
}

// Read composes P1 from the select bits and the chosen nibbles. With
// both groups selected the nibbles are ANDed, as the lines share wires.
func (j *Joypad) Read() uint8 {
	nibble := uint8(0x0F)
	if !bit.IsSet(4, j.sel) {
		nibble &= j.dpad
	}
	if !bit.IsSet(5, j.sel) {
		nibble &= j.buttons
	}
	return 0xC0 | j.sel | nibble
}

// Write stores the select bits; the input nibble is read-only.
func (j *Joypad) Write(value uint8) {
	j.sel = value & 0x30
}

func (j *Joypad) Press(b Button) {
	group, index := j.line(b)
	if !bit.IsSet(index, *group) {
		return // already held
	}
	*group = bit.Reset(index, *group)
	if j.onPress != nil {
		j.onPress()
	}
}

func (j *Joypad) Release(b Button) {
	group, index := j.line(b)
	*group = bit.Set(index, *group)
}

func (j *Joypad) line(b Button) (*uint8, uint8) {
	if b >= ButtonRight {
		return &j.dpad, uint8(b - ButtonRight)
	}
	return &j.buttons, uint8(b)
}
