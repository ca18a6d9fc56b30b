// Package bit holds the byte and word manipulation helpers shared by the
// core packages.
package bit

// Combine joins two bytes into one word, high byte first.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// High returns the most significant byte of a word.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// Low returns the least significant byte of a word.
func Low(value uint16) uint8 {
	return uint8(value)
}

// IsSet reports whether the bit at index is 1.
func IsSet(index, value uint8) bool {
	return (value>>index)&1 == 1
}

// IsSet16 reports whether the bit at index of a word is 1.
func IsSet16(index uint8, value uint16) bool {
	return (value>>index)&1 == 1
}

// Set returns value with the bit at index forced to 1.
func Set(index, value uint8) uint8 {
	return value | 1<<index
}

// Reset returns value with the bit at index forced to 0.
func Reset(index, value uint8) uint8 {
	return value &^ (1 << index)
}
