package bit

import (
	"testing"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		want      uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x01, 0x4D, 0x014D},
	}

	for _, tt := range tests {
		if got := Combine(tt.high, tt.low); got != tt.want {
			t.Errorf("Combine(%X, %X) = %X; want %X", tt.high, tt.low, got, tt.want)
		}
	}
}

func TestHighLow(t *testing.T) {
	tests := []struct {
		value     uint16
		high, low uint8
	}{
		{0xABCD, 0xAB, 0xCD},
		{0x0001, 0x00, 0x01},
		{0xFF00, 0xFF, 0x00},
	}

	for _, tt := range tests {
		if got := High(tt.value); got != tt.high {
			t.Errorf("High(%X) = %X; want %X", tt.value, got, tt.high)
		}
		if got := Low(tt.value); got != tt.low {
			t.Errorf("Low(%X) = %X; want %X", tt.value, got, tt.low)
		}
	}
}

func TestSetReset(t *testing.T) {
	tests := []struct {
		index      uint8
		value      uint8
		set, reset uint8
	}{
		{0, 0b00000000, 0b00000001, 0b00000000},
		{7, 0b10000000, 0b10000000, 0b00000000},
		{4, 0b00001111, 0b00011111, 0b00001111},
		{2, 0b11111111, 0b11111111, 0b11111011},
	}

	for _, tt := range tests {
		if got := Set(tt.index, tt.value); got != tt.set {
			t.Errorf("Set(%d, %08b) = %08b; want %08b", tt.index, tt.value, got, tt.set)
		}
		if got := Reset(tt.index, tt.value); got != tt.reset {
			t.Errorf("Reset(%d, %08b) = %08b; want %08b", tt.index, tt.value, got, tt.reset)
		}
	}
}

func TestIsSet(t *testing.T) {
	if !IsSet(3, 0b00001000) {
		t.Error("IsSet(3, 0b00001000) = false; want true")
	}
	if IsSet(3, 0b11110111) {
		t.Error("IsSet(3, 0b11110111) = true; want false")
	}
	if !IsSet16(9, 1<<9) {
		t.Error("IsSet16(9, 1<<9) = false; want true")
	}
	if IsSet16(9, 1<<8) {
		t.Error("IsSet16(9, 1<<8) = true; want false")
	}
}
