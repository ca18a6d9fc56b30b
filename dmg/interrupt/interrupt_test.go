package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceVectors(t *testing.T) {
	testCases := []struct {
		source Source
		vector uint16
		mask   uint8
	}{
		{VBlank, 0x0040, 0x01},
		{LCDStat, 0x0048, 0x02},
		{Timer, 0x0050, 0x04},
		{Serial, 0x0058, 0x08},
		{Joypad, 0x0060, 0x10},
	}

	for _, tC := range testCases {
		t.Run(tC.source.String(), func(t *testing.T) {
			assert.Equal(t, tC.vector, tC.source.Vector())
			assert.Equal(t, tC.mask, tC.source.Mask())
		})
	}
}

func TestPriorityOrder(t *testing.T) {
	testCases := []struct {
		desc    string
		enable  uint8
		request uint8
		want    Source
		hit     bool
	}{
		{"all pending picks VBlank", 0x1F, 0x1F, VBlank, true},
		{"highest priority cleared picks LCDStat", 0x1F, 0x1E, LCDStat, true},
		{"only joypad", 0x1F, 0x10, Joypad, true},
		{"requested but not enabled", 0x00, 0x1F, 0, false},
		{"enabled but not requested", 0x1F, 0x00, 0, false},
		{"timer over serial", 0x1F, 0x0C, Timer, true},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c := NewController()
			c.WriteEnable(tC.enable)
			c.WriteFlags(tC.request)

			got, hit := c.Next()
			assert.Equal(t, tC.hit, hit)
			if hit {
				assert.Equal(t, tC.want, got)
			}
		})
	}
}

func TestEnableIsDeferred(t *testing.T) {
	c := NewController()

	c.Enable()
	assert.False(t, c.Enabled(), "EI must not enable before the commit point")

	c.CommitEnable()
	assert.True(t, c.Enabled())

	// Committing again is a no-op.
	c.CommitEnable()
	assert.True(t, c.Enabled())
}

func TestDisableCancelsScheduledEnable(t *testing.T) {
	c := NewController()

	c.Enable()
	c.Disable()
	c.CommitEnable()

	assert.False(t, c.Enabled(), "DI after EI must cancel the scheduled enable")
}

func TestEnableNow(t *testing.T) {
	c := NewController()

	c.EnableNow()
	assert.True(t, c.Enabled(), "RETI enables without the one-instruction delay")
}

func TestAcknowledgeClearsRequestAndIME(t *testing.T) {
	c := NewController()
	c.WriteEnable(0x1F)
	c.Request(Timer)
	c.Request(Serial)
	c.EnableNow()

	src, hit := c.Next()
	assert.True(t, hit)
	assert.Equal(t, Timer, src)

	c.Acknowledge(src)
	assert.False(t, c.Enabled(), "servicing clears IME")
	assert.Equal(t, uint8(0x08), c.ReadFlags()&0x1F, "timer request cleared, serial still pending")

	src, hit = c.Next()
	assert.True(t, hit)
	assert.Equal(t, Serial, src)
}

func TestPendingIgnoresIME(t *testing.T) {
	c := NewController()
	c.WriteEnable(0x01)
	c.Request(VBlank)

	assert.False(t, c.Enabled())
	assert.True(t, c.Pending(), "pending is the HALT wake condition and must not consult IME")
}

func TestFlagRegisterMasks(t *testing.T) {
	c := NewController()

	c.WriteFlags(0xFF)
	assert.Equal(t, uint8(0xFF), c.ReadFlags(), "upper three bits read as 1")
	assert.False(t, c.Pending(), "nothing enabled yet")

	c.WriteFlags(0x00)
	assert.Equal(t, uint8(0xE0), c.ReadFlags())

	c.WriteEnable(0xAB)
	assert.Equal(t, uint8(0xAB), c.ReadEnable(), "IE keeps all eight bits")
}

func TestRequestSticksWhileDisabled(t *testing.T) {
	c := NewController()

	c.Request(Joypad)
	assert.Equal(t, uint8(0xF0), c.ReadFlags(), "request latched with IME and IE clear")

	c.WriteEnable(0x10)
	src, hit := c.Next()
	assert.True(t, hit)
	assert.Equal(t, Joypad, src)
}
