package trace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stamped(cycle uint64) Record {
	return Record{Cycle: cycle, Event: Instruction, PC: 0x0100, Opcode: 0x00}
}

func TestRing(t *testing.T) {
	r := NewRing(3)
	assert.Zero(t, r.Len())

	r.Emit(stamped(1))
	r.Emit(stamped(2))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []Record{stamped(1), stamped(2)}, r.Records())

	r.Emit(stamped(3))
	r.Emit(stamped(4))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []Record{stamped(2), stamped(3), stamped(4)}, r.Records(), "oldest record dropped")
}

func TestWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Emit(Record{
		Cycle: 12, Event: Instruction, PC: 0x0100, Opcode: 0x3E,
		A: 0x01, F: 0xB0, C: 0x13, E: 0xD8, H: 0x01, L: 0x4D, SP: 0xFFFE,
	})
	w.Emit(Record{Cycle: 20, Event: Interrupt, PC: 0x0102, Opcode: 0x40, SP: 0xFFFC})

	want := "instr A:01 F:B0 B:00 C:13 D:00 E:D8 H:01 L:4D SP:FFFE PC:0100 OP:3E CYC:12\n" +
		"irq   A:00 F:00 B:00 C:00 D:00 E:00 H:00 L:00 SP:FFFC PC:0102 OP:40 CYC:20\n"
	assert.Equal(t, want, buf.String())
	assert.NoError(t, w.Err())
}

type failingWriter struct{ calls int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.calls++
	return 0, errors.New("closed")
}

func TestWriterStopsAfterError(t *testing.T) {
	f := &failingWriter{}
	w := NewWriter(f)

	w.Emit(stamped(1))
	w.Emit(stamped(2))

	assert.Error(t, w.Err())
	assert.Equal(t, 1, f.calls)
}

func TestFingerprint(t *testing.T) {
	run := func(records ...Record) uint64 {
		f := NewFingerprint()
		for _, r := range records {
			f.Emit(r)
		}
		return f.Sum64()
	}

	a := run(stamped(1), stamped(2))
	b := run(stamped(1), stamped(2))
	assert.Equal(t, a, b, "same stream, same fingerprint")

	changed := stamped(2)
	changed.F = 0x10
	assert.NotEqual(t, a, run(stamped(1), changed), "a single flag bit changes the fingerprint")
	assert.NotEqual(t, a, run(stamped(2), stamped(1)), "order matters")

	f := NewFingerprint()
	f.Emit(stamped(1))
	sum := f.Sum64()
	f.Reset()
	f.Emit(stamped(1))
	assert.Equal(t, sum, f.Sum64())
}

func TestTee(t *testing.T) {
	first, second := NewRing(4), NewRing(4)
	sink := Tee(first, second)

	sink.Emit(stamped(1))

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
}
