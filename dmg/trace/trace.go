// Package trace is the cycle-stamped execution log emitted by the
// machine: one record per step, fanned out to sinks that buffer them,
// print them, or fold them into a fingerprint for golden comparisons.
package trace

import (
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"github.com/cespare/xxhash"
)

// Event classifies what a step spent its cycles on.
type Event uint8

const (
	Instruction Event = iota
	Interrupt
	Halt
	Stop
	Wake
	Fault
)

func (e Event) String() string {
	switch e {
	case Instruction:
		return "instr"
	case Interrupt:
		return "irq"
	case Halt:
		return "halt"
	case Stop:
		return "stop"
	case Wake:
		return "wake"
	case Fault:
		return "fault"
	}
	return "?"
}

// Record is one trace entry: the cycle count at the start of the step
// and the register file as it was at that point. Opcode is the first
// byte the step fetched; Interrupt records carry the low byte of the
// dispatched vector there instead.
type Record struct {
	Cycle                  uint64
	Event                  Event
	PC                     uint16
	Opcode                 uint8
	A, F, B, C, D, E, H, L uint8
	SP                     uint16
}

// String renders the record as one diffable text line.
func (r Record) String() string {
	return fmt.Sprintf("%-5s A:%02X F:%02X B:%02X C:%02X D:%02X E:%02X H:%02X L:%02X SP:%04X PC:%04X OP:%02X CYC:%d",
		r.Event, r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, r.SP, r.PC, r.Opcode, r.Cycle)
}

// Sink consumes trace records as the machine emits them.
type Sink interface {
	Emit(Record)
}

// Ring keeps the most recent records in a fixed-size buffer.
type Ring struct {
	records []Record
	next    int
	full    bool
}

func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{records: make([]Record, size)}
}

func (r *Ring) Emit(rec Record) {
	r.records[r.next] = rec
	r.next++
	if r.next == len(r.records) {
		r.next = 0
		r.full = true
	}
}

func (r *Ring) Len() int {
	if r.full {
		return len(r.records)
	}
	return r.next
}

// Records returns the buffered records, oldest first.
func (r *Ring) Records() []Record {
	if !r.full {
		out := make([]Record, r.next)
		copy(out, r.records[:r.next])
		return out
	}
	out := make([]Record, 0, len(r.records))
	out = append(out, r.records[r.next:]...)
	out = append(out, r.records[:r.next]...)
	return out
}

// Writer prints one line per record. Emission stops at the first write
// error; Err reports it.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (t *Writer) Emit(rec Record) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, rec.String())
}

func (t *Writer) Err() error { return t.err }

// recordSize is the encoded width of one record in the fingerprint
// stream.
const recordSize = 22

// Fingerprint folds every record into an xxhash64 digest, one
// comparable value for a whole run.
type Fingerprint struct {
	digest hash.Hash64
}

func NewFingerprint() *Fingerprint {
	return &Fingerprint{digest: xxhash.New()}
}

func (f *Fingerprint) Emit(rec Record) {
	var buf [recordSize]byte
	binary.LittleEndian.PutUint64(buf[0:], rec.Cycle)
	buf[8] = uint8(rec.Event)
	binary.LittleEndian.PutUint16(buf[9:], rec.PC)
	buf[11] = rec.Opcode
	buf[12] = rec.A
	buf[13] = rec.F
	buf[14] = rec.B
	buf[15] = rec.C
	buf[16] = rec.D
	buf[17] = rec.E
	buf[18] = rec.H
	buf[19] = rec.L
	binary.LittleEndian.PutUint16(buf[20:], rec.SP)
	f.digest.Write(buf[:])
}

// Sum64 returns the digest over everything emitted so far.
func (f *Fingerprint) Sum64() uint64 { return f.digest.Sum64() }

func (f *Fingerprint) Reset() { f.digest.Reset() }

// Tee fans every record out to all sinks in order.
func Tee(sinks ...Sink) Sink { return tee(sinks) }

type tee []Sink

func (t tee) Emit(rec Record) {
	for _, s := range t {
		s.Emit(rec)
	}
}
