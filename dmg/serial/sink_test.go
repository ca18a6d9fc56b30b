package serial

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogSinkAssemblesLines(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	s := NewLogSink(logger)

	for _, b := range []byte("cpu_instrs\n") {
		s.ReceiveByte(b)
	}

	assert.Contains(t, out.String(), "line=cpu_instrs")
	assert.Equal(t, 1, strings.Count(out.String(), "msg=serial"))
}

func TestLogSinkFlushesPartialLine(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	s := NewLogSink(logger)

	for _, b := range []byte("Pass") {
		s.ReceiveByte(b)
	}
	assert.Empty(t, out.String(), "nothing logged until a terminator or flush")

	s.Flush()
	assert.Contains(t, out.String(), "line=Pass")

	out.Reset()
	s.Flush()
	assert.Empty(t, out.String(), "flushing an empty buffer logs nothing")
}

func TestLogSinkTreatsNULAsTerminator(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	s := NewLogSink(logger)

	s.ReceiveByte('o')
	s.ReceiveByte('k')
	s.ReceiveByte(0)

	assert.Contains(t, out.String(), "line=ok")
}
