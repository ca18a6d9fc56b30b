package serial

import "log/slog"

// LogSink assembles received bytes into lines and logs them. Test
// cartridges that report results over the link port become readable on
// the host console this way.
type LogSink struct {
	logger *slog.Logger
	line   []byte
}

// NewLogSink returns a sink logging to the given logger, or the default
// logger when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// ReceiveByte buffers b until a line terminator (newline, carriage return
// or NUL) arrives, then logs the buffered line.
func (s *LogSink) ReceiveByte(b uint8) {
	if b == 0 || b == '\n' || b == '\r' {
		s.Flush()
		return
	}
	s.line = append(s.line, b)
}

// Flush logs any buffered partial line.
func (s *LogSink) Flush() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("serial", "line", string(s.line))
	s.line = s.line[:0]
}

// BufferSink accumulates every received byte for programmatic capture.
type BufferSink struct {
	buf []byte
}

// ReceiveByte appends b to the buffer.
func (s *BufferSink) ReceiveByte(b uint8) {
	s.buf = append(s.buf, b)
}

// Bytes returns the accumulated transcript.
func (s *BufferSink) Bytes() []byte {
	return s.buf
}

// String returns the transcript as text.
func (s *BufferSink) String() string {
	return string(s.buf)
}
