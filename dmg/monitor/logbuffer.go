package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Entry is one captured log line.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// Buffer is a thread-safe ring of recent log entries, decoupling the
// drawing loop from whatever code logs.
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	count   int
}

func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{entries: make([]Entry, size)}
}

func (b *Buffer) Add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = e
	b.next = (b.next + 1) % len(b.entries)
	if b.count < len(b.entries) {
		b.count++
	}
}

// Recent returns up to max entries, newest first.
func (b *Buffer) Recent(max int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := b.count
	if max > 0 && max < count {
		count = max
	}
	out := make([]Entry, count)
	for i := range out {
		out[i] = b.entries[(b.next-1-i+len(b.entries))%len(b.entries)]
	}
	return out
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next = 0
	b.count = 0
}

// Handler is a slog.Handler that captures records into a Buffer. Attrs
// are folded into the message text, which is all the log pane renders.
type Handler struct {
	buffer *Buffer
	level  slog.Level
	attrs  []slog.Attr
}

func NewHandler(buffer *Buffer, level slog.Level) *Handler {
	return &Handler{buffer: buffer, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	message := record.Message
	for _, a := range h.attrs {
		message += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	record.Attrs(func(a slog.Attr) bool {
		message += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	h.buffer.Add(Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: message,
	})
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup flattens groups; the pane has no room for nesting anyway.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

func formatEntry(e Entry) string {
	level := "???"
	switch e.Level {
	case slog.LevelDebug:
		level = "DBG"
	case slog.LevelInfo:
		level = "INF"
	case slog.LevelWarn:
		level = "WRN"
	case slog.LevelError:
		level = "ERR"
	}
	return fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05"), level, e.Message)
}
