// Package eventlog holds the bounded activity feed shown on screen. Entries
// are kept newest-first and every append is mirrored to a secondary sink.
package eventlog

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// MaxEntries caps the feed; the oldest entries are silently dropped.
const MaxEntries = 400

// Entry is one timestamped log line.
type Entry struct {
	Stamp   string // wall-clock hh:mm:ss at append time
	Message string
}

func (e Entry) String() string {
	return e.Stamp + " " + e.Message
}

// Sink receives a copy of every appended entry.
type Sink interface {
	Record(Entry)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Entry)

func (f SinkFunc) Record(e Entry) { f(e) }

// NewSlogSink mirrors entries to a slog logger.
func NewSlogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(e Entry) {
		logger.Info(e.Message)
	})
}

// Log is an append-only, newest-first feed capped at MaxEntries. Appends are
// synchronous and cannot fail. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	sink    Sink
	now     func() time.Time
}

// New creates an empty log. A nil sink disables mirroring.
func New(sink Sink) *Log {
	return &Log{sink: sink, now: time.Now}
}

// Append prepends a timestamped entry; the newest entry is always at index 0.
func (l *Log) Append(message string) {
	l.mu.Lock()
	e := Entry{Stamp: l.now().Format("15:04:05"), Message: message}
	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		sink.Record(e)
	}
}

// Appendf is Append with fmt.Sprintf formatting.
func (l *Log) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the feed, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
