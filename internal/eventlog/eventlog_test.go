package eventlog

import (
	"fmt"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 6, 1, 13, 4, 5, 0, time.Local)
	return func() time.Time { return t }
}

func TestAppendNewestFirst(t *testing.T) {
	l := New(nil)
	l.Append("first")
	l.Append("second")
	l.Append("third")

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("Len = %d, want 3", len(entries))
	}
	if entries[0].Message != "third" {
		t.Errorf("entries[0] = %q, want newest entry", entries[0].Message)
	}
	if entries[2].Message != "first" {
		t.Errorf("entries[2] = %q, want oldest entry", entries[2].Message)
	}
}

func TestAppendCapsAtMaxEntries(t *testing.T) {
	l := New(nil)
	for i := 0; i < MaxEntries+50; i++ {
		l.Appendf("entry %d", i)
	}

	if l.Len() != MaxEntries {
		t.Fatalf("Len = %d, want %d", l.Len(), MaxEntries)
	}
	entries := l.Entries()
	if entries[0].Message != fmt.Sprintf("entry %d", MaxEntries+49) {
		t.Errorf("entries[0] = %q, want the newest entry", entries[0].Message)
	}
	// The 50 oldest entries were silently dropped.
	if entries[MaxEntries-1].Message != "entry 50" {
		t.Errorf("oldest retained = %q, want %q", entries[MaxEntries-1].Message, "entry 50")
	}
}

func TestEntryStamp(t *testing.T) {
	l := New(nil)
	l.now = fixedClock()
	l.Append("hello")

	e := l.Entries()[0]
	if e.Stamp != "13:04:05" {
		t.Errorf("Stamp = %q, want %q", e.Stamp, "13:04:05")
	}
	if got := e.String(); got != "13:04:05 hello" {
		t.Errorf("String() = %q", got)
	}
}

func TestSinkMirrorsEveryEntry(t *testing.T) {
	var mirrored []Entry
	l := New(SinkFunc(func(e Entry) { mirrored = append(mirrored, e) }))

	l.Append("one")
	l.Appendf("two %d", 2)

	if len(mirrored) != 2 {
		t.Fatalf("sink received %d entries, want 2", len(mirrored))
	}
	if mirrored[0].Message != "one" || mirrored[1].Message != "two 2" {
		t.Errorf("sink received %v", mirrored)
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	l := New(nil)
	l.Append("no sink")
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}
