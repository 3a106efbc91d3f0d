package ble

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"gattview/internal/eventlog"
)

// NotReadYet is the last-read sentinel shown before the first successful
// decoded read.
const NotReadYet = "(not read yet)"

// Phase is the position of the sequencer within one connection run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseDiscovering
	PhaseReading
	PhaseDecoding
	PhaseDisconnecting
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseDiscovering:
		return "discovering"
	case PhaseReading:
		return "reading"
	case PhaseDecoding:
		return "decoding"
	case PhaseDisconnecting:
		return "disconnecting"
	default:
		return "idle"
	}
}

// SequencerOptions configures the per-step deadlines. These are a hardening
// extension: the underlying stack has no cancellation contract of its own.
type SequencerOptions struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// DefaultSequencerOptions returns sensible defaults.
func DefaultSequencerOptions() SequencerOptions {
	return SequencerOptions{
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    5 * time.Second,
	}
}

// Sequencer drives the connect → discover → read → decode → disconnect
// sequence for a chosen device and holds the last successfully decoded
// value. One sequence runs at a time; overlapping invocations are rejected.
type Sequencer struct {
	adapter Adapter
	scans   *Coordinator
	log     *eventlog.Log
	opts    SequencerOptions

	inFlight atomic.Bool

	mu       sync.Mutex
	phase    Phase
	lastRead string
	notify   func()
}

// NewSequencer creates a sequencer sharing the coordinator's adapter and log.
func NewSequencer(adapter Adapter, scans *Coordinator, log *eventlog.Log, opts SequencerOptions) *Sequencer {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	return &Sequencer{
		adapter:  adapter,
		scans:    scans,
		log:      log,
		opts:     opts,
		lastRead: NotReadYet,
	}
}

// SetNotify registers a callback fired on phase and last-read changes.
func (s *Sequencer) SetNotify(fn func()) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// LastRead returns the most recently decoded value, or the sentinel. A
// failed sequence never changes it.
func (s *Sequencer) LastRead() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRead
}

// Phase returns the current sequence phase.
func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Busy reports whether a sequence is in flight.
func (s *Sequencer) Busy() bool {
	return s.inFlight.Load()
}

// ConnectAndRead runs one full sequence against the chosen device. Every
// failure is caught and logged; once a connection handle exists, disconnect
// and its log line run on every exit path. The call is synchronous; run it
// in a goroutine to keep a UI responsive.
func (s *Sequencer) ConnectAndRead(ctx context.Context, dev Device) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logf("connect ignored: another device sequence is in flight")
		return
	}
	defer s.inFlight.Store(false)
	defer s.setPhase(PhaseIdle)

	s.scans.StopScan()
	s.logf("connecting to %s (%s)", dev.DisplayName(), dev.ID)
	s.setPhase(PhaseConnecting)

	cctx, cancel := context.WithTimeout(ctx, s.opts.ConnectTimeout)
	conn, err := s.adapter.Connect(cctx, dev.ID)
	cancel()
	if err != nil {
		s.logf("ERROR: connect: %v", err)
		return
	}
	defer func() {
		s.setPhase(PhaseDisconnecting)
		if err := conn.Disconnect(); err != nil {
			s.logf("ERROR: disconnect: %v", err)
		}
		s.logf("disconnected from %s", dev.ID)
	}()

	s.setPhase(PhaseDiscovering)
	if err := conn.DiscoverAll(ctx); err != nil {
		s.logf("ERROR: discover: %v", err)
		return
	}

	s.setPhase(PhaseReading)
	rctx, cancel := context.WithTimeout(ctx, s.opts.ReadTimeout)
	payload, err := conn.Read(rctx, ServiceUUID, CharacteristicUUID)
	cancel()
	if err != nil {
		s.logf("ERROR: read: %v", err)
		return
	}

	s.setPhase(PhaseDecoding)
	text, err := decodePayload(payload)
	if err != nil {
		s.logf("ERROR: decode: %v", err)
		return
	}

	s.mu.Lock()
	s.lastRead = text
	s.mu.Unlock()
	s.logf("read value: %q", text)
}

// decodePayload turns the transport's base64 payload into UTF-8 text.
func decodePayload(payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("ble: decode base64: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("ble: value is not valid UTF-8")
	}
	return string(raw), nil
}

func (s *Sequencer) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	fn := s.notify
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *Sequencer) logf(format string, args ...any) {
	s.log.Appendf(format, args...)
	s.mu.Lock()
	fn := s.notify
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
