package ble

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gattview/internal/eventlog"
	"gattview/internal/perm"
)

// Coordinator owns the scan lifecycle. It gates scan start on radio state
// and permissions, de-duplicates discoveries by identity (first seen wins),
// and records every step in the event log.
type Coordinator struct {
	adapter Adapter
	gate    perm.Gate
	log     *eventlog.Log

	mu       sync.Mutex
	state    State
	scanning bool
	scanGen  int // discoveries from a superseded scan are dropped
	devices  []Device
	seen     map[string]struct{}
	notify   func()
}

// NewCoordinator creates a coordinator around an opened adapter.
func NewCoordinator(adapter Adapter, gate perm.Gate, log *eventlog.Log) *Coordinator {
	return &Coordinator{
		adapter: adapter,
		gate:    gate,
		log:     log,
		seen:    make(map[string]struct{}),
	}
}

// SetNotify registers a callback fired after every observable change, so the
// presentation layer can re-read accessor state.
func (c *Coordinator) SetNotify(fn func()) {
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
}

func (c *Coordinator) notifyChanged() {
	c.mu.Lock()
	fn := c.notify
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// logf appends a log line and wakes the presentation layer.
func (c *Coordinator) logf(format string, args ...any) {
	c.log.Appendf(format, args...)
	c.notifyChanged()
}

// Run consumes the adapter's power-state stream until it closes. Call it in
// its own goroutine; it returns when the adapter is closed.
func (c *Coordinator) Run() {
	for s := range c.adapter.States() {
		c.mu.Lock()
		prev := c.state
		c.state = s
		c.mu.Unlock()
		if s != prev {
			c.logf("radio state: %s", s)
		}
	}
}

// RadioState returns the last state reported by the adapter.
func (c *Coordinator) RadioState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Scanning reports whether a discovery session is active.
func (c *Coordinator) Scanning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanning
}

// Devices returns a copy of the discovered devices in first-seen order.
func (c *Coordinator) Devices() []Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Device, len(c.devices))
	copy(out, c.devices)
	return out
}

// StartScan begins a discovery session. It is a diagnostic-logging no-op
// when a scan is already running, when the radio is not powered on, or when
// the permission gate denies; in all three cases no state changes and the
// previously discovered device set is kept.
func (c *Coordinator) StartScan(ctx context.Context) {
	c.mu.Lock()
	if c.scanning {
		c.mu.Unlock()
		c.logf("scan already running")
		return
	}
	state := c.state
	c.mu.Unlock()

	if state != StatePoweredOn {
		c.logf("cannot scan: radio is %s", state)
		return
	}
	if err := c.gate.Ensure(ctx); err != nil {
		c.logf("cannot scan: %v", err)
		return
	}

	events, err := c.adapter.Scan(ScanOptions{Mode: ScanModeLowLatency})
	if err != nil {
		c.logf("ERROR: start scan: %v", err)
		return
	}

	c.mu.Lock()
	c.scanning = true
	c.scanGen++
	gen := c.scanGen
	c.devices = nil
	c.seen = make(map[string]struct{})
	c.mu.Unlock()

	c.logf("scan started")
	go c.consume(gen, events)
}

// StopScan ends the active discovery session. It is a strict no-op while not
// scanning: no log line, no state change.
func (c *Coordinator) StopScan() {
	c.mu.Lock()
	if !c.scanning {
		c.mu.Unlock()
		return
	}
	c.scanning = false
	c.mu.Unlock()

	if err := c.adapter.StopScan(); err != nil {
		c.logf("ERROR: stop scan: %v", err)
	}
	c.logf("scan stopped")
}

func (c *Coordinator) consume(gen int, events <-chan ScanEvent) {
	for ev := range events {
		if ev.Err != nil {
			// Terminal for this scan.
			c.mu.Lock()
			if gen == c.scanGen && c.scanning {
				c.scanning = false
			}
			c.mu.Unlock()
			c.logf("ERROR: scan: %v", ev.Err)
			return
		}
		c.record(gen, ev.Device)
	}
}

// record logs a discovery and applies first-seen-wins de-duplication.
// Results arriving after the scan stopped, or from a superseded scan, are
// dropped without logging.
func (c *Coordinator) record(gen int, d Device) {
	c.mu.Lock()
	if gen != c.scanGen || !c.scanning {
		c.mu.Unlock()
		return
	}
	if _, dup := c.seen[d.ID]; !dup {
		c.seen[d.ID] = struct{}{}
		c.devices = append(c.devices, d)
	}
	c.mu.Unlock()

	c.logf("%s", foundLine(d))
}

func foundLine(d Device) string {
	rssi := "(n/a)"
	if d.RSSI != nil {
		rssi = strconv.Itoa(*d.RSSI)
	}
	uuids := "(none)"
	if len(d.ServiceUUIDs) > 0 {
		uuids = strings.Join(d.ServiceUUIDs, ",")
	}
	return fmt.Sprintf("FOUND: name=%q id=%s RSSI=%s UUIDs=%s", d.DisplayName(), d.ID, rssi, uuids)
}
