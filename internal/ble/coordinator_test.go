package ble

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gattview/internal/eventlog"
	"gattview/internal/perm"
)

// newTestCoordinator wires a coordinator to a mock adapter with the radio
// already powered on.
func newTestCoordinator(t *testing.T, gate perm.Gate) (*Coordinator, *mockAdapter, *eventlog.Log) {
	t.Helper()
	adapter := newMockAdapter()
	log := eventlog.New(nil)
	c := NewCoordinator(adapter, gate, log)
	go c.Run()

	adapter.pushState(StatePoweredOn)
	waitFor(t, func() bool { return hasLogLine(log, "radio state: powered on") })
	return c, adapter, log
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

func hasLogLine(log *eventlog.Log, substr string) bool {
	for _, e := range log.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func intp(v int) *int { return &v }

func TestStartScanRequiresPoweredOn(t *testing.T) {
	adapter := newMockAdapter()
	log := eventlog.New(nil)
	c := NewCoordinator(adapter, perm.Static{}, log)

	// No state ever reported: still unknown.
	c.StartScan(context.Background())

	if c.Scanning() {
		t.Error("scanning should stay false when the radio is not powered on")
	}
	if adapter.scanCalls != 0 {
		t.Errorf("adapter.Scan called %d times, want 0", adapter.scanCalls)
	}
	if !hasLogLine(log, "cannot scan: radio is unknown") {
		t.Errorf("missing diagnostic log line, got %v", log.Entries())
	}
}

func TestStartScanKeepsDevicesWhenBlocked(t *testing.T) {
	c, adapter, _ := newTestCoordinator(t, perm.Static{})

	c.StartScan(context.Background())
	adapter.emit(Device{ID: "AA:BB", LocalName: "RPi-01"})
	waitFor(t, func() bool { return len(c.Devices()) == 1 })
	c.StopScan()
	adapter.endScan()

	// Radio goes away; a new scan attempt must not clear the old results.
	adapter.pushState(StatePoweredOff)
	waitFor(t, func() bool { return c.RadioState() == StatePoweredOff })

	c.StartScan(context.Background())

	if c.Scanning() {
		t.Error("scanning should stay false while powered off")
	}
	if got := len(c.Devices()); got != 1 {
		t.Errorf("device set was cleared: got %d devices, want 1", got)
	}
}

func TestStartScanPermissionDenied(t *testing.T) {
	c, adapter, log := newTestCoordinator(t, perm.Static{Err: errors.New("bluetooth not permitted")})

	c.StartScan(context.Background())

	if c.Scanning() {
		t.Error("scanning should stay false when permission is denied")
	}
	if adapter.scanCalls != 0 {
		t.Errorf("adapter.Scan called %d times, want 0", adapter.scanCalls)
	}
	if !hasLogLine(log, "cannot scan: bluetooth not permitted") {
		t.Errorf("missing diagnostic log line, got %v", log.Entries())
	}
}

func TestScanDeduplicatesByIdentity(t *testing.T) {
	c, adapter, log := newTestCoordinator(t, perm.Static{})

	c.StartScan(context.Background())
	adapter.emit(Device{ID: "AA:BB", LocalName: "first", RSSI: intp(-60)})
	adapter.emit(Device{ID: "AA:BB", LocalName: "second", RSSI: intp(-40)})
	adapter.emit(Device{ID: "CC:DD", LocalName: "other"})

	countFound := func() int {
		n := 0
		for _, e := range log.Entries() {
			if strings.HasPrefix(e.Message, "FOUND:") {
				n++
			}
		}
		return n
	}
	waitFor(t, func() bool { return len(c.Devices()) == 2 && countFound() == 3 })

	devices := c.Devices()
	if devices[0].ID != "AA:BB" || devices[0].LocalName != "first" {
		t.Errorf("first-seen record not retained: got %+v", devices[0])
	}
	if devices[1].ID != "CC:DD" {
		t.Errorf("second device = %+v, want CC:DD", devices[1])
	}

	// Every discovery is logged, including the duplicate.
	if got := countFound(); got != 3 {
		t.Errorf("FOUND lines = %d, want 3", got)
	}
	adapter.endScan()
}

func TestFoundLineFormat(t *testing.T) {
	d := Device{ID: "AA:BB", LocalName: "RPi-01", RSSI: intp(-60)}
	got := foundLine(d)
	want := `FOUND: name="RPi-01" id=AA:BB RSSI=-60 UUIDs=(none)`
	if got != want {
		t.Errorf("foundLine() = %q, want %q", got, want)
	}

	d = Device{ID: "CC:DD", Name: "Sensor", ServiceUUIDs: []string{ServiceUUID}}
	got = foundLine(d)
	want = `FOUND: name="Sensor" id=CC:DD RSSI=(n/a) UUIDs=` + ServiceUUID
	if got != want {
		t.Errorf("foundLine() = %q, want %q", got, want)
	}
}

func TestStopScanWhileIdleIsNoOp(t *testing.T) {
	c, adapter, log := newTestCoordinator(t, perm.Static{})

	before := log.Len()
	c.StopScan()
	c.StopScan()

	if log.Len() != before {
		t.Errorf("StopScan while idle added log lines: %v", log.Entries())
	}
	if adapter.stopCalls != 0 {
		t.Errorf("adapter.StopScan called %d times, want 0", adapter.stopCalls)
	}
}

func TestStopScanEndsSession(t *testing.T) {
	c, adapter, log := newTestCoordinator(t, perm.Static{})

	c.StartScan(context.Background())
	if !c.Scanning() {
		t.Fatal("scanning should be true after StartScan")
	}

	c.StopScan()

	if c.Scanning() {
		t.Error("scanning should be false after StopScan")
	}
	if adapter.stopCalls != 1 {
		t.Errorf("adapter.StopScan called %d times, want 1", adapter.stopCalls)
	}
	if !hasLogLine(log, "scan stopped") {
		t.Error("missing scan stop marker")
	}
	adapter.endScan()
}

func TestScanErrorTerminatesScan(t *testing.T) {
	c, adapter, log := newTestCoordinator(t, perm.Static{})

	c.StartScan(context.Background())
	adapter.emitErr(errors.New("hci timeout"))

	waitFor(t, func() bool { return !c.Scanning() })
	waitFor(t, func() bool { return hasLogLine(log, "ERROR: scan: hci timeout") })
	adapter.endScan()
}

func TestDiscoveriesAfterStopAreIgnored(t *testing.T) {
	c, adapter, log := newTestCoordinator(t, perm.Static{})

	c.StartScan(context.Background())
	c.StopScan()
	before := log.Len()

	// The stop request does not suppress results already in flight; the
	// coordinator must drop them itself.
	adapter.emit(Device{ID: "AA:BB", LocalName: "late"})
	adapter.endScan()

	time.Sleep(50 * time.Millisecond)
	if got := len(c.Devices()); got != 0 {
		t.Errorf("late discovery was recorded: %d devices", got)
	}
	if log.Len() != before {
		t.Errorf("late discovery was logged: %v", log.Entries())
	}
}

func TestSecondScanWhileActiveIsRejected(t *testing.T) {
	c, adapter, log := newTestCoordinator(t, perm.Static{})

	c.StartScan(context.Background())
	c.StartScan(context.Background())

	if adapter.scanCalls != 1 {
		t.Errorf("adapter.Scan called %d times, want 1", adapter.scanCalls)
	}
	if !hasLogLine(log, "scan already running") {
		t.Error("missing already-running diagnostic")
	}
	adapter.endScan()
}

func TestRadioStateChangesAreLogged(t *testing.T) {
	c, adapter, log := newTestCoordinator(t, perm.Static{})

	adapter.pushState(StatePoweredOff)
	waitFor(t, func() bool { return hasLogLine(log, "radio state: powered off") })

	if c.RadioState() != StatePoweredOff {
		t.Errorf("RadioState() = %v, want powered off", c.RadioState())
	}
	if !hasLogLine(log, "radio state: powered on") {
		t.Error("missing powered-on state line")
	}
}
