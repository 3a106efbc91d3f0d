package ble

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tinygo.org/x/bluetooth"
)

// TinygoAdapter wraps tinygo-org/bluetooth: BlueZ on Linux, CoreBluetooth on
// macOS, WinRT on Windows. On macOS device identities are CoreBluetooth
// UUIDs rather than MAC addresses; both flow through Device.ID unchanged.
type TinygoAdapter struct {
	adapter *bluetooth.Adapter
	states  chan State

	mu          sync.Mutex
	scanning    bool
	closeStates func()

	wg sync.WaitGroup
}

// NewTinygoAdapter creates an adapter over the platform default BLE stack.
func NewTinygoAdapter() *TinygoAdapter {
	return &TinygoAdapter{
		adapter: bluetooth.DefaultAdapter,
		states:  make(chan State, 8),
	}
}

// Compile-time check that TinygoAdapter implements Adapter.
var _ Adapter = (*TinygoAdapter)(nil)

func (a *TinygoAdapter) Open() error {
	if err := a.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}
	if err := a.watchStates(); err != nil {
		// No state stream on this setup; a successful Enable means the
		// radio is usable, so report powered on once.
		slog.Warn("[BLE] state stream unavailable", "error", err)
		a.pushState(StatePoweredOn)
	}
	return nil
}

func (a *TinygoAdapter) Close() error {
	a.mu.Lock()
	closeStates := a.closeStates
	a.closeStates = nil
	scanning := a.scanning
	a.mu.Unlock()

	if scanning {
		_ = a.adapter.StopScan()
	}
	if closeStates != nil {
		closeStates()
	}
	a.wg.Wait()
	close(a.states)
	return nil
}

func (a *TinygoAdapter) States() <-chan State {
	return a.states
}

// pushState delivers a state without blocking; with a lagging consumer the
// newest state would be dropped, which only delays the display briefly.
func (a *TinygoAdapter) pushState(s State) {
	select {
	case a.states <- s:
	default:
	}
}

func (a *TinygoAdapter) Scan(opts ScanOptions) (<-chan ScanEvent, error) {
	a.mu.Lock()
	if a.scanning {
		a.mu.Unlock()
		return nil, fmt.Errorf("ble: scan already active")
	}
	a.scanning = true
	a.mu.Unlock()

	// The tinygo stack exposes no interval/window knobs, so opts.Mode is
	// advisory for this backend.
	_ = opts

	ch := make(chan ScanEvent, 32)
	go func() {
		// Scan blocks until StopScan is called or the stack fails.
		err := a.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			select {
			case ch <- ScanEvent{Device: deviceFromResult(result)}:
			default:
				// Consumer is lagging; drop rather than stall the stack's
				// callback thread.
			}
		})
		if err != nil {
			ch <- ScanEvent{Err: fmt.Errorf("ble: scan: %w", err)}
		}
		a.mu.Lock()
		a.scanning = false
		a.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (a *TinygoAdapter) StopScan() error {
	return a.adapter.StopScan()
}

func deviceFromResult(result bluetooth.ScanResult) Device {
	rssi := int(result.RSSI)
	d := Device{
		ID:        result.Address.String(),
		LocalName: result.LocalName(),
		RSSI:      &rssi,
	}
	// The advertisement payload cannot be enumerated through this stack;
	// record the one service this tool cares about when it is advertised.
	if uuid, err := bluetooth.ParseUUID(ServiceUUID); err == nil && result.HasServiceUUID(uuid) {
		d.ServiceUUIDs = []string{ServiceUUID}
	}
	return d
}

func (a *TinygoAdapter) Connect(ctx context.Context, id string) (Connection, error) {
	var addr bluetooth.Address
	addr.Set(id)

	// The stack's Connect blocks with its own internal timeout. Wrap it so
	// our ctx deadline is also honored.
	type connectResult struct {
		device bluetooth.Device
		err    error
	}
	ch := make(chan connectResult, 1)
	go func() {
		device, err := a.adapter.Connect(addr, bluetooth.ConnectionParams{})
		ch <- connectResult{device, err}
	}()

	select {
	case <-ctx.Done():
		// The underlying attempt cannot be cancelled from here; it will
		// time out or succeed on its own while we return immediately.
		return nil, fmt.Errorf("ble: connect to %s: %w", id, ctx.Err())
	case result := <-ch:
		if result.err != nil {
			return nil, fmt.Errorf("ble: connect to %s: %w", id, result.err)
		}
		return &tinygoConnection{device: &result.device}, nil
	}
}

type tinygoConnection struct {
	device *bluetooth.Device

	mu    sync.Mutex
	chars map[string]*bluetooth.DeviceCharacteristic // "svc/char" UUID key
}

func (c *tinygoConnection) DiscoverAll(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		svcs, err := c.device.DiscoverServices(nil)
		if err != nil {
			done <- fmt.Errorf("ble: discover services: %w", err)
			return
		}
		chars := make(map[string]*bluetooth.DeviceCharacteristic)
		for _, svc := range svcs {
			cs, err := svc.DiscoverCharacteristics(nil)
			if err != nil {
				done <- fmt.Errorf("ble: discover characteristics of %s: %w", svc.UUID().String(), err)
				return
			}
			for i := range cs {
				chars[charKey(svc.UUID().String(), cs[i].UUID().String())] = &cs[i]
			}
		}
		c.mu.Lock()
		c.chars = chars
		c.mu.Unlock()
		done <- nil
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("ble: discover: %w", ctx.Err())
	case err := <-done:
		return err
	}
}

func (c *tinygoConnection) Read(ctx context.Context, serviceUUID, charUUID string) (string, error) {
	c.mu.Lock()
	char, ok := c.chars[charKey(serviceUUID, charUUID)]
	c.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("ble: characteristic %s not found under service %s", charUUID, serviceUUID)
	}

	type readResult struct {
		n   int
		err error
	}
	buf := make([]byte, 512)
	done := make(chan readResult, 1)
	go func() {
		n, err := char.Read(buf)
		done <- readResult{n, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("ble: read: %w", ctx.Err())
	case result := <-done:
		if result.err != nil {
			return "", fmt.Errorf("ble: read characteristic: %w", result.err)
		}
		return base64.StdEncoding.EncodeToString(buf[:result.n]), nil
	}
}

func (c *tinygoConnection) Disconnect() error {
	return c.device.Disconnect()
}

func charKey(serviceUUID, charUUID string) string {
	return strings.ToLower(serviceUUID) + "/" + strings.ToLower(charUUID)
}
