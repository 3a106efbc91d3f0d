// Package ble provides the radio-facing core of gattview: an adapter
// abstraction over the platform BLE stack, the scan coordinator that
// de-duplicates discoveries, and the sequencer that drives one
// connect → discover → read → decode → disconnect pass.
package ble

import "context"

// GATT identifiers of the peripheral's info characteristic. Fixed at build
// time, not runtime configurable.
const (
	ServiceUUID        = "a07498ca-ad5b-474e-940d-16f1fbe7e8cd"
	CharacteristicUUID = "51ff12bb-3ed8-46e5-b4f9-d64e2fec021b"
)

// State is the power state of the radio. It is produced exclusively by the
// adapter's state stream.
type State int

const (
	StateUnknown State = iota
	StatePoweredOn
	StatePoweredOff
	StateUnauthorized
	StateUnsupported
	StateResetting
)

func (s State) String() string {
	switch s {
	case StatePoweredOn:
		return "powered on"
	case StatePoweredOff:
		return "powered off"
	case StateUnauthorized:
		return "unauthorized"
	case StateUnsupported:
		return "unsupported"
	case StateResetting:
		return "resetting"
	default:
		return "unknown"
	}
}

// Device is a discovered BLE peripheral. Never mutated after creation.
type Device struct {
	// ID is the stable per-device identity used as the de-duplication key:
	// a MAC address, or a CoreBluetooth UUID on macOS.
	ID           string
	Name         string
	LocalName    string // raw advertised name, fallback when Name is empty
	RSSI         *int   // nil when the backend reported no signal strength
	ServiceUUIDs []string
}

// DisplayName returns the name shown to the user: the display name, falling
// back to the raw advertised name, then a literal "(no name)".
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.LocalName != "" {
		return d.LocalName
	}
	return "(no name)"
}

// ScanMode selects the scan duty cycle for backends that support one.
type ScanMode int

const (
	ScanModeBalanced ScanMode = iota
	ScanModeLowLatency
)

// ScanOptions configures a discovery session. No service filter is applied;
// every advertising peripheral is reported.
type ScanOptions struct {
	Mode ScanMode
}

// ScanEvent is one item on a discovery stream. A non-nil Err terminates the
// stream for this scan.
type ScanEvent struct {
	Device Device
	Err    error
}

// Connection is an active link to a peripheral.
type Connection interface {
	// DiscoverAll performs full service and characteristic discovery.
	DiscoverAll(ctx context.Context) error
	// Read returns the characteristic value in its transport encoding,
	// a base64 string.
	Read(ctx context.Context, serviceUUID, charUUID string) (string, error)
	// Disconnect terminates the connection. Best effort.
	Disconnect() error
}

// Adapter abstracts the platform BLE stack. One instance is created at
// startup and lives for the whole process.
type Adapter interface {
	// Open powers on the radio and establishes the state stream.
	Open() error
	// Close tears down the state stream and releases the radio.
	Close() error
	// States returns the power-state stream. There is a single stream per
	// adapter; repeated calls return the same channel.
	States() <-chan State
	// Scan starts a discovery session and returns its event stream. The
	// stream is closed when the scan ends.
	Scan(opts ScanOptions) (<-chan ScanEvent, error)
	// StopScan cancels the active discovery session. Results already in
	// flight may still be delivered.
	StopScan() error
	// Connect establishes a connection to the device with the given identity.
	Connect(ctx context.Context, id string) (Connection, error)
}
