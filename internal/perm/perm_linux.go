//go:build linux

package perm

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const bluezBusName = "org.bluez"

// bluezGate verifies that bluetoothd owns org.bluez on the system bus. Linux
// has no per-application Bluetooth prompt; a reachable bus with a running
// BlueZ daemon is the minimum capability needed to scan and connect.
type bluezGate struct{}

func platformGate() Gate { return bluezGate{} }

func (bluezGate) Ensure(ctx context.Context) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("perm: connect to system bus: %w", err)
	}
	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return fmt.Errorf("perm: list bus names: %w", err)
	}
	for _, n := range names {
		if n == bluezBusName {
			return nil
		}
	}
	return fmt.Errorf("perm: org.bluez not found on system bus — is bluetooth.service running?")
}
