//go:build linux

package ble

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	bluezBusName      = "org.bluez"
	bluezAdapterPath  = "/org/bluez/hci0"
	bluezAdapterIface = "org.bluez.Adapter1"
	dbusPropsIface    = "org.freedesktop.DBus.Properties"
)

// watchStates feeds the adapter state stream from BlueZ: the current Powered
// property is emitted immediately, then PropertiesChanged signals keep the
// stream current for the life of the process.
func (a *TinygoAdapter) watchStates() error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("ble: connect to system bus: %w", err)
	}

	var v dbus.Variant
	obj := conn.Object(bluezBusName, bluezAdapterPath)
	if err := obj.Call(dbusPropsIface+".Get", 0, bluezAdapterIface, "Powered").Store(&v); err != nil {
		conn.Close()
		return fmt.Errorf("ble: read Powered property: %w", err)
	}
	powered, _ := v.Value().(bool)
	a.pushState(poweredState(powered))

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(dbusPropsIface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchObjectPath(bluezAdapterPath),
	); err != nil {
		conn.Close()
		return fmt.Errorf("ble: subscribe to property changes: %w", err)
	}

	sigs := make(chan *dbus.Signal, 16)
	conn.Signal(sigs)

	a.mu.Lock()
	a.closeStates = func() {
		conn.RemoveSignal(sigs)
		close(sigs)
		conn.Close()
	}
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for sig := range sigs {
			if len(sig.Body) < 2 || sig.Body[0] != bluezAdapterIface {
				continue
			}
			changed, ok := sig.Body[1].(map[string]dbus.Variant)
			if !ok {
				continue
			}
			if v, ok := changed["Powered"]; ok {
				if on, ok := v.Value().(bool); ok {
					a.pushState(poweredState(on))
				}
			}
		}
	}()
	return nil
}

func poweredState(on bool) State {
	if on {
		return StatePoweredOn
	}
	return StatePoweredOff
}
