package bluetooth

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/godbus/dbus/v5"
)

// Device is one remote device known to BlueZ.
type Device struct {
	Path    dbus.ObjectPath
	Address string
	Name    string
	Paired  bool
	Trusted bool
}

// PairedDevices enumerates paired devices from BlueZ's object tree.
func PairedDevices(ctx context.Context, conn *dbus.Conn) ([]Device, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	root := conn.Object(bluezBus, "/")
	if err := root.CallWithContext(ctx, "org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0).Store(&objects); err != nil {
		return nil, fmt.Errorf("list bluez objects: %w", err)
	}

	var out []Device
	for path, ifaces := range objects {
		props, ok := ifaces["org.bluez.Device1"]
		if !ok {
			continue
		}
		paired, _ := props["Paired"].Value().(bool)
		if !paired {
			continue
		}
		d := Device{Path: path, Paired: true}
		d.Address, _ = props["Address"].Value().(string)
		d.Name, _ = props["Name"].Value().(string)
		d.Trusted, _ = props["Trusted"].Value().(bool)
		out = append(out, d)
	}
	return out, nil
}

// EnsureTrusted enumerates paired devices, picks the one the bridge
// should auto-attach to, and marks it trusted in BlueZ so its RFCOMM
// connections are accepted without per-connection authorization.
// Returns false when no device is paired yet.
func EnsureTrusted(ctx context.Context, conn *dbus.Conn, lastPaired func(address string) (time.Time, bool)) (Device, bool, error) {
	devices, err := PairedDevices(ctx, conn)
	if err != nil {
		return Device{}, false, err
	}
	chosen, ok := TrustedDevice(devices, lastPaired)
	if !ok {
		return Device{}, false, nil
	}
	if !chosen.Trusted {
		obj := conn.Object(bluezBus, chosen.Path)
		call := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Set", 0,
			"org.bluez.Device1", "Trusted", dbus.MakeVariant(true))
		if call.Err != nil {
			return chosen, true, fmt.Errorf("trust %s: %w", chosen.Address, call.Err)
		}
		chosen.Trusted = true
	}
	return chosen, true, nil
}

// TrustedDevice picks the device the bridge should auto-attach to.
// The shell original took whatever the tool listed first; here the
// ordering is explicit: most recently paired wins, using the journal's
// pairing history, and devices without history sort after those with
// it, by ascending address so the choice is deterministic.
func TrustedDevice(devices []Device, lastPaired func(address string) (time.Time, bool)) (Device, bool) {
	if len(devices) == 0 {
		return Device{}, false
	}
	sorted := make([]Device, len(devices))
	copy(sorted, devices)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, iOK := lastPaired(sorted[i].Address)
		tj, jOK := lastPaired(sorted[j].Address)
		switch {
		case iOK && jOK:
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return sorted[i].Address < sorted[j].Address
		case iOK:
			return true
		case jOK:
			return false
		default:
			return sorted[i].Address < sorted[j].Address
		}
	})
	return sorted[0], true
}
