package bluetooth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	bluezBus     = "org.bluez"
	agentPath    = dbus.ObjectPath("/io/hostwire/agent")
	agentIface   = "org.bluez.Agent1"
	managerPath  = dbus.ObjectPath("/org/bluez")
	managerIface = "org.bluez.AgentManager1"
)

// PinAgent answers BlueZ pairing requests with a fixed PIN and
// authorizes the serial-port service, so a phone can pair headless.
// It exports org.bluez.Agent1 on the system bus and registers itself
// as the default agent.
type PinAgent struct {
	pin  string
	conn *dbus.Conn

	// OnPaired is called with the device address after a device is
	// authorized. The watchdog wires this to the pairing journal.
	OnPaired func(address string)

	// LastPaired, when set, drives trusted-device selection: at
	// registration and after every authorization the agent re-picks
	// the device the bridge auto-attaches to and marks it trusted.
	// The watchdog wires this to the journal's pairing history.
	LastPaired func(address string) (time.Time, bool)
}

// NewPinAgent creates an agent serving the given PIN.
func NewPinAgent(pin string, onPaired func(address string)) *PinAgent {
	return &PinAgent{pin: pin, OnPaired: onPaired}
}

// Run connects to the system bus, registers the agent, and blocks
// until the context is cancelled.
func (a *PinAgent) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("connect system bus: %w", err)
	}
	a.conn = conn
	defer conn.Close()

	// Only the Agent1 methods go on the bus.
	methods := map[string]interface{}{
		"RequestPinCode":       a.RequestPinCode,
		"RequestPasskey":       a.RequestPasskey,
		"RequestConfirmation":  a.RequestConfirmation,
		"RequestAuthorization": a.RequestAuthorization,
		"AuthorizeService":     a.AuthorizeService,
		"Cancel":               a.Cancel,
		"Release":              a.Release,
	}
	if err := conn.ExportMethodTable(methods, agentPath, agentIface); err != nil {
		return fmt.Errorf("export agent: %w", err)
	}

	manager := conn.Object(bluezBus, managerPath)
	if call := manager.CallWithContext(ctx, managerIface+".RegisterAgent", 0, agentPath, "DisplayOnly"); call.Err != nil {
		return fmt.Errorf("register agent: %w", call.Err)
	}
	if call := manager.CallWithContext(ctx, managerIface+".RequestDefaultAgent", 0, agentPath); call.Err != nil {
		return fmt.Errorf("set default agent: %w", call.Err)
	}
	slog.Info("Pairing agent registered.", "path", string(agentPath))
	a.ensureTrusted(ctx)

	<-ctx.Done()

	// Best effort: the bus may already be gone on shutdown.
	_ = manager.Call(managerIface+".UnregisterAgent", 0, agentPath).Err
	return nil
}

// RequestPinCode serves the configured PIN for legacy pairing.
func (a *PinAgent) RequestPinCode(device dbus.ObjectPath) (string, *dbus.Error) {
	slog.Info("PIN requested.", "device", deviceAddress(device))
	return a.pin, nil
}

// RequestPasskey serves the PIN as a numeric passkey.
func (a *PinAgent) RequestPasskey(device dbus.ObjectPath) (uint32, *dbus.Error) {
	var key uint32
	for _, r := range a.pin {
		if r < '0' || r > '9' {
			return 0, dbus.MakeFailedError(fmt.Errorf("pin is not numeric"))
		}
		key = key*10 + uint32(r-'0')
	}
	return key, nil
}

// RequestConfirmation accepts any passkey: the bridge trusts whoever
// knows the PIN, confirmation adds nothing on a headless board.
func (a *PinAgent) RequestConfirmation(device dbus.ObjectPath, passkey uint32) *dbus.Error {
	slog.Info("Confirming pairing.", "device", deviceAddress(device), "passkey", passkey)
	return nil
}

// RequestAuthorization accepts the pairing.
func (a *PinAgent) RequestAuthorization(device dbus.ObjectPath) *dbus.Error {
	return nil
}

// AuthorizeService authorizes service connections from paired devices
// and records the device as paired.
func (a *PinAgent) AuthorizeService(device dbus.ObjectPath, uuid string) *dbus.Error {
	addr := deviceAddress(device)
	slog.Info("Authorizing service.", "device", addr, "uuid", uuid)
	if a.OnPaired != nil {
		a.OnPaired(addr)
	}
	// Off the dispatch goroutine: ensureTrusted calls back into the bus.
	go a.ensureTrusted(context.Background())
	return nil
}

// ensureTrusted re-picks the auto-attach device and marks it trusted.
func (a *PinAgent) ensureTrusted(ctx context.Context) {
	if a.LastPaired == nil || a.conn == nil {
		return
	}
	dev, ok, err := EnsureTrusted(ctx, a.conn, a.LastPaired)
	if err != nil {
		slog.Warn("Trusted-device selection failed.", "err", err)
		return
	}
	if ok {
		slog.Info("Bridge auto-attach device selected.", "address", dev.Address, "name", dev.Name)
	}
}

// Cancel is called when BlueZ aborts an in-flight request.
func (a *PinAgent) Cancel() *dbus.Error {
	slog.Debug("Pairing request cancelled.")
	return nil
}

// Release is called when the agent is unregistered.
func (a *PinAgent) Release() *dbus.Error {
	slog.Debug("Pairing agent released.")
	return nil
}

// deviceAddress turns a BlueZ device object path like
// /org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF into AA:BB:CC:DD:EE:FF.
func deviceAddress(path dbus.ObjectPath) string {
	parts := strings.Split(string(path), "/")
	last := parts[len(parts)-1]
	last = strings.TrimPrefix(last, "dev_")
	return strings.ReplaceAll(last, "_", ":")
}
