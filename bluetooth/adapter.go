package bluetooth

import (
	"context"
	"fmt"
	"strings"

	"hostwire"
	"hostwire/system"
)

// Adapter drives one Bluetooth controller through the hciconfig and
// rfkill CLIs, the same tools the shell original used.
type Adapter struct {
	Name   string // controller name, e.g. hci0
	Runner system.Runner
}

// Probe reports whether the controller exists and is up.
func (a Adapter) Probe(ctx context.Context) (hostwire.Observation, error) {
	if _, err := a.Runner.LookPath("hciconfig"); err != nil {
		return hostwire.Unknown("hciconfig not available"), fmt.Errorf("hciconfig not available: %w", err)
	}
	out, err := a.Runner.Output(ctx, "hciconfig", a.Name)
	if err != nil {
		return hostwire.Absent(fmt.Sprintf("controller %s not present", a.Name)), nil
	}
	if strings.Contains(out, "UP RUNNING") {
		return hostwire.Present(a.Name + " up"), nil
	}
	return hostwire.Mismatch(a.Name + " down"), nil
}

// Reset unblocks the radio and power-cycles the controller. This is
// the one retry the fatal adapter step gets before the run aborts.
func (a Adapter) Reset(ctx context.Context) error {
	// rfkill may be missing on minimal images; a soft block is the
	// common cause of a vanished controller, so try it first.
	if _, err := a.Runner.LookPath("rfkill"); err == nil {
		if err := a.Runner.Run(ctx, "rfkill", "unblock", "bluetooth"); err != nil {
			return fmt.Errorf("unblock radio: %w", err)
		}
	}
	if err := a.Runner.Run(ctx, "hciconfig", a.Name, "down"); err != nil {
		return fmt.Errorf("bring %s down: %w", a.Name, err)
	}
	if err := a.Runner.Run(ctx, "hciconfig", a.Name, "up"); err != nil {
		return fmt.Errorf("bring %s up: %w", a.Name, err)
	}
	return nil
}

// ProbeVisibility reports whether the controller matches everything
// ConfigureVisibility sets: page+inquiry scan mode, the display name,
// and simple secure pairing off. A renamed controller or re-enabled
// SSP must read as Mismatch so the step reconverges.
func (a Adapter) ProbeVisibility(ctx context.Context, name string) (hostwire.Observation, error) {
	out, err := a.Runner.Output(ctx, "hciconfig", a.Name)
	if err != nil {
		return hostwire.Unknown(err.Error()), err
	}
	if !strings.Contains(out, "PSCAN") || !strings.Contains(out, "ISCAN") {
		return hostwire.Mismatch(a.Name + " not discoverable"), nil
	}
	nameOut, err := a.Runner.Output(ctx, "hciconfig", a.Name, "name")
	if err != nil {
		return hostwire.Unknown(err.Error()), err
	}
	if !strings.Contains(nameOut, "'"+name+"'") {
		return hostwire.Mismatch(a.Name + " name diverged"), nil
	}
	sspOut, err := a.Runner.Output(ctx, "hciconfig", a.Name, "sspmode")
	if err != nil {
		return hostwire.Unknown(err.Error()), err
	}
	if !strings.Contains(sspOut, "Disabled") {
		return hostwire.Mismatch(a.Name + " simple pairing enabled"), nil
	}
	return hostwire.Present(a.Name + " discoverable as " + name), nil
}

// ConfigureVisibility names the controller, enables page+inquiry scan,
// and turns simple secure pairing off so the PIN agent is consulted.
func (a Adapter) ConfigureVisibility(ctx context.Context, name string) error {
	if err := a.Runner.Run(ctx, "hciconfig", a.Name, "name", name); err != nil {
		return fmt.Errorf("set controller name: %w", err)
	}
	if err := a.Runner.Run(ctx, "hciconfig", a.Name, "piscan"); err != nil {
		return fmt.Errorf("enable scan mode: %w", err)
	}
	if err := a.Runner.Run(ctx, "hciconfig", a.Name, "sspmode", "0"); err != nil {
		return fmt.Errorf("disable simple pairing: %w", err)
	}
	return nil
}
