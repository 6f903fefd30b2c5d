package probe

import (
	"context"
	"fmt"

	"hostwire"
	"hostwire/reconcile"
	"hostwire/system"
)

// Unit probes a systemd unit for the enabled-and-active state.
func Unit(sys system.Systemd, unit string) reconcile.ProbeFunc {
	return func(ctx context.Context) (hostwire.Observation, error) {
		if !sys.Available() {
			err := fmt.Errorf("systemctl not available")
			return hostwire.Unknown(err.Error()), err
		}
		enabled := sys.IsEnabled(ctx, unit)
		active := sys.IsActive(ctx, unit)
		switch {
		case enabled && active:
			return hostwire.Present(unit + " enabled and active"), nil
		case !enabled && !active:
			return hostwire.Absent(unit + " not enabled"), nil
		default:
			return hostwire.Mismatch(fmt.Sprintf("%s enabled=%t active=%t", unit, enabled, active)), nil
		}
	}
}
