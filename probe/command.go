package probe

import (
	"context"
	"errors"
	"os/exec"

	"hostwire"
	"hostwire/reconcile"
	"hostwire/system"
)

// Command probes for an executable on PATH.
func Command(runner system.Runner, name string) reconcile.ProbeFunc {
	return func(ctx context.Context) (hostwire.Observation, error) {
		path, err := runner.LookPath(name)
		if err == nil {
			return hostwire.Present(path), nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return hostwire.Absent(name + " not on PATH"), nil
		}
		// Lookup itself failed (e.g. permission on a PATH entry):
		// that is an Unknown state, not absence.
		return hostwire.Unknown(err.Error()), err
	}
}
