package probe

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"

	"hostwire"
	"hostwire/reconcile"
)

// File probes a path for exact desired contents.
func File(path string, want []byte) reconcile.ProbeFunc {
	return func(context.Context) (hostwire.Observation, error) {
		existing, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return hostwire.Absent(path + " missing"), nil
		}
		if err != nil {
			return hostwire.Unknown(err.Error()), err
		}
		if bytes.Equal(existing, want) {
			return hostwire.Present(path), nil
		}
		return hostwire.Mismatch(path + " diverged"), nil
	}
}

// PathExists probes only for the existence of a path, regardless of
// content. Used for build outputs whose bytes are not declared.
func PathExists(path string) reconcile.ProbeFunc {
	return func(context.Context) (hostwire.Observation, error) {
		_, err := os.Stat(path)
		if err == nil {
			return hostwire.Present(path), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return hostwire.Absent(path + " missing"), nil
		}
		return hostwire.Unknown(err.Error()), err
	}
}
