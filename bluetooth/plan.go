package bluetooth

import (
	"context"
	"fmt"
	"path/filepath"

	"hostwire"
	"hostwire/config"
	"hostwire/probe"
	"hostwire/reconcile"
	"hostwire/render"
	"hostwire/system"
)

// Deps carries the side-effect surfaces the plan converges through.
type Deps struct {
	Runner  system.Runner
	Systemd system.Systemd
}

// Plan returns the convergence steps for the RFCOMM serial bridge, in
// dependency order. logFile is where the units append their output.
// The adapter step is fatal: a board with no radio cannot be bridged
// and the run must stop there.
func Plan(cfg config.Bridge, logFile string, deps Deps) []reconcile.Step {
	adapter := Adapter{Name: cfg.Adapter, Runner: deps.Runner}

	radioConf := []byte(render.Radio(render.RadioParams{
		Name:             cfg.Name,
		Discoverable:     cfg.Discoverable,
		DisabledProfiles: cfg.DisabledProfiles,
	}))
	bridgeUnit := []byte(render.BridgeUnitFile(render.BridgeUnitParams{
		Adapter: cfg.Adapter,
		Channel: cfg.Channel,
		Shell:   cfg.Shell,
		LogPath: logFile,
	}))
	watchdogUnit := []byte(render.WatchdogUnitFile(render.WatchdogUnitParams{
		Binary:     cfg.Binary,
		ConfigPath: config.DefaultPath,
		LogPath:    logFile,
	}))
	controlScript := []byte(render.ControlScript())

	bridgeUnitPath := filepath.Join(cfg.UnitDir, render.BridgeUnit)
	watchdogUnitPath := filepath.Join(cfg.UnitDir, render.WatchdogUnit)

	steps := []reconcile.Step{}

	if cfg.NTPPool != "" {
		steps = append(steps, reconcile.Step{
			Resource: "clock",
			Probe:    probe.Clock(cfg.NTPPool, cfg.ClockSkewMax),
			Apply: func(ctx context.Context) error {
				return deps.Runner.Run(ctx, "timedatectl", "set-ntp", "true")
			},
			Optional: true,
		})
	}

	steps = append(steps,
		reconcile.Step{
			Resource: "bluez-tools",
			Probe:    probe.Command(deps.Runner, "bluetoothctl"),
			Apply:    runArgv(deps.Runner, cfg.InstallBlueZ),
		},
		reconcile.Step{
			Resource: "bluetooth-service",
			Probe:    probe.Unit(deps.Systemd, "bluetooth.service"),
			Apply: func(ctx context.Context) error {
				return deps.Systemd.EnableNow(ctx, "bluetooth.service")
			},
			Requires: []string{"bluez-tools"},
		},
		reconcile.Step{
			Resource: "bluetooth-adapter",
			Probe:    adapter.Probe,
			Apply:    adapter.Reset,
			Requires: []string{"bluez-tools"},
			Fatal:    true,
		},
		reconcile.Step{
			Resource: "radio-config",
			Probe:    probe.File(cfg.RadioConfigPath, radioConf),
			Apply: func(ctx context.Context) error {
				if _, err := system.EnsureFile(cfg.RadioConfigPath, radioConf, 0o644); err != nil {
					return err
				}
				// bluetoothd only reads main.conf at startup.
				return deps.Systemd.Restart(ctx, "bluetooth.service")
			},
			Requires: []string{"bluetooth-service"},
		},
		reconcile.Step{
			Resource: "adapter-visibility",
			Probe: func(ctx context.Context) (hostwire.Observation, error) {
				return adapter.ProbeVisibility(ctx, cfg.Name)
			},
			Apply: func(ctx context.Context) error {
				return adapter.ConfigureVisibility(ctx, cfg.Name)
			},
			Requires: []string{"bluetooth-adapter"},
		},
		unitFileStep(deps, "bridge-unit", bridgeUnitPath, bridgeUnit),
		unitFileStep(deps, "watchdog-unit", watchdogUnitPath, watchdogUnit),
		reconcile.Step{
			Resource: "control-script",
			Probe:    probe.File(cfg.ControlScript, controlScript),
			Apply: func(ctx context.Context) error {
				_, err := system.EnsureFile(cfg.ControlScript, controlScript, 0o755)
				return err
			},
		},
		serviceStep(deps, "bridge-service", render.BridgeUnit,
			[]string{"bridge-unit", "bluetooth-adapter"}),
		serviceStep(deps, "watchdog-service", render.WatchdogUnit,
			[]string{"watchdog-unit", "bridge-service"}),
	)
	return steps
}

// unitFileStep converges one unit file on disk, reloading systemd
// after a write so the unit graph sees the new content.
func unitFileStep(deps Deps, resource, path string, content []byte) reconcile.Step {
	return reconcile.Step{
		Resource: resource,
		Probe:    probe.File(path, content),
		Apply: func(ctx context.Context) error {
			if _, err := system.EnsureFile(path, content, 0o644); err != nil {
				return err
			}
			return deps.Systemd.DaemonReload(ctx)
		},
	}
}

// serviceStep enables and starts a unit; the fallback tier reloads the
// unit graph and force-restarts, which recovers a stale failed state.
func serviceStep(deps Deps, resource, unit string, requires []string) reconcile.Step {
	return reconcile.Step{
		Resource: resource,
		Probe:    probe.Unit(deps.Systemd, unit),
		Apply: func(ctx context.Context) error {
			return deps.Systemd.EnableNow(ctx, unit)
		},
		Fallback: func(ctx context.Context) error {
			if err := deps.Systemd.DaemonReload(ctx); err != nil {
				return err
			}
			return deps.Systemd.Restart(ctx, unit)
		},
		Requires: requires,
	}
}

func runArgv(runner system.Runner, argv []string) reconcile.ApplyFunc {
	return func(ctx context.Context) error {
		if len(argv) == 0 {
			return fmt.Errorf("no install command configured")
		}
		return runner.Run(ctx, argv[0], argv[1:]...)
	}
}
