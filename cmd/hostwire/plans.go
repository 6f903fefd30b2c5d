package main

import (
	"fmt"

	"hostwire/bluetooth"
	"hostwire/config"
	"hostwire/reconcile"
	"hostwire/system"
	"hostwire/toolchain"
)

// buildPlans assembles the requested plan into an ordered step list.
func buildPlans(name string, cfg config.Config) ([]reconcile.Step, error) {
	runner := system.Exec{}
	deps := bluetooth.Deps{Runner: runner, Systemd: system.Systemd{Runner: runner}}

	switch name {
	case "bridge":
		return bluetooth.Plan(cfg.Bridge, cfg.LogFile, deps), nil
	case "toolchain":
		return toolchain.Plan(cfg.Toolchain, runner)
	case "all":
		steps := bluetooth.Plan(cfg.Bridge, cfg.LogFile, deps)
		tc, err := toolchain.Plan(cfg.Toolchain, runner)
		if err != nil {
			return nil, err
		}
		return append(steps, tc...), nil
	default:
		return nil, fmt.Errorf("unknown plan %q (expected bridge, toolchain, or all)", name)
	}
}
