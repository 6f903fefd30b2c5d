package main

import (
	"context"
	"fmt"
	"io"

	"hostwire/render"
	"hostwire/system"

	"github.com/spf13/cobra"
)

const bridgeUsage = "usage: hostwire bridge {start|stop|restart|status|enable|disable}"

func bridgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bridge <verb>",
		Short: "Control the bridge units: start, stop, restart, status, enable, disable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := system.Exec{}
			return dispatchBridge(cmd.Context(), system.Systemd{Runner: runner}, args[0], cmd.OutOrStdout())
		},
	}
}

// dispatchBridge maps each control verb onto exactly one action
// sequence over the two units. Stop order is the reverse of start so
// the watchdog never observes a bridge it is about to kill.
func dispatchBridge(ctx context.Context, sys system.Systemd, verb string, out io.Writer) error {
	switch verb {
	case "start":
		if err := sys.Start(ctx, render.BridgeUnit); err != nil {
			return err
		}
		return sys.Start(ctx, render.WatchdogUnit)
	case "stop":
		if err := sys.Stop(ctx, render.WatchdogUnit); err != nil {
			return err
		}
		return sys.Stop(ctx, render.BridgeUnit)
	case "restart":
		if err := sys.Restart(ctx, render.BridgeUnit); err != nil {
			return err
		}
		return sys.Restart(ctx, render.WatchdogUnit)
	case "status":
		for _, unit := range []string{render.BridgeUnit, render.WatchdogUnit} {
			fmt.Fprintf(out, "%s\tactive=%t enabled=%t\n", unit, sys.IsActive(ctx, unit), sys.IsEnabled(ctx, unit))
		}
		return nil
	case "enable":
		if err := sys.Enable(ctx, render.BridgeUnit); err != nil {
			return err
		}
		return sys.Enable(ctx, render.WatchdogUnit)
	case "disable":
		if err := sys.Disable(ctx, render.WatchdogUnit); err != nil {
			return err
		}
		return sys.Disable(ctx, render.BridgeUnit)
	default:
		return fmt.Errorf("unknown verb %q\n%s", verb, bridgeUsage)
	}
}
