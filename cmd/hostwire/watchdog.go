package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"hostwire/bluetooth"
	"hostwire/config"
	"hostwire/journal"
	"hostwire/system"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func watchdogCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watchdog",
		Short: "Keep the bridge unit alive and serve the pairing agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			jrnl, err := journal.Open(cfg.JournalPath)
			if err != nil {
				slog.Warn("Journal unavailable, pairings will not be recorded.", "err", err)
				jrnl = nil
			}
			defer jrnl.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			runner := system.Exec{}
			watchdog := &bluetooth.Watchdog{
				Systemd:     system.Systemd{Runner: runner},
				Interval:    cfg.Bridge.WatchdogInterval,
				MaxRestarts: cfg.Bridge.MaxRestarts,
				ConfigPath:  *configPath,
				// Exit cleanly on config change; systemd restarts the
				// watchdog, which re-reads the desired state.
				OnConfigChange: func(string) {
					slog.Info("Desired state changed, exiting for restart.")
					cancel()
				},
			}
			agent := bluetooth.NewPinAgent(cfg.Bridge.PIN, recordPairing(jrnl))
			agent.LastPaired = lastPaired(jrnl)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return watchdog.Run(ctx) })
			g.Go(func() error { return agent.Run(ctx) })
			return g.Wait()
		},
	}
}
