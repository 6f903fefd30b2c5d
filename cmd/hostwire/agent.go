package main

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"hostwire/bluetooth"
	"hostwire/config"
	"hostwire/journal"

	"github.com/spf13/cobra"
)

func agentCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Run the PIN pairing agent in the foreground",
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

			agent := bluetooth.NewPinAgent(cfg.Bridge.PIN, recordPairing(jrnl))
			agent.LastPaired = lastPaired(jrnl)
			return agent.Run(ctx)
		},
	}
}

func recordPairing(jrnl *journal.Journal) func(address string) {
	return func(address string) {
		if jrnl == nil {
			return
		}
		if err := jrnl.RecordPairing(address, ""); err != nil {
			slog.Warn("Failed to record pairing.", "address", address, "err", err)
		}
	}
}

// lastPaired adapts the journal's pairing history for trusted-device
// selection; without a journal no device has history.
func lastPaired(jrnl *journal.Journal) func(address string) (time.Time, bool) {
	return func(address string) (time.Time, bool) {
		if jrnl == nil {
			return time.Time{}, false
		}
		return jrnl.LastPaired(address)
	}
}
