package main

import (
	"fmt"
	"log/slog"

	"hostwire/cmd/hostwire/ui"
	"hostwire/config"
	"hostwire/journal"
	"hostwire/reconcile"

	"github.com/spf13/cobra"
)

func applyCmd(configPath *string) *cobra.Command {
	var (
		plan   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge the host to the desired state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			steps, err := buildPlans(plan, cfg)
			if err != nil {
				return err
			}

			// The journal is an audit trail, not a prerequisite: an
			// unwritable path must not block convergence.
			jrnl, err := journal.Open(cfg.JournalPath)
			if err != nil {
				slog.Warn("Journal unavailable, actions will not be recorded.", "path", cfg.JournalPath, "err", err)
				jrnl = nil
			}
			defer jrnl.Close()

			orch := &reconcile.Orchestrator{
				DryRun: dryRun,
				OnEvent: func(e reconcile.Event) {
					if jrnl == nil || e.Action == "probe" || e.Action == "verify" {
						return
					}
					if err := jrnl.RecordAction(e.Resource, e.Action, e.Outcome, e.Detail); err != nil {
						slog.Warn("Failed to record audit action.", "err", err)
					}
				},
			}

			report, runErr := orch.Run(cmd.Context(), steps)
			ui.PrintReport(cmd.OutOrStdout(), report)

			if runErr != nil {
				return runErr
			}
			if dryRun {
				return nil
			}
			if !report.Ok() {
				return fmt.Errorf("run finished with unconverged resources")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&plan, "plan", "bridge", "Plan to converge: bridge, toolchain, or all")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Probe only, apply nothing")
	return cmd
}
