package main

import (
	"hostwire/cmd/hostwire/ui"
	"hostwire/config"
	"hostwire/reconcile"

	"github.com/spf13/cobra"
)

func statusCmd(configPath *string) *cobra.Command {
	var plan string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe current state without converging anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			steps, err := buildPlans(plan, cfg)
			if err != nil {
				return err
			}

			orch := &reconcile.Orchestrator{}
			report := orch.Probe(cmd.Context(), steps)
			ui.PrintObservations(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&plan, "plan", "bridge", "Plan to probe: bridge, toolchain, or all")
	return cmd
}
