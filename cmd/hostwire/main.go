package main

import (
	"fmt"
	"os"

	"hostwire/config"
	"hostwire/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	var (
		debug      bool
		configPath string
	)
	if err := logging.Configure(logging.LevelWarn, ""); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "hostwire",
		Short:         "Idempotent host provisioning for the serial bridge and editor toolchain",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// All output is duplicated to the configured log file.
			return logging.Configure(level, cfg.LogFile)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Desired-state config path")

	root.AddCommand(applyCmd(&configPath))
	root.AddCommand(statusCmd(&configPath))
	root.AddCommand(renderCmd(&configPath))
	root.AddCommand(agentCmd(&configPath))
	root.AddCommand(watchdogCmd(&configPath))
	root.AddCommand(bridgeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
