package main

import (
	"fmt"

	"hostwire/cmd/hostwire/ui"
	"hostwire/config"
	"hostwire/render"

	"github.com/spf13/cobra"
)

func renderCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print every generated artifact without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fragment, err := render.Cargo(cfg.Toolchain.LinkSearch, cfg.Toolchain.Features)
			if err != nil {
				return err
			}

			artifacts := []struct {
				title   string
				content string
			}{
				{cfg.Toolchain.CargoConfigPath, string(fragment)},
				{cfg.Bridge.RadioConfigPath, render.Radio(render.RadioParams{
					Name:             cfg.Bridge.Name,
					Discoverable:     cfg.Bridge.Discoverable,
					DisabledProfiles: cfg.Bridge.DisabledProfiles,
				})},
				{render.BridgeUnit, render.BridgeUnitFile(render.BridgeUnitParams{
					Adapter: cfg.Bridge.Adapter,
					Channel: cfg.Bridge.Channel,
					Shell:   cfg.Bridge.Shell,
					LogPath: cfg.LogFile,
				})},
				{render.WatchdogUnit, render.WatchdogUnitFile(render.WatchdogUnitParams{
					Binary:     cfg.Bridge.Binary,
					ConfigPath: config.DefaultPath,
					LogPath:    cfg.LogFile,
				})},
				{cfg.Bridge.ControlScript, render.ControlScript()},
			}
			for _, a := range artifacts {
				fmt.Fprintf(out, "%s\n%s\n", ui.Accent("# "+a.title), a.content)
			}
			return nil
		},
	}
}
