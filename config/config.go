// Package config holds the desired-state declaration for a run.
//
// Everything the shell originals hardcoded — PIN, adapter name, paths,
// feature lists — lives here and is passed explicitly to the
// orchestrator; nothing is read from ambient process state.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where apply/status/watchdog look without --config.
const DefaultPath = "/etc/hostwire/config.yaml"

// Config is the full desired state.
type Config struct {
	LogFile     string    `yaml:"log_file"`
	JournalPath string    `yaml:"journal_path"`
	Bridge      Bridge    `yaml:"bridge"`
	Toolchain   Toolchain `yaml:"toolchain"`
}

// Bridge declares the RFCOMM serial-bridge state.
type Bridge struct {
	Adapter          string   `yaml:"adapter"`           // controller name, hci0
	Name             string   `yaml:"name"`              // radio display name
	PIN              string   `yaml:"pin"`               // legacy pairing PIN served by the agent
	Channel          int      `yaml:"channel"`           // RFCOMM channel
	Shell            string   `yaml:"shell"`             // command handed the connection
	DisabledProfiles []string `yaml:"disabled_profiles"` // BlueZ plugins to disable
	Discoverable     bool     `yaml:"discoverable"`

	RadioConfigPath string `yaml:"radio_config_path"` // /etc/bluetooth/main.conf
	UnitDir         string `yaml:"unit_dir"`          // /etc/systemd/system
	ControlScript   string `yaml:"control_script"`    // installed wrapper path
	Binary          string `yaml:"binary"`            // hostwire binary path for the watchdog unit

	// InstallBlueZ is the argv run when the BlueZ tools are missing.
	InstallBlueZ []string `yaml:"install_bluez"`

	// NTPPool enables the optional clock probe when non-empty.
	NTPPool      string        `yaml:"ntp_pool"`
	ClockSkewMax time.Duration `yaml:"clock_skew_max"`

	// Watchdog tuning.
	WatchdogInterval time.Duration `yaml:"watchdog_interval"`
	MaxRestarts      int           `yaml:"max_restarts"`
}

// Toolchain declares the editor build environment.
type Toolchain struct {
	PackageManager Component   `yaml:"package_manager"`
	Compiler       Component   `yaml:"compiler"`
	Components     []Component `yaml:"components"` // SDKs and extras

	EditorRepo      string   `yaml:"editor_repo"`       // local checkout
	EditorBin       string   `yaml:"editor_bin"`        // expected build output
	CargoConfigPath string   `yaml:"cargo_config_path"` // fragment destination
	LinkSearch      string   `yaml:"link_search"`
	Features        []string `yaml:"features"`
	MinimalFeatures []string `yaml:"minimal_features"` // fallback build profile
}

// Component is one installable tool: probed by command name, converged
// by running the install argv, with an optional alternate method.
type Component struct {
	Name     string   `yaml:"name"`
	Command  string   `yaml:"command"` // executable probed on PATH
	Install  []string `yaml:"install"`
	Fallback []string `yaml:"fallback,omitempty"`
	Optional bool     `yaml:"optional,omitempty"`
}

// Default returns the desired state matching the original scripts.
func Default() Config {
	return Config{
		LogFile:     "/var/log/hostwire.log",
		JournalPath: "/var/lib/hostwire/journal.db",
		Bridge: Bridge{
			Adapter:          "hci0",
			Name:             "tty-bridge",
			PIN:              "0000",
			Channel:          1,
			Shell:            "/sbin/agetty -L rfcomm0 115200 vt100",
			DisabledProfiles: []string{"a2dp", "avrcp"},
			Discoverable:     true,
			RadioConfigPath:  "/etc/bluetooth/main.conf",
			UnitDir:          "/etc/systemd/system",
			ControlScript:    "/usr/local/bin/bridgectl",
			Binary:           "/usr/local/bin/hostwire",
			InstallBlueZ:     []string{"apt-get", "install", "-y", "bluez", "bluez-tools"},
			NTPPool:          "pool.ntp.org",
			ClockSkewMax:     2 * time.Second,
			WatchdogInterval: 30 * time.Second,
			MaxRestarts:      5,
		},
		Toolchain: Toolchain{
			PackageManager: Component{
				Name:    "package-manager",
				Command: "winget",
				Install: []string{"powershell", "-Command", "Add-AppxPackage -RegisterByFamilyName -MainPackage Microsoft.DesktopAppInstaller_8wekyb3d8bbwe"},
				Fallback: []string{
					"powershell", "-ExecutionPolicy", "Bypass", "-Command",
					"Set-ExecutionPolicy Bypass -Scope Process -Force; iex ((New-Object System.Net.WebClient).DownloadString('https://community.chocolatey.org/install.ps1'))",
				},
			},
			Compiler: Component{
				Name:    "rustup",
				Command: "rustup",
				Install: []string{"winget", "install", "--id", "Rustlang.Rustup", "-e", "--silent"},
			},
			Components: []Component{
				{Name: "build-tools", Command: "cl", Install: []string{"winget", "install", "--id", "Microsoft.VisualStudio.2022.BuildTools", "-e", "--silent"}},
				{Name: "git", Command: "git", Install: []string{"winget", "install", "--id", "Git.Git", "-e", "--silent"}, Optional: true},
			},
			EditorRepo:      "./editor",
			EditorBin:       "./editor/target/release/editor",
			CargoConfigPath: "./editor/.cargo/config.toml",
			LinkSearch:      "./editor/native/lib",
			Features:        []string{"lsp", "tree-sitter", "gui"},
			MinimalFeatures: []string{"lsp"},
		},
	}
}

// Load reads the config at path. A missing file yields the defaults,
// not an error, so a bare `hostwire apply` works out of the box.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
