package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bridge.Adapter != "hci0" {
		t.Fatalf("adapter = %q, want default hci0", cfg.Bridge.Adapter)
	}
	if cfg.Bridge.PIN != "0000" {
		t.Fatalf("pin = %q, want default 0000", cfg.Bridge.PIN)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
bridge:
  adapter: hci1
  channel: 3
  ntp_pool: ""
  watchdog_interval: 10s
toolchain:
  features: [lsp]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bridge.Adapter != "hci1" {
		t.Fatalf("adapter = %q", cfg.Bridge.Adapter)
	}
	if cfg.Bridge.Channel != 3 {
		t.Fatalf("channel = %d", cfg.Bridge.Channel)
	}
	if cfg.Bridge.NTPPool != "" {
		t.Fatalf("ntp_pool = %q, want cleared", cfg.Bridge.NTPPool)
	}
	if cfg.Bridge.WatchdogInterval != 10*time.Second {
		t.Fatalf("watchdog_interval = %v", cfg.Bridge.WatchdogInterval)
	}
	if len(cfg.Toolchain.Features) != 1 || cfg.Toolchain.Features[0] != "lsp" {
		t.Fatalf("features = %v", cfg.Toolchain.Features)
	}
	// Untouched sections keep their defaults.
	if cfg.Bridge.Shell == "" {
		t.Fatal("shell default lost")
	}
	if cfg.LogFile != Default().LogFile {
		t.Fatalf("log_file = %q", cfg.LogFile)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("bridge: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config accepted")
	}
}
