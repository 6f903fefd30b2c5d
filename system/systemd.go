package system

import "context"

// Systemd drives unit state through systemctl. Probing with the
// --quiet verbs maps exit codes to booleans, matching the semantics
// the shell scripts relied on.
type Systemd struct {
	Runner Runner
}

// Available reports whether systemctl exists on this host.
func (s Systemd) Available() bool {
	_, err := s.Runner.LookPath("systemctl")
	return err == nil
}

func (s Systemd) DaemonReload(ctx context.Context) error {
	return s.Runner.Run(ctx, "systemctl", "daemon-reload")
}

func (s Systemd) EnableNow(ctx context.Context, unit string) error {
	return s.Runner.Run(ctx, "systemctl", "enable", "--now", unit)
}

func (s Systemd) DisableNow(ctx context.Context, unit string) error {
	return s.Runner.Run(ctx, "systemctl", "disable", "--now", unit)
}

func (s Systemd) Enable(ctx context.Context, unit string) error {
	return s.Runner.Run(ctx, "systemctl", "enable", unit)
}

func (s Systemd) Disable(ctx context.Context, unit string) error {
	return s.Runner.Run(ctx, "systemctl", "disable", unit)
}

func (s Systemd) Start(ctx context.Context, unit string) error {
	return s.Runner.Run(ctx, "systemctl", "start", unit)
}

func (s Systemd) Stop(ctx context.Context, unit string) error {
	return s.Runner.Run(ctx, "systemctl", "stop", unit)
}

func (s Systemd) Restart(ctx context.Context, unit string) error {
	return s.Runner.Run(ctx, "systemctl", "restart", unit)
}

func (s Systemd) IsActive(ctx context.Context, unit string) bool {
	return s.Runner.Run(ctx, "systemctl", "is-active", "--quiet", unit) == nil
}

func (s Systemd) IsEnabled(ctx context.Context, unit string) bool {
	return s.Runner.Run(ctx, "systemctl", "is-enabled", "--quiet", unit) == nil
}
