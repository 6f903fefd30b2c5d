package bluetooth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hostwire/render"
	"hostwire/system"

	sdnotify "github.com/coreos/go-systemd/v22/daemon"
	"github.com/fsnotify/fsnotify"
)

const defaultWatchInterval = 30 * time.Second

// Watchdog keeps the bridge unit alive. Each tick it probes the unit
// and restarts it when down; repeated consecutive restart failures
// surface as an error so systemd restarts the watchdog itself.
type Watchdog struct {
	Unit        string
	Systemd     system.Systemd
	Interval    time.Duration
	MaxRestarts int

	// ConfigPath, when set, is watched for changes; OnConfigChange is
	// invoked with the path on every write.
	ConfigPath     string
	OnConfigChange func(path string)

	// Notify sends sd_notify state. Defaults to the real socket; tests
	// inject a recorder.
	Notify func(state string) error
}

func (w *Watchdog) interval() time.Duration {
	if w.Interval > 0 {
		return w.Interval
	}
	return defaultWatchInterval
}

func (w *Watchdog) unit() string {
	if w.Unit != "" {
		return w.Unit
	}
	return render.BridgeUnit
}

func (w *Watchdog) notify(state string) {
	fn := w.Notify
	if fn == nil {
		fn = func(state string) error {
			_, err := sdnotify.SdNotify(false, state)
			return err
		}
	}
	if err := fn(state); err != nil {
		slog.Debug("sd_notify failed", "err", err)
	}
}

// Run blocks until the context is cancelled or the bridge cannot be
// kept alive.
func (w *Watchdog) Run(ctx context.Context) error {
	w.notify(sdnotify.SdNotifyReady)

	var (
		configEvents <-chan fsnotify.Event
		watchErrors  <-chan error
	)
	if w.ConfigPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create config watcher: %w", err)
		}
		defer watcher.Close()
		// Watch the directory: editors and atomic writes replace the
		// file, which drops a watch on the file itself. On a host
		// running on pure defaults the directory may not exist yet;
		// the bridge must still be guarded either way.
		dir := filepath.Dir(w.ConfigPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("Config directory unavailable, running without change detection.", "dir", dir, "err", err)
		} else if err := watcher.Add(dir); err != nil {
			slog.Warn("Config watch failed, running without change detection.", "dir", dir, "err", err)
		} else {
			configEvents = watcher.Events
			watchErrors = watcher.Errors
		}
	}

	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()

	var consecutiveFailures int
	for {
		select {
		case <-ctx.Done():
			w.notify(sdnotify.SdNotifyStopping)
			return nil
		case err := <-watchErrors:
			// Must be drained: fsnotify blocks its event goroutine on
			// an unread error send.
			slog.Warn("Config watcher error.", "err", err)
		case event := <-configEvents:
			if event.Name != w.ConfigPath || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			slog.Info("Desired state changed on disk.", "path", event.Name)
			if w.OnConfigChange != nil {
				w.OnConfigChange(event.Name)
			}
		case <-ticker.C:
			w.notify(sdnotify.SdNotifyWatchdog)
			if w.Systemd.IsActive(ctx, w.unit()) {
				consecutiveFailures = 0
				continue
			}
			slog.Warn("Bridge unit down, restarting.", "unit", w.unit())
			if err := w.Systemd.Restart(ctx, w.unit()); err != nil {
				consecutiveFailures++
				slog.Error("Bridge restart failed.", "unit", w.unit(), "failures", consecutiveFailures, "err", err)
				if w.MaxRestarts > 0 && consecutiveFailures >= w.MaxRestarts {
					return fmt.Errorf("bridge restart failed %d times in a row: %w", consecutiveFailures, err)
				}
				continue
			}
			consecutiveFailures = 0
		}
	}
}
