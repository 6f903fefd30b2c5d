package system

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingRunner struct {
	calls [][]string
	fail  map[string]error
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) error {
	call := append([]string{name}, args...)
	r.calls = append(r.calls, call)
	return r.fail[strings.Join(call, " ")]
}

func (r *recordingRunner) RunDir(ctx context.Context, dir, name string, args ...string) error {
	return r.Run(ctx, name, args...)
}

func (r *recordingRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	return "", r.Run(ctx, name, args...)
}

func (r *recordingRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func TestSystemdVerbs(t *testing.T) {
	runner := &recordingRunner{fail: map[string]error{}}
	sys := Systemd{Runner: runner}
	ctx := context.Background()

	if err := sys.EnableNow(ctx, "hostwire-bridge.service"); err != nil {
		t.Fatal(err)
	}
	if err := sys.DaemonReload(ctx); err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"systemctl", "enable", "--now", "hostwire-bridge.service"},
		{"systemctl", "daemon-reload"},
	}
	if len(runner.calls) != len(want) {
		t.Fatalf("calls = %v", runner.calls)
	}
	for i := range want {
		if strings.Join(runner.calls[i], " ") != strings.Join(want[i], " ") {
			t.Fatalf("call %d = %v, want %v", i, runner.calls[i], want[i])
		}
	}
}

func TestIsActiveMapsExitCode(t *testing.T) {
	runner := &recordingRunner{fail: map[string]error{
		"systemctl is-active --quiet dead.service": errors.New("exit 3"),
	}}
	sys := Systemd{Runner: runner}
	ctx := context.Background()

	if !sys.IsActive(ctx, "alive.service") {
		t.Fatal("zero exit should report active")
	}
	if sys.IsActive(ctx, "dead.service") {
		t.Fatal("non-zero exit should report inactive")
	}
}
