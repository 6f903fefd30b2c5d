package system

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external commands.
// Production: Exec. Testing: fakes that record spawns.
type Runner interface {
	// Run executes a command and returns an error carrying the combined
	// output when it fails.
	Run(ctx context.Context, name string, args ...string) error
	// RunDir is Run with a working directory.
	RunDir(ctx context.Context, dir, name string, args ...string) error
	// Output executes a command and returns its combined output.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// LookPath resolves an executable on PATH.
	LookPath(name string) (string, error)
}

// Exec runs commands on the real host.
type Exec struct{}

func (Exec) Run(ctx context.Context, name string, args ...string) error {
	return runIn(ctx, "", name, args...)
}

func (Exec) RunDir(ctx context.Context, dir, name string, args ...string) error {
	return runIn(ctx, dir, name, args...)
}

func (Exec) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %s: %w", name, strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

func (Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func runIn(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %s: %w", name, strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return nil
}
