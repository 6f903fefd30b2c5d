// Package toolchain converges the source-built editor environment:
// package manager, compiler, SDK components, the cargo build-config
// fragment, and the editor build itself with a minimal-feature
// fallback profile.
package toolchain

import (
	"context"
	"fmt"
	"strings"

	"hostwire/config"
	"hostwire/probe"
	"hostwire/reconcile"
	"hostwire/render"
	"hostwire/system"
)

// Plan returns the convergence steps for the editor toolchain. The
// package manager comes first: every later install shells out to it.
func Plan(cfg config.Toolchain, runner system.Runner) ([]reconcile.Step, error) {
	fragment, err := render.Cargo(cfg.LinkSearch, cfg.Features)
	if err != nil {
		return nil, fmt.Errorf("render cargo fragment: %w", err)
	}

	steps := []reconcile.Step{
		componentStep(runner, cfg.PackageManager, nil),
		componentStep(runner, cfg.Compiler, []string{cfg.PackageManager.Name}),
	}
	for _, component := range cfg.Components {
		steps = append(steps, componentStep(runner, component, []string{cfg.PackageManager.Name}))
	}

	steps = append(steps,
		reconcile.Step{
			Resource: "cargo-config",
			Probe:    probe.File(cfg.CargoConfigPath, fragment),
			Apply: func(context.Context) error {
				_, err := system.EnsureFile(cfg.CargoConfigPath, fragment, 0o644)
				return err
			},
		},
		buildStep(cfg, runner),
	)
	return steps, nil
}

// componentStep converges one installable tool. Probe by command name;
// converge by running the install argv; an alternate install method,
// when configured, is the one fallback tier.
func componentStep(runner system.Runner, c config.Component, requires []string) reconcile.Step {
	step := reconcile.Step{
		Resource: c.Name,
		Probe:    probe.Command(runner, c.Command),
		Apply:    runArgv(runner, c.Install),
		Requires: requires,
		Optional: c.Optional,
	}
	if len(c.Fallback) > 0 {
		step.Fallback = runArgv(runner, c.Fallback)
	}
	return step
}

// buildStep compiles the editor. When the full-feature build does not
// produce the binary, the fallback tier retries with the minimal
// feature profile; success through that path leaves the resource
// Degraded, which the run tolerates.
func buildStep(cfg config.Toolchain, runner system.Runner) reconcile.Step {
	step := reconcile.Step{
		Resource: "editor-build",
		Probe:    probe.PathExists(cfg.EditorBin),
		Apply: func(ctx context.Context) error {
			return runner.RunDir(ctx, cfg.EditorRepo, "cargo", buildArgs(cfg.Features)...)
		},
		Requires: []string{cfg.Compiler.Name, "cargo-config"},
	}
	if len(cfg.MinimalFeatures) > 0 {
		step.Fallback = func(ctx context.Context) error {
			return runner.RunDir(ctx, cfg.EditorRepo, "cargo", buildArgs(cfg.MinimalFeatures)...)
		}
	}
	return step
}

func buildArgs(features []string) []string {
	args := []string{"build", "--release"}
	if len(features) > 0 {
		args = append(args, "--no-default-features", "--features", strings.Join(features, ","))
	}
	return args
}

func runArgv(runner system.Runner, argv []string) reconcile.ApplyFunc {
	return func(ctx context.Context) error {
		if len(argv) == 0 {
			return fmt.Errorf("no install command configured")
		}
		return runner.Run(ctx, argv[0], argv[1:]...)
	}
}
