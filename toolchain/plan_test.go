package toolchain

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"hostwire"
	"hostwire/config"
	"hostwire/reconcile"
	"hostwire/render"
)

// --- fakes ---

type fakeRunner struct {
	runs    [][]string
	fail    map[string]error
	lookErr map[string]error

	// onRun, when set, runs after each recorded command. Tests use it
	// to materialize build outputs.
	onRun func(call []string)
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{fail: map[string]error{}, lookErr: map[string]error{}}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	call := append([]string{name}, args...)
	f.runs = append(f.runs, call)
	err := f.fail[strings.Join(call, " ")]
	if f.onRun != nil {
		f.onRun(call)
	}
	return err
}

func (f *fakeRunner) RunDir(ctx context.Context, dir, name string, args ...string) error {
	return f.Run(ctx, name, args...)
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	return "", f.Run(ctx, name, args...)
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if err, ok := f.lookErr[name]; ok {
		return "", err
	}
	return "/usr/bin/" + name, nil
}

func testToolchainConfig(t *testing.T) config.Toolchain {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default().Toolchain
	cfg.CargoConfigPath = filepath.Join(dir, "config.toml")
	cfg.EditorRepo = dir
	cfg.EditorBin = filepath.Join(dir, "target", "release", "editor")
	return cfg
}

// --- tests ---

func TestPlanInstallsMissingComponents(t *testing.T) {
	cfg := testToolchainConfig(t)
	runner := newFakeRunner()
	runner.lookErr[cfg.Compiler.Command] = exec.ErrNotFound
	// Installing the compiler makes its command resolvable again.
	runner.onRun = func(call []string) {
		if strings.Join(call, " ") == strings.Join(cfg.Compiler.Install, " ") {
			delete(runner.lookErr, cfg.Compiler.Command)
		}
		if call[0] == "cargo" {
			writeBinary(t, cfg.EditorBin)
		}
	}

	steps, err := Plan(cfg, runner)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	orch := &reconcile.Orchestrator{}
	report, err := orch.Run(context.Background(), steps)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Ok() {
		t.Fatalf("run not ok:\n%+v", report.Results)
	}

	res, _ := report.Find(cfg.Compiler.Name)
	if res.Phase != hostwire.PhaseConverged {
		t.Fatalf("compiler = %s, want converged", res.Phase)
	}
	if !ran(runner, strings.Join(cfg.Compiler.Install, " ")) {
		t.Fatal("compiler install never ran")
	}
}

func TestPlanSecondRunIsNoOp(t *testing.T) {
	cfg := testToolchainConfig(t)
	writeBinary(t, cfg.EditorBin)
	if err := os.WriteFile(cfg.CargoConfigPath, renderedFragment(t, cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := newFakeRunner()
	steps, err := Plan(cfg, runner)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	orch := &reconcile.Orchestrator{}
	report, err := orch.Run(context.Background(), steps)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Ok() {
		t.Fatalf("run not ok:\n%+v", report.Results)
	}
	if len(runner.runs) != 0 {
		t.Fatalf("converged toolchain mutated: %v", runner.runs)
	}
}

func TestBuildFallsBackToMinimalFeatures(t *testing.T) {
	cfg := testToolchainConfig(t)
	if err := os.WriteFile(cfg.CargoConfigPath, renderedFragment(t, cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := newFakeRunner()
	fullBuild := "cargo " + strings.Join(buildArgs(cfg.Features), " ")
	runner.fail[fullBuild] = errStub("linker error")
	runner.onRun = func(call []string) {
		// Only the minimal profile produces the binary.
		if call[0] == "cargo" && strings.Join(call, " ") != fullBuild {
			writeBinary(t, cfg.EditorBin)
		}
	}

	steps, err := Plan(cfg, runner)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	orch := &reconcile.Orchestrator{}
	report, err := orch.Run(context.Background(), steps)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	res, _ := report.Find("editor-build")
	if res.Phase != hostwire.PhaseDegraded {
		t.Fatalf("editor-build = %s, want degraded", res.Phase)
	}
	if !res.UsedFallback {
		t.Fatal("fallback tier not recorded")
	}
	minimal := "cargo " + strings.Join(buildArgs(cfg.MinimalFeatures), " ")
	if !ran(runner, minimal) {
		t.Fatalf("minimal build never ran, runs: %v", runner.runs)
	}
	if !report.Ok() {
		t.Fatal("degraded build should not fail the run")
	}
}

func TestComponentFallbackInstall(t *testing.T) {
	cfg := testToolchainConfig(t)
	writeBinary(t, cfg.EditorBin)
	if err := os.WriteFile(cfg.CargoConfigPath, renderedFragment(t, cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Components = []config.Component{{
		Name:     "linker",
		Command:  "lld",
		Install:  []string{"winget", "install", "lld"},
		Fallback: []string{"choco", "install", "lld"},
	}}

	runner := newFakeRunner()
	runner.lookErr["lld"] = exec.ErrNotFound
	runner.fail["winget install lld"] = errStub("winget source unreachable")
	runner.onRun = func(call []string) {
		if strings.Join(call, " ") == "choco install lld" {
			delete(runner.lookErr, "lld")
		}
	}

	steps, err := Plan(cfg, runner)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	orch := &reconcile.Orchestrator{}
	report, err := orch.Run(context.Background(), steps)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	res, _ := report.Find("linker")
	if res.Phase != hostwire.PhaseDegraded {
		t.Fatalf("linker = %s, want degraded after fallback install", res.Phase)
	}
}

func TestBuildRequiresCompilerAndFragment(t *testing.T) {
	cfg := testToolchainConfig(t)
	runner := newFakeRunner()
	steps, err := Plan(cfg, runner)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	var build reconcile.Step
	for _, s := range steps {
		if s.Resource == "editor-build" {
			build = s
		}
	}
	want := map[string]bool{cfg.Compiler.Name: true, "cargo-config": true}
	for _, req := range build.Requires {
		delete(want, req)
	}
	if len(want) != 0 {
		t.Fatalf("editor-build missing requirements %v, has %v", want, build.Requires)
	}
}

// --- helpers ---

func writeBinary(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("bin"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func renderedFragment(t *testing.T, cfg config.Toolchain) []byte {
	t.Helper()
	data, err := render.Cargo(cfg.LinkSearch, cfg.Features)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func ran(r *fakeRunner, line string) bool {
	for _, call := range r.runs {
		if strings.Join(call, " ") == line {
			return true
		}
	}
	return false
}

type errStub string

func (e errStub) Error() string { return string(e) }
