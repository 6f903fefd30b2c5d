package bluetooth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hostwire"
	"hostwire/config"
	"hostwire/reconcile"
	"hostwire/render"
	"hostwire/system"
)

// --- fakes ---

type fakeRunner struct {
	runs    [][]string
	fail    map[string]error
	output  map[string]string
	outErr  map[string]error
	lookErr map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		fail:    map[string]error{},
		output:  map[string]string{},
		outErr:  map[string]error{},
		lookErr: map[string]error{},
	}
}

func key(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.runs = append(f.runs, append([]string{name}, args...))
	return f.fail[key(name, args)]
}

func (f *fakeRunner) RunDir(ctx context.Context, dir, name string, args ...string) error {
	return f.Run(ctx, name, args...)
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	k := key(name, args)
	if err := f.outErr[k]; err != nil {
		return "", err
	}
	return f.output[k], nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if err, ok := f.lookErr[name]; ok {
		return "", err
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) ran(prefix string) bool {
	for _, call := range f.runs {
		if strings.HasPrefix(strings.Join(call, " "), prefix) {
			return true
		}
	}
	return false
}

// testBridgeConfig returns a bridge config rooted in a temp dir, with
// the clock step disabled so no network probe runs.
func testBridgeConfig(t *testing.T) config.Bridge {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default().Bridge
	cfg.NTPPool = ""
	cfg.RadioConfigPath = filepath.Join(dir, "main.conf")
	cfg.UnitDir = dir
	cfg.ControlScript = filepath.Join(dir, "bridgectl")
	return cfg
}

// seedConvergedHost writes every managed file with its desired content.
func seedConvergedHost(t *testing.T, cfg config.Bridge, logFile string) {
	t.Helper()
	radio := render.Radio(render.RadioParams{
		Name:             cfg.Name,
		Discoverable:     cfg.Discoverable,
		DisabledProfiles: cfg.DisabledProfiles,
	})
	bridge := render.BridgeUnitFile(render.BridgeUnitParams{
		Adapter: cfg.Adapter,
		Channel: cfg.Channel,
		Shell:   cfg.Shell,
		LogPath: logFile,
	})
	watchdog := render.WatchdogUnitFile(render.WatchdogUnitParams{
		Binary:     cfg.Binary,
		ConfigPath: config.DefaultPath,
		LogPath:    logFile,
	})
	write := func(path, content string) {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(cfg.RadioConfigPath, radio)
	write(filepath.Join(cfg.UnitDir, render.BridgeUnit), bridge)
	write(filepath.Join(cfg.UnitDir, render.WatchdogUnit), watchdog)
	write(cfg.ControlScript, render.ControlScript())
}

// --- tests ---

func TestPlanOnConvergedHostChangesNothing(t *testing.T) {
	cfg := testBridgeConfig(t)
	logFile := "/var/log/hostwire.log"
	seedConvergedHost(t, cfg, logFile)

	runner := newFakeRunner()
	runner.output["hciconfig "+cfg.Adapter] = cfg.Adapter + ":\tUP RUNNING PSCAN ISCAN"
	runner.output["hciconfig "+cfg.Adapter+" name"] = cfg.Adapter + ":\tName: '" + cfg.Name + "'"
	runner.output["hciconfig "+cfg.Adapter+" sspmode"] = cfg.Adapter + ":\tSimple Pairing mode: Disabled"

	deps := Deps{Runner: runner, Systemd: system.Systemd{Runner: runner}}
	orch := &reconcile.Orchestrator{}

	report, err := orch.Run(context.Background(), Plan(cfg, logFile, deps))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.Ok() {
		t.Fatalf("converged host not ok:\n%+v", report.Results)
	}
	for _, res := range report.Results {
		if res.Phase != hostwire.PhaseConverged {
			t.Fatalf("%s = %s, want converged", res.Resource, res.Phase)
		}
	}
	// Unit probes query systemctl; anything else would be a mutation.
	for _, call := range runner.runs {
		line := strings.Join(call, " ")
		if !strings.HasPrefix(line, "systemctl is-active") && !strings.HasPrefix(line, "systemctl is-enabled") {
			t.Fatalf("converged host mutated: %q", line)
		}
	}
}

func TestPlanMissingRadioIsFatal(t *testing.T) {
	cfg := testBridgeConfig(t)
	runner := newFakeRunner()
	// hciconfig exists but reports no such controller, and the reset
	// cannot bring one back.
	runner.outErr["hciconfig "+cfg.Adapter] = errStub("no such device")
	runner.fail["hciconfig "+cfg.Adapter+" up"] = errStub("no such device")

	deps := Deps{Runner: runner, Systemd: system.Systemd{Runner: runner}}
	orch := &reconcile.Orchestrator{}

	report, err := orch.Run(context.Background(), Plan(cfg, "/var/log/hostwire.log", deps))
	if !hostwire.IsFatal(err) {
		t.Fatalf("err = %v, want fatal prerequisite", err)
	}
	if _, found := report.Find("radio-config"); found {
		t.Fatal("steps after the fatal adapter failure still ran")
	}
	if runner.ran("systemctl enable --now " + render.BridgeUnit) {
		t.Fatal("bridge service enabled despite missing radio")
	}
}

func TestPlanStepOrderAndDependencies(t *testing.T) {
	cfg := testBridgeConfig(t)
	steps := Plan(cfg, "/var/log/hostwire.log", Deps{Runner: newFakeRunner()})

	index := map[string]int{}
	for i, s := range steps {
		index[s.Resource] = i
	}
	for _, s := range steps {
		for _, req := range s.Requires {
			at, ok := index[req]
			if !ok {
				t.Fatalf("%s requires unknown step %q", s.Resource, req)
			}
			if at >= index[s.Resource] {
				t.Fatalf("%s requires %s, which is planned later", s.Resource, req)
			}
		}
	}
	if _, ok := index["clock"]; ok {
		t.Fatal("clock step planned with no NTP pool configured")
	}
}

func TestPlanIncludesClockWhenPoolConfigured(t *testing.T) {
	cfg := testBridgeConfig(t)
	cfg.NTPPool = "pool.ntp.org"
	steps := Plan(cfg, "/var/log/hostwire.log", Deps{Runner: newFakeRunner()})

	if steps[0].Resource != "clock" {
		t.Fatalf("first step = %s, want clock", steps[0].Resource)
	}
	if !steps[0].Optional {
		t.Fatal("clock step must be optional")
	}
}

type errStub string

func (e errStub) Error() string { return string(e) }
