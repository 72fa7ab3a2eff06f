package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/grainsim/internal/config"
	"github.com/san-kum/grainsim/internal/sim"
)

func shortBase(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.GetPreset("baseline")
	cfg.Run.FireTime = 0.5
	cfg.Ports[0].Segments = 48
	cfg.Outer.Segments = 48
	return cfg
}

func TestSweepValues(t *testing.T) {
	got := Sweep{Param: "isp", Min: 1, Max: 2, Steps: 3}.Values()
	want := []float64{1, 1.5, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got := (Sweep{Param: "isp", Min: 7, Max: 9, Steps: 1}).Values(); len(got) != 1 || got[0] != 7 {
		t.Errorf("single step = %v", got)
	}
}

func TestSweepValidate(t *testing.T) {
	tests := []struct {
		name  string
		sweep Sweep
	}{
		{"no param", Sweep{Steps: 2}},
		{"no steps", Sweep{Param: "isp"}},
		{"reversed", Sweep{Param: "isp", Min: 2, Max: 1, Steps: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sweep.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunSweepOxidizerFlow(t *testing.T) {
	base := shortBase(t)
	res, err := RunSweep(context.Background(), base, Sweep{Param: "oxidizer_flow", Min: 0, Max: 1.2, Steps: 3}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 3 {
		t.Fatalf("got %d results", len(res))
	}
	for i, r := range res {
		if r.Err != nil {
			t.Fatalf("result %d: %v", i, r.Err)
		}
		if r.Status != sim.Completed || r.Snapshots != 5 {
			t.Errorf("result %d: %s with %d snapshots", i, r.Status, r.Snapshots)
		}
	}
	if res[0].Metrics["total_impulse"] != 0 {
		t.Errorf("zero flow impulse = %v", res[0].Metrics["total_impulse"])
	}
	if !(res[1].Metrics["total_impulse"] < res[2].Metrics["total_impulse"]) {
		t.Error("impulse should grow with oxidizer flow")
	}
	if base.Grain.OxidizerFlow != config.DefaultOxidizerFlow {
		t.Error("base config modified")
	}
}

func TestRunSweepInvalidValue(t *testing.T) {
	res, err := RunSweep(context.Background(), shortBase(t), Sweep{Param: "isp", Min: -100, Max: 180, Steps: 2}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res[0].Err, config.ErrInvalid) {
		t.Errorf("expected invalid config for negative isp, got %v", res[0].Err)
	}
	if res[1].Err != nil || res[1].Status != sim.Completed {
		t.Errorf("second value: %s, %v", res[1].Status, res[1].Err)
	}
}

func TestRunSweepUnknownParam(t *testing.T) {
	if _, err := RunSweep(context.Background(), shortBase(t), Sweep{Param: "mass", Steps: 1}, 1, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestSampleDeterministic(t *testing.T) {
	base := shortBase(t)
	mc := &MonteCarloConfig{Trials: 5, Seed: 42, Dispersions: map[string]float64{"oxidizer_flow": 0.1, "a": 0}}
	a, err := mc.Sample(base)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := mc.Sample(base)
	spread := false
	for i := range a {
		if a[i]["oxidizer_flow"] != b[i]["oxidizer_flow"] {
			t.Fatalf("trial %d differs between samples", i)
		}
		if a[i]["a"] != config.DefaultA {
			t.Errorf("zero dispersion moved a to %v", a[i]["a"])
		}
		if a[i]["oxidizer_flow"] != a[0]["oxidizer_flow"] {
			spread = true
		}
	}
	if !spread {
		t.Error("expected distinct oxidizer flows")
	}

	bad := &MonteCarloConfig{Trials: 1, Seed: 1, Dispersions: map[string]float64{"mass": 0.1}}
	if _, err := bad.Sample(base); err == nil {
		t.Error("expected unknown parameter error")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	mc := &MonteCarloConfig{Trials: 4, Seed: 7, Dispersions: map[string]float64{"oxidizer_flow": 0.05}}
	res, err := RunMonteCarlo(context.Background(), shortBase(t), mc, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 4 {
		t.Fatalf("got %d trials", len(res))
	}
	d := MonteCarloStats(res, "total_impulse")
	if d.Trials != 4 || d.Completed != 4 || d.Failed != 0 {
		t.Errorf("dispersion = %+v", d)
	}
	if !(d.Min <= d.Mean && d.Mean <= d.Max) || d.Mean <= 0 {
		t.Errorf("mean %v outside [%v, %v]", d.Mean, d.Min, d.Max)
	}
}

func TestMonteCarloValidate(t *testing.T) {
	for _, mc := range []*MonteCarloConfig{
		{Trials: 0, Dispersions: map[string]float64{"a": 0.1}},
		{Trials: 2},
		{Trials: 2, Dispersions: map[string]float64{"a": -0.1}},
	} {
		if err := mc.Validate(); err == nil {
			t.Errorf("expected error for %+v", mc)
		}
	}
}

func TestMonteCarloStats(t *testing.T) {
	res := []MonteCarloResult{
		{Status: sim.Completed, Metrics: map[string]float64{"x": 1}},
		{Status: sim.Completed, Metrics: map[string]float64{"x": 3}},
		{Status: sim.BurnedOut, Metrics: map[string]float64{"x": 5}},
		{Status: sim.Failed, Err: errors.New("boom")},
	}
	d := MonteCarloStats(res, "x")
	if d.Completed != 2 || d.BurnedOut != 1 || d.Failed != 1 {
		t.Errorf("counts = %+v", d)
	}
	if d.Mean != 3 || d.StdDev != 2 || d.Min != 1 || d.Max != 5 {
		t.Errorf("stats = %+v", d)
	}

	one := MonteCarloStats(res[:1], "x")
	if one.StdDev != 0 || one.Mean != 1 {
		t.Errorf("single trial = %+v", one)
	}
}

func TestRunScenario(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "design.yaml")
	cfg := shortBase(t)
	cfg.Name = "study"
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatal(err)
	}

	yml := `name: study
config: ` + cfgPath + `
workers: 2
sweeps:
  - param: port_radius
    min: 8
    max: 12
    steps: 2
monte_carlo:
  trials: 2
  seed: 3
  dispersions:
    a: 0.02
`
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	report, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Sweeps) != 1 || len(report.Sweeps[0]) != 2 {
		t.Fatalf("sweeps = %+v", report.Sweeps)
	}
	if report.Sweeps[0][1].Value != 12 {
		t.Errorf("second value = %v", report.Sweeps[0][1].Value)
	}
	if len(report.MonteCarlo) != 2 {
		t.Errorf("monte carlo trials = %d", len(report.MonteCarlo))
	}
}

func TestScenarioBase(t *testing.T) {
	sc := &Scenario{}
	cfg, err := sc.Base()
	if err != nil || cfg.Name != "baseline" {
		t.Fatalf("default base = %v, %v", cfg, err)
	}
	sc.Preset = "nope"
	if _, err := sc.Base(); err == nil {
		t.Error("expected unknown preset error")
	}
}
