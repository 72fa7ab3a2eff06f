// Package automation runs scripted studies over a base grain design:
// parameter sweeps and Monte Carlo dispersion of the design inputs.
package automation

import (
	"context"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/grainsim/internal/config"
	"github.com/san-kum/grainsim/internal/experiment"
	"github.com/san-kum/grainsim/internal/logging"
	"github.com/san-kum/grainsim/internal/sim"
)

// Scenario is a study loaded from YAML.
type Scenario struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Preset      string            `yaml:"preset"`
	Config      string            `yaml:"config"`
	Workers     int               `yaml:"workers"`
	Sweeps      []Sweep           `yaml:"sweeps"`
	MonteCarlo  *MonteCarloConfig `yaml:"monte_carlo"`
}

// Sweep varies one parameter over Steps evenly spaced values.
type Sweep struct {
	Param string  `yaml:"param"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Steps int     `yaml:"steps"`
}

type SweepResult struct {
	Param     string
	Value     float64
	Status    sim.Phase
	Snapshots int
	Metrics   map[string]float64
	Err       error
}

// Report collects every study of a scenario in order.
type Report struct {
	Name       string
	Sweeps     [][]SweepResult
	MonteCarlo []MonteCarloResult
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &scenario, nil
}

// Base resolves the design the scenario starts from. A config file takes
// precedence over the preset; neither means the baseline preset.
func (s *Scenario) Base() (*config.Config, error) {
	if s.Config != "" {
		return config.Load(s.Config)
	}
	name := s.Preset
	if name == "" {
		name = "baseline"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return cfg, nil
}

func (s Sweep) Validate() error {
	if s.Param == "" {
		return fmt.Errorf("sweep: param is empty")
	}
	if s.Steps < 1 {
		return fmt.Errorf("sweep %s: steps must be at least 1, got %d", s.Param, s.Steps)
	}
	if s.Steps > 1 && s.Max < s.Min {
		return fmt.Errorf("sweep %s: max %v below min %v", s.Param, s.Max, s.Min)
	}
	return nil
}

func (s Sweep) Values() []float64 {
	if s.Steps == 1 {
		return []float64{s.Min}
	}
	return floats.Span(make([]float64, s.Steps), s.Min, s.Max)
}

// RunScenario runs every sweep and then the Monte Carlo study, if any.
func RunScenario(ctx context.Context, scenario *Scenario, log logging.Logger) (*Report, error) {
	if log == nil {
		log = logging.Noop()
	}
	base, err := scenario.Base()
	if err != nil {
		return nil, err
	}
	report := &Report{Name: scenario.Name}

	for i, sweep := range scenario.Sweeps {
		log.Info(ctx, "sweep started", logging.Int("index", i), logging.String("param", sweep.Param))
		res, err := RunSweep(ctx, base, sweep, scenario.Workers, log)
		if err != nil {
			return report, fmt.Errorf("sweep %d: %w", i+1, err)
		}
		report.Sweeps = append(report.Sweeps, res)
	}

	if scenario.MonteCarlo != nil {
		res, err := RunMonteCarlo(ctx, base, scenario.MonteCarlo, scenario.Workers, log)
		if err != nil {
			return report, fmt.Errorf("monte carlo: %w", err)
		}
		report.MonteCarlo = res
	}
	return report, nil
}

// RunSweep runs one design per sweep value concurrently. Values whose design
// cannot be built are reported with Err and no run.
func RunSweep(ctx context.Context, base *config.Config, sweep Sweep, workers int, log logging.Logger) ([]SweepResult, error) {
	if err := sweep.Validate(); err != nil {
		return nil, err
	}
	if _, err := base.Param(sweep.Param); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}

	values := sweep.Values()
	results := make([]SweepResult, len(values))
	cfgs := make([]*config.Config, len(values))
	for i, v := range values {
		results[i] = SweepResult{Param: sweep.Param, Value: v}
		cfg, err := base.WithParams(map[string]float64{sweep.Param: v})
		if err != nil {
			return nil, err
		}
		cfg.Name = fmt.Sprintf("%s_%s_%d", base.Name, sweep.Param, i)
		cfgs[i] = cfg
	}

	runs, err := runConfigs(ctx, cfgs, workers, log)
	if err != nil {
		return results, err
	}
	for i, r := range runs {
		results[i].Err = r.Err
		if r.Result != nil {
			results[i].Status = r.Result.Status
			results[i].Snapshots = len(r.Result.Series)
			results[i].Metrics = r.Result.Metrics
		}
	}
	return results, nil
}

// runConfigs runs every config through one batch and keeps their order.
// Configs that fail to build get a result with only Err set.
func runConfigs(ctx context.Context, cfgs []*config.Config, workers int, log logging.Logger) ([]sim.JobResult, error) {
	out := make([]sim.JobResult, len(cfgs))
	jobs := make([]sim.Job, 0, len(cfgs))
	index := make([]int, 0, len(cfgs))
	for i, cfg := range cfgs {
		out[i].Name = cfg.Name
		job, err := experiment.BuildJob(cfg, log)
		if err != nil {
			out[i].Err = err
			continue
		}
		jobs = append(jobs, job)
		index = append(index, i)
	}

	if workers < 1 {
		workers = 4
	}
	runs, err := sim.NewBatch(workers, log).Run(ctx, jobs)
	for j, r := range runs {
		out[index[j]] = r
	}
	return out, err
}
