package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/grainsim/internal/config"
	"github.com/san-kum/grainsim/internal/logging"
	"github.com/san-kum/grainsim/internal/sim"
)

// MonteCarloConfig perturbs design parameters with a normal distribution
// whose standard deviation is the given fraction of the base value.
type MonteCarloConfig struct {
	Trials      int                `yaml:"trials"`
	Seed        uint64             `yaml:"seed"`
	Dispersions map[string]float64 `yaml:"dispersions"`
}

type MonteCarloResult struct {
	Trial     int
	Params    map[string]float64
	Status    sim.Phase
	Snapshots int
	Metrics   map[string]float64
	Err       error
}

// Dispersion summarises one metric over the successful trials.
type Dispersion struct {
	Metric    string
	Trials    int
	Completed int
	BurnedOut int
	Failed    int
	Mean      float64
	StdDev    float64
	Min       float64
	Max       float64
}

func (mc *MonteCarloConfig) Validate() error {
	if mc.Trials < 1 {
		return fmt.Errorf("trials must be at least 1, got %d", mc.Trials)
	}
	if len(mc.Dispersions) == 0 {
		return fmt.Errorf("no dispersions given")
	}
	for name, rel := range mc.Dispersions {
		if rel < 0 || math.IsNaN(rel) {
			return fmt.Errorf("dispersion %s must not be negative, got %v", name, rel)
		}
	}
	return nil
}

// Sample draws the perturbed parameters of every trial. The draws depend
// only on the seed and the base values.
func (mc *MonteCarloConfig) Sample(base *config.Config) ([]map[string]float64, error) {
	names := make([]string, 0, len(mc.Dispersions))
	for name := range mc.Dispersions {
		names = append(names, name)
	}
	sort.Strings(names)

	dists := make([]distuv.Normal, len(names))
	seed := mc.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	for i, name := range names {
		mu, err := base.Param(name)
		if err != nil {
			return nil, err
		}
		dists[i] = distuv.Normal{Mu: mu, Sigma: mc.Dispersions[name] * math.Abs(mu), Src: src}
	}

	out := make([]map[string]float64, mc.Trials)
	for t := range out {
		out[t] = make(map[string]float64, len(names))
		for i, name := range names {
			if dists[i].Sigma == 0 {
				out[t][name] = dists[i].Mu
				continue
			}
			out[t][name] = dists[i].Rand()
		}
	}
	return out, nil
}

// RunMonteCarlo runs every trial concurrently. Trials whose perturbed design
// is invalid are reported with Err.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc *MonteCarloConfig, workers int, log logging.Logger) ([]MonteCarloResult, error) {
	if err := mc.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Noop()
	}
	samples, err := mc.Sample(base)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(samples))
	cfgs := make([]*config.Config, len(samples))
	for i, params := range samples {
		results[i] = MonteCarloResult{Trial: i, Params: params}
		cfg, err := base.WithParams(params)
		if err != nil {
			return nil, err
		}
		cfg.Name = fmt.Sprintf("%s_mc_%d", base.Name, i)
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
	log.Info(ctx, "monte carlo finished", logging.Int("trials", len(results)))
	return results, nil
}

// MonteCarloStats summarises metric over the trials that produced a result
// without error.
func MonteCarloStats(results []MonteCarloResult, metric string) Dispersion {
	d := Dispersion{Metric: metric, Trials: len(results)}
	var values []float64
	for _, r := range results {
		switch {
		case r.Err != nil:
			d.Failed++
			continue
		case r.Status == sim.BurnedOut:
			d.BurnedOut++
		case r.Status == sim.Completed:
			d.Completed++
		}
		if v, ok := r.Metrics[metric]; ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return d
	}
	d.Mean, d.StdDev = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		d.StdDev = 0
	}
	d.Min, d.Max = floats.Min(values), floats.Max(values)
	return d
}
