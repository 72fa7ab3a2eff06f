// Package optim searches design parameters for the best run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/grainsim/internal/config"
	"github.com/san-kum/grainsim/internal/experiment"
	"github.com/san-kum/grainsim/internal/logging"
	"github.com/san-kum/grainsim/internal/sim"
)

var ErrNoFeasible = errors.New("optim: no feasible design")

// GridSearch evaluates every combination of the parameter ranges. Runs that
// fail or end in a phase other than Completed or BurnedOut are skipped.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	Maximize bool
	Workers  int
	Log      logging.Logger
}

type Candidate struct {
	Params map[string]float64
	Status sim.Phase
	Value  float64
	Err    error
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, Workers: 4}
}

// Size is the number of designs the search will run.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs the grid around base and returns the best parameters, the
// metric value they reached and every evaluated candidate in grid order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, []Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for _, name := range g.paramNames {
		if _, err := base.Param(name); err != nil {
			return nil, 0, nil, err
		}
	}
	log := g.Log
	if log == nil {
		log = logging.Noop()
	}

	var points []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &points)

	candidates := make([]Candidate, len(points))
	jobs := make([]sim.Job, 0, len(points))
	index := make([]int, 0, len(points))
	for i, p := range points {
		candidates[i] = Candidate{Params: p}
		cfg, err := base.WithParams(p)
		if err != nil {
			return nil, 0, nil, err
		}
		cfg.Name = fmt.Sprintf("%s_grid_%d", base.Name, i)
		job, err := experiment.BuildJob(cfg, log)
		if err != nil {
			candidates[i].Err = err
			continue
		}
		jobs = append(jobs, job)
		index = append(index, i)
	}

	runs, err := sim.NewBatch(g.Workers, log).Run(ctx, jobs)
	if err != nil {
		return nil, 0, candidates, err
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64
	for j, r := range runs {
		c := &candidates[index[j]]
		c.Err = r.Err
		if r.Result == nil {
			continue
		}
		c.Status = r.Result.Status
		c.Value = r.Result.Metrics[metricName]
		if c.Err != nil || (c.Status != sim.Completed && c.Status != sim.BurnedOut) {
			continue
		}
		if _, ok := r.Result.Metrics[metricName]; !ok {
			return nil, 0, candidates, fmt.Errorf("optim: unknown metric %q", metricName)
		}
		if g.better(c.Value, best) {
			best = c.Value
			bestParams = c.Params
		}
	}
	if bestParams == nil {
		return nil, 0, candidates, ErrNoFeasible
	}
	return bestParams, best, candidates, nil
}

func (g *GridSearch) better(v, best float64) bool {
	if g.Maximize {
		return v > best
	}
	return v < best
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, out)
	}
}
