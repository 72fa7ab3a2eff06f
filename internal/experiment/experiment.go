// Package experiment turns a config into a ready-to-run simulation.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/grainsim/internal/config"
	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/grain"
	"github.com/san-kum/grainsim/internal/logging"
	"github.com/san-kum/grainsim/internal/outline"
	"github.com/san-kum/grainsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	log       logging.Logger
	spec      *grain.Spec
	port      geom.Polygon
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry, log logging.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Experiment{cfg: cfg, registry: registry, log: log}
}

// Setup resolves the outlines and builds the simulator with the given
// metrics.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	outerSrc, err := e.registry.Source(e.cfg.Outer)
	if err != nil {
		return fmt.Errorf("outer: %w", err)
	}
	outer, err := outerSrc.Outline()
	if err != nil {
		return fmt.Errorf("outer: %w", err)
	}

	ports := make(outline.Union, 0, len(e.cfg.Ports))
	for i, pc := range e.cfg.Ports {
		src, err := e.registry.Source(pc)
		if err != nil {
			return fmt.Errorf("ports[%d]: %w", i, err)
		}
		ports = append(ports, src)
	}
	port, err := ports.Outline()
	if err != nil {
		return fmt.Errorf("ports: %w", err)
	}

	g := e.cfg.Grain
	e.spec = &grain.Spec{
		Outer:        outer,
		Length:       g.Length,
		Density:      g.Density,
		A:            g.A,
		N:            g.N,
		Isp:          g.Isp,
		OxidizerFlow: g.OxidizerFlow,
		Scale:        g.Scale,
	}
	if err := e.spec.Validate(); err != nil {
		return err
	}
	e.port = port

	e.simulator = sim.New(e.spec, e.log.With(logging.String("run", e.cfg.Name)))
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		FireTime:            e.cfg.Run.FireTime,
		IterationsPerSecond: e.cfg.Run.IterationsPerSecond,
		RecordOutlines:      e.cfg.Run.RecordOutlines,
		Buffer:              geom.BufferOptions{ArcStep: e.cfg.Run.ArcStep},
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.port, e.SimConfig())
}

// Job describes the experiment as one entry of a batch.
func (e *Experiment) Job() (sim.Job, error) {
	if e.spec == nil {
		return sim.Job{}, fmt.Errorf("experiment not setup")
	}
	return sim.Job{
		Name:    e.cfg.Name,
		Spec:    e.spec,
		Port:    e.port,
		Config:  e.SimConfig(),
		Metrics: e.registry.DefaultMetrics,
	}, nil
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
func (e *Experiment) Spec() *grain.Spec         { return e.spec }
func (e *Experiment) Port() geom.Polygon        { return e.port }
func (e *Experiment) Config() *config.Config    { return e.cfg }

// BuildJob resolves cfg into a batch job with the default metrics.
func BuildJob(cfg *config.Config, log logging.Logger) (sim.Job, error) {
	exp := New(cfg, nil, log)
	if err := exp.Setup(nil); err != nil {
		return sim.Job{}, err
	}
	return exp.Job()
}
