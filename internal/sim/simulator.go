package sim

import (
	"context"
	"errors"

	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/grain"
	"github.com/san-kum/grainsim/internal/logging"
	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/regression"
)

type Simulator struct {
	spec      *grain.Spec
	model     regression.Model
	log       logging.Logger
	metrics   []Metric
	observers []Observer
}

// New returns a simulator for spec using the Marxman correlation built from
// the grain's coefficients. A nil logger discards output.
func New(spec *grain.Spec, log logging.Logger) *Simulator {
	if log == nil {
		log = logging.Noop()
	}
	return &Simulator{
		spec:      spec,
		model:     regression.NewMarxman(spec.A, spec.N),
		log:       log,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) SetModel(m regression.Model) { s.model = m }
func (s *Simulator) AddMetric(m Metric)          { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)      { s.observers = append(s.observers, o) }

func (s *Simulator) Spec() *grain.Spec { return s.spec }

// Start validates the inputs and measures the initial port. Failures of the
// initial geometry do not produce an error here; the returned stepper is
// already in its terminal phase.
func (s *Simulator) Start(port geom.Polygon, cfg Config) (*Stepper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.spec.Validate(); err != nil {
		return nil, err
	}

	full, rest := cfg.Steps()
	st := &Stepper{
		sim:    s,
		cfg:    cfg,
		eroder: grain.NewEroder(s.spec, cfg.Buffer),
		dt:     cfg.Dt(),
		full:   full,
		rest:   rest,
		phase:  Initialized,
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	geo, err := grain.NewGeometry(port, s.spec.Outer)
	if err != nil {
		st.fail(err)
		return st, nil
	}
	st.geo = geo

	fuel, err := geo.FuelArea()
	if errors.Is(err, geom.ErrBurnThrough) {
		st.phase = BurnedOut
		return st, nil
	}
	st.remaining = s.spec.FuelMass(fuel)
	return st, nil
}

// Run steps until the run ends or ctx is cancelled. A failed run returns
// the partial result together with its *StepError.
func (s *Simulator) Run(ctx context.Context, port geom.Polygon, cfg Config) (*Result, error) {
	return s.RunWithCallback(ctx, port, cfg, nil)
}

// RunWithCallback calls fn after every snapshot; returning false stops the
// run with phase Stopped.
func (s *Simulator) RunWithCallback(ctx context.Context, port geom.Polygon, cfg Config, fn func(propulsion.State, *grain.Geometry) bool) (*Result, error) {
	st, err := s.Start(port, cfg)
	if err != nil {
		return nil, err
	}

	log := s.log.With(logging.Float("fire_time", cfg.FireTime), logging.Float("ips", cfg.IterationsPerSecond))
	log.Info(ctx, "run started", logging.Int("steps", st.Total()))

	var runErr error
	for !st.Phase().Terminal() {
		select {
		case <-ctx.Done():
			st.Stop()
			runErr = ctx.Err()
			continue
		default:
		}

		state, ok := st.Next()
		if !ok {
			break
		}
		log.Debug(ctx, "step",
			logging.Int("step", state.Step),
			logging.Float("time", state.Time),
			logging.Float("regression_rate", state.RegressionRate),
			logging.Float("thrust", state.Thrust),
		)
		if fn != nil && !fn(state, st.Geometry()) && !st.Phase().Terminal() {
			st.Stop()
		}
	}

	res := st.Result()
	if res.Err != nil {
		runErr = res.Err
		log.Error(ctx, "run failed", logging.Int("step", res.FailedStep), logging.Err(res.Err))
	} else {
		log.Info(ctx, "run finished",
			logging.String("status", res.Status.String()),
			logging.Int("snapshots", len(res.Series)),
		)
	}
	return res, runErr
}

// Stepper advances one run a step at a time.
type Stepper struct {
	sim    *Simulator
	cfg    Config
	eroder *grain.Eroder
	geo    *grain.Geometry

	dt   float64
	full int
	rest float64

	step      int
	consumed  float64
	remaining float64

	phase      Phase
	err        error
	failedStep int
	series     []propulsion.State
	outlines   []Outline
}

func (st *Stepper) Phase() Phase { return st.phase }

// Geometry is the current port, nil when the initial port was invalid.
func (st *Stepper) Geometry() *grain.Geometry { return st.geo }

func (st *Stepper) Err() error { return st.err }

// Total is the number of steps a run that does not burn out will take.
func (st *Stepper) Total() int {
	if st.rest > 0 {
		return st.full + 1
	}
	return st.full
}

// Stop ends the run early. It has no effect on a finished run.
func (st *Stepper) Stop() {
	if !st.phase.Terminal() {
		st.phase = Stopped
	}
}

// Next takes one step and returns its snapshot. It returns false once the
// run has ended or when the step failed.
func (st *Stepper) Next() (propulsion.State, bool) {
	if st.phase.Terminal() {
		return propulsion.State{}, false
	}
	st.phase = Stepping

	k := st.step + 1
	dt, now := st.dt, float64(k)*st.dt
	if k > st.full {
		dt, now = st.rest, st.cfg.FireTime
	}

	spec := st.sim.spec
	portArea := spec.ToArea(st.geo.EnclosedArea())
	flux, err := regression.MassFlux(spec.OxidizerFlow, portArea)
	if err != nil {
		st.failAt(k, now, err)
		return propulsion.State{}, false
	}
	rate, err := st.sim.model.Rate(spec.OxidizerFlow, portArea)
	if err != nil {
		st.failAt(k, now, err)
		return propulsion.State{}, false
	}

	next, terminal, err := st.eroder.Erode(st.geo, rate*dt)
	if err != nil {
		st.failAt(k, now, err)
		return propulsion.State{}, false
	}

	fuel, err := next.FuelArea()
	burnedOut := terminal
	if errors.Is(err, geom.ErrBurnThrough) {
		burnedOut = true
	} else if err != nil {
		st.failAt(k, now, err)
		return propulsion.State{}, false
	}
	if burnedOut {
		fuel = 0
	}

	state := propulsion.Derive(propulsion.Inputs{
		Step:              k,
		Time:              now,
		Dt:                dt,
		RegressionRate:    rate,
		MassFlux:          flux,
		BurnPerimeter:     spec.ToLength(next.BurnPerimeter()),
		PortArea:          spec.ToArea(next.EnclosedArea()),
		FuelArea:          spec.ToArea(fuel),
		HydraulicDiameter: spec.ToLength(next.HydraulicDiameter()),
		OxidizerFlow:      spec.OxidizerFlow,
		Length:            spec.Length,
		Density:           spec.Density,
		Isp:               spec.Isp,
		FuelConsumed:      st.consumed,
		RemainingFuelMass: st.remaining,
	})
	if state.RemainingFuelMass <= 0 {
		burnedOut = true
	}
	if burnedOut {
		state.FuelArea = 0
		state.FuelConsumed = st.consumed + st.remaining
		state.RemainingFuelMass = 0
	}

	st.step = k
	st.geo = next
	st.consumed = state.FuelConsumed
	st.remaining = state.RemainingFuelMass
	st.record(state)

	switch {
	case burnedOut:
		st.phase = BurnedOut
	case k >= st.Total():
		st.phase = Completed
	}
	return state, true
}

func (st *Stepper) record(state propulsion.State) {
	st.series = append(st.series, state)
	if st.cfg.RecordOutlines {
		st.outlines = append(st.outlines, Outline{Step: state.Step, Time: state.Time, Rings: st.geo.Outline()})
	}
	for _, m := range st.sim.metrics {
		m.Observe(state)
	}
	for _, o := range st.sim.observers {
		o.OnStep(state)
	}
}

func (st *Stepper) fail(err error) {
	st.failAt(0, 0, err)
}

func (st *Stepper) failAt(step int, t float64, err error) {
	st.phase = Failed
	st.failedStep = step
	st.err = &StepError{Step: step, Time: t, Err: err}
}

// Result collects the series recorded so far.
func (st *Stepper) Result() *Result {
	res := &Result{
		Series:     st.series,
		Status:     st.phase,
		FailedStep: st.failedStep,
		Err:        st.err,
		Metrics:    make(map[string]float64, len(st.sim.metrics)),
		Outlines:   st.outlines,
	}
	if res.Series == nil {
		res.Series = []propulsion.State{}
	}
	for _, m := range st.sim.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}
