package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/regression"
)

var ErrInvalidConfig = errors.New("sim: invalid config")

// Phase is the state of a run.
type Phase int

const (
	Initialized Phase = iota
	Stepping
	Completed
	BurnedOut
	Failed
	Stopped
)

var phaseNames = map[Phase]string{
	Initialized: "initialized",
	Stepping:    "stepping",
	Completed:   "completed",
	BurnedOut:   "burned_out",
	Failed:      "failed",
	Stopped:     "stopped",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether no further steps will be taken.
func (p Phase) Terminal() bool {
	return p >= Completed
}

func ParsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

type Metric interface {
	Name() string
	Observe(s propulsion.State)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s propulsion.State)
}

type Config struct {
	FireTime            float64 // s
	IterationsPerSecond float64
	RecordOutlines      bool
	Buffer              geom.BufferOptions
}

func DefaultConfig() Config {
	return Config{
		FireTime:            5.619,
		IterationsPerSecond: 10,
	}
}

func (c Config) Validate() error {
	if !(c.FireTime > 0) || math.IsInf(c.FireTime, 0) {
		return fmt.Errorf("%w: fire time must be positive, got %v", ErrInvalidConfig, c.FireTime)
	}
	if !(c.IterationsPerSecond > 0) || math.IsInf(c.IterationsPerSecond, 0) {
		return fmt.Errorf("%w: iterations per second must be positive, got %v", ErrInvalidConfig, c.IterationsPerSecond)
	}
	if c.Buffer.ArcStep < 0 {
		return fmt.Errorf("%w: arc step must not be negative, got %v", ErrInvalidConfig, c.Buffer.ArcStep)
	}
	return nil
}

// Dt is the nominal step length.
func (c Config) Dt() float64 { return 1 / c.IterationsPerSecond }

// Steps returns the number of whole steps and the length of the trailing
// partial step, which is zero when the fire time is a whole number of steps.
func (c Config) Steps() (int, float64) {
	dt := c.Dt()
	full := int(math.Floor(c.FireTime*c.IterationsPerSecond + 1e-9))
	rest := c.FireTime - float64(full)*dt
	if rest < 1e-9*dt {
		rest = 0
	}
	return full, rest
}

// Outline is the exposed port at the end of a step, in drawing units.
type Outline struct {
	Step  int
	Time  float64
	Rings geom.Polygon
}

type Result struct {
	Series     []propulsion.State
	Status     Phase
	FailedStep int
	Err        error
	Metrics    map[string]float64
	Outlines   []Outline
}

// Final returns the last snapshot, or false for an empty series.
func (r *Result) Final() (propulsion.State, bool) {
	if len(r.Series) == 0 {
		return propulsion.State{}, false
	}
	return r.Series[len(r.Series)-1], true
}

// StepError records the step at which a run failed.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Kind names the class of failure.
func (e *StepError) Kind() string {
	switch {
	case errors.Is(e.Err, geom.ErrDegenerateGeometry):
		return "degenerate_geometry"
	case errors.Is(e.Err, regression.ErrInvalidFlux):
		return "invalid_flux"
	case errors.Is(e.Err, geom.ErrGeometryOffset):
		return "geometry_offset"
	case errors.Is(e.Err, geom.ErrBurnThrough):
		return "burn_through"
	default:
		return "unknown"
	}
}
