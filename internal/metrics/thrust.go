package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/grainsim/internal/propulsion"
)

// Sampled collects one quantity per snapshot.
type Sampled struct {
	name    string
	pick    func(propulsion.State) float64
	reduce  func([]float64) float64
	samples []float64
}

func (m *Sampled) Name() string { return m.name }

func (m *Sampled) Observe(s propulsion.State) {
	m.samples = append(m.samples, m.pick(s))
}

func (m *Sampled) Value() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	return m.reduce(m.samples)
}

func (m *Sampled) Reset() { m.samples = m.samples[:0] }

func mean(xs []float64) float64 { return stat.Mean(xs, nil) }

func NewPeakThrust() *Sampled {
	return &Sampled{name: "peak_thrust", pick: func(s propulsion.State) float64 { return s.Thrust }, reduce: floats.Max}
}

func NewAverageThrust() *Sampled {
	return &Sampled{name: "average_thrust", pick: func(s propulsion.State) float64 { return s.Thrust }, reduce: mean}
}

func NewMeanRegression() *Sampled {
	return &Sampled{name: "mean_regression_rate", pick: func(s propulsion.State) float64 { return s.RegressionRate }, reduce: mean}
}

func NewMeanOFRatio() *Sampled {
	return &Sampled{name: "mean_of_ratio", pick: func(s propulsion.State) float64 { return s.OFRatio }, reduce: mean}
}

// NewThrustSpread is the standard deviation of thrust, a measure of how
// neutral the burn is.
func NewThrustSpread() *Sampled {
	return &Sampled{name: "thrust_stddev", pick: func(s propulsion.State) float64 { return s.Thrust }, reduce: func(xs []float64) float64 {
		if len(xs) < 2 {
			return 0
		}
		return stat.StdDev(xs, nil)
	}}
}

func NewFuelConsumed() *Sampled {
	return &Sampled{name: "fuel_consumed", pick: func(s propulsion.State) float64 { return s.FuelConsumed }, reduce: last}
}

func NewBurnTime() *Sampled {
	return &Sampled{name: "burn_time", pick: func(s propulsion.State) float64 { return s.Time }, reduce: last}
}

func last(xs []float64) float64 { return xs[len(xs)-1] }
