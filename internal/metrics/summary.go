// Package metrics reduces a thrust series to scalar figures of merit.
package metrics

import (
	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/sim"
)

// Standard returns a fresh set of the metrics reported for every run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewTotalImpulse(),
		NewDeliveredIsp(),
		NewPeakThrust(),
		NewAverageThrust(),
		NewThrustSpread(),
		NewMeanRegression(),
		NewMeanOFRatio(),
		NewFuelConsumed(),
		NewBurnTime(),
	}
}

// Summarize evaluates the standard metrics over a recorded series.
func Summarize(series []propulsion.State) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range Standard() {
		for _, s := range series {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
