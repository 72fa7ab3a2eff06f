package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/grainsim/internal/propulsion"
)

func constantSeries(n int, dt, thrust, flow float64) []propulsion.State {
	series := make([]propulsion.State, n)
	for i := range series {
		series[i] = propulsion.State{
			Step:           i + 1,
			Time:           float64(i+1) * dt,
			Thrust:         thrust,
			TotalMassFlow:  flow,
			RegressionRate: 0.008,
			OFRatio:        6,
			FuelConsumed:   float64(i+1) * 0.01,
		}
	}
	return series
}

func TestTotalImpulseConstantThrust(t *testing.T) {
	m := NewTotalImpulse()
	for _, s := range constantSeries(10, 0.1, 2000, 1) {
		m.Observe(s)
	}
	if got := m.Value(); math.Abs(got-2000) > 1e-9 {
		t.Errorf("expected impulse 2000, got %f", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestTotalImpulseRamp(t *testing.T) {
	m := NewTotalImpulse()
	for i := 1; i <= 4; i++ {
		m.Observe(propulsion.State{Time: float64(i), Thrust: float64(i) * 100})
	}
	// held at 100 N for the first second, then a linear ramp to 400 N
	want := 100.0 + 0.5*(100+400)*3
	if got := m.Value(); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected impulse %f, got %f", want, got)
	}
}

func TestDeliveredIsp(t *testing.T) {
	m := NewDeliveredIsp()
	isp := 180.0
	flow := 1.5
	for _, s := range constantSeries(20, 0.1, flow*isp*propulsion.G0, flow) {
		m.Observe(s)
	}
	if got := m.Value(); math.Abs(got-isp) > 1e-9 {
		t.Errorf("expected delivered Isp %f, got %f", isp, got)
	}
}

func TestSampledMetrics(t *testing.T) {
	series := constantSeries(5, 0.1, 1000, 1)
	series[2].Thrust = 1500

	got := Summarize(series)
	tests := map[string]float64{
		"peak_thrust":          1500,
		"average_thrust":       1100,
		"thrust_stddev":        math.Sqrt((4*100*100 + 400*400) / 4.0),
		"mean_regression_rate": 0.008,
		"mean_of_ratio":        6,
		"fuel_consumed":        0.05,
		"burn_time":            0.5,
	}
	for name, want := range tests {
		if math.Abs(got[name]-want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", name, want, got[name])
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	for name, v := range Summarize(nil) {
		if v != 0 {
			t.Errorf("%s: expected 0 for empty series, got %f", name, v)
		}
	}
}
