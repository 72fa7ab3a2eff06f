// Package observability exports simulation progress as Prometheus metrics.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/sim"
)

// RunCollector implements sim.Observer and records per-run outcomes. It is
// safe for concurrent use by batch workers.
type RunCollector struct {
	gatherer prometheus.Gatherer

	Steps          prometheus.Counter
	Thrust         prometheus.Gauge
	RegressionRate prometheus.Histogram
	Runs           *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	RunFigures     *prometheus.GaugeVec
}

// NewRunCollector registers the collector's metrics with reg, or with the
// default registry when reg is nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &RunCollector{
		gatherer: gatherer,
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grainsim_steps_total",
			Help: "Total number of simulation steps taken.",
		}),
		Thrust: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grainsim_thrust_newtons",
			Help: "Thrust of the most recent snapshot.",
		}),
		RegressionRate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grainsim_regression_rate_mm_per_second",
			Help:    "Distribution of regression rates over all steps.",
			Buckets: []float64{0.5, 1, 2, 4, 6, 8, 10, 15, 20, 30},
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grainsim_runs_total",
			Help: "Finished runs by terminal status.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grainsim_run_duration_seconds",
			Help:    "Wall-clock time per run.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		RunFigures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "grainsim_run_metric",
			Help: "Figures of merit of finished runs.",
		}, []string{"run", "metric"}),
	}

	for _, col := range []prometheus.Collector{c.Steps, c.Thrust, c.RegressionRate, c.Runs, c.RunDuration, c.RunFigures} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return c, nil
}

func (c *RunCollector) OnStep(s propulsion.State) {
	c.Steps.Inc()
	c.Thrust.Set(s.Thrust)
	c.RegressionRate.Observe(s.RegressionRate * 1e3)
}

// RecordRun counts a finished run and exports its metrics under name.
func (c *RunCollector) RecordRun(name string, res *sim.Result, elapsed time.Duration) {
	if res == nil {
		return
	}
	c.Runs.WithLabelValues(res.Status.String()).Inc()
	c.RunDuration.Observe(elapsed.Seconds())
	for metric, v := range res.Metrics {
		c.RunFigures.WithLabelValues(name, metric).Set(v)
	}
}

// WriteTextfile writes every gathered metric in the node_exporter textfile
// format.
func (c *RunCollector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.gatherer)
}

func (c *RunCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
