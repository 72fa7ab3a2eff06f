package observability

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/sim"
)

func TestOnStepRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	c.OnStep(propulsion.State{Thrust: 2500, RegressionRate: 0.0086})
	c.OnStep(propulsion.State{Thrust: 2450, RegressionRate: 0.0081})

	if got := testutil.ToFloat64(c.Steps); got != 2 {
		t.Errorf("grainsim_steps_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Thrust); got != 2450 {
		t.Errorf("grainsim_thrust_newtons = %v, want 2450", got)
	}
	if count := histogramSampleCount(t, reg, "grainsim_regression_rate_mm_per_second"); count != 2 {
		t.Errorf("regression histogram sample_count = %d, want 2", count)
	}
}

func TestRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	c.RecordRun("baseline", &sim.Result{Status: sim.Completed, Metrics: map[string]float64{"total_impulse": 14000}}, 120*time.Millisecond)
	c.RecordRun("burnout", &sim.Result{Status: sim.BurnedOut}, 5*time.Millisecond)
	c.RecordRun("nil", nil, 0)

	if got := testutil.ToFloat64(c.Runs.WithLabelValues("completed")); got != 1 {
		t.Errorf("completed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.Runs.WithLabelValues("burned_out")); got != 1 {
		t.Errorf("burned_out runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.RunFigures.WithLabelValues("baseline", "total_impulse")); got != 14000 {
		t.Errorf("total_impulse = %v, want 14000", got)
	}
	if count := histogramSampleCount(t, reg, "grainsim_run_duration_seconds"); count != 2 {
		t.Errorf("run duration sample_count = %d, want 2", count)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRunCollector(reg); err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}
	if _, err := NewRunCollector(reg); err == nil {
		t.Error("expected error registering twice")
	}
}

func TestWriteTextfileAndHandler(t *testing.T) {
	c, err := NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}
	c.OnStep(propulsion.State{Thrust: 100})

	path := filepath.Join(t.TempDir(), "grainsim.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "grainsim_steps_total 1") {
		t.Errorf("textfile missing step counter:\n%s", data)
	}

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "grainsim_thrust_newtons 100") {
		t.Errorf("unexpected /metrics response %d:\n%s", rr.Code, rr.Body.String())
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string) uint64 {
	t.Helper()

	families, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total uint64
		for _, m := range mf.Metric {
			total += sampleCount(m)
		}
		return total
	}
	return 0
}

func sampleCount(m *dto.Metric) uint64 {
	if h := m.GetHistogram(); h != nil {
		return h.GetSampleCount()
	}
	return 0
}
