package sim

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/regression"
)

func TestConfigSteps(t *testing.T) {
	tests := []struct {
		fire, ips float64
		full      int
		rest      float64
	}{
		{5.619, 10, 56, 0.019},
		{1.0, 10, 10, 0},
		{0.05, 10, 0, 0.05},
		{2.5, 4, 10, 0},
		{0.3, 10, 3, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v@%v", tt.fire, tt.ips), func(t *testing.T) {
			cfg := Config{FireTime: tt.fire, IterationsPerSecond: tt.ips}
			full, rest := cfg.Steps()
			if full != tt.full {
				t.Errorf("expected %d full steps, got %d", tt.full, full)
			}
			if math.Abs(rest-tt.rest) > 1e-9 {
				t.Errorf("expected partial step %v, got %v", tt.rest, rest)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"zero fire time", Config{FireTime: 0, IterationsPerSecond: 10}, false},
		{"nan fire time", Config{FireTime: math.NaN(), IterationsPerSecond: 10}, false},
		{"zero rate", Config{FireTime: 1, IterationsPerSecond: 0}, false},
		{"infinite rate", Config{FireTime: 1, IterationsPerSecond: math.Inf(1)}, false},
		{"negative arc step", Config{FireTime: 1, IterationsPerSecond: 10, Buffer: geom.BufferOptions{ArcStep: -1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestPhase(t *testing.T) {
	for _, p := range []Phase{Initialized, Stepping, Completed, BurnedOut, Failed, Stopped} {
		got, err := ParsePhase(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePhase(%q) = %v, %v", p.String(), got, err)
		}
	}
	if Stepping.Terminal() || !BurnedOut.Terminal() || !Stopped.Terminal() {
		t.Error("unexpected terminal classification")
	}
	if _, err := ParsePhase("exploded"); err == nil {
		t.Error("expected error for unknown phase")
	}
}

func TestStepError(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{fmt.Errorf("ring: %w", geom.ErrDegenerateGeometry), "degenerate_geometry"},
		{regression.ErrInvalidFlux, "invalid_flux"},
		{geom.ErrGeometryOffset, "geometry_offset"},
		{geom.ErrBurnThrough, "burn_through"},
		{errors.New("other"), "unknown"},
	}
	for _, tt := range tests {
		e := &StepError{Step: 12, Time: 1.2, Err: tt.err}
		if e.Kind() != tt.kind {
			t.Errorf("expected kind %s, got %s", tt.kind, e.Kind())
		}
		if !errors.Is(e, tt.err) {
			t.Errorf("expected %v to unwrap to %v", e, tt.err)
		}
	}

	e := &StepError{Step: 150, Time: 1.5, Err: errors.New("test error")}
	if want := "step 150 (t=1.5000): test error"; e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}
