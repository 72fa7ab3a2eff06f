package regression

import (
	"errors"
	"math"
	"testing"
)

func TestMarxmanRate(t *testing.T) {
	m := NewMarxman(0.0004, 0.37)
	area := math.Pi * 0.01 * 0.01

	got, err := m.Rate(1.279, area)
	if err != nil {
		t.Fatalf("Rate() error: %v", err)
	}
	expected := 0.0004 * math.Pow(1.279/area, 0.37)
	if math.Abs(got-expected) > 1e-15 {
		t.Errorf("expected rate %v, got %v", expected, got)
	}
	if got < 0.005 || got > 0.015 {
		t.Errorf("rate %v m/s outside the expected hybrid range", got)
	}
}

func TestMarxmanRateDecreasesWithArea(t *testing.T) {
	m := NewMarxman(0.0004, 0.37)
	prev := math.Inf(1)
	for _, area := range []float64{1e-4, 2e-4, 5e-4, 1e-3, 5e-3} {
		r, err := m.Rate(1.0, area)
		if err != nil {
			t.Fatalf("Rate() error: %v", err)
		}
		if r >= prev {
			t.Errorf("rate %v at area %v is not below %v", r, area, prev)
		}
		prev = r
	}
}

func TestMarxmanZeroFlow(t *testing.T) {
	m := NewMarxman(0.0004, 0.37)
	r, err := m.Rate(0, 1e-3)
	if err != nil {
		t.Fatalf("Rate() error: %v", err)
	}
	if r != 0 {
		t.Errorf("expected zero rate, got %v", r)
	}
}

func TestMarxmanInvalidArea(t *testing.T) {
	m := NewMarxman(0.0004, 0.37)
	tests := []struct {
		name string
		area float64
	}{
		{"zero", 0},
		{"negative", -1e-4},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Rate(1.279, tt.area); !errors.Is(err, ErrInvalidFlux) {
				t.Errorf("expected ErrInvalidFlux, got %v", err)
			}
		})
	}
}
