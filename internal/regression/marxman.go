// Package regression evaluates empirical fuel regression-rate laws.
package regression

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFlux indicates a port area that cannot carry oxidizer flux.
var ErrInvalidFlux = errors.New("regression: invalid mass flux (port area must be positive)")

// Model maps the oxidizer flow through a port to a surface regression rate.
type Model interface {
	Rate(oxidizerFlow, portArea float64) (float64, error)
}

// Marxman is the classical r = a·G^n correlation. With the port area in m²
// and the flow in kg/s, A must be given so that the rate comes out in m/s.
type Marxman struct {
	A float64
	N float64
}

func NewMarxman(a, n float64) *Marxman {
	return &Marxman{A: a, N: n}
}

// MassFlux returns G = oxidizerFlow / portArea.
func MassFlux(oxidizerFlow, portArea float64) (float64, error) {
	if !(portArea > 0) || math.IsInf(portArea, 0) {
		return 0, fmt.Errorf("port area %g: %w", portArea, ErrInvalidFlux)
	}
	return oxidizerFlow / portArea, nil
}

// Rate returns the regression rate for the given flow and port area. Zero
// flux regresses nothing.
func (m *Marxman) Rate(oxidizerFlow, portArea float64) (float64, error) {
	g, err := MassFlux(oxidizerFlow, portArea)
	if err != nil {
		return 0, err
	}
	if g <= 0 {
		return 0, nil
	}
	return m.A * math.Pow(g, m.N), nil
}
