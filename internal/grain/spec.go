// Package grain holds the fixed description of a fuel grain and the
// evolving geometry of its port.
package grain

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/grainsim/internal/geom"
)

// ErrInvalidSpec indicates a grain description that cannot be simulated.
var ErrInvalidSpec = errors.New("grain: invalid grain")

// Spec describes a grain and its propellant. It is read-only once built.
type Spec struct {
	Outer        geom.Polygon // outer boundary, drawing units
	Length       float64      // m
	Density      float64      // kg/m³
	A            float64      // regression coefficient
	N            float64      // regression exponent
	Isp          float64      // s
	OxidizerFlow float64      // kg/s
	Scale        float64      // metres per drawing unit
}

// DefaultScale treats drawing units as millimetres.
const DefaultScale = 1e-3

func (s *Spec) Validate() error {
	checks := []struct {
		name string
		v    float64
		ok   bool
	}{
		{"length", s.Length, s.Length > 0},
		{"density", s.Density, s.Density > 0},
		{"a", s.A, s.A > 0},
		{"n", s.N, !math.IsNaN(s.N) && !math.IsInf(s.N, 0)},
		{"isp", s.Isp, s.Isp > 0},
		{"oxidizer flow", s.OxidizerFlow, s.OxidizerFlow >= 0 && !math.IsInf(s.OxidizerFlow, 0)},
		{"scale", s.Scale, s.Scale > 0},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s = %v", ErrInvalidSpec, c.name, c.v)
		}
	}
	if err := s.Outer.Validate(); err != nil {
		return fmt.Errorf("%w: outer boundary: %v", ErrInvalidSpec, err)
	}
	return nil
}

// OuterArea returns the outer boundary area in drawing units².
func (s *Spec) OuterArea() float64 {
	a, _ := s.Outer.EnclosedArea()
	return a
}

// ToArea converts an area in drawing units² to m².
func (s *Spec) ToArea(a float64) float64 { return a * s.Scale * s.Scale }

// ToLength converts a length in drawing units to m.
func (s *Spec) ToLength(l float64) float64 { return l * s.Scale }

// FromLength converts a length in m to drawing units.
func (s *Spec) FromLength(m float64) float64 { return m / s.Scale }

// FuelMass is the mass of fuel occupying the given cross-section area
// (drawing units²) along the whole grain.
func (s *Spec) FuelMass(area float64) float64 {
	return s.ToArea(area) * s.Length * s.Density
}
