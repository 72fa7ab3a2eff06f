package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// burnThroughEpsilon is the fraction of the outer area below which the
// remaining fuel is treated as exhausted.
const burnThroughEpsilon = 1e-9

// Polygon is a set of disjoint counter-clockwise rings. A point belongs to
// the polygon when it lies inside any ring.
type Polygon []Ring

// NewPolygon orients every ring counter-clockwise.
func NewPolygon(rings ...Ring) Polygon {
	p := make(Polygon, len(rings))
	for i, r := range rings {
		p[i] = r.Oriented()
	}
	return p
}

func (p Polygon) Clone() Polygon {
	c := make(Polygon, len(p))
	for i, r := range p {
		c[i] = r.Clone()
	}
	return c
}

// Validate checks that the polygon has at least one ring and that every ring
// has three distinct, finite vertices.
func (p Polygon) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("empty polygon: %w", ErrDegenerateGeometry)
	}
	for i, r := range p {
		if r.Distinct() < 3 {
			return fmt.Errorf("ring %d has %d distinct vertices: %w", i, r.Distinct(), ErrDegenerateGeometry)
		}
		if !r.IsFinite() {
			return fmt.Errorf("ring %d has non-finite coordinates: %w", i, ErrDegenerateGeometry)
		}
	}
	return nil
}

// EnclosedArea sums the absolute shoelace area of every ring.
func (p Polygon) EnclosedArea() (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	total := 0.0
	for _, r := range p {
		a, err := r.Area()
		if err != nil {
			return 0, err
		}
		total += a
	}
	return total, nil
}

func (p Polygon) Perimeter() float64 {
	total := 0.0
	for _, r := range p {
		total += r.Perimeter()
	}
	return total
}

// FuelArea is the area of outer not covered by p. It fails with
// ErrBurnThrough once p covers the whole outer boundary.
func (p Polygon) FuelArea(outer Polygon) (float64, error) {
	outerArea, err := outer.EnclosedArea()
	if err != nil {
		return 0, fmt.Errorf("outer boundary: %w", err)
	}
	portArea, err := p.EnclosedArea()
	if err != nil {
		return 0, err
	}
	return FuelArea(outerArea, portArea)
}

// FuelArea is the fuel left between a port and an outer boundary of the
// given areas. It fails with ErrBurnThrough once the fuel is a negligible
// fraction of the outer area.
func FuelArea(outerArea, portArea float64) (float64, error) {
	fuel := outerArea - portArea
	if fuel <= burnThroughEpsilon*outerArea {
		return 0, ErrBurnThrough
	}
	return fuel, nil
}

func (p Polygon) Bounds() r2.Box {
	var b r2.Box
	first := true
	for _, r := range p {
		for _, pt := range r {
			if first {
				b = r2.Box{Min: pt, Max: pt}
				first = false
				continue
			}
			b = extend(b, pt)
		}
	}
	return b
}

// Vertices returns the total vertex count.
func (p Polygon) Vertices() int {
	n := 0
	for _, r := range p {
		n += len(r)
	}
	return n
}

// Contains reports whether pt lies inside any ring.
func (p Polygon) Contains(pt r2.Vec) bool {
	for _, r := range p {
		if r.Winding(pt) != 0 {
			return true
		}
	}
	return false
}

func (p Polygon) Translate(v r2.Vec) Polygon {
	c := make(Polygon, len(p))
	for i, r := range p {
		c[i] = r.Translate(v)
	}
	return c
}

// Centroid is the area-weighted centroid of all rings.
func (p Polygon) Centroid() r2.Vec {
	var c r2.Vec
	total := 0.0
	for _, r := range p {
		a := r.SignedArea()
		c = r2.Add(c, r2.Scale(a, r.Centroid()))
		total += a
	}
	if total == 0 {
		if len(p) > 0 {
			return p[0].Centroid()
		}
		return r2.Vec{}
	}
	return r2.Scale(1/total, c)
}

func (p Polygon) extent() float64 {
	b := p.Bounds()
	return r2.Norm(r2.Sub(b.Max, b.Min))
}
