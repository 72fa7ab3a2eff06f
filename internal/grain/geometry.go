package grain

import (
	"fmt"

	"github.com/san-kum/grainsim/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Edge sources reported by geom.Intersect.
const (
	sourcePort = 0
	sourceWall = 1
)

// Geometry is the port cross-section at one instant. Port is the burning
// front; the exposed port is the part of it inside the outer boundary.
// Edges of the exposed port that lie on the boundary are case wall and do
// not burn.
type Geometry struct {
	Port    geom.Polygon
	Exposed []geom.Loop

	area          float64
	perimeter     float64
	burnPerimeter float64
	outerArea     float64
}

// NewGeometry merges the port rings and measures them against outer.
func NewGeometry(port, outer geom.Polygon) (*Geometry, error) {
	if err := port.Validate(); err != nil {
		return nil, err
	}
	merged, err := geom.Union(port)
	if err != nil {
		return nil, fmt.Errorf("merge port rings: %w", err)
	}
	if len(merged) == 0 {
		return nil, fmt.Errorf("port has no area: %w", geom.ErrDegenerateGeometry)
	}
	return measure(merged, outer)
}

func measure(port, outer geom.Polygon) (*Geometry, error) {
	outerArea, err := outer.EnclosedArea()
	if err != nil {
		return nil, fmt.Errorf("outer boundary: %w", err)
	}
	exposed, err := geom.Intersect(port, outer)
	if err != nil {
		return nil, err
	}

	g := &Geometry{Port: port, Exposed: exposed, outerArea: outerArea}
	for _, l := range exposed {
		g.area += l.Points.SignedArea()
		n := len(l.Points)
		for i := range l.Points {
			length := r2.Norm(r2.Sub(l.Points[(i+1)%n], l.Points[i]))
			g.perimeter += length
			if l.Sources[i] == sourcePort {
				g.burnPerimeter += length
			}
		}
	}
	return g, nil
}

// EnclosedArea is the exposed port area in drawing units².
func (g *Geometry) EnclosedArea() float64 { return g.area }

// Perimeter is the full length of the exposed port outline.
func (g *Geometry) Perimeter() float64 { return g.perimeter }

// BurnPerimeter is the length of exposed outline still bounded by fuel.
func (g *Geometry) BurnPerimeter() float64 { return g.burnPerimeter }

// FuelArea is the remaining fuel cross-section in drawing units².
func (g *Geometry) FuelArea() (float64, error) {
	return geom.FuelArea(g.outerArea, g.area)
}

// HydraulicDiameter is 4A/P over the burning perimeter, in drawing units.
func (g *Geometry) HydraulicDiameter() float64 {
	if g.burnPerimeter == 0 {
		return 0
	}
	return 4 * g.area / g.burnPerimeter
}

// Outline returns the exposed port as a polygon.
func (g *Geometry) Outline() geom.Polygon {
	p := make(geom.Polygon, len(g.Exposed))
	for i, l := range g.Exposed {
		p[i] = l.Points
	}
	return p
}
