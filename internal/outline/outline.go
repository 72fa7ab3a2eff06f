// Package outline produces port and boundary polygons in drawing units.
package outline

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/grainsim/internal/geom"
)

// Source is anything that can supply a closed, scaled outline.
type Source interface {
	Outline() (geom.Polygon, error)
}

type Circle struct {
	Center   r2.Vec
	Radius   float64
	Segments int
}

func (c Circle) Outline() (geom.Polygon, error) {
	if !(c.Radius > 0) {
		return nil, fmt.Errorf("circle radius %v: %w", c.Radius, geom.ErrDegenerateGeometry)
	}
	return geom.NewPolygon(geom.Circle(c.Center, c.Radius, c.Segments)), nil
}

type Star struct {
	Center r2.Vec
	Tips   int
	Outer  float64
	Inner  float64
}

func (s Star) Outline() (geom.Polygon, error) {
	if !(s.Inner > 0) || s.Outer <= s.Inner {
		return nil, fmt.Errorf("star radii %v/%v: %w", s.Outer, s.Inner, geom.ErrDegenerateGeometry)
	}
	return geom.NewPolygon(geom.Star(s.Center, s.Tips, s.Outer, s.Inner)), nil
}

// Union combines several sources into one multi-ring outline.
type Union []Source

func (u Union) Outline() (geom.Polygon, error) {
	var out geom.Polygon
	for i, s := range u {
		p, err := s.Outline()
		if err != nil {
			return nil, fmt.Errorf("outline %d: %w", i, err)
		}
		out = append(out, p...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no outlines: %w", geom.ErrDegenerateGeometry)
	}
	return out, nil
}

// Centered moves an outline so that its area centroid sits on Center.
type Centered struct {
	Source Source
	Center r2.Vec
}

func (c Centered) Outline() (geom.Polygon, error) {
	p, err := c.Source.Outline()
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p.Translate(r2.Sub(c.Center, p.Centroid())), nil
}

// PointRow is one vertex of a points file.
type PointRow struct {
	Ring int     `csv:"ring"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
}

// PointsFile reads vertices from a CSV file with a ring,x,y header.
// Rows of one ring must be contiguous and in boundary order.
type PointsFile struct {
	Path string
}

func (f PointsFile) Outline() (geom.Polygon, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	p, err := ReadPoints(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return p, nil
}

func ReadPoints(r io.Reader) (geom.Polygon, error) {
	var rows []PointRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse points: %w", err)
	}

	var rings []geom.Ring
	seen := make(map[int]bool)
	current := -1
	for _, row := range rows {
		if row.Ring != current {
			if seen[row.Ring] {
				return nil, fmt.Errorf("ring %d is not contiguous: %w", row.Ring, geom.ErrDegenerateGeometry)
			}
			seen[row.Ring] = true
			current = row.Ring
			rings = append(rings, nil)
		}
		rings[len(rings)-1] = append(rings[len(rings)-1], r2.Vec{X: row.X, Y: row.Y})
	}

	p := geom.NewPolygon(rings...)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
