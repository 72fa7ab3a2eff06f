package experiment

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/grainsim/internal/config"
	"github.com/san-kum/grainsim/internal/metrics"
	"github.com/san-kum/grainsim/internal/outline"
	"github.com/san-kum/grainsim/internal/sim"
)

// Registry maps shape names in a config to outline sources.
type Registry struct {
	shapes map[string]func(config.ShapeConfig) (outline.Source, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		shapes: make(map[string]func(config.ShapeConfig) (outline.Source, error)),
	}

	r.shapes["circle"] = func(c config.ShapeConfig) (outline.Source, error) {
		segments := c.Segments
		if segments == 0 {
			segments = config.DefaultSegments
		}
		return outline.Circle{Center: center(c), Radius: c.Radius, Segments: segments}, nil
	}
	r.shapes["star"] = func(c config.ShapeConfig) (outline.Source, error) {
		if c.Tips < 2 {
			return nil, fmt.Errorf("star needs at least 2 tips, got %d", c.Tips)
		}
		return outline.Star{Center: center(c), Tips: c.Tips, Outer: c.Radius, Inner: c.InnerRadius}, nil
	}
	r.shapes["points"] = func(c config.ShapeConfig) (outline.Source, error) {
		if c.File == "" {
			return nil, fmt.Errorf("points shape needs a file")
		}
		return outline.PointsFile{Path: c.File}, nil
	}

	return r
}

func center(c config.ShapeConfig) r2.Vec {
	return r2.Vec{X: c.Center[0], Y: c.Center[1]}
}

func (r *Registry) Register(name string, fn func(config.ShapeConfig) (outline.Source, error)) {
	r.shapes[name] = fn
}

// Source builds the outline source for c, recentring it when asked.
func (r *Registry) Source(c config.ShapeConfig) (outline.Source, error) {
	fn, ok := r.shapes[c.Shape]
	if !ok {
		return nil, fmt.Errorf("unknown shape: %s", c.Shape)
	}
	src, err := fn(c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Shape, err)
	}
	if c.Recenter {
		src = outline.Centered{Source: src, Center: center(c)}
	}
	return src, nil
}

func (r *Registry) ListShapes() []string {
	names := make([]string, 0, len(r.shapes))
	for name := range r.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Standard()
}
