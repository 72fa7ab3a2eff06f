package grain

import (
	"fmt"

	"github.com/san-kum/grainsim/internal/geom"
)

// Eroder advances the port by a regression distance.
type Eroder struct {
	spec *Spec
	opts geom.BufferOptions
}

func NewEroder(spec *Spec, opts geom.BufferOptions) *Eroder {
	return &Eroder{spec: spec, opts: opts}
}

// Erode grows the port by distance metres. The returned flag is set when
// the grown port covers at least the outer boundary area; the port is then
// clipped to the boundary and the step is the last one.
func (e *Eroder) Erode(g *Geometry, distance float64) (*Geometry, bool, error) {
	if distance == 0 {
		return g, false, nil
	}
	grown, err := geom.Buffer(g.Port, e.spec.FromLength(distance), e.opts)
	if err != nil {
		return nil, false, err
	}
	area, err := grown.EnclosedArea()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", geom.ErrGeometryOffset, err)
	}

	terminal := area >= e.spec.OuterArea()
	if terminal {
		grown, err = geom.Clip(grown, e.spec.Outer)
		if err != nil {
			return nil, false, err
		}
		if len(grown) == 0 {
			return nil, false, fmt.Errorf("clipped port is empty: %w", geom.ErrGeometryOffset)
		}
	}

	next, err := measure(grown, e.spec.Outer)
	if err != nil {
		return nil, false, err
	}
	return next, terminal, nil
}
