package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultArcStep is the largest angle spanned by one segment of a round join.
const DefaultArcStep = math.Pi / 40

// BufferOptions controls the join used by Buffer.
type BufferOptions struct {
	// ArcStep is the maximum angle of one arc segment. Zero selects DefaultArcStep.
	ArcStep float64
}

func (o BufferOptions) arcStep() float64 {
	if o.ArcStep <= 0 {
		return DefaultArcStep
	}
	return o.ArcStep
}

// Buffer grows every ring of p outward by d. Fronts that meet are merged
// and fuel islands they enclose are dropped.
func Buffer(p Polygon, d float64, opts BufferOptions) (Polygon, error) {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return nil, fmt.Errorf("offset distance %v: %w", d, ErrGeometryOffset)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if d == 0 {
		return p.Clone(), nil
	}

	tol := p.extent() * 1e-9
	step := opts.arcStep()
	raw := make(Polygon, 0, len(p))
	for _, r := range p {
		r = r.Oriented().Clean(tol)
		if len(r) < 3 {
			continue
		}
		raw = append(raw, rawOffset(r, d, step))
	}

	loops, err := resolve([]Polygon{raw}, func(w []int) bool { return w[0] > 0 })
	if err != nil {
		return nil, err
	}
	out := loopsToPolygon(loops)
	if len(out) == 0 {
		return nil, fmt.Errorf("offset by %g left no rings: %w", d, ErrGeometryOffset)
	}
	for _, r := range out {
		if !r.IsFinite() {
			return nil, fmt.Errorf("offset by %g: non-finite vertex: %w", d, ErrGeometryOffset)
		}
	}
	return out, nil
}

// rawOffset builds the untrimmed offset curve of a counter-clockwise ring.
// The curve may loop over itself at reflex corners; the positive winding
// overlay in Buffer trims those loops away.
func rawOffset(r Ring, d, step float64) Ring {
	n := len(r)
	out := make(Ring, 0, 2*n)
	for i := 0; i < n; i++ {
		prev, cur, next := r[(i+n-1)%n], r[i], r[(i+1)%n]
		in, outv := r2.Sub(cur, prev), r2.Sub(next, cur)
		lin, lout := r2.Norm(in), r2.Norm(outv)
		ui, uo := r2.Scale(1/lin, in), r2.Scale(1/lout, outv)
		ni, no := outward(ui), outward(uo)
		turn := math.Atan2(r2.Cross(ui, uo), r2.Dot(ui, uo))

		mitreOK := math.Abs(turn) <= step && d*math.Tan(math.Abs(turn)/2) <= 0.5*math.Min(lin, lout)
		switch {
		case mitreOK:
			out = append(out, r2.Add(cur, r2.Scale(d/(1+r2.Dot(ni, no)), r2.Add(ni, no))))
		case turn > 0:
			k := int(math.Ceil(turn / step))
			start := math.Atan2(ni.Y, ni.X)
			for j := 0; j <= k; j++ {
				a := start + turn*float64(j)/float64(k)
				out = append(out, r2.Add(cur, r2.Vec{X: d * math.Cos(a), Y: d * math.Sin(a)}))
			}
		default:
			out = append(out, r2.Add(cur, r2.Scale(d, ni)), cur, r2.Add(cur, r2.Scale(d, no)))
		}
	}
	return out
}

// outward is the right-hand normal of a unit direction, which points out of
// a counter-clockwise ring.
func outward(u r2.Vec) r2.Vec {
	return r2.Vec{X: u.Y, Y: -u.X}
}
