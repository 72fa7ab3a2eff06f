package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Ring is a closed outline. The closing edge from the last vertex back to
// the first is implicit.
type Ring []r2.Vec

func (r Ring) Clone() Ring {
	c := make(Ring, len(r))
	copy(c, r)
	return c
}

// Distinct returns the number of distinct vertices in the ring.
func (r Ring) Distinct() int {
	seen := make(map[r2.Vec]struct{}, len(r))
	for _, p := range r {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// SignedArea is the shoelace area: positive for counter-clockwise rings.
func (r Ring) SignedArea() float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return sum / 2
}

// Area returns the enclosed area regardless of winding direction.
func (r Ring) Area() (float64, error) {
	if r.Distinct() < 3 {
		return 0, ErrDegenerateGeometry
	}
	return math.Abs(r.SignedArea()), nil
}

func (r Ring) Perimeter() float64 {
	n := len(r)
	if n < 2 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += r2.Norm(r2.Sub(r[(i+1)%n], r[i]))
	}
	return sum
}

func (r Ring) Reverse() Ring {
	c := make(Ring, len(r))
	for i, p := range r {
		c[len(r)-1-i] = p
	}
	return c
}

func (r Ring) IsCCW() bool { return r.SignedArea() > 0 }

// Oriented returns a counter-clockwise copy of the ring.
func (r Ring) Oriented() Ring {
	if r.SignedArea() < 0 {
		return r.Reverse()
	}
	return r.Clone()
}

func (r Ring) Translate(v r2.Vec) Ring {
	c := make(Ring, len(r))
	for i, p := range r {
		c[i] = r2.Add(p, v)
	}
	return c
}

// Centroid returns the area centroid, falling back to the vertex mean for
// rings without area.
func (r Ring) Centroid() r2.Vec {
	a := r.SignedArea()
	n := len(r)
	if a == 0 || n < 3 {
		var c r2.Vec
		for _, p := range r {
			c = r2.Add(c, p)
		}
		if n == 0 {
			return c
		}
		return r2.Scale(1/float64(n), c)
	}
	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := r[i].X*r[j].Y - r[j].X*r[i].Y
		cx += (r[i].X + r[j].X) * cross
		cy += (r[i].Y + r[j].Y) * cross
	}
	return r2.Vec{X: cx / (6 * a), Y: cy / (6 * a)}
}

func (r Ring) Bounds() r2.Box {
	if len(r) == 0 {
		return r2.Box{}
	}
	b := r2.Box{Min: r[0], Max: r[0]}
	for _, p := range r[1:] {
		b = extend(b, p)
	}
	return b
}

// IsFinite reports whether every coordinate is a finite number.
func (r Ring) IsFinite() bool {
	for _, p := range r {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// Winding returns the winding number of the ring around p.
func (r Ring) Winding(p r2.Vec) int {
	w := 0
	n := len(r)
	for i := 0; i < n; i++ {
		w += crossing(p, r2.Vec{X: 1}, r[i], r[(i+1)%n])
	}
	return w
}

// Clean drops repeated and collinear vertices. Vertices closer than tol to
// the segment joining their neighbours are removed.
func (r Ring) Clean(tol float64) Ring {
	pts := make(Ring, 0, len(r))
	for _, p := range r {
		if len(pts) > 0 && r2.Norm(r2.Sub(p, pts[len(pts)-1])) <= tol {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && r2.Norm(r2.Sub(pts[0], pts[len(pts)-1])) <= tol {
		pts = pts[:len(pts)-1]
	}

	for changed := true; changed && len(pts) > 3; {
		changed = false
		for i := 0; i < len(pts) && len(pts) > 3; {
			n := len(pts)
			prev, cur, next := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
			if segmentDistance(cur, prev, next) <= tol {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				if i > 0 {
					i--
				}
				continue
			}
			i++
		}
	}
	return pts
}

func extend(b r2.Box, p r2.Vec) r2.Box {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	return b
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Dot(ab, ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}

// crossing returns the signed crossing of segment ab by the ray leaving
// origin in direction dir: +1 when ab passes the ray counter-clockwise,
// -1 clockwise, 0 otherwise. Endpoints use a half-open rule so a ray
// through a shared vertex is counted once.
func crossing(origin, dir, a, b r2.Vec) int {
	pa, pb := r2.Sub(a, origin), r2.Sub(b, origin)
	ya, yb := r2.Cross(dir, pa), r2.Cross(dir, pb)
	switch {
	case ya <= 0 && yb > 0:
		if rayX(dir, pa, pb, ya, yb) > 0 {
			return 1
		}
	case yb <= 0 && ya > 0:
		if rayX(dir, pa, pb, ya, yb) > 0 {
			return -1
		}
	}
	return 0
}

func rayX(dir, pa, pb r2.Vec, ya, yb float64) float64 {
	xa, xb := r2.Dot(dir, pa), r2.Dot(dir, pb)
	return xa + (xb-xa)*(-ya)/(yb-ya)
}
