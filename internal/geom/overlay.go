package geom

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// relTolerance scales the bounding-box diagonal into the distance below
// which two features are treated as touching.
const relTolerance = 1e-12

// Loop is a ring produced by an overlay together with the input each edge
// came from: Sources[i] labels the edge from Points[i] to Points[i+1].
type Loop struct {
	Points  Ring
	Sources []int
}

// fillRule decides whether a point with the given per-input winding
// numbers is inside the result.
type fillRule func(w []int) bool

type cut struct {
	t float64
	p r2.Vec
}

type edge struct {
	a, b r2.Vec
	src  int
	cuts []cut
}

type piece struct {
	a, b  r2.Vec
	src   int
	group int
}

// overlay resolves the boundary of the region selected by fill over the
// arrangement of every edge in inputs. Each edge is split at every
// intersection, each resulting piece is classified by the winding numbers
// just left and right of it, and the pieces that separate inside from
// outside are chained into loops with the inside on their left.
func overlay(inputs []Polygon, fill fillRule) ([]Loop, error) {
	edges, box := collectEdges(inputs)
	if len(edges) == 0 {
		return nil, nil
	}
	ext := r2.Norm(r2.Sub(box.Max, box.Min))
	if ext == 0 || math.IsNaN(ext) || math.IsInf(ext, 0) {
		return nil, fmt.Errorf("overlay extent %v: %w", ext, ErrGeometryOffset)
	}
	tol := ext * relTolerance

	splitEdges(edges, tol)

	buf := getPieces()
	defer putPieces(buf)
	pieces, groups := buildPieces(edges, buf.items[:0])
	buf.items = pieces

	boundary := classify(pieces, groups, len(inputs), fill)
	return chain(boundary, tol*1e3)
}

func collectEdges(inputs []Polygon) ([]edge, r2.Box) {
	var edges []edge
	var box r2.Box
	first := true
	for src, poly := range inputs {
		for _, ring := range poly {
			n := len(ring)
			for i := 0; i < n; i++ {
				a, b := ring[i], ring[(i+1)%n]
				if first {
					box = r2.Box{Min: a, Max: a}
					first = false
				}
				box = extend(box, a)
				if a == b {
					continue
				}
				edges = append(edges, edge{a: a, b: b, src: src})
			}
		}
	}
	return edges, box
}

// splitEdges records every pairwise intersection as a cut on both edges.
// Candidate pairs come from a sweep over the x extent of each edge.
func splitEdges(edges []edge, tol float64) {
	order := make([]int, len(edges))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return math.Min(edges[order[i]].a.X, edges[order[i]].b.X) < math.Min(edges[order[j]].a.X, edges[order[j]].b.X)
	})

	for ii, i := range order {
		e := &edges[i]
		maxX := math.Max(e.a.X, e.b.X) + tol
		minY, maxY := math.Min(e.a.Y, e.b.Y)-tol, math.Max(e.a.Y, e.b.Y)+tol
		for _, j := range order[ii+1:] {
			f := &edges[j]
			if math.Min(f.a.X, f.b.X) > maxX {
				break
			}
			if math.Max(f.a.Y, f.b.Y) < minY || math.Min(f.a.Y, f.b.Y) > maxY {
				continue
			}
			intersect(e, f, tol)
		}
	}
}

func intersect(e, f *edge, tol float64) {
	d1, d2 := r2.Sub(e.b, e.a), r2.Sub(f.b, f.a)
	l1, l2 := r2.Norm(d1), r2.Norm(d2)
	ac := r2.Sub(f.a, e.a)
	denom := r2.Cross(d1, d2)
	te, tf := tol/l1, tol/l2

	if math.Abs(denom) <= 1e-12*l1*l2 {
		if math.Abs(r2.Cross(ac, d1)) > tol*l1 {
			return
		}
		// Collinear: split each edge where the other one ends.
		for _, p := range [2]r2.Vec{f.a, f.b} {
			if t := r2.Dot(r2.Sub(p, e.a), d1) / (l1 * l1); t > te && t < 1-te {
				e.cuts = append(e.cuts, cut{t: t, p: p})
			}
		}
		for _, p := range [2]r2.Vec{e.a, e.b} {
			if u := r2.Dot(r2.Sub(p, f.a), d2) / (l2 * l2); u > tf && u < 1-tf {
				f.cuts = append(f.cuts, cut{t: u, p: p})
			}
		}
		return
	}

	t := r2.Cross(ac, d2) / denom
	u := r2.Cross(ac, d1) / denom
	if t < -te || t > 1+te || u < -tf || u > 1+tf {
		return
	}
	eEnd := t <= te || t >= 1-te
	fEnd := u <= tf || u >= 1-tf
	switch {
	case eEnd && fEnd:
	case eEnd:
		p := e.a
		if t >= 1-te {
			p = e.b
		}
		f.cuts = append(f.cuts, cut{t: u, p: p})
	case fEnd:
		p := f.a
		if u >= 1-tf {
			p = f.b
		}
		e.cuts = append(e.cuts, cut{t: t, p: p})
	default:
		p := r2.Add(e.a, r2.Scale(t, d1))
		e.cuts = append(e.cuts, cut{t: t, p: p})
		f.cuts = append(f.cuts, cut{t: u, p: p})
	}
}

// buildPieces splits edges at their cuts and groups coincident pieces so
// that overlapping edges are classified once.
func buildPieces(edges []edge, pieces []piece) ([]piece, [][]int) {
	type key [2]r2.Vec
	index := make(map[key]int)
	var groups [][]int

	add := func(a, b r2.Vec, src int) {
		if a == b {
			return
		}
		k := key{a, b}
		if less(b, a) {
			k = key{b, a}
		}
		g, ok := index[k]
		if !ok {
			g = len(groups)
			index[k] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], len(pieces))
		pieces = append(pieces, piece{a: a, b: b, src: src, group: g})
	}

	for _, e := range edges {
		if len(e.cuts) == 0 {
			add(e.a, e.b, e.src)
			continue
		}
		sort.Slice(e.cuts, func(i, j int) bool { return e.cuts[i].t < e.cuts[j].t })
		prev := e.a
		for _, c := range e.cuts {
			add(prev, c.p, e.src)
			prev = c.p
		}
		add(prev, e.b, e.src)
	}
	return pieces, groups
}

func less(a, b r2.Vec) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// classify keeps one piece per group whose two sides disagree under fill,
// oriented so the inside lies on its left. Coincident pieces are credited
// to the highest input index among them.
func classify(pieces []piece, groups [][]int, inputs int, fill fillRule) []piece {
	var out []piece
	left := make([]int, inputs)
	right := make([]int, inputs)

	for g, members := range groups {
		ref := pieces[members[0]]
		dir := r2.Unit(r2.Sub(ref.b, ref.a))
		normal := r2.Vec{X: -dir.Y, Y: dir.X}
		mid := r2.Scale(0.5, r2.Add(ref.a, ref.b))

		for i := range left {
			left[i] = 0
		}
		for _, pc := range pieces {
			if pc.group == g {
				continue
			}
			left[pc.src] += crossing(mid, normal, pc.a, pc.b)
		}
		copy(right, left)
		src := ref.src
		for _, m := range members {
			pc := pieces[m]
			if pc.a == ref.a {
				right[pc.src]--
			} else {
				right[pc.src]++
			}
			if pc.src > src {
				src = pc.src
			}
		}

		inLeft, inRight := fill(left), fill(right)
		switch {
		case inLeft && !inRight:
			out = append(out, piece{a: ref.a, b: ref.b, src: src})
		case inRight && !inLeft:
			out = append(out, piece{a: ref.b, b: ref.a, src: src})
		}
	}
	return out
}

// chain links boundary pieces end to start into closed loops. At a vertex
// with several unused exits the sharpest right turn is taken, which keeps
// loops that touch at a point separate.
func chain(pieces []piece, snap float64) ([]Loop, error) {
	starts := make(map[r2.Vec][]int, len(pieces))
	for i, pc := range pieces {
		starts[pc.a] = append(starts[pc.a], i)
	}
	used := make([]bool, len(pieces))

	var loops []Loop
	for i := range pieces {
		if used[i] {
			continue
		}
		origin := pieces[i].a
		var loop Loop
		cur := i
		for {
			used[cur] = true
			loop.Points = append(loop.Points, pieces[cur].a)
			loop.Sources = append(loop.Sources, pieces[cur].src)
			end := pieces[cur].b
			if end == origin {
				break
			}
			next := nextPiece(pieces, starts[end], used, r2.Sub(end, pieces[cur].a))
			if next < 0 {
				if r2.Norm(r2.Sub(end, origin)) <= snap {
					break
				}
				return nil, fmt.Errorf("open boundary at (%g, %g): %w", end.X, end.Y, ErrGeometryOffset)
			}
			cur = next
		}
		if len(loop.Points) >= 3 {
			loops = append(loops, loop)
		}
	}
	return loops, nil
}

func nextPiece(pieces []piece, candidates []int, used []bool, in r2.Vec) int {
	best := -1
	bestTurn := math.Inf(1)
	for _, c := range candidates {
		if used[c] {
			continue
		}
		out := r2.Sub(pieces[c].b, pieces[c].a)
		turn := math.Atan2(r2.Cross(in, out), r2.Dot(in, out))
		if turn < bestTurn {
			best, bestTurn = c, turn
		}
	}
	return best
}

// cleanLoop removes repeated vertices and collinear vertices between edges
// of the same source.
func cleanLoop(l Loop, tol float64) Loop {
	pts := append(Ring(nil), l.Points...)
	src := append([]int(nil), l.Sources...)
	remove := func(i int) {
		// Edge i-1 absorbs edge i.
		pts = append(pts[:i], pts[i+1:]...)
		src = append(src[:i], src[i+1:]...)
	}
	for changed := true; changed && len(pts) > 3; {
		changed = false
		for i := 0; i < len(pts) && len(pts) > 3; {
			n := len(pts)
			p := (i + n - 1) % n
			prev, cur, next := pts[p], pts[i], pts[(i+1)%n]
			sameSource := src[p] == src[i]
			if r2.Norm(r2.Sub(cur, prev)) <= tol || (sameSource && segmentDistance(cur, prev, next) <= tol) {
				if !sameSource {
					src[p] = src[i]
				}
				remove(i)
				changed = true
				if i > 0 {
					i--
				}
				continue
			}
			i++
		}
	}
	return Loop{Points: pts, Sources: src}
}

func resolve(inputs []Polygon, fill fillRule) ([]Loop, error) {
	loops, err := overlay(inputs, fill)
	if err != nil {
		return nil, err
	}
	var ext float64
	for _, p := range inputs {
		ext = math.Max(ext, p.extent())
	}
	tol := ext * 1e-9
	minArea := ext * ext * relTolerance

	out := loops[:0]
	for _, l := range loops {
		l = cleanLoop(l, tol)
		if len(l.Points) < 3 || l.Points.SignedArea() <= minArea {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func loopsToPolygon(loops []Loop) Polygon {
	p := make(Polygon, 0, len(loops))
	for _, l := range loops {
		p = append(p, l.Points)
	}
	return p
}

// Union merges all rings of the given polygons.
func Union(polys ...Polygon) (Polygon, error) {
	loops, err := resolve(polys, func(w []int) bool {
		sum := 0
		for _, v := range w {
			sum += v
		}
		return sum > 0
	})
	if err != nil {
		return nil, err
	}
	return loopsToPolygon(loops), nil
}

// Intersect clips p to clip. Sources of the returned loops are 0 for edges
// of p and 1 for edges of clip; where both coincide the edge belongs to clip.
func Intersect(p, clip Polygon) ([]Loop, error) {
	return resolve([]Polygon{p, clip}, func(w []int) bool {
		return w[0] > 0 && w[1] > 0
	})
}

// Clip is Intersect without edge provenance.
func Clip(p, clip Polygon) (Polygon, error) {
	loops, err := Intersect(p, clip)
	if err != nil {
		return nil, err
	}
	return loopsToPolygon(loops), nil
}
