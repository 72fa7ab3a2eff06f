package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestIntersectSources(t *testing.T) {
	port := NewPolygon(Rectangle(r2.Vec{X: -1, Y: -1}, r2.Vec{X: 1, Y: 3}))
	outer := NewPolygon(Rectangle(r2.Vec{X: -2, Y: -2}, r2.Vec{X: 2, Y: 2}))

	loops, err := Intersect(port, outer)
	if err != nil {
		t.Fatalf("Intersect() error: %v", err)
	}
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}

	l := loops[0]
	if a := l.Points.SignedArea(); math.Abs(a-6) > 1e-12 {
		t.Errorf("area = %v, want 6", a)
	}

	lengths := map[int]float64{}
	n := len(l.Points)
	for i := range l.Points {
		lengths[l.Sources[i]] += r2.Norm(r2.Sub(l.Points[(i+1)%n], l.Points[i]))
	}
	if math.Abs(lengths[0]-8) > 1e-12 {
		t.Errorf("port edge length = %v, want 8", lengths[0])
	}
	if math.Abs(lengths[1]-2) > 1e-12 {
		t.Errorf("boundary edge length = %v, want 2", lengths[1])
	}
}

func TestIntersectCoincident(t *testing.T) {
	c := NewPolygon(Circle(r2.Vec{}, 5, 64))
	loops, err := Intersect(c, c)
	if err != nil {
		t.Fatalf("Intersect() error: %v", err)
	}
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	for i, s := range loops[0].Sources {
		if s != 1 {
			t.Fatalf("edge %d credited to input %d, want the boundary", i, s)
		}
	}
	want, _ := c.EnclosedArea()
	if a := loops[0].Points.SignedArea(); math.Abs(a-want) > 1e-9 {
		t.Errorf("area = %v, want %v", a, want)
	}
}

func TestIntersectInside(t *testing.T) {
	inner := NewPolygon(Circle(r2.Vec{}, 1, 32))
	outer := NewPolygon(Circle(r2.Vec{}, 5, 32))
	got, err := Clip(inner, outer)
	if err != nil {
		t.Fatalf("Clip() error: %v", err)
	}
	want, _ := inner.EnclosedArea()
	if a := mustArea(t, got); math.Abs(a-want) > 1e-12 {
		t.Errorf("area = %v, want %v", a, want)
	}
}

func TestUnion(t *testing.T) {
	a := NewPolygon(square(1))
	b := NewPolygon(Rectangle(r2.Vec{X: 5, Y: 5}, r2.Vec{X: 6, Y: 6}))
	c := NewPolygon(Rectangle(r2.Vec{X: 0.5, Y: 0.5}, r2.Vec{X: 1.5, Y: 1.5}))

	disjoint, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union() error: %v", err)
	}
	if len(disjoint) != 2 {
		t.Errorf("expected 2 rings, got %d", len(disjoint))
	}

	overlapping, err := Union(a, c)
	if err != nil {
		t.Fatalf("Union() error: %v", err)
	}
	if len(overlapping) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(overlapping))
	}
	if area := mustArea(t, overlapping); math.Abs(area-1.75) > 1e-12 {
		t.Errorf("area = %v, want 1.75", area)
	}
}
