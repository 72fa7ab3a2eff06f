package geom

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func mustArea(t *testing.T, p Polygon) float64 {
	t.Helper()
	a, err := p.EnclosedArea()
	if err != nil {
		t.Fatalf("EnclosedArea() error: %v", err)
	}
	return a
}

func TestBufferSquare(t *testing.T) {
	p := NewPolygon(square(10))
	got, err := Buffer(p, 1, BufferOptions{})
	if err != nil {
		t.Fatalf("Buffer() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(got))
	}

	expected := 100 + 40 + math.Pi
	if a := mustArea(t, got); math.Abs(a-expected) > 0.01 {
		t.Errorf("area = %v, want ~%v", a, expected)
	}
}

func TestBufferCircleKeepsVertexCount(t *testing.T) {
	const n = 128
	p := NewPolygon(Circle(r2.Vec{}, 10, n))
	got, err := Buffer(p, 2, BufferOptions{})
	if err != nil {
		t.Fatalf("Buffer() error: %v", err)
	}
	if len(got) != 1 || len(got[0]) != n {
		t.Fatalf("expected one ring of %d vertices, got %d rings, %d vertices", n, len(got), got.Vertices())
	}

	apothem := 10*math.Cos(math.Pi/n) + 2
	expected := n * apothem * apothem * math.Tan(math.Pi/n)
	if a := mustArea(t, got); math.Abs(a-expected)/expected > 1e-9 {
		t.Errorf("area = %v, want %v", a, expected)
	}
}

func TestBufferReflexCorner(t *testing.T) {
	l := NewPolygon(Ring{
		{X: -2, Y: -2}, {X: 2, Y: -2}, {X: 2, Y: 0},
		{X: 0, Y: 0}, {X: 0, Y: 2}, {X: -2, Y: 2},
	})
	d := 0.5
	got, err := Buffer(l, d, BufferOptions{})
	if err != nil {
		t.Fatalf("Buffer() error: %v", err)
	}

	// Edge strips, five quarter-circle corners, minus the square where the
	// strips overlap at the reflex corner.
	expected := 12 + 16*d + 5*math.Pi/4*d*d - d*d
	if a := mustArea(t, got); math.Abs(a-expected) > 0.01 {
		t.Errorf("area = %v, want ~%v", a, expected)
	}
}

func TestBufferMergesFronts(t *testing.T) {
	p := NewPolygon(
		Circle(r2.Vec{X: -1.5}, 1, 64),
		Circle(r2.Vec{X: 1.5}, 1, 64),
	)
	got, err := Buffer(p, 1, BufferOptions{})
	if err != nil {
		t.Fatalf("Buffer() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected merged ring, got %d rings", len(got))
	}
	a := mustArea(t, got)
	if a >= 2*math.Pi*4 || a <= math.Pi*4 {
		t.Errorf("merged area %v outside (%v, %v)", a, math.Pi*4, 2*math.Pi*4)
	}
}

func TestBufferDropsEnclosedIsland(t *testing.T) {
	frame := NewPolygon(Ring{
		{X: 10, Y: 5.2}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0},
		{X: 10, Y: 0}, {X: 10, Y: 4.8}, {X: 8, Y: 4.8}, {X: 8, Y: 2},
		{X: 2, Y: 2}, {X: 2, Y: 8}, {X: 8, Y: 8}, {X: 8, Y: 5.2},
	})
	got, err := Buffer(frame, 0.5, BufferOptions{})
	if err != nil {
		t.Fatalf("Buffer() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(got))
	}
	expected := 100 + 40*0.5 + math.Pi*0.25
	if a := mustArea(t, got); math.Abs(a-expected) > 0.01 {
		t.Errorf("area = %v, want ~%v", a, expected)
	}
}

func TestBufferZeroDistance(t *testing.T) {
	p := NewPolygon(square(3))
	got, err := Buffer(p, 0, BufferOptions{})
	if err != nil {
		t.Fatalf("Buffer() error: %v", err)
	}
	if mustArea(t, got) != 9 {
		t.Errorf("zero offset changed the polygon: %v", got)
	}
}

func TestBufferInvalid(t *testing.T) {
	p := NewPolygon(square(3))
	for _, d := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := Buffer(p, d, BufferOptions{}); !errors.Is(err, ErrGeometryOffset) {
			t.Errorf("Buffer(%v): expected ErrGeometryOffset, got %v", d, err)
		}
	}

	_, err := Buffer(Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}}}, 1, BufferOptions{})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestBufferArcStep(t *testing.T) {
	p := NewPolygon(square(10))
	coarse, err := Buffer(p, 1, BufferOptions{ArcStep: math.Pi / 4})
	if err != nil {
		t.Fatalf("Buffer() error: %v", err)
	}
	fine, err := Buffer(p, 1, BufferOptions{})
	if err != nil {
		t.Fatalf("Buffer() error: %v", err)
	}
	if coarse.Vertices() >= fine.Vertices() {
		t.Errorf("coarse join has %d vertices, fine has %d", coarse.Vertices(), fine.Vertices())
	}
	if mustArea(t, coarse) >= mustArea(t, fine) {
		t.Error("coarser inscribed arcs should cover less area")
	}
}
