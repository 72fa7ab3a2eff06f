package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Circle approximates a circle by a counter-clockwise regular polygon with
// the given number of vertices, starting on the positive x axis.
func Circle(center r2.Vec, radius float64, segments int) Ring {
	if segments < 3 {
		segments = 3
	}
	r := make(Ring, segments)
	for i := range r {
		a := 2 * math.Pi * float64(i) / float64(segments)
		r[i] = r2.Vec{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	return r
}

// Star returns a counter-clockwise star with the given number of tips
// alternating between the outer and inner radius.
func Star(center r2.Vec, tips int, outer, inner float64) Ring {
	if tips < 2 {
		tips = 2
	}
	r := make(Ring, 2*tips)
	for i := range r {
		a := math.Pi * float64(i) / float64(tips)
		rad := outer
		if i%2 == 1 {
			rad = inner
		}
		r[i] = r2.Vec{X: center.X + rad*math.Cos(a), Y: center.Y + rad*math.Sin(a)}
	}
	return r
}

// Rectangle returns the counter-clockwise axis-aligned rectangle spanning min and max.
func Rectangle(min, max r2.Vec) Ring {
	return Ring{min, {X: max.X, Y: min.Y}, max, {X: min.X, Y: max.Y}}
}
