package viz

import (
	"math"
	"strings"

	"github.com/san-kum/grainsim/internal/geom"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolygon traces every ring of p through v.
func (c *Canvas) DrawPolygon(p geom.Polygon, v Viewport) {
	for _, ring := range p {
		n := len(ring)
		for i := range ring {
			x0, y0 := v.Project(ring[i].X, ring[i].Y)
			x1, y1 := v.Project(ring[(i+1)%n].X, ring[(i+1)%n].Y)
			c.DrawLine(x0, y0, x1, y1)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps drawing units onto canvas sub-pixels with y pointing up.
type Viewport struct {
	MinX, MaxY float64
	Scale      float64
}

// Fit returns the largest viewport showing p on a canvas of w x h cells.
func Fit(p geom.Polygon, w, h int) Viewport {
	b := p.Bounds()
	spanX := b.Max.X - b.Min.X
	spanY := b.Max.Y - b.Min.Y
	px, py := float64(w*2-1), float64(h*4-1)
	scale := math.Min(px/math.Max(spanX, 1e-12), py/math.Max(spanY, 1e-12))

	// centre the shorter axis
	minX := b.Min.X - (px/scale-spanX)/2
	maxY := b.Max.Y + (py/scale-spanY)/2
	return Viewport{MinX: minX, MaxY: maxY, Scale: scale}
}

func (v Viewport) Project(x, y float64) (int, int) {
	return int(math.Round((x - v.MinX) * v.Scale)), int(math.Round((v.MaxY - y) * v.Scale))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
