// Package export renders recorded burns as SVG.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/grainsim/internal/geom"
)

// Style holds the colours used by the renderers.
type Style struct {
	Background string
	Boundary   string
	Contour    string
	Front      string
}

var DefaultStyle = Style{
	Background: "#0a0a0a",
	Boundary:   "#884422",
	Contour:    "#ffaa00",
	Front:      "#ff4400",
}

// frame maps drawing coordinates into a width x height picture with y up
// and a 5% margin.
type frame struct {
	minX, maxY, scale float64
	offX, offY        float64
}

func newFrame(p geom.Polygon, width, height int) frame {
	b := p.Bounds()
	spanX, spanY := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	w, h := float64(width)*0.9, float64(height)*0.9
	scale := w / spanX
	if s := h / spanY; s < scale {
		scale = s
	}
	return frame{
		minX:  b.Min.X,
		maxY:  b.Max.Y,
		scale: scale,
		offX:  (float64(width) - spanX*scale) / 2,
		offY:  (float64(height) - spanY*scale) / 2,
	}
}

func (f frame) point(x, y float64) (float64, float64) {
	return f.offX + (x-f.minX)*f.scale, f.offY + (f.maxY-y)*f.scale
}

func (f frame) path(p geom.Polygon) string {
	var sb strings.Builder
	for _, ring := range p {
		for i, pt := range ring {
			x, y := f.point(pt.X, pt.Y)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("M%.2f,%.2f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.2f,%.2f", x, y))
			}
		}
		sb.WriteString(" Z ")
	}
	return strings.TrimSpace(sb.String())
}

func header(sb *strings.Builder, width, height int, bg string) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, bg))
}

// ContoursSVG draws the outer boundary, every contour and the last contour
// as the final burning front.
func ContoursSVG(w io.Writer, outer geom.Polygon, contours []geom.Polygon, width, height int, style Style) error {
	if len(outer) == 0 {
		return fmt.Errorf("export: empty outer boundary")
	}
	f := newFrame(outer, width, height)

	var sb strings.Builder
	header(&sb, width, height, style.Background)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="2" d="%s"/>
`, style.Boundary, f.path(outer)))

	sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="0.75">
`, style.Contour))
	for i, c := range contours {
		if i == len(contours)-1 {
			break
		}
		opacity := 0.25 + 0.75*float64(i+1)/float64(len(contours))
		sb.WriteString(fmt.Sprintf(`<path stroke-opacity="%.2f" d="%s"/>
`, opacity, f.path(c)))
	}
	sb.WriteString("</g>\n")

	if n := len(contours); n > 0 {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, style.Front, f.path(contours[n-1])))
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// CurveSVG plots ys against xs as one polyline, for thrust or regression
// curves.
func CurveSVG(w io.Writer, xs, ys []float64, width, height int, stroke string) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("export: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return fmt.Errorf("export: need at least 2 points, got %d", len(xs))
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	header(&sb, width, height, DefaultStyle.Background)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))

	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	_, err := io.WriteString(w, sb.String())
	return err
}
