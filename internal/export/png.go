package export

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/propulsion"
)

// Column selects one quantity of a snapshot for plotting.
type Column struct {
	Name  string
	Label string
	Pick  func(propulsion.State) float64
}

var Columns = map[string]Column{
	"thrust":     {"thrust", "Thrust (N)", func(s propulsion.State) float64 { return s.Thrust }},
	"regression": {"regression", "Regression rate (mm/s)", func(s propulsion.State) float64 { return s.RegressionRate * 1e3 }},
	"flux":       {"flux", "Mass flux (kg/m²/s)", func(s propulsion.State) float64 { return s.MassFlux }},
	"port_area":  {"port_area", "Port area (mm²)", func(s propulsion.State) float64 { return s.PortArea * 1e6 }},
	"of_ratio":   {"of_ratio", "O/F", func(s propulsion.State) float64 { return s.OFRatio }},
	"fuel_mass":  {"fuel_mass", "Remaining fuel (kg)", func(s propulsion.State) float64 { return s.RemainingFuelMass }},
}

// heat runs from yellow at t=0 to dark red at t=1.
func heat(t float64) color.RGBA {
	t = min(max(t, 0), 1)
	return color.RGBA{
		R: uint8(255 - 115*t),
		G: uint8(220 * (1 - t)),
		B: uint8(40 * (1 - t)),
		A: 255,
	}
}

func ringXYs(r geom.Ring) plotter.XYs {
	pts := make(plotter.XYs, 0, len(r)+1)
	for _, p := range r {
		pts = append(pts, plotter.XY{X: p.X, Y: p.Y})
	}
	if len(r) > 0 {
		pts = append(pts, plotter.XY{X: r[0].X, Y: r[0].Y})
	}
	return pts
}

func addPolygon(p *plot.Plot, poly geom.Polygon, c color.Color, width vg.Length) error {
	for _, ring := range poly {
		l, err := plotter.NewLine(ringXYs(ring))
		if err != nil {
			return err
		}
		l.Color = c
		l.Width = width
		p.Add(l)
	}
	return nil
}

// ContoursPNG plots the contours coloured from early to late over the outer
// boundary with equal axes. The format follows the extension of path.
func ContoursPNG(path string, outer geom.Polygon, contours []geom.Polygon, title string) error {
	if len(outer) == 0 {
		return fmt.Errorf("export: empty outer boundary")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "(mm)"
	p.Y.Label.Text = "(mm)"
	p.Add(plotter.NewGrid())

	if err := addPolygon(p, outer, color.Black, vg.Points(1.5)); err != nil {
		return err
	}
	for i, c := range contours {
		t := 0.0
		if len(contours) > 1 {
			t = float64(i) / float64(len(contours)-1)
		}
		if err := addPolygon(p, c, heat(t), vg.Points(0.75)); err != nil {
			return err
		}
	}

	b := outer.Bounds()
	half := max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)/2 + 1
	cx, cy := (b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half

	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// SeriesPNG plots one column of a series against time.
func SeriesPNG(path string, series []propulsion.State, col Column, title string) error {
	if len(series) < 2 {
		return fmt.Errorf("export: need at least 2 snapshots, got %d", len(series))
	}

	pts := make(plotter.XYs, len(series))
	for i, s := range series {
		pts[i] = plotter.XY{X: s.Time, Y: col.Pick(s)}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = col.Label
	p.Add(plotter.NewGrid())

	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.Color = heat(0.6)
	l.Width = vg.Points(1.5)
	p.Add(l)
	p.Y.Min = min(0, p.Y.Min)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
