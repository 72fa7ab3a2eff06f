package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/grain"
	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/sim"
)

const (
	width          = 60
	height         = 28
	contourEvery   = 10
	minTickSeconds = 1.0 / 60
)

type TickMsg time.Time

// Frame is one recorded snapshot with the port outline it produced.
type Frame struct {
	State   propulsion.State
	Outline geom.Polygon
}

type Model struct {
	name    string
	spec    *grain.Spec
	port    geom.Polygon
	cfg     sim.Config
	sim     *sim.Simulator
	stepper *sim.Stepper
	initial geom.Polygon

	frames   []Frame
	playHead int
	running  bool
	showHelp bool
	err      error

	canvas        *Canvas
	view          Viewport
	width, height int

	recording bool
	gifFrames []*image.Paletted
}

func NewModel(name string, spec *grain.Spec, port geom.Polygon, cfg sim.Config) (Model, error) {
	m := Model{
		name:     name,
		spec:     spec,
		port:     port,
		cfg:      cfg,
		sim:      sim.New(spec, nil),
		width:    width,
		height:   height,
		canvas:   NewCanvas(width, height),
		view:     Fit(spec.Outer, width, height),
		running:  true,
		playHead: -1,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) tick() tea.Cmd {
	d := m.cfg.Dt()
	if d < minTickSeconds {
		d = minTickSeconds
	}
	return tea.Tick(time.Duration(d*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		case "g":
			if m.recording {
				m.err = m.saveGIF(m.name + ".gif")
				m.recording = false
				m.gifFrames = nil
			} else {
				m.recording = true
				m.gifFrames = make([]*image.Paletted, 0)
			}
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.frames) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the burn once; it does nothing after the run has ended.
func (m *Model) step() {
	state, ok := m.stepper.Next()
	if !ok {
		return
	}
	m.frames = append(m.frames, Frame{State: state, Outline: m.stepper.Geometry().Outline()})
}

func (m *Model) reset() error {
	st, err := m.sim.Start(m.port, m.cfg)
	if err != nil {
		return err
	}
	m.stepper = st
	m.frames = nil
	m.playHead = -1
	m.err = nil
	m.initial = nil
	if g := st.Geometry(); g != nil {
		m.initial = g.Outline()
	}
	return nil
}

// scrub moves the replay position through recorded frames.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.frames) == 0 {
			return
		}
		m.playHead = len(m.frames) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.frames) {
		m.playHead = -1
	}
}

// current is the frame on screen, or false before the first step.
func (m Model) current() (Frame, int, bool) {
	if len(m.frames) == 0 {
		return Frame{}, -1, false
	}
	idx := len(m.frames) - 1
	if m.playHead >= 0 && m.playHead < len(m.frames) {
		idx = m.playHead
	}
	return m.frames[idx], idx, true
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.DrawPolygon(m.spec.Outer, m.view)
	m.canvas.DrawPolygon(m.initial, m.view)

	frame, idx, ok := m.current()
	if !ok {
		return
	}
	for i := contourEvery - 1; i < idx; i += contourEvery {
		m.canvas.DrawPolygon(m.frames[i].Outline, m.view)
	}
	m.canvas.DrawPolygon(frame.Outline, m.view)
}

func (m Model) status() (string, lipgloss.Color) {
	phase := m.stepper.Phase()
	switch {
	case m.playHead >= 0:
		return fmt.Sprintf("REPLAY %d/%d", m.playHead+1, len(m.frames)), CurrentTheme.Accent
	case !m.running && !phase.Terminal():
		return "PAUSED", CurrentTheme.Warning
	case phase == sim.Failed:
		return "FAILED", CurrentTheme.Error
	case phase == sim.BurnedOut:
		return "BURNED OUT", CurrentTheme.Warning
	case phase == sim.Completed:
		return "COMPLETED", CurrentTheme.Success
	}
	return "BURNING", CurrentTheme.Success
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Foreground(CurrentTheme.Primary).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	label, c := m.status()
	s.WriteString(statusStyle(c).Render(label) + "\n\n")

	frame, idx, ok := m.current()
	thrust := make([]float64, 0, idx+1)
	rates := make([]float64, 0, idx+1)
	for i := 0; i <= idx; i++ {
		thrust = append(thrust, m.frames[i].State.Thrust)
		rates = append(rates, m.frames[i].State.RegressionRate)
	}
	if len(thrust) > 1 {
		chart := asciigraph.Plot(thrust, asciigraph.Height(6), asciigraph.Width(34), asciigraph.Caption("Thrust (N)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(labelStyle.Render("r(t)") + Sparkline(rates, 30) + "\n\n")
	}

	if ok {
		st := frame.State
		rows := []struct{ label, value string }{
			{"Time", fmt.Sprintf("%.3f s", st.Time)},
			{"Thrust", fmt.Sprintf("%.1f N", st.Thrust)},
			{"Regression", fmt.Sprintf("%.3f mm/s", st.RegressionRate*1e3)},
			{"Mass flux", fmt.Sprintf("%.1f kg/m²s", st.MassFlux)},
			{"Port area", fmt.Sprintf("%.1f mm²", st.PortArea*1e6)},
			{"Fuel left", fmt.Sprintf("%.3f kg", st.RemainingFuelMass)},
			{"O/F", fmt.Sprintf("%.2f", st.OFRatio)},
		}
		for _, r := range rows {
			s.WriteString(labelStyle.Render(r.label) + valueStyle.Render(r.value) + "\n")
		}
		s.WriteString("\n" + ProgressBar(st.Time/m.cfg.FireTime, 30) + "\n")
	}
	if err := m.stepper.Err(); err != nil {
		s.WriteString("\n" + statusStyle(CurrentTheme.Error).Render(err.Error()) + "\n")
	} else if m.err != nil {
		s.WriteString("\n" + statusStyle(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	if m.recording {
		s.WriteString(statusStyle(CurrentTheme.Error).Render("● REC") + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Restart Q:Quit\nT:Theme  G:Record  ?:Help\n[ ]:Replay"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart the burn         ║
║  Q        - Quit                     ║
║  [        - Step back                ║
║  ]        - Step forward             ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, m.width*charW, m.height*charH), color.Palette{color.Black, color.White})
	for y := 0; y < m.height*4; y++ {
		for x := 0; x < m.width*2; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.gifFrames = append(m.gifFrames, img)
}

func (m *Model) saveGIF(path string) error {
	if len(m.gifFrames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.gifFrames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
