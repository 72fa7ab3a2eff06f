package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/grainsim/internal/config"
	"github.com/san-kum/grainsim/internal/experiment"
)

var presetInfo = map[string]string{
	"baseline": "single circular port",
	"burnout":  "port on the case wall",
	"star":     "six point star port",
	"quad":     "four merging ports",
	"slim":     "thin web, long burn",
}

const (
	pickMenu = iota
	pickBurn
)

// Picker lists the presets and hands the chosen one to a live [Model].
type Picker struct {
	state, cursor int
	presets       []string
	live          Model
	err           error
}

func NewPicker() Picker {
	return Picker{presets: config.ListPresets()}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == pickBurn {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		live, err := ModelForPreset(p.presets[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.live, p.state, p.err = live, pickBurn, nil
		return p, p.live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.state == pickBurn {
		return p.live.View()
	}
	var b strings.Builder
	b.WriteString("\n\n    " + headerStyle.Render("GRAINSIM") + "\n    " + dimStyle.Render("hybrid grain regression") + "\n    " + dimStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range p.presets {
		desc := presetInfo[name]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), valueStyle.Render(fmt.Sprintf("%-10s", name)), lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", dimStyle.Render(fmt.Sprintf("  %-10s", name)), dimStyle.Render(desc)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + statusStyle(CurrentTheme.Error).Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + helpStyle.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

// ModelForPreset builds a live model for a named preset.
func ModelForPreset(name string) (Model, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return Model{}, fmt.Errorf("unknown preset %q", name)
	}
	return ModelForConfig(cfg)
}

func ModelForConfig(cfg *config.Config) (Model, error) {
	exp := experiment.New(cfg, nil, nil)
	if err := exp.Setup(nil); err != nil {
		return Model{}, err
	}
	return NewModel(cfg.Name, exp.Spec(), exp.Port(), exp.SimConfig())
}

func RunPicker() error {
	_, err := tea.NewProgram(NewPicker(), tea.WithAltScreen()).Run()
	return err
}

func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
