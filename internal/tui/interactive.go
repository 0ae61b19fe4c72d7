package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cellbody/internal/config"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/metrics"
	"github.com/san-kum/cellbody/internal/solver"
	"github.com/san-kum/cellbody/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var presetInfo = map[string]string{
	"drift":     "single block sliding",
	"collide":   "head-on pair",
	"spin":      "rotating bar",
	"billiards": "disc break",
	"crowd":     "random blocks, wrapped",
}

type state int

const (
	stateMenu state = iota
	stateSim
)

const (
	historyLen = 60
	trailLen   = 40
	// grids wider than this open in the compact minimap view
	compactWidth = 76
)

type model struct {
	state   state
	cursor  int
	presets []string
	cfg     *config.Config

	world    *solver.World
	overlay  viz.Overlay
	theme    int
	last     *solver.Report
	err      error
	paused   bool
	frozen   bool
	speed    int
	history  []float64
	energies []float64
	trails   [][]grid.Vec2
	compact  bool

	width  int
	height int
}

// NewInteractiveApp starts at the preset menu.
func NewInteractiveApp() *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		overlay: viz.Overlay{Theme: viz.Themes[0]},
		speed:   1,
		width:   80,
		height:  24,
	}
}

// NewViewer opens straight into a running world built from cfg.
func NewViewer(cfg *config.Config) (*model, error) {
	m := NewInteractiveApp()
	m.cfg = cfg
	if err := m.start(); err != nil {
		return nil, err
	}
	m.state = stateSim
	return m, nil
}

func (m model) Init() tea.Cmd {
	if m.state == stateSim {
		return tick()
	}
	return nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if !m.paused && !m.frozen {
			for i := 0; i < m.speed && !m.frozen; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.state == stateMenu {
		return m.menuKey(msg)
	}
	return m.simKey(msg)
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		if err := m.start(); err != nil {
			m.err = err
			return m, nil
		}
		m.state = stateSim
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
		m.world = nil
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "n", ".":
		if m.paused && !m.frozen {
			m.step()
		}
	case "m":
		m.overlay.Mode = m.overlay.Mode.Next()
	case "b":
		m.compact = !m.compact
	case "t":
		m.theme = (m.theme + 1) % len(viz.Themes)
		m.overlay.Theme = viz.Themes[m.theme]
	case "r":
		if err := m.start(); err != nil {
			m.err = err
		}
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = min(m.speed*2, 16)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	}
	return m, nil
}

func (m *model) start() error {
	w, err := m.cfg.NewWorld(nil)
	if err != nil {
		return err
	}
	m.world = w
	m.last = nil
	m.err = nil
	m.frozen = false
	m.paused = false
	m.history = m.history[:0]
	m.energies = m.energies[:0]
	m.trails = make([][]grid.Vec2, w.Objects().Len())
	m.compact = w.Grid().Width() > compactWidth
	return nil
}

func (m *model) step() {
	rep, err := m.world.Step(context.Background())
	if err != nil {
		m.err = err
		m.frozen = true
		return
	}
	m.last = rep
	m.history = appendWindow(m.history, float64(rep.Collisions))
	m.energies = appendWindow(m.energies, metrics.KineticEnergy(rep.Objects))
	for _, o := range rep.Objects {
		if o.Mass <= 0 {
			continue
		}
		t := append(m.trails[o.ID], o.Position)
		if len(t) > trailLen {
			t = t[1:]
		}
		m.trails[o.ID] = t
	}
}

func appendWindow(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyLen {
		xs = xs[1:]
	}
	return xs
}

func (m model) View() string {
	if m.state == stateMenu {
		return m.viewMenu()
	}
	return m.viewSim()
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("c e l l b o d y") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + viz.StatusFrozen.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func (m model) viewSim() string {
	if m.world == nil {
		return ""
	}
	var b strings.Builder

	status := viz.StatusRunning.Render("● running")
	switch {
	case m.frozen:
		status = viz.StatusFrozen.Render("■ frozen")
	case m.paused:
		status = viz.StatusPaused.Render("○ paused")
	}
	fmt.Fprintf(&b, "\n   %s  %s  %s  %s\n\n", status,
		viz.Metric("step", fmt.Sprint(m.world.Steps())),
		viz.Metric("view", m.viewName()),
		viz.Metric("speed", fmt.Sprintf("%dx", m.speed)))

	snap := m.world.Snapshot()
	var cells string
	if m.compact {
		cells = viz.Minimap(snap, m.trails...).String()
	} else {
		cells = m.overlay.Render(snap)
	}
	for _, line := range strings.Split(strings.TrimSuffix(cells, "\n"), "\n") {
		b.WriteString("   " + line + "\n")
	}
	b.WriteString("\n")

	if m.last != nil {
		fmt.Fprintf(&b, "   %s  %s  %s  %s\n",
			viz.Metric("owned", fmt.Sprint(m.last.OwnedAfter)),
			viz.Metric("lost", fmt.Sprint(m.last.Lost())),
			viz.Metric("collisions", fmt.Sprint(m.last.Collisions)),
			viz.Metric("impulses", fmt.Sprint(m.last.Impulses)))
		fmt.Fprintf(&b, "   %s %s\n", dim.Render("collisions"), viz.Sparkline(m.history, 30))
		fmt.Fprintf(&b, "   %s     %s\n", dim.Render("energy"), viz.Sparkline(m.energies, 30))
	}
	if m.err != nil {
		b.WriteString("   " + magenta.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + viz.KeyHint.Render("   space pause  n step  m view  b minimap  t theme  ±speed  r reset  q menu") + "\n")
	return b.String()
}

func (m model) viewName() string {
	if m.compact {
		return "minimap"
	}
	return m.overlay.Mode.String()
}

// RunInteractive shows the preset menu.
func RunInteractive() error {
	p := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunViewer opens the live viewer on cfg.
func RunViewer(cfg *config.Config) error {
	m, err := NewViewer(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
