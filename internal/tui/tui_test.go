package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cellbody/internal/config"
	"github.com/san-kum/cellbody/internal/viz"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func viewer(t *testing.T) model {
	t.Helper()
	m, err := NewViewer(config.GetPreset("collide"))
	if err != nil {
		t.Fatal(err)
	}
	return *m
}

func TestMenuStartsPreset(t *testing.T) {
	m := *NewInteractiveApp()
	if !strings.Contains(m.View(), "collide") {
		t.Fatal("menu does not list presets")
	}
	next, _ := m.Update(key("j"))
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	mm := next.(model)
	if mm.state != stateSim || mm.world == nil {
		t.Fatalf("enter did not start a world, state=%v", mm.state)
	}
	if cmd == nil {
		t.Error("expected tick command")
	}
	if mm.cfg == nil {
		t.Error("config not selected")
	}
}

func TestTickAdvancesUnlessPaused(t *testing.T) {
	m := viewer(t)
	next, _ := m.Update(tickMsg{})
	m = next.(model)
	if m.world.Steps() != 1 {
		t.Fatalf("steps after tick = %d", m.world.Steps())
	}

	next, _ = m.Update(key("p"))
	m = next.(model)
	next, _ = m.Update(tickMsg{})
	m = next.(model)
	if m.world.Steps() != 1 {
		t.Errorf("paused world stepped to %d", m.world.Steps())
	}

	next, _ = m.Update(key("n"))
	m = next.(model)
	if m.world.Steps() != 2 {
		t.Errorf("single step left steps at %d", m.world.Steps())
	}
	if len(m.history) != 2 {
		t.Errorf("history len = %d", len(m.history))
	}
}

func TestViewerKeys(t *testing.T) {
	m := viewer(t)
	next, _ := m.Update(key("m"))
	m = next.(model)
	if m.overlay.Mode != viz.ModeRejection {
		t.Errorf("mode = %v", m.overlay.Mode)
	}
	next, _ = m.Update(key("t"))
	m = next.(model)
	if m.overlay.Theme.Name != viz.Themes[1].Name {
		t.Errorf("theme = %s", m.overlay.Theme.Name)
	}
	next, _ = m.Update(key("+"))
	m = next.(model)
	if m.speed != 2 {
		t.Errorf("speed = %d", m.speed)
	}
	next, _ = m.Update(key("q"))
	m = next.(model)
	if m.state != stateMenu {
		t.Error("q should return to the menu")
	}
}

func TestViewShowsStatus(t *testing.T) {
	m := viewer(t)
	next, _ := m.Update(tickMsg{})
	m = next.(model)
	out := m.View()
	for _, want := range []string{"running", "collisions", "owners"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLiveRendererWritesFrames(t *testing.T) {
	w, err := config.GetPreset("drift").NewWorld(nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, w, viz.Overlay{Plain: true}, 0)
	r.Clear = false
	w.AddObserver(r)

	if err := w.Run(context.Background(), 3, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "step "); n != 3 {
		t.Errorf("frames = %d, want 3", n)
	}
	if strings.Contains(out, clearScreen) {
		t.Error("clear sequence written with Clear off")
	}
}

func TestMinimapView(t *testing.T) {
	m := viewer(t)
	if m.compact {
		t.Fatal("narrow grid opened compact")
	}
	next, _ := m.Update(tickMsg{})
	m = next.(model)
	if len(m.trails) != 2 || len(m.trails[0]) != 1 {
		t.Fatalf("trails = %v", m.trails)
	}

	next, _ = m.Update(key("b"))
	m = next.(model)
	out := m.View()
	if !strings.Contains(out, "minimap") || !strings.ContainsRune(out, 0x2800) {
		t.Errorf("compact view not shown:\n%s", out)
	}

	wide, err := NewViewer(config.GetPreset("crowd"))
	if err != nil {
		t.Fatal(err)
	}
	if !wide.compact {
		t.Error("wide grid should open compact")
	}
}
