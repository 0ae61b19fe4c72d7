package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/scene"
	"github.com/san-kum/cellbody/internal/solver"
)

func snapshot(t *testing.T) *solver.Snapshot {
	t.Helper()
	sc, err := scene.Parse(`
		......
		.AA...
		.AA.BB
	`, false)
	if err != nil {
		t.Fatal(err)
	}
	w, err := solver.New(sc, solver.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return w.Snapshot()
}

func TestOverlayOwners(t *testing.T) {
	out := Overlay{Theme: ThemeMinimal, Plain: true}.Render(snapshot(t))
	want := "······\n·AA···\n·AA·BB\n"
	if out != want {
		t.Errorf("overlay =\n%s\nwant\n%s", out, want)
	}
}

func TestOverlayRejectionArrows(t *testing.T) {
	out := Overlay{Mode: ModeRejection, Plain: true}.Render(snapshot(t))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d", len(lines))
	}
	// every cell of a 2x2 block touches the outside on its left or right
	if got := []rune(lines[2]); got[1] != '←' || got[4] != '←' || got[5] != '→' {
		t.Errorf("bottom row = %q", lines[2])
	}
}

func TestArrow(t *testing.T) {
	tests := []struct {
		v    grid.Vec2
		want rune
	}{
		{grid.Vec2{X: 1}, '→'},
		{grid.Vec2{Y: 1}, '↑'},
		{grid.Vec2{X: -1}, '←'},
		{grid.Vec2{Y: -2}, '↓'},
		{grid.Vec2{X: 1, Y: 1}, '↗'},
		{grid.Vec2{X: 1, Y: -1}, '↘'},
		{grid.Vec2{}, '•'},
	}
	for _, tt := range tests {
		if got := Arrow(tt.v); got != tt.want {
			t.Errorf("Arrow(%v) = %c, want %c", tt.v, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeOwners, ModeRejection, ModeVelocity} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%s) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseMode("heat"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if ModeVelocity.Next() != ModeOwners {
		t.Error("Next does not wrap")
	}
}

func TestMinimap(t *testing.T) {
	c := Minimap(snapshot(t))
	if c.Width != 3 || c.Height != 1 {
		t.Fatalf("canvas %dx%d", c.Width, c.Height)
	}
	if strings.TrimRight(c.String(), "\n") == string([]rune{0x2800, 0x2800, 0x2800}) {
		t.Error("minimap is blank")
	}
}

func emptySnapshot(w, h int) *solver.Snapshot {
	owners := make([]body.ID, w*h)
	for i := range owners {
		owners[i] = body.Null
	}
	return &solver.Snapshot{Width: w, Height: h, Owners: owners}
}

func TestMinimapTrails(t *testing.T) {
	const blank = rune(0x2800)

	c := Minimap(emptySnapshot(20, 8), []grid.Vec2{{X: 2, Y: 4}, {X: 10, Y: 4}})
	for col := 1; col <= 5; col++ {
		if c.Grid[0][col] == blank {
			t.Errorf("trail missing at column %d", col)
		}
	}
	if c.Grid[0][7] != blank || c.Grid[1][3] != blank {
		t.Error("trail drawn outside its segment")
	}

	seam := Minimap(emptySnapshot(20, 8), []grid.Vec2{{X: 18, Y: 4}, {X: 19, Y: 4}, {X: 0, Y: 4}, {X: 1, Y: 4}})
	if seam.Grid[0][9] == blank || seam.Grid[0][0] == blank {
		t.Error("trail ends not drawn")
	}
	for col := 1; col < 9; col++ {
		if seam.Grid[0][col] != blank {
			t.Errorf("trail crossed the seam at column %d", col)
		}
	}
}

func TestLegend(t *testing.T) {
	snap := snapshot(t)
	out := Overlay{Plain: true}.Legend(snap.Objects)
	if !strings.HasPrefix(out, "A m=4") || !strings.Contains(out, "B m=2") {
		t.Errorf("legend =\n%s", out)
	}
}

func TestPlot(t *testing.T) {
	if Plot(nil, "x", 20, 5) != "" {
		t.Error("empty plot should be empty")
	}
	out := Plot([]float64{1, 3, 2, 5, 4}, "collisions", 20, 5)
	if !strings.Contains(out, "collisions") {
		t.Errorf("caption missing:\n%s", out)
	}
	if PlotMany([][]float64{{1, 2, 3}, {3, 2, 1}}, "pair", 20, 5) == "" {
		t.Error("PlotMany returned nothing")
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("ocean").Name != "ocean" {
		t.Error("ocean theme not found")
	}
	if GetTheme("missing").Name != "cyberpunk" {
		t.Error("expected fallback to cyberpunk")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names mismatch")
	}
	if ThemeSunset.ObjectColor(uint32(len(ThemeSunset.Objects))) != ThemeSunset.Objects[0] {
		t.Error("palette does not cycle")
	}
}
