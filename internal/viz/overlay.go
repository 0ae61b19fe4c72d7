package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/solver"
)

type Mode int

const (
	ModeOwners Mode = iota
	ModeRejection
	ModeVelocity
)

var modeNames = []string{"owners", "rejection", "velocity"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next cycles through the modes.
func (m Mode) Next() Mode { return (m + 1) % Mode(len(modeNames)) }

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown overlay mode %q (want one of %s)", s, strings.Join(modeNames, ", "))
}

const (
	ownerGlyphs = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	emptyGlyph  = '·'
)

var arrows = []rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}

// Arrow picks the nearest of eight arrows for v, or '•' when v is zero.
func Arrow(v grid.Vec2) rune {
	if v.IsZero() {
		return '•'
	}
	sector := int(math.Round(math.Atan2(v.Y, v.X) / (math.Pi / 4)))
	return arrows[((sector%8)+8)%8]
}

// Overlay draws a snapshot one glyph per cell. With Plain set no styling is
// applied.
type Overlay struct {
	Theme Theme
	Mode  Mode
	Plain bool
}

func (o Overlay) Render(snap *solver.Snapshot) string {
	styles := make(map[body.ID]lipgloss.Style)
	muted := lipgloss.NewStyle().Foreground(o.Theme.Muted)

	var b strings.Builder
	for y := snap.Height - 1; y >= 0; y-- {
		for x := 0; x < snap.Width; x++ {
			i := y*snap.Width + x
			id := snap.Owners[i]
			if id == body.Null {
				if o.Plain {
					b.WriteRune(emptyGlyph)
				} else {
					b.WriteString(muted.Render(string(emptyGlyph)))
				}
				continue
			}

			g := o.glyph(snap, i, id)
			if o.Plain {
				b.WriteRune(g)
				continue
			}
			st, ok := styles[id]
			if !ok {
				st = lipgloss.NewStyle().Foreground(o.Theme.ObjectColor(id))
				styles[id] = st
			}
			b.WriteString(st.Render(string(g)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (o Overlay) glyph(snap *solver.Snapshot, i int, id body.ID) rune {
	switch o.Mode {
	case ModeRejection:
		if i < len(snap.Rejection) {
			return Arrow(snap.Rejection[i])
		}
	case ModeVelocity:
		if i < len(snap.Velocities) {
			return Arrow(snap.Velocities[i])
		}
	}
	if int(id) < len(ownerGlyphs) {
		return rune(ownerGlyphs[id])
	}
	return '#'
}

// Legend lists each object's glyph with its pose and velocity.
func (o Overlay) Legend(objs []body.ObjectState) string {
	var b strings.Builder
	for _, s := range objs {
		g := "#"
		if int(s.ID) < len(ownerGlyphs) {
			g = string(ownerGlyphs[s.ID])
		}
		if !o.Plain {
			g = lipgloss.NewStyle().Foreground(o.Theme.ObjectColor(s.ID)).Bold(true).Render(g)
		}
		if s.Mass <= 0 {
			fmt.Fprintf(&b, "%s inert\n", g)
			continue
		}
		fmt.Fprintf(&b, "%s m=%-4.0f pos=%v θ=%+.3f v=%v ω=%+.3f\n",
			g, s.Mass, s.Position, s.Angle, s.Velocity, s.AngVel)
	}
	return b.String()
}
