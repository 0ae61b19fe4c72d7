// Package scene describes the initial world: who owns which cell and how
// every object starts moving.
package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
)

// Motion is an object's initial velocity.
type Motion struct {
	Linear  grid.Vec2 `json:"linear" yaml:"linear"`
	Angular float64   `json:"angular" yaml:"angular"`
}

// Scene is a row-major ownership bitmap plus one Motion per object.
type Scene struct {
	Width   int
	Height  int
	Wrap    bool
	Owners  []body.ID
	Motions []Motion
}

func New(width, height int, wrap bool) *Scene {
	owners := make([]body.ID, width*height)
	for i := range owners {
		owners[i] = body.Null
	}
	return &Scene{Width: width, Height: height, Wrap: wrap, Owners: owners}
}

func (s *Scene) Count() int { return len(s.Motions) }

func (s *Scene) Mode() grid.Mode {
	if s.Wrap {
		return grid.Wrap
	}
	return grid.Clamp
}

func (s *Scene) Grid() (*grid.Grid, error) {
	return grid.New(s.Width, s.Height, s.Mode())
}

// AddObject reserves a slot with no cells.
func (s *Scene) AddObject(m Motion) body.ID {
	s.Motions = append(s.Motions, m)
	return body.ID(len(s.Motions) - 1)
}

// AddRect claims a w*h rectangle with its lower-left corner at (x, y).
// Cells outside a clamped grid are skipped; in wrap mode they fold over.
func (s *Scene) AddRect(x, y, w, h int, m Motion) body.ID {
	id := s.AddObject(m)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			s.set(x+dx, y+dy, id)
		}
	}
	return id
}

// AddDisc claims every cell whose centre lies within r of (cx, cy).
func (s *Scene) AddDisc(cx, cy int, r float64, m Motion) body.ID {
	id := s.AddObject(m)
	ri := int(math.Ceil(r))
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float64(dx*dx+dy*dy) <= r*r {
				s.set(cx+dx, cy+dy, id)
			}
		}
	}
	return id
}

func (s *Scene) set(x, y int, id body.ID) {
	if s.Wrap {
		x = ((x % s.Width) + s.Width) % s.Width
		y = ((y % s.Height) + s.Height) % s.Height
	} else if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
		return
	}
	s.Owners[y*s.Width+x] = id
}

// Validate checks that the bitmap matches the grid and names only known
// objects.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", dynamo.ErrInvalidScene, s.Width, s.Height)
	}
	if len(s.Owners) != s.Width*s.Height {
		return fmt.Errorf("%w: bitmap has %d cells, want %d", dynamo.ErrInvalidScene, len(s.Owners), s.Width*s.Height)
	}
	for i, id := range s.Owners {
		if id != body.Null && int(id) >= len(s.Motions) {
			return fmt.Errorf("%w: cell %d owned by unknown object %d", dynamo.ErrInvalidScene, i, id)
		}
	}
	for id, m := range s.Motions {
		if !m.Linear.IsValid() || math.IsNaN(m.Angular) || math.IsInf(m.Angular, 0) {
			return fmt.Errorf("%w: object %d has non-finite velocity", dynamo.ErrInvalidScene, id)
		}
	}
	return nil
}

// Parse reads a text map. Rows are listed top to bottom, so the last line is
// y = 0. '.' is empty, as is ' ' inside a row; every other rune names an
// object, numbered in order of first appearance scanning from y = 0 upward.
// Leading tabs and trailing whitespace are ignored.
func Parse(text string, wrap bool) (*Scene, error) {
	var rows []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimRight(strings.TrimLeft(line, "\t"), " \t\r")
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty map", dynamo.ErrInvalidScene)
	}
	width := len([]rune(rows[0]))
	for i, r := range rows {
		if n := len([]rune(r)); n != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", dynamo.ErrInvalidScene, i+1, n, width)
		}
	}

	s := New(width, len(rows), wrap)
	ids := make(map[rune]body.ID)
	for y := 0; y < s.Height; y++ {
		for x, ch := range []rune(rows[s.Height-1-y]) {
			if ch == '.' || ch == ' ' {
				continue
			}
			id, ok := ids[ch]
			if !ok {
				id = s.AddObject(Motion{})
				ids[ch] = id
			}
			s.Owners[y*width+x] = id
		}
	}
	return s, nil
}

// Render is the inverse of Parse for scenes with at most 62 objects.
func (s *Scene) Render(owners []body.ID) string {
	const glyphs = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	var b strings.Builder
	for y := s.Height - 1; y >= 0; y-- {
		for x := 0; x < s.Width; x++ {
			id := owners[y*s.Width+x]
			switch {
			case id == body.Null:
				b.WriteByte('.')
			case int(id) < len(glyphs):
				b.WriteByte(glyphs[id])
			default:
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
