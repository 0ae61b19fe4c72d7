package grid

import (
	"fmt"
	"math"
)

// Mode selects what happens at the grid edge.
type Mode uint8

const (
	// Clamp treats everything outside [0,W)x[0,H) as missing.
	Clamp Mode = iota
	// Wrap joins opposite edges into a torus.
	Wrap
)

func (m Mode) String() string {
	if m == Wrap {
		return "wrap"
	}
	return "clamp"
}

// Grid is the addressable 2D cell domain. It is immutable after New.
type Grid struct {
	width, height int
	mode          Mode
}

func New(width, height int, mode Mode) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: invalid size %dx%d", width, height)
	}
	return &Grid{width: width, height: height, mode: mode}, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }
func (g *Grid) Mode() Mode  { return g.mode }
func (g *Grid) Cells() int  { return g.width * g.height }
func (g *Grid) Wraps() bool { return g.mode == Wrap }

// Contains reports whether c addresses a cell. In wrap mode every coordinate does.
func (g *Grid) Contains(c IVec2) bool {
	if g.mode == Wrap {
		return true
	}
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// Canon maps c to its in-range representative.
func (g *Grid) Canon(c IVec2) (IVec2, bool) {
	if g.mode == Wrap {
		return IVec2{mod(c.X, g.width), mod(c.Y, g.height)}, true
	}
	return c, g.Contains(c)
}

// Index returns the row-major index of an in-range coordinate.
func (g *Grid) Index(c IVec2) int {
	return c.Y*g.width + c.X
}

// Lookup canonicalizes c and returns its index, or false if it falls outside.
func (g *Grid) Lookup(c IVec2) (int, bool) {
	c, ok := g.Canon(c)
	if !ok {
		return -1, false
	}
	return g.Index(c), true
}

func (g *Grid) Coord(i int) IVec2 {
	return IVec2{i % g.width, i / g.width}
}

func (g *Grid) Neighbor(c IVec2, d Direction) (IVec2, bool) {
	return g.Canon(c.Add(d.Vector()))
}

// Offset returns to-from. In wrap mode the shortest image is chosen.
func (g *Grid) Offset(from, to IVec2) IVec2 {
	d := to.Sub(from)
	if g.mode == Wrap {
		d.X = minImage(d.X, g.width)
		d.Y = minImage(d.Y, g.height)
	}
	return d
}

// Displacement is the continuous counterpart of Offset.
func (g *Grid) Displacement(from, to Vec2) Vec2 {
	d := to.Sub(from)
	if g.mode == Wrap {
		d.X = minImageF(d.X, float64(g.width))
		d.Y = minImageF(d.Y, float64(g.height))
	}
	return d
}

// WrapPosition folds a continuous position back into the domain in wrap mode.
func (g *Grid) WrapPosition(p Vec2) Vec2 {
	if g.mode != Wrap {
		return p
	}
	return Vec2{fmod(p.X, float64(g.width)), fmod(p.Y, float64(g.height))}
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

func minImage(d, n int) int {
	d = mod(d, n)
	if d >= (n+1)/2 {
		d -= n
	}
	return d
}

func minImageF(d, n float64) float64 {
	d = fmod(d, n)
	if d >= n/2 {
		d -= n
	}
	return d
}

func fmod(a, n float64) float64 {
	a = math.Mod(a, n)
	if a < 0 {
		a += n
	}
	if a >= n {
		a -= n
	}
	return a
}
