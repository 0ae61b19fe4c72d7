package viz

import (
	"math"
	"strings"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/solver"
)

// Braille patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set turns on the dot at sub-pixel (x, y). The canvas is Width*2 by
// Height*4 sub-pixels with y growing downward.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Minimap draws every owned cell of snap as one Braille dot, then each trail
// of object positions as connected lines. A trail is broken where it jumps
// across a wrap seam.
func Minimap(snap *solver.Snapshot, trails ...[]grid.Vec2) *Canvas {
	c := NewCanvas((snap.Width+1)/2, (snap.Height+3)/4)
	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			if snap.Owner(x, y) != body.Null {
				c.Set(x, snap.Height-1-y)
			}
		}
	}

	for _, trail := range trails {
		var seg [][2]int
		for i, p := range trail {
			if i > 0 {
				d := p.Sub(trail[i-1])
				if math.Abs(d.X) > float64(snap.Width)/2 || math.Abs(d.Y) > float64(snap.Height)/2 {
					c.Outline(seg)
					seg = seg[:0]
				}
			}
			cell := p.Round()
			seg = append(seg, [2]int{cell.X, snap.Height - 1 - cell.Y})
		}
		c.Outline(seg)
	}
	return c
}

// Outline connects consecutive points with lines. A single point is drawn
// as a dot.
func (c *Canvas) Outline(points [][2]int) {
	if len(points) == 1 {
		c.Set(points[0][0], points[0][1])
	}
	for i := 1; i < len(points); i++ {
		c.DrawLine(points[i-1][0], points[i-1][1], points[i][0], points[i][1])
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
