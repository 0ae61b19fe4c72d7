// Package rejection maintains, per owned cell, an estimate of the shortest
// vector leading out of the owning object.
package rejection

import (
	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
)

// Ownership is the cell state a refresh reads.
type Ownership interface {
	Owner(c grid.IVec2) body.ID
	// SourceOf is where the content now at c was before the last move.
	SourceOf(c grid.IVec2) grid.IVec2
}

// Turns reports the rotation each object applied in the last move.
type Turns interface {
	Turn(id body.ID) float64
}

// Field is double buffered: a refresh reads prev and writes cur, then swaps.
type Field struct {
	grid       *grid.Grid
	directions []grid.Direction
	cur, prev  []grid.Vec2
}

// New creates a zeroed field. With diagonal set, the eight-neighborhood is
// searched instead of the four orthogonal neighbors.
func New(g *grid.Grid, diagonal bool) *Field {
	dirs := grid.Orthogonal
	if diagonal {
		dirs = grid.All8
	}
	return &Field{
		grid:       g,
		directions: dirs,
		cur:        make([]grid.Vec2, g.Cells()),
		prev:       make([]grid.Vec2, g.Cells()),
	}
}

// At returns the current rejection at c, zero for unowned or outside cells.
func (f *Field) At(c grid.IVec2) grid.Vec2 {
	i, ok := f.grid.Lookup(c)
	if !ok {
		return grid.Vec2{}
	}
	return f.cur[i]
}

func (f *Field) Snapshot() []grid.Vec2 {
	out := make([]grid.Vec2, len(f.cur))
	copy(out, f.cur)
	return out
}

// Refresh runs one relaxation pass. The previous value of each neighbor is
// fetched from where its content was before the move and rotated by its
// owner's turn, so the field travels with the object.
//
// A neighbor outside the object offers the unit step toward it. A neighbor
// inside offers its carried value plus the unit step; carried candidates
// shorter than one cell are stale and ignored. The shortest candidate wins
// and ties keep the earlier direction.
func (f *Field) Refresh(pool *dynamo.Pool, own Ownership, turns Turns) {
	f.cur, f.prev = f.prev, f.cur
	pool.For(len(f.cur), func(start, end int) {
		for i := start; i < end; i++ {
			f.cur[i] = f.relax(i, own, turns)
		}
	})
}

func (f *Field) relax(i int, own Ownership, turns Turns) grid.Vec2 {
	c := f.grid.Coord(i)
	id := own.Owner(c)
	if id == body.Null {
		return grid.Vec2{}
	}
	turn := 0.0
	if turns != nil {
		turn = turns.Turn(id)
	}

	var best grid.Vec2
	bestLen := -1.0
	for _, d := range f.directions {
		step := d.Vector().Float()
		cand := step
		if n, ok := f.grid.Neighbor(c, d); ok && own.Owner(n) == id {
			j := f.grid.Index(f.canon(own.SourceOf(n)))
			cand = f.prev[j].Rotated(turn).Add(step)
			if cand.LenSq() < 1 {
				continue
			}
		}
		if l := cand.LenSq(); bestLen < 0 || l < bestLen {
			best, bestLen = cand, l
		}
	}
	if bestLen < 0 {
		return f.directions[0].Vector().Float()
	}
	return best
}

func (f *Field) canon(c grid.IVec2) grid.IVec2 {
	if cc, ok := f.grid.Canon(c); ok {
		return cc
	}
	return grid.IVec2{}
}

type still struct{ owners Owners }

func (s still) Owner(c grid.IVec2) body.ID       { return s.owners.Owner(c) }
func (s still) SourceOf(c grid.IVec2) grid.IVec2 { return c }

// Owners is the minimal view needed when nothing has moved.
type Owners interface {
	Owner(c grid.IVec2) body.ID
}

// Warmup relaxes the field in place before the first step so interior cells
// start with distances deeper than one cell.
func (f *Field) Warmup(pool *dynamo.Pool, owners Owners, passes int) {
	own := still{owners}
	for p := 0; p < passes; p++ {
		f.Refresh(pool, own, nil)
	}
}
