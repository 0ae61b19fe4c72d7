// Package cells holds per-cell ownership and the kernels that move owned
// cells between steps.
package cells

import (
	"fmt"
	"sync/atomic"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/collision"
	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
)

// Kinematics is the view of the object store the move kernel needs.
type Kinematics interface {
	Position(id body.ID) grid.Vec2
	Angle(id body.ID) float64
	PredictedPosition(id body.ID) grid.Vec2
	PredictedAngle(id body.ID) float64
	VelocityAt(id body.ID, r grid.Vec2) grid.Vec2
	MarkContested(id body.ID)
}

// Field is the ownership state of every cell, stored row-major.
//
// owner is the committed state read by every phase. predicted, lock,
// displacement and nextVelocity are written at destinations during
// PredictMove; delta is written at sources.
type Field struct {
	grid *grid.Grid

	owner     []body.ID
	predicted []body.ID
	lock      []atomic.Int32

	delta        []grid.IVec2
	displacement []grid.IVec2

	velocity     []grid.Vec2
	nextVelocity []grid.Vec2
}

// MoveStats counts the outcome of every owned cell in one PredictMove.
type MoveStats struct {
	Moved     int `json:"moved"`
	Contested int `json:"contested"`
	Dropped   int `json:"dropped"`
}

// CommitStats compares ownership across one Commit.
type CommitStats struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Lost is the number of cells that vanished in the commit.
func (s CommitStats) Lost() int { return s.Before - s.After }

// New builds a field from a row-major ownership bitmap.
func New(g *grid.Grid, owners []body.ID) (*Field, error) {
	n := g.Cells()
	if len(owners) != n {
		return nil, fmt.Errorf("%w: bitmap has %d cells, grid has %d", dynamo.ErrInvalidScene, len(owners), n)
	}
	f := &Field{
		grid:         g,
		owner:        make([]body.ID, n),
		predicted:    make([]body.ID, n),
		lock:         make([]atomic.Int32, n),
		delta:        make([]grid.IVec2, n),
		displacement: make([]grid.IVec2, n),
		velocity:     make([]grid.Vec2, n),
		nextVelocity: make([]grid.Vec2, n),
	}
	copy(f.owner, owners)
	for i := range f.predicted {
		f.predicted[i] = body.Null
	}
	return f, nil
}

func (f *Field) Grid() *grid.Grid { return f.grid }

// Clear resets the per-step scratch state.
func (f *Field) Clear(pool *dynamo.Pool) {
	pool.For(len(f.owner), func(start, end int) {
		for i := start; i < end; i++ {
			f.lock[i].Store(0)
			f.predicted[i] = body.Null
			f.delta[i] = grid.IVec2{}
			f.nextVelocity[i] = grid.Vec2{}
		}
	})
}

// Destination maps an owned cell through its object's transform change.
// The offset from the rounded current position is taken into the object's
// local frame and re-expressed at the predicted angle.
func Destination(g *grid.Grid, k Kinematics, id body.ID, cell grid.IVec2) (grid.IVec2, grid.IVec2) {
	diff := g.Offset(k.Position(id).Round(), cell)
	local := grid.Unrotate(diff, k.Angle(id))
	rotated := grid.Rotate(local, k.PredictedAngle(id))
	return k.PredictedPosition(id).Round().Add(rotated), rotated
}

// PredictMove claims a destination for every owned cell. The first claimant
// of a destination wins it; every later claimant appends a record to list
// and marks its object contested. Destinations outside a clamped grid are
// dropped without a record.
func (f *Field) PredictMove(pool *dynamo.Pool, k Kinematics, list *collision.List) MoveStats {
	var moved, contested, dropped atomic.Int64

	pool.For(len(f.owner), func(start, end int) {
		var m, c, d int64
		for i := start; i < end; i++ {
			id := f.owner[i]
			if id == body.Null {
				continue
			}
			src := f.grid.Coord(i)
			raw, rotated := Destination(f.grid, k, id, src)
			dst, ok := f.grid.Canon(raw)
			if !ok {
				d++
				continue
			}
			f.delta[i] = f.grid.Offset(src, dst)

			j := f.grid.Index(dst)
			if f.lock[j].Add(1) == 1 {
				f.predicted[j] = id
				f.displacement[j] = f.grid.Offset(dst, src)
				f.nextVelocity[j] = k.VelocityAt(id, rotated.Float())
				m++
				continue
			}
			list.Append(collision.Record{Source: src, Dest: dst})
			k.MarkContested(id)
			c++
		}
		moved.Add(m)
		contested.Add(c)
		dropped.Add(d)
	})

	return MoveStats{
		Moved:     int(moved.Load()),
		Contested: int(contested.Load()),
		Dropped:   int(dropped.Load()),
	}
}

// Commit replaces ownership with the winners of the last PredictMove. A cell
// nobody won becomes unowned.
func (f *Field) Commit(pool *dynamo.Pool) CommitStats {
	var before, after atomic.Int64

	pool.For(len(f.owner), func(start, end int) {
		var b, a int64
		for i := start; i < end; i++ {
			if f.owner[i] != body.Null {
				b++
			}
			if f.lock[i].Load() > 0 {
				f.owner[i] = f.predicted[i]
				f.velocity[i] = f.nextVelocity[i]
				a++
			} else {
				f.owner[i] = body.Null
				f.velocity[i] = grid.Vec2{}
				f.displacement[i] = grid.IVec2{}
			}
		}
		before.Add(b)
		after.Add(a)
	})

	return CommitStats{Before: int(before.Load()), After: int(after.Load())}
}

func (f *Field) Owner(c grid.IVec2) body.ID {
	i, ok := f.grid.Lookup(c)
	if !ok {
		return body.Null
	}
	return f.owner[i]
}

func (f *Field) PredictedOwner(c grid.IVec2) body.ID {
	i, ok := f.grid.Lookup(c)
	if !ok {
		return body.Null
	}
	return f.predicted[i]
}

// SourceOf returns where the content now at c came from. Cells that were
// not won in the last move map to themselves.
func (f *Field) SourceOf(c grid.IVec2) grid.IVec2 {
	i, ok := f.grid.Lookup(c)
	if !ok {
		return c
	}
	src, _ := f.grid.Canon(f.grid.Coord(i).Add(f.displacement[i]))
	return src
}

// Delta is how far the content of source cell c was predicted to move.
func (f *Field) Delta(c grid.IVec2) grid.IVec2 {
	i, ok := f.grid.Lookup(c)
	if !ok {
		return grid.IVec2{}
	}
	return f.delta[i]
}

// Claims is the number of sources that targeted c in the last move.
func (f *Field) Claims(c grid.IVec2) int {
	i, ok := f.grid.Lookup(c)
	if !ok {
		return 0
	}
	return int(f.lock[i].Load())
}

// Velocity is the material velocity of the cell's owner at c, sampled when
// the cell was claimed.
func (f *Field) Velocity(c grid.IVec2) grid.Vec2 {
	i, ok := f.grid.Lookup(c)
	if !ok {
		return grid.Vec2{}
	}
	return f.velocity[i]
}

// Owners returns a copy of the committed ownership bitmap.
func (f *Field) Owners() []body.ID {
	out := make([]body.ID, len(f.owner))
	copy(out, f.owner)
	return out
}

// Velocities returns a copy of the committed per-cell velocity field.
func (f *Field) Velocities() []grid.Vec2 {
	out := make([]grid.Vec2, len(f.velocity))
	copy(out, f.velocity)
	return out
}

func (f *Field) OwnedCount() int {
	n := 0
	for _, id := range f.owner {
		if id != body.Null {
			n++
		}
	}
	return n
}

// CountByOwner returns the number of cells each of count objects owns.
func (f *Field) CountByOwner(count int) []int {
	out := make([]int, count)
	for _, id := range f.owner {
		if id != body.Null && int(id) < count {
			out[id]++
		}
	}
	return out
}
