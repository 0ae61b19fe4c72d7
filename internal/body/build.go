package body

import (
	"fmt"

	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
)

// cellMoment is the second moment of a unit cell about its own centre.
const cellMoment = 1.0 / 6.0

// MassProps are derived from the cells an object owns.
type MassProps struct {
	Cells    int
	Mass     float64
	Moment   float64
	Centroid grid.Vec2
}

// Measure computes mass properties for objects 0..count-1 from a row-major
// ownership bitmap. Cells have unit mass. In wrap mode each object is
// unwrapped around its first cell.
func Measure(g *grid.Grid, owners []ID, count int) ([]MassProps, error) {
	if len(owners) != g.Cells() {
		return nil, fmt.Errorf("%w: bitmap has %d cells, grid has %d", dynamo.ErrInvalidScene, len(owners), g.Cells())
	}

	type acc struct {
		ref        grid.IVec2
		n          int
		sx, sy, sq float64
	}
	accs := make([]acc, count)

	for i, id := range owners {
		if id == Null {
			continue
		}
		if int(id) >= count {
			return nil, fmt.Errorf("%w: cell %v owned by %d, only %d objects", dynamo.ErrInvalidScene, g.Coord(i), id, count)
		}
		a := &accs[id]
		c := g.Coord(i)
		if a.n == 0 {
			a.ref = c
		}
		o := g.Offset(a.ref, c).Float()
		a.n++
		a.sx += o.X
		a.sy += o.Y
		a.sq += o.LenSq()
	}

	props := make([]MassProps, count)
	for id, a := range accs {
		if a.n == 0 {
			continue
		}
		n := float64(a.n)
		mean := grid.Vec2{X: a.sx / n, Y: a.sy / n}
		props[id] = MassProps{
			Cells:    a.n,
			Mass:     n,
			Moment:   a.sq - n*mean.LenSq() + n*cellMoment,
			Centroid: g.WrapPosition(a.ref.Float().Add(mean)),
		}
	}
	return props, nil
}

// FromBitmap builds a store whose objects are at rest at their centroids.
func FromBitmap(g *grid.Grid, owners []ID, count int) (*Store, error) {
	props, err := Measure(g, owners, count)
	if err != nil {
		return nil, err
	}
	s := NewStore(g, count)
	for id, p := range props {
		s.SetBody(ID(id), p.Mass, p.Moment, p.Centroid, 0)
	}
	return s, nil
}
