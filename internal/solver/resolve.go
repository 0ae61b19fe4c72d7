package solver

import (
	"sync/atomic"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/collision"
	"github.com/san-kum/cellbody/internal/grid"
)

// contact is a collision record resolved to its two objects.
type contact struct {
	a, b   body.ID
	normal grid.Vec2
	point  grid.Vec2
}

// resolve runs the configured impulse passes over this step's records and
// returns the number of usable contacts and of impulses applied.
func (w *World) resolve() (int, int) {
	records := w.collisions.Records()
	if len(records) == 0 {
		return 0, 0
	}

	for i := range w.contacts {
		w.contacts[i].Store(0)
	}
	var usable atomic.Int64
	w.pool.For(len(records), func(start, end int) {
		var n int64
		for _, rec := range records[start:end] {
			c, ok := w.contact(rec)
			if !ok {
				continue
			}
			w.contacts[c.a].Add(1)
			w.contacts[c.b].Add(1)
			n++
		}
		usable.Add(n)
	})

	var applied atomic.Int64
	for it := 0; it < w.opts.Iterations; it++ {
		w.pool.For(len(records), func(start, end int) {
			var n int64
			for _, rec := range records[start:end] {
				if c, ok := w.contact(rec); ok && w.impulse(c) {
					n++
				}
			}
			applied.Add(n)
		})
		w.objects.ApplyAccumulated(w.pool)
	}
	return int(usable.Load()), int(applied.Load())
}

// contact pairs the losing source's owner with the destination's winner and
// derives the normal from their rejection vectors, each rotated by its
// object's pending turn. The normal points from a toward b.
func (w *World) contact(rec collision.Record) (contact, bool) {
	a := w.cells.Owner(rec.Source)
	b := w.cells.PredictedOwner(rec.Dest)
	if a == body.Null || b == body.Null || a == b {
		return contact{}, false
	}
	if w.objects.Inert(a) && w.objects.Inert(b) {
		return contact{}, false
	}

	ra := w.rejection.At(rec.Source).Rotated(w.objects.PendingTurn(a))
	rb := w.rejection.At(w.cells.SourceOf(rec.Dest)).Rotated(w.objects.PendingTurn(b))
	n, ok := ra.Sub(rb).Normalize()
	if !ok {
		return contact{}, false
	}
	return contact{a: a, b: b, normal: n, point: rec.Dest.Float()}, true
}

// impulse applies one share of the restitution impulse for c if the objects
// are closing along the normal.
func (w *World) impulse(c contact) bool {
	s := w.objects
	ra := w.grid.Displacement(s.PredictedPosition(c.a), c.point)
	rb := w.grid.Displacement(s.PredictedPosition(c.b), c.point)

	vn := s.VelocityAt(c.a, ra).Sub(s.VelocityAt(c.b, rb)).Dot(c.normal)
	if vn <= 0 {
		return false
	}

	k := w.inverseMass(c.a, ra, c.normal) + w.inverseMass(c.b, rb, c.normal)
	if k <= 0 {
		return false
	}
	share := max(w.contacts[c.a].Load(), w.contacts[c.b].Load(), 1)
	j := (1 + w.opts.Restitution) * vn / k / float64(share)

	jn := c.normal.Scale(j)
	if !s.Inert(c.a) {
		s.ApplyImpulse(c.a, jn.Neg(), -ra.Cross(jn))
	}
	if !s.Inert(c.b) {
		s.ApplyImpulse(c.b, jn, rb.Cross(jn))
	}
	return true
}

// inverseMass is the effective inverse mass of id along n at lever arm r.
// Inert objects behave as immovable.
func (w *World) inverseMass(id body.ID, r, n grid.Vec2) float64 {
	s := w.objects
	if s.Inert(id) {
		return 0
	}
	rn := r.Cross(n)
	return 1/s.Mass(id) + rn*rn/s.Moment(id)
}
