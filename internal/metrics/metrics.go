package metrics

import (
	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/solver"
)

type Metric interface {
	Name() string
	Observe(r *solver.Report)
	Value() float64
	Reset()
}

// Set fans a step out to several metrics. It satisfies solver.Observer.
type Set []Metric

func (s Set) OnStep(r *solver.Report) {
	for _, m := range s {
		m.Observe(r)
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Standard returns the metrics reported by the CLI.
func Standard() Set {
	return Set{NewEnergy(), NewEnergyDrift(), NewCellLoss(), NewCollisionRate(), NewMomentum()}
}

// KineticEnergy is the translational plus rotational energy of objs.
func KineticEnergy(objs []body.ObjectState) float64 {
	e := 0.0
	for _, o := range objs {
		if o.Mass <= 0 {
			continue
		}
		e += 0.5*o.Mass*o.Velocity.LenSq() + 0.5*o.Moment*o.AngVel*o.AngVel
	}
	return e
}

// LinearMomentum is the total linear momentum of objs.
func LinearMomentum(objs []body.ObjectState) grid.Vec2 {
	var p grid.Vec2
	for _, o := range objs {
		if o.Mass <= 0 {
			continue
		}
		p = p.Add(o.Velocity.Scale(o.Mass))
	}
	return p
}
