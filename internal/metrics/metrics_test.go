package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/scene"
	"github.com/san-kum/cellbody/internal/solver"
)

func report(step, before, after, collisions int, objs ...body.ObjectState) *solver.Report {
	return &solver.Report{Step: step, OwnedBefore: before, OwnedAfter: after, Collisions: collisions, Objects: objs}
}

func TestKineticEnergy(t *testing.T) {
	objs := []body.ObjectState{
		{Mass: 2, Moment: 3, Velocity: grid.Vec2{X: 3, Y: 4}, AngVel: 2},
		{Mass: 0, Velocity: grid.Vec2{X: 100}},
	}
	// 0.5*2*25 + 0.5*3*4
	if e := KineticEnergy(objs); math.Abs(e-31) > 1e-12 {
		t.Errorf("expected 31, got %f", e)
	}
	if p := LinearMomentum(objs); p != (grid.Vec2{X: 6, Y: 8}) {
		t.Errorf("momentum = %v", p)
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()
	m.Observe(report(1, 0, 0, 0, body.ObjectState{Mass: 1, Velocity: grid.Vec2{X: 2}}))
	m.Observe(report(2, 0, 0, 0, body.ObjectState{Mass: 1, Velocity: grid.Vec2{X: 1}}))

	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected drift 0.75, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestCellLossAndCollisionRate(t *testing.T) {
	loss := NewCellLoss()
	rate := NewCollisionRate()
	set := Set{loss, rate}

	set.OnStep(report(1, 100, 95, 6))
	set.OnStep(report(2, 95, 80, 2))

	v := set.Values()
	if math.Abs(v["cell_loss"]-0.2) > 1e-12 {
		t.Errorf("cell_loss = %f", v["cell_loss"])
	}
	if v["collision_rate"] != 4 {
		t.Errorf("collision_rate = %f", v["collision_rate"])
	}

	set.Reset()
	if loss.Value() != 0 || rate.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestRecorderWithWorld(t *testing.T) {
	sc := scene.New(32, 16, false)
	sc.AddRect(2, 4, 4, 4, scene.Motion{Linear: grid.Vec2{X: 1}})
	w, err := solver.New(sc, solver.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	rec := &Recorder{}
	std := Standard()
	w.AddObserver(rec)
	w.AddObserver(std)
	if err := w.Run(context.Background(), 8, nil); err != nil {
		t.Fatal(err)
	}

	if len(rec.Samples) != 8 {
		t.Fatalf("expected 8 samples, got %d", len(rec.Samples))
	}
	owned := rec.Series("owned")
	for i, o := range owned {
		if o != 16 {
			t.Errorf("step %d owned %v", i+1, o)
		}
	}
	energy := rec.Series("energy")
	if math.Abs(energy[7]-8) > 1e-12 {
		t.Errorf("energy = %v, want 8", energy[7])
	}
	if rec.Series("nope") != nil {
		t.Error("unknown column should be nil")
	}
	if std.Values()["cell_loss"] != 0 {
		t.Errorf("lone block lost cells: %v", std.Values())
	}
}
