package solver

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/scene"
)

func drifting() *scene.Scene {
	sc := scene.New(24, 24, true)
	sc.AddRect(3, 3, 4, 4, scene.Motion{Linear: grid.Vec2{X: 1}})
	return sc
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative iterations", Options{Iterations: -1}},
		{"restitution above one", Options{Restitution: 1.5}},
		{"negative restitution", Options{Restitution: -0.1}},
		{"negative capacity", Options{CollisionCapacity: -4}},
		{"negative warmup", Options{WarmupPasses: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(drifting(), tt.opts); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewRejectsInvalidScene(t *testing.T) {
	sc := drifting()
	sc.Owners[0] = 9
	if _, err := New(sc, DefaultOptions()); !errors.Is(err, dynamo.ErrInvalidScene) {
		t.Errorf("expected ErrInvalidScene, got %v", err)
	}
}

func TestDefaultsApplied(t *testing.T) {
	w, err := New(drifting(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	o := w.Options()
	if o.Iterations != defaultIterations {
		t.Errorf("iterations = %d", o.Iterations)
	}
	if want := max(minCollisionRecords, 24*24/4); o.CollisionCapacity != want {
		t.Errorf("capacity = %d", o.CollisionCapacity)
	}
	if o.Logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestObserversSeeEveryStep(t *testing.T) {
	w, _ := New(drifting(), DefaultOptions())
	var steps []int
	w.AddObserver(ObserverFunc(func(r *Report) { steps = append(steps, r.Step) }))

	if err := w.Run(context.Background(), 5, nil); err != nil {
		t.Fatal(err)
	}
	if len(steps) != 5 || steps[0] != 1 || steps[4] != 5 {
		t.Errorf("observed steps %v", steps)
	}
}

func TestRunStopsWhenCallbackDeclines(t *testing.T) {
	w, _ := New(drifting(), DefaultOptions())
	calls := 0
	err := w.Run(context.Background(), 100, func(r *Report) bool {
		calls++
		return r.Step < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 || w.Steps() != 3 {
		t.Errorf("calls %d steps %d", calls, w.Steps())
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	w, _ := New(drifting(), DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Run(ctx, 10, nil)
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
	if w.Steps() != 0 {
		t.Errorf("steps = %d", w.Steps())
	}

	if _, err := w.Step(ctx); !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("Step: got %v", err)
	}
}

func TestOverflowIsLogged(t *testing.T) {
	sc := scene.New(16, 10, false)
	sc.AddRect(2, 3, 3, 3, scene.Motion{Linear: grid.Vec2{X: 1}})
	sc.AddRect(5, 3, 3, 3, scene.Motion{Linear: grid.Vec2{X: -1}})

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.CollisionCapacity = 1
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	w, err := New(sc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Step(context.Background()); err == nil {
		t.Fatal("expected overflow")
	}
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "collision list overflow") {
		t.Errorf("log output:\n%s", out)
	}
}

func TestReportLogValue(t *testing.T) {
	r := &Report{Step: 7, OwnedBefore: 10, OwnedAfter: 8, Collisions: 3}
	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("step", "report", r)

	out := buf.String()
	for _, want := range []string{"report.step=7", "report.owned=8", "report.lost=2", "report.collisions=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	w, _ := New(drifting(), DefaultOptions())
	s := w.Snapshot()
	s.Owners[w.Grid().Index(grid.IVec2{X: 3, Y: 3})] = 5
	if w.Cells().Owner(grid.IVec2{X: 3, Y: 3}) != 0 {
		t.Error("snapshot aliases the live field")
	}
	if len(s.Rejection) != 24*24 || len(s.Velocities) != 24*24 {
		t.Errorf("snapshot sizes %d %d", len(s.Rejection), len(s.Velocities))
	}
}

func TestSetVelocity(t *testing.T) {
	sc := drifting()
	ghost := sc.AddObject(scene.Motion{})
	w, err := New(sc, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if err := w.SetVelocity(0, grid.Vec2{Y: 2}, 0.1); err != nil {
		t.Fatalf("SetVelocity: %v", err)
	}
	if v := w.Objects().Velocity(0); v != (grid.Vec2{Y: 2}) {
		t.Errorf("velocity = %v", v)
	}
	if err := w.SetVelocity(ghost, grid.Vec2{X: 1}, 0); !errors.Is(err, dynamo.ErrDegenerateObject) {
		t.Errorf("inert object: got %v", err)
	}
	if err := w.SetVelocity(7, grid.Vec2{}, 0); !errors.Is(err, dynamo.ErrInvalidScene) {
		t.Errorf("unknown object: got %v", err)
	}
}

func TestCellsFollowBodyAcrossSeam(t *testing.T) {
	sc := scene.New(40, 20, true)
	sc.AddRect(0, 8, 4, 4, scene.Motion{Linear: grid.Vec2{X: -1}})
	w, err := New(sc, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	for step := 1; step <= 8; step++ {
		if _, err := w.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		props, err := body.Measure(w.Grid(), w.Cells().Owners(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if props[0].Cells != 16 {
			t.Fatalf("step %d: %d cells owned", step, props[0].Cells)
		}
		pos := w.Objects().Position(0)
		if gap := w.Grid().Displacement(pos, props[0].Centroid); gap.LenSq() > 1e-18 {
			t.Fatalf("step %d: pos=%v cells=%v gap=%v", step, pos, props[0].Centroid, gap)
		}
	}
}
