package solver

import (
	"log/slog"
	"time"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/cells"
	"github.com/san-kum/cellbody/internal/grid"
)

// Report summarizes one completed step.
type Report struct {
	Step        int                `json:"step"`
	OwnedBefore int                `json:"owned_before"`
	OwnedAfter  int                `json:"owned_after"`
	Move        cells.MoveStats    `json:"move"`
	Collisions  int                `json:"collisions"`
	Contacts    int                `json:"contacts"`
	Impulses    int                `json:"impulses"`
	Elapsed     time.Duration      `json:"elapsed"`
	Objects     []body.ObjectState `json:"objects"`
}

// Lost is the number of cells that vanished this step.
func (r *Report) Lost() int { return r.OwnedBefore - r.OwnedAfter }

// LogValue implements slog.LogValuer.
func (r *Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", r.Step),
		slog.Int("owned", r.OwnedAfter),
		slog.Int("lost", r.Lost()),
		slog.Int("moved", r.Move.Moved),
		slog.Int("dropped", r.Move.Dropped),
		slog.Int("collisions", r.Collisions),
		slog.Int("contacts", r.Contacts),
		slog.Int("impulses", r.Impulses),
		slog.Duration("elapsed", r.Elapsed),
	)
}

// Snapshot is a read-only copy of the world between steps.
type Snapshot struct {
	Step       int                `json:"step"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Owners     []body.ID          `json:"owners"`
	Objects    []body.ObjectState `json:"objects"`
	Rejection  []grid.Vec2        `json:"rejection"`
	Velocities []grid.Vec2        `json:"velocities"`
}

// Owner returns the owner of (x, y), or body.Null outside the grid.
func (s *Snapshot) Owner(x, y int) body.ID {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
		return body.Null
	}
	return s.Owners[y*s.Width+x]
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(r *Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r *Report)

func (f ObserverFunc) OnStep(r *Report) { f(r) }
