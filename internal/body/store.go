package body

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
)

// ID is a dense object slot index.
type ID = uint32

// Null marks a cell without an owner.
const Null ID = math.MaxUint32

// ObjectState is a read-only copy of one object's continuous state.
type ObjectState struct {
	ID        ID        `json:"id"`
	Mass      float64   `json:"mass"`
	Moment    float64   `json:"moment"`
	Position  grid.Vec2 `json:"position"`
	Angle     float64   `json:"angle"`
	Velocity  grid.Vec2 `json:"velocity"`
	AngVel    float64   `json:"ang_vel"`
	Contested int       `json:"contested"`
}

// Store holds per-object state in flat arrays addressed by ID.
// Accumulators are safe for concurrent ApplyImpulse; everything else is
// written by exactly one goroutine per object per phase.
type Store struct {
	grid *grid.Grid

	mass   []float64
	moment []float64

	position []grid.Vec2
	angle    []float64
	velocity []grid.Vec2
	angVel   []float64

	predPosition []grid.Vec2
	predAngle    []float64
	turn         []float64

	impulseX   []dynamo.AtomicFloat64
	impulseY   []dynamo.AtomicFloat64
	angImpulse []dynamo.AtomicFloat64
	contested  []atomic.Int32

	saved checkpoint
}

type checkpoint struct {
	velocity []grid.Vec2
	angVel   []float64
	impulse  []grid.Vec2
	angImp   []float64
}

func NewStore(g *grid.Grid, n int) *Store {
	return &Store{
		grid:         g,
		mass:         make([]float64, n),
		moment:       make([]float64, n),
		position:     make([]grid.Vec2, n),
		angle:        make([]float64, n),
		velocity:     make([]grid.Vec2, n),
		angVel:       make([]float64, n),
		predPosition: make([]grid.Vec2, n),
		predAngle:    make([]float64, n),
		turn:         make([]float64, n),
		impulseX:     make([]dynamo.AtomicFloat64, n),
		impulseY:     make([]dynamo.AtomicFloat64, n),
		angImpulse:   make([]dynamo.AtomicFloat64, n),
		contested:    make([]atomic.Int32, n),
		saved: checkpoint{
			velocity: make([]grid.Vec2, n),
			angVel:   make([]float64, n),
			impulse:  make([]grid.Vec2, n),
			angImp:   make([]float64, n),
		},
	}
}

func (s *Store) Len() int { return len(s.mass) }

// Inert reports whether id has no mass; inert objects never move.
func (s *Store) Inert(id ID) bool {
	return s.mass[id] <= 0 || s.moment[id] <= 0
}

func (s *Store) Mass(id ID) float64                { return s.mass[id] }
func (s *Store) Moment(id ID) float64              { return s.moment[id] }
func (s *Store) Position(id ID) grid.Vec2          { return s.position[id] }
func (s *Store) Angle(id ID) float64               { return s.angle[id] }
func (s *Store) Velocity(id ID) grid.Vec2          { return s.velocity[id] }
func (s *Store) AngVel(id ID) float64              { return s.angVel[id] }
func (s *Store) PredictedPosition(id ID) grid.Vec2 { return s.predPosition[id] }
func (s *Store) PredictedAngle(id ID) float64      { return s.predAngle[id] }

// Turn is the rotation applied by the last Finalize.
func (s *Store) Turn(id ID) float64 { return s.turn[id] }

// PendingTurn is the rotation the current prediction will apply.
func (s *Store) PendingTurn(id ID) float64 { return s.predAngle[id] - s.angle[id] }

func (s *Store) Contested(id ID) int { return int(s.contested[id].Load()) }

// MarkContested counts a lost claim against id.
func (s *Store) MarkContested(id ID) { s.contested[id].Add(1) }

func (s *Store) SetVelocity(id ID, v grid.Vec2, w float64) {
	s.velocity[id] = v
	s.angVel[id] = w
}

// SetBody overrides derived mass properties and pose.
func (s *Store) SetBody(id ID, mass, moment float64, pos grid.Vec2, angle float64) {
	s.mass[id] = mass
	s.moment[id] = moment
	s.position[id] = pos
	s.angle[id] = angle
	s.predPosition[id] = pos
	s.predAngle[id] = angle
}

// VelocityAt returns the velocity of the material point at offset r from the
// object's centre.
func (s *Store) VelocityAt(id ID, r grid.Vec2) grid.Vec2 {
	return s.velocity[id].Add(grid.CrossScalar(s.angVel[id], r))
}

// ApplyImpulse adds to the accumulators of id. Each scalar is added
// atomically on its own; the pair is not updated as a unit.
func (s *Store) ApplyImpulse(id ID, j grid.Vec2, angular float64) {
	if j.X != 0 {
		s.impulseX[id].Add(j.X)
	}
	if j.Y != 0 {
		s.impulseY[id].Add(j.Y)
	}
	if angular != 0 {
		s.angImpulse[id].Add(angular)
	}
}

// PendingImpulse returns the accumulators without clearing them.
func (s *Store) PendingImpulse(id ID) (grid.Vec2, float64) {
	return grid.Vec2{X: s.impulseX[id].Load(), Y: s.impulseY[id].Load()}, s.angImpulse[id].Load()
}

// IntegrateAndPredict folds accumulated impulses into velocities and sets the
// predicted transform one step ahead. Must complete before any cell movement.
func (s *Store) IntegrateAndPredict(pool *dynamo.Pool) {
	pool.For(s.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			id := ID(i)
			s.contested[i].Store(0)
			if s.Inert(id) {
				s.discard(id)
				s.predPosition[i] = s.position[i]
				s.predAngle[i] = s.angle[i]
				continue
			}
			s.fold(id)
			s.predPosition[i] = s.position[i].Add(s.velocity[i])
			s.predAngle[i] = s.angle[i] + s.angVel[i]
		}
	})
}

// ApplyAccumulated folds accumulated impulses into velocities without
// touching the prediction.
func (s *Store) ApplyAccumulated(pool *dynamo.Pool) {
	pool.For(s.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			id := ID(i)
			if s.Inert(id) {
				s.discard(id)
				continue
			}
			s.fold(id)
		}
	})
}

func (s *Store) fold(id ID) {
	jx := s.impulseX[id].Swap(0)
	jy := s.impulseY[id].Swap(0)
	l := s.angImpulse[id].Swap(0)
	inv := 1 / s.mass[id]
	s.velocity[id] = s.velocity[id].Add(grid.Vec2{X: jx * inv, Y: jy * inv})
	s.angVel[id] += l / s.moment[id]
}

func (s *Store) discard(id ID) {
	s.impulseX[id].Store(0)
	s.impulseY[id].Store(0)
	s.angImpulse[id].Store(0)
}

// Finalize commits the predicted transform. Cells must have finished reading
// the old transform before this runs.
func (s *Store) Finalize(pool *dynamo.Pool) {
	pool.For(s.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			s.turn[i] = s.predAngle[i] - s.angle[i]
			s.angle[i] = s.predAngle[i]
			s.position[i] = s.grid.WrapPosition(s.predPosition[i])
		}
	})
}

// Checkpoint saves velocities and accumulators so that an aborted step can
// be rolled back with Restore.
func (s *Store) Checkpoint() {
	copy(s.saved.velocity, s.velocity)
	copy(s.saved.angVel, s.angVel)
	for i := range s.mass {
		s.saved.impulse[i] = grid.Vec2{X: s.impulseX[i].Load(), Y: s.impulseY[i].Load()}
		s.saved.angImp[i] = s.angImpulse[i].Load()
	}
}

func (s *Store) Restore() {
	copy(s.velocity, s.saved.velocity)
	copy(s.angVel, s.saved.angVel)
	for i := range s.mass {
		s.impulseX[i].Store(s.saved.impulse[i].X)
		s.impulseY[i].Store(s.saved.impulse[i].Y)
		s.angImpulse[i].Store(s.saved.angImp[i])
		s.predPosition[i] = s.position[i]
		s.predAngle[i] = s.angle[i]
		s.contested[i].Store(0)
	}
}

func (s *Store) State(id ID) ObjectState {
	return ObjectState{
		ID:        id,
		Mass:      s.mass[id],
		Moment:    s.moment[id],
		Position:  s.position[id],
		Angle:     s.angle[id],
		Velocity:  s.velocity[id],
		AngVel:    s.angVel[id],
		Contested: s.Contested(id),
	}
}

func (s *Store) Snapshot() []ObjectState {
	out := make([]ObjectState, s.Len())
	for i := range out {
		out[i] = s.State(ID(i))
	}
	return out
}

// Valid reports whether every object has finite state.
func (s *Store) Valid() bool {
	for i := range s.mass {
		if !s.position[i].IsValid() || !s.velocity[i].IsValid() {
			return false
		}
		if math.IsNaN(s.angle[i]) || math.IsInf(s.angle[i], 0) || math.IsNaN(s.angVel[i]) || math.IsInf(s.angVel[i], 0) {
			return false
		}
	}
	return true
}
