package solver_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cellbody/internal/body"
	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/scene"
	"github.com/san-kum/cellbody/internal/solver"
)

func newWorld(sc *scene.Scene, mutate func(*solver.Options)) *solver.World {
	opts := solver.DefaultOptions()
	opts.Workers = 4
	opts.MinChunk = 8
	if mutate != nil {
		mutate(&opts)
	}
	w, err := solver.New(sc, opts)
	Expect(err).NotTo(HaveOccurred())
	return w
}

// closingPair places two 3x3 blocks side by side moving into each other.
func closingPair() (*scene.Scene, body.ID, body.ID) {
	sc := scene.New(16, 10, false)
	a := sc.AddRect(2, 3, 3, 3, scene.Motion{Linear: grid.Vec2{X: 1}})
	b := sc.AddRect(5, 3, 3, 3, scene.Motion{Linear: grid.Vec2{X: -1}})
	return sc, a, b
}

var _ = Describe("World", func() {
	ctx := context.Background()

	Describe("a lone block in uniform motion", func() {
		var w *solver.World

		BeforeEach(func() {
			sc := scene.New(32, 16, false)
			sc.AddRect(2, 5, 5, 5, scene.Motion{Linear: grid.Vec2{X: 1}})
			w = newWorld(sc, nil)
		})

		It("never collides and travels exactly one cell per step", func() {
			start := w.Objects().Position(0)
			Expect(start).To(Equal(grid.Vec2{X: 4, Y: 7}))

			for i := 0; i < 10; i++ {
				r, err := w.Step(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(r.Collisions).To(BeZero())
				Expect(r.OwnedAfter).To(Equal(25))
			}

			Expect(w.Objects().Position(0)).To(Equal(start.Add(grid.Vec2{X: 10})))
			snap := w.Snapshot()
			Expect(snap.Owner(12, 5)).To(Equal(body.ID(0)))
			Expect(snap.Owner(16, 9)).To(Equal(body.ID(0)))
			Expect(snap.Owner(11, 7)).To(Equal(body.Null))
		})
	})

	Describe("two blocks closing on each other", func() {
		It("records collisions and reduces the closing velocity", func() {
			sc, a, b := closingPair()
			w := newWorld(sc, nil)

			closing := func() float64 {
				return w.Objects().Velocity(a).X - w.Objects().Velocity(b).X
			}
			Expect(closing()).To(Equal(2.0))

			r, err := w.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Collisions).To(BeNumerically(">=", 1))
			Expect(r.Contacts).To(BeNumerically(">=", 1))
			Expect(r.Impulses).To(BeNumerically(">=", 1))
			Expect(closing()).To(BeNumerically("<", 2.0))
		})
	})

	Describe("an object without cells", func() {
		It("stays put and stays finite", func() {
			sc := scene.New(12, 12, true)
			sc.AddRect(1, 1, 2, 2, scene.Motion{Linear: grid.Vec2{X: 1, Y: 1}})
			ghost := sc.AddObject(scene.Motion{Linear: grid.Vec2{X: 3, Y: -2}, Angular: 1})
			w := newWorld(sc, nil)

			Expect(w.Objects().Inert(ghost)).To(BeTrue())
			before := w.Objects().Position(ghost)
			Expect(w.Run(ctx, 25, nil)).To(Succeed())

			Expect(w.Objects().Valid()).To(BeTrue())
			Expect(w.Objects().Position(ghost)).To(Equal(before))
			Expect(w.Objects().Angle(ghost)).To(BeZero())
		})
	})

	Describe("a crowded wrapping world", func() {
		var w *solver.World

		BeforeEach(func() {
			sc := scene.New(40, 40, true)
			sc.AddRect(4, 4, 6, 4, scene.Motion{Linear: grid.Vec2{X: 1, Y: 0.5}, Angular: 0.05})
			sc.AddDisc(20, 8, 4, scene.Motion{Linear: grid.Vec2{X: -1}, Angular: -0.1})
			sc.AddRect(12, 14, 3, 8, scene.Motion{Linear: grid.Vec2{Y: -1}})
			sc.AddRect(30, 30, 4, 4, scene.Motion{Linear: grid.Vec2{X: -0.7, Y: -0.9}, Angular: 0.2})
			w = newWorld(sc, func(o *solver.Options) { o.CollisionCapacity = 40 * 40 })
		})

		It("never creates cells", func() {
			prev := w.Cells().OwnedCount()
			Expect(w.Run(ctx, 30, func(r *solver.Report) bool {
				Expect(r.OwnedBefore).To(Equal(prev))
				Expect(r.OwnedAfter).To(BeNumerically("<=", r.OwnedBefore))
				prev = r.OwnedAfter
				return true
			})).To(Succeed())
			Expect(w.Cells().OwnedCount()).To(Equal(prev))
		})

		It("lets exactly one source win each destination", func() {
			Expect(w.Run(ctx, 30, func(r *solver.Report) bool {
				m := r.Move
				Expect(m.Moved + m.Contested + m.Dropped).To(Equal(r.OwnedBefore))
				Expect(r.OwnedAfter).To(Equal(m.Moved))
				Expect(r.Collisions).To(Equal(m.Contested))
				Expect(m.Dropped).To(BeZero())
				return true
			})).To(Succeed())
		})

		It("keeps every object finite", func() {
			Expect(w.Run(ctx, 30, nil)).To(Succeed())
			Expect(w.Objects().Valid()).To(BeTrue())
			Expect(w.Steps()).To(Equal(30))
		})
	})

	Describe("collision list overflow", func() {
		It("fails the step and freezes the world", func() {
			sc, _, _ := closingPair()
			w := newWorld(sc, func(o *solver.Options) { o.CollisionCapacity = 1 })

			before := w.Snapshot()
			for i := 0; i < 3; i++ {
				r, err := w.Step(ctx)
				Expect(r).To(BeNil())
				Expect(errors.Is(err, dynamo.ErrCollisionOverflow)).To(BeTrue())

				var se *solver.StepError
				Expect(errors.As(err, &se)).To(BeTrue())
				Expect(se.Step).To(Equal(1))
			}

			after := w.Snapshot()
			Expect(after.Step).To(BeZero())
			Expect(after.Owners).To(Equal(before.Owners))
			Expect(after.Objects).To(Equal(before.Objects))
			Expect(after.Rejection).To(Equal(before.Rejection))
		})
	})
})
