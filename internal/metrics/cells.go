package metrics

import "github.com/san-kum/cellbody/internal/solver"

// CellLoss is the fraction of the initially owned cells that have vanished.
type CellLoss struct {
	name    string
	initial int
	current int
	samples int
}

func NewCellLoss() *CellLoss {
	return &CellLoss{name: "cell_loss"}
}

func (c *CellLoss) Name() string { return c.name }

func (c *CellLoss) Observe(r *solver.Report) {
	if c.samples == 0 {
		c.initial = r.OwnedBefore
	}
	c.current = r.OwnedAfter
	c.samples++
}

func (c *CellLoss) Value() float64 {
	if c.initial == 0 {
		return 0
	}
	return 1 - float64(c.current)/float64(c.initial)
}

func (c *CellLoss) Reset() {
	c.initial = 0
	c.current = 0
	c.samples = 0
}

// CollisionRate is the mean number of collision records per step.
type CollisionRate struct {
	name    string
	total   int
	samples int
}

func NewCollisionRate() *CollisionRate {
	return &CollisionRate{name: "collision_rate"}
}

func (c *CollisionRate) Name() string { return c.name }

func (c *CollisionRate) Observe(r *solver.Report) {
	c.total += r.Collisions
	c.samples++
}

func (c *CollisionRate) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.total) / float64(c.samples)
}

func (c *CollisionRate) Reset() {
	c.total = 0
	c.samples = 0
}
