package metrics

import "github.com/san-kum/cellbody/internal/solver"

// Sample is one row of a run's step series.
type Sample struct {
	Step        int     `csv:"step" json:"step"`
	Owned       int     `csv:"owned" json:"owned"`
	Lost        int     `csv:"lost" json:"lost"`
	Moved       int     `csv:"moved" json:"moved"`
	Dropped     int     `csv:"dropped" json:"dropped"`
	Collisions  int     `csv:"collisions" json:"collisions"`
	Contacts    int     `csv:"contacts" json:"contacts"`
	Impulses    int     `csv:"impulses" json:"impulses"`
	Energy      float64 `csv:"energy" json:"energy"`
	Momentum    float64 `csv:"momentum" json:"momentum"`
	ElapsedUsec int64   `csv:"elapsed_us" json:"elapsed_us"`
}

func SampleOf(r *solver.Report) Sample {
	return Sample{
		Step:        r.Step,
		Owned:       r.OwnedAfter,
		Lost:        r.Lost(),
		Moved:       r.Move.Moved,
		Dropped:     r.Move.Dropped,
		Collisions:  r.Collisions,
		Contacts:    r.Contacts,
		Impulses:    r.Impulses,
		Energy:      KineticEnergy(r.Objects),
		Momentum:    LinearMomentum(r.Objects).Len(),
		ElapsedUsec: r.Elapsed.Microseconds(),
	}
}

// Recorder keeps a Sample per observed step.
type Recorder struct {
	Samples []Sample
}

func (rec *Recorder) OnStep(r *solver.Report) {
	rec.Samples = append(rec.Samples, SampleOf(r))
}

// Series extracts one column by name as float64s, or nil for an unknown name.
func (rec *Recorder) Series(name string) []float64 {
	pick := column(name)
	if pick == nil {
		return nil
	}
	out := make([]float64, len(rec.Samples))
	for i, s := range rec.Samples {
		out[i] = pick(s)
	}
	return out
}

// Columns lists the names accepted by Series.
var Columns = []string{"owned", "lost", "collisions", "contacts", "impulses", "energy", "momentum", "elapsed_us"}

func column(name string) func(Sample) float64 {
	switch name {
	case "owned":
		return func(s Sample) float64 { return float64(s.Owned) }
	case "lost":
		return func(s Sample) float64 { return float64(s.Lost) }
	case "collisions":
		return func(s Sample) float64 { return float64(s.Collisions) }
	case "contacts":
		return func(s Sample) float64 { return float64(s.Contacts) }
	case "impulses":
		return func(s Sample) float64 { return float64(s.Impulses) }
	case "energy":
		return func(s Sample) float64 { return s.Energy }
	case "momentum":
		return func(s Sample) float64 { return s.Momentum }
	case "elapsed_us":
		return func(s Sample) float64 { return float64(s.ElapsedUsec) }
	}
	return nil
}
