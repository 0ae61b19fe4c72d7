package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Name   string  `json:"name"`
	N      int     `json:"n"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
}

func Summarize(name string, xs []float64) Summary {
	s := Summary{Name: name, N: len(xs)}
	if len(xs) == 0 {
		return s
	}
	s.Total = floats.Sum(xs)
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	if len(xs) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	} else {
		s.Mean = xs[0]
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	s.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%-12s n=%-5d mean=%-10.4g sd=%-10.4g min=%-10.4g p50=%-10.4g p95=%-10.4g max=%.4g",
		s.Name, s.N, s.Mean, s.StdDev, s.Min, s.P50, s.P95, s.Max)
}

// Correlate returns the Pearson correlation of xs and ys, or NaN when either
// is constant or the lengths differ.
func Correlate(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}
	if floats.Min(xs) == floats.Max(xs) || floats.Min(ys) == floats.Max(ys) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
