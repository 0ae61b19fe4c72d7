package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k|^2 for k = 0..n/2 of the mean-removed series.
func PowerSpectrum(xs []float64) []float64 {
	n := len(xs)
	if n < 2 {
		return nil
	}
	mean := stat.Mean(xs, nil)
	centred := make([]float64, n)
	for i, x := range xs {
		centred[i] = x - mean
	}

	coeff := fourier.NewFFT(n).Coefficients(nil, centred)
	power := make([]float64, len(coeff))
	for i, c := range coeff {
		a := cmplx.Abs(c)
		power[i] = a * a
	}
	return power
}

// DominantPeriod returns the period in steps of the strongest non-constant
// component and its power. A flat series returns (0, 0).
func DominantPeriod(xs []float64) (float64, float64) {
	power := PowerSpectrum(xs)
	best, bestPower := 0, 0.0
	for k := 1; k < len(power); k++ {
		if power[k] > bestPower {
			best, bestPower = k, power[k]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(len(xs)) / float64(best), bestPower
}
