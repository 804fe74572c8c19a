package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================================
// STATS — Means and confidence intervals
// ============================================================================

// Estimate is a sample mean with its confidence interval.
type Estimate struct {
	Mean  float64
	Lower float64
	Upper float64
	N     int
}

// MeanCI returns the mean of the non-NaN values and the two-sided Student's t
// interval at the given level: mean ± t(1-α/2, n-1)·s/√n.
// A single observation has a zero-width interval. No observations yield N=0
// and a NaN mean.
func MeanCI(values []float64, level float64) Estimate {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	n := len(present)
	switch n {
	case 0:
		return Estimate{Mean: math.NaN(), Lower: math.NaN(), Upper: math.NaN()}
	case 1:
		return Estimate{Mean: present[0], Lower: present[0], Upper: present[0], N: 1}
	}

	mean, std := stat.MeanStdDev(present, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-level)/2)
	half := t * stat.StdErr(std, float64(n))

	return Estimate{Mean: mean, Lower: mean - half, Upper: mean + half, N: n}
}

// measureValues collects a measure over a view.
func measureValues(view RecordView, measure string) []float64 {
	out := make([]float64, view.Len())
	for i := range out {
		out[i] = view.Measure(i, measure)
	}
	return out
}
