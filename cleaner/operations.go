package cleaner

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/spektr-org/incomelens/errors"
)

// Limits describes what a winsorization did.
type Limits struct {
	Low         float64 // replacement for the low tail, NaN when untouched
	High        float64 // replacement for the high tail, NaN when untouched
	ClippedLow  int
	ClippedHigh int
}

// Winsorize clamps the tails of values by rank and returns a new slice.
//
// With n non-NaN values sorted ascending, the lowest floor(n*lower) values are
// replaced with the value at rank floor(n*lower), and every value ranked at or
// beyond n-floor(n*upper) is replaced with the value at rank n-floor(n*upper)-1.
// NaN values are not ranked and are returned unchanged. Order is preserved.
func Winsorize(values []float64, lower, upper float64) ([]float64, Limits, error) {
	lim := Limits{Low: math.NaN(), High: math.NaN()}
	if lower < 0 || upper < 0 || lower+upper >= 1 {
		return nil, lim, errors.NewValidationError("limits", [2]float64{lower, upper},
			"limits must be non-negative and sum to less than 1")
	}

	out := make([]float64, len(values))
	copy(out, values)

	idx := make([]int, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	n := len(idx)
	if n == 0 {
		return out, lim, nil
	}

	if lowIdx := int(float64(n) * lower); lowIdx > 0 {
		lim.Low = values[idx[lowIdx]]
		for _, i := range idx[:lowIdx] {
			if out[i] != lim.Low {
				lim.ClippedLow++
			}
			out[i] = lim.Low
		}
	}

	if upIdx := n - int(float64(n)*upper); upIdx < n {
		lim.High = values[idx[upIdx-1]]
		for _, i := range idx[upIdx:] {
			if out[i] != lim.High {
				lim.ClippedHigh++
			}
			out[i] = lim.High
		}
	}

	return out, lim, nil
}

// MeanImpute replaces every NaN with the mean of the non-NaN values.
// The mean is computed once, before any replacement. ok is false when there
// is nothing to average; values are then returned unchanged.
func MeanImpute(values []float64) (out []float64, mean float64, filled int, ok bool) {
	out = make([]float64, len(values))
	copy(out, values)

	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return out, math.NaN(), 0, false
	}
	if len(present) == len(values) {
		return out, stat.Mean(present, nil), 0, true
	}

	mean = stat.Mean(present, nil)
	for i, v := range out {
		if math.IsNaN(v) {
			out[i] = mean
			filled++
		}
	}
	return out, mean, filled, true
}

// CountMissing returns how many values are NaN.
func CountMissing(values []float64) int {
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Max returns the largest non-NaN value, or NaN if there is none.
func Max(values []float64) float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN()
	}
	return floats.Max(present)
}
