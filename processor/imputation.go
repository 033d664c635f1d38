package processor

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"llm4time/models"
)

const defaultImputeWindow = 3

// Impute fills the missing points of a series with the named strategy and
// returns a new series; the input is never mutated. window feeds the SMA
// and EMA strategies and defaults to 3 when non-positive.
func Impute(ts models.Series, strategy models.ImputationStrategy, window int) (models.Series, error) {
	if window <= 0 {
		window = defaultImputeWindow
	}
	switch strategy {
	case models.ImputeMean:
		return Mean(ts), nil
	case models.ImputeMedian:
		return Median(ts), nil
	case models.ImputeForwardFill:
		return ForwardFill(ts), nil
	case models.ImputeBackwardFill:
		return BackwardFill(ts), nil
	case models.ImputeSMA:
		return SMA(ts, window), nil
	case models.ImputeEMA:
		return EMA(ts, window), nil
	case models.ImputeLinear:
		return Linear(ts), nil
	case models.ImputeSpline:
		return Spline(ts), nil
	case models.ImputeZero:
		return Zero(ts), nil
	}
	return nil, fmt.Errorf("unknown imputation strategy: %q", strategy)
}

func rebuild(ts models.Series, values []float64) models.Series {
	out := ts.Clone()
	for i := range out {
		out[i].Value = values[i]
	}
	return out
}

func validValues(ts models.Series) []float64 {
	var out []float64
	for _, p := range ts {
		if !math.IsNaN(p.Value) {
			out = append(out, p.Value)
		}
	}
	return out
}

// Mean fills missing points with the series mean, rounded to 3 decimals.
func Mean(ts models.Series) models.Series {
	valid := validValues(ts)
	fill := math.NaN()
	if len(valid) > 0 {
		fill = math.Round(stat.Mean(valid, nil)*1000) / 1000
	}
	return fillConst(ts, fill)
}

// Median fills missing points with the series median.
func Median(ts models.Series) models.Series {
	valid := validValues(ts)
	fill := math.NaN()
	if len(valid) > 0 {
		sorted := append([]float64(nil), valid...)
		sort.Float64s(sorted)
		fill = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	}
	return fillConst(ts, fill)
}

// Zero fills missing points with 0.
func Zero(ts models.Series) models.Series {
	return fillConst(ts, 0)
}

func fillConst(ts models.Series, fill float64) models.Series {
	values := ts.Values()
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = fill
		}
	}
	return rebuild(ts, values)
}

// ForwardFill propagates the last valid value forward, then fills any
// leading gap backward.
func ForwardFill(ts models.Series) models.Series {
	values := ts.Values()
	ffill(values)
	bfill(values)
	return rebuild(ts, values)
}

// BackwardFill propagates the next valid value backward, then fills any
// trailing gap forward.
func BackwardFill(ts models.Series) models.Series {
	values := ts.Values()
	bfill(values)
	ffill(values)
	return rebuild(ts, values)
}

func ffill(values []float64) {
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = prev
		} else {
			prev = v
		}
	}
}

func bfill(values []float64) {
	next := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if math.IsNaN(values[i]) {
			values[i] = next
		} else {
			next = values[i]
		}
	}
}

// SMA fills each missing point with the trailing moving average of the
// last window observations, then forward/backward fills any remainder.
func SMA(ts models.Series, window int) models.Series {
	values := ts.Values()
	orig := append([]float64(nil), values...)
	for i, v := range values {
		if !math.IsNaN(v) {
			continue
		}
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum, n := 0.0, 0
		for j := lo; j <= i; j++ {
			if !math.IsNaN(orig[j]) {
				sum += orig[j]
				n++
			}
		}
		if n > 0 {
			values[i] = sum / float64(n)
		}
	}
	ffill(values)
	bfill(values)
	return rebuild(ts, values)
}

// EMA fills each missing point with the running exponential moving average
// (alpha = 2/(span+1)), then forward/backward fills any remainder.
func EMA(ts models.Series, span int) models.Series {
	values := ts.Values()
	alpha := 2.0 / (float64(span) + 1)
	ema := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = ema
			continue
		}
		if math.IsNaN(ema) {
			ema = v
		} else {
			ema += alpha * (v - ema)
		}
	}
	ffill(values)
	bfill(values)
	return rebuild(ts, values)
}

// Linear fills interior gaps by linear interpolation between the nearest
// valid neighbours, then forward/backward fills the edges.
func Linear(ts models.Series) models.Series {
	values := ts.Values()
	interpolateLinear(values)
	ffill(values)
	bfill(values)
	return rebuild(ts, values)
}

func interpolateLinear(values []float64) {
	prev := -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (v - values[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				values[j] = values[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
}

// Spline fills interior gaps with a natural cubic spline over the valid
// points, falling back to linear interpolation when the spline cannot be
// fitted. Edges are forward/backward filled.
func Spline(ts models.Series) models.Series {
	values := ts.Values()
	var xs, ys []float64
	for i, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, float64(i))
			ys = append(ys, v)
		}
	}
	if len(xs) < 3 {
		return Linear(ts)
	}
	var spline interp.NaturalCubic
	if err := spline.Fit(xs, ys); err != nil {
		return Linear(ts)
	}
	lo, hi := int(xs[0]), int(xs[len(xs)-1])
	for i := lo + 1; i < hi; i++ {
		if math.IsNaN(values[i]) {
			values[i] = spline.Predict(float64(i))
		}
	}
	ffill(values)
	bfill(values)
	return rebuild(ts, values)
}
