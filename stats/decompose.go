package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Decomposition is the additive trend/seasonal split of a series window.
// Component slices align with the input; entries where the centered moving
// average is undefined (the edges) are NaN. The strengths follow the usual
// variance-ratio definition and are NaN when the series is too short, the
// period degenerate, or the variance zero. Degenerate inputs report "not
// computable" instead of failing.
type Decomposition struct {
	Trend               []float64
	Seasonal            []float64
	Residual            []float64
	TrendStrength       float64
	SeasonalityStrength float64
}

// Decompose splits values into trend + seasonal + residual using a centered
// moving average for the trend and phase means for the seasonal component.
func Decompose(values []float64, period int) Decomposition {
	nan := math.NaN()
	d := Decomposition{TrendStrength: nan, SeasonalityStrength: nan}
	if period < 2 || len(values) < 2*period {
		return d
	}

	n := len(values)
	d.Trend = centeredMovingAverage(values, period)

	// Phase means of the detrended series, centred so the seasonal
	// component sums to zero over one period.
	phaseSum := make([]float64, period)
	phaseCount := make([]int, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) || math.IsNaN(d.Trend[i]) {
			continue
		}
		phaseSum[i%period] += values[i] - d.Trend[i]
		phaseCount[i%period]++
	}
	phase := make([]float64, period)
	for p := 0; p < period; p++ {
		if phaseCount[p] > 0 {
			phase[p] = phaseSum[p] / float64(phaseCount[p])
		}
	}
	if mean := floats.Sum(phase) / float64(period); !math.IsNaN(mean) {
		floats.AddConst(-mean, phase)
	}

	d.Seasonal = make([]float64, n)
	d.Residual = make([]float64, n)
	for i := 0; i < n; i++ {
		d.Seasonal[i] = phase[i%period]
		if math.IsNaN(values[i]) || math.IsNaN(d.Trend[i]) {
			d.Residual[i] = nan
			continue
		}
		d.Residual[i] = values[i] - d.Trend[i] - d.Seasonal[i]
	}

	d.TrendStrength = strength(d.Residual, d.Trend)
	d.SeasonalityStrength = strength(d.Residual, d.Seasonal)
	return d
}

// strength computes 1 - Var(resid)/Var(resid+component) over the indexes
// where both are defined, clamped to [0, 1].
func strength(resid, component []float64) float64 {
	var res, sum []float64
	for i := range resid {
		if math.IsNaN(resid[i]) || math.IsNaN(component[i]) {
			continue
		}
		res = append(res, resid[i])
		sum = append(sum, resid[i]+component[i])
	}
	if len(res) < 2 {
		return math.NaN()
	}
	denom := stat.Variance(sum, nil)
	if denom <= 0 {
		return math.NaN()
	}
	s := 1 - stat.Variance(res, nil)/denom
	if s < 0 {
		s = 0
	} else if s > 1 {
		s = 1
	}
	return round(s, 4)
}

// centeredMovingAverage uses a window of size period, with the usual 2×period
// smoothing when the period is even. Windows touching a NaN or the series
// edge yield NaN.
func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	out := make([]float64, n)
	half := period / 2
	for i := 0; i < n; i++ {
		out[i] = math.NaN()
		lo, hi := i-half, i+half
		if period%2 == 1 {
			hi = i + half
		}
		if lo < 0 || hi >= n {
			continue
		}
		sum := 0.0
		ok := true
		if period%2 == 0 {
			// Weighted ends: half weight on the two outermost points.
			for j := lo; j <= hi; j++ {
				v := values[j]
				if math.IsNaN(v) {
					ok = false
					break
				}
				w := 1.0
				if j == lo || j == hi {
					w = 0.5
				}
				sum += w * v
			}
			if ok {
				out[i] = sum / float64(period)
			}
			continue
		}
		for j := lo; j <= hi; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}
