// Package stats provides the descriptive statistics, decomposition and
// error metrics consumed by the prompt assembler and the benchmark runner.
// Vector numerics are delegated to gonum.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the descriptive statistics of one window of values.
// Fields are NaN when there is not a single valid observation.
type Summary struct {
	Mean              float64
	Median            float64
	Std               float64
	Min               float64
	Max               float64
	FirstQuartile     float64
	ThirdQuartile     float64
	MissingCount      int
	MissingPercentage float64
}

// Describe computes a Summary over the values, ignoring NaN entries.
// Std uses the sample correction (n-1). Results are rounded to 4 decimals.
func Describe(values []float64) Summary {
	valid := dropNaN(values)

	s := Summary{MissingCount: len(values) - len(valid)}
	if len(values) > 0 {
		s.MissingPercentage = round(float64(s.MissingCount)/float64(len(values))*100, 4)
	}
	if len(valid) == 0 {
		nan := math.NaN()
		s.Mean, s.Median, s.Std, s.Min, s.Max = nan, nan, nan, nan, nan
		s.FirstQuartile, s.ThirdQuartile = nan, nan
		return s
	}

	sorted := append([]float64(nil), valid...)
	sort.Float64s(sorted)

	s.Mean = round(stat.Mean(valid, nil), 4)
	s.Median = round(stat.Quantile(0.5, stat.LinInterp, sorted, nil), 4)
	s.FirstQuartile = round(stat.Quantile(0.25, stat.LinInterp, sorted, nil), 4)
	s.ThirdQuartile = round(stat.Quantile(0.75, stat.LinInterp, sorted, nil), 4)
	s.Min = round(sorted[0], 4)
	s.Max = round(sorted[len(sorted)-1], 4)
	if len(valid) > 1 {
		s.Std = round(stat.StdDev(valid, nil), 4)
	} else {
		s.Std = math.NaN()
	}
	return s
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
