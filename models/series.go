package models

import "math"

// Point is a single observation of a time series. Date is kept as an opaque
// string until preprocessing decides how to interpret it. A missing value is
// represented by NaN, never by a sentinel string.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is an ordered sequence of points, ascending by date. After
// Standardize dates are unique; after Regularize they form a contiguous
// range at a fixed step with gaps stored as NaN.
type Series []Point

// WindowPair is a (history, forecast) pair produced by the sampler. Both
// windows have the same length and forecast immediately follows history.
type WindowPair struct {
	History  Series
	Forecast Series
}

// Values returns the value column of the series.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Dates returns the date column of the series.
func (s Series) Dates() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// MissingCount reports how many points carry a NaN value.
func (s Series) MissingCount() int {
	n := 0
	for _, p := range s {
		if math.IsNaN(p.Value) {
			n++
		}
	}
	return n
}

// Clone returns a copy so consumers can treat a series as immutable.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}
