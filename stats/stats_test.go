package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	s := Describe([]float64{1, 2, 3, 4, 5, math.NaN()})

	assert.Equal(t, 3.0, s.Mean)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.InDelta(t, 1.5811, s.Std, 1e-9)
	assert.Equal(t, 1, s.MissingCount)
	assert.InDelta(t, 16.6667, s.MissingPercentage, 1e-9)

	// Quantiles stay ordered and inside the observed range.
	assert.True(t, s.Min <= s.FirstQuartile)
	assert.True(t, s.FirstQuartile <= s.Median)
	assert.True(t, s.Median <= s.ThirdQuartile)
	assert.True(t, s.ThirdQuartile <= s.Max)
}

func TestDescribeConstant(t *testing.T) {
	s := Describe([]float64{2, 2, 2, 2})

	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 2.0, s.Median)
	assert.Equal(t, 2.0, s.FirstQuartile)
	assert.Equal(t, 2.0, s.ThirdQuartile)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 0, s.MissingCount)
}

func TestDescribeAllMissing(t *testing.T) {
	s := Describe([]float64{math.NaN(), math.NaN()})

	assert.Equal(t, 2, s.MissingCount)
	assert.Equal(t, 100.0, s.MissingPercentage)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Median))
	assert.True(t, math.IsNaN(s.Std))
}

func TestDescribeSingleValue(t *testing.T) {
	s := Describe([]float64{7})

	assert.Equal(t, 7.0, s.Mean)
	assert.Equal(t, 7.0, s.Min)
	assert.Equal(t, 7.0, s.Max)
	assert.True(t, math.IsNaN(s.Std), "single observation has no sample deviation")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics([]float64{10, 20, 30}, []float64{12, 18, 33})

	assert.Equal(t, 2.33, m.MAE())
	assert.Equal(t, 2.38, m.RMSE())
	assert.Equal(t, 12.74, m.SMAPE())
}

func TestMetricsDropNaNPairs(t *testing.T) {
	m := NewMetrics([]float64{10, math.NaN(), 30}, []float64{12, 18, math.NaN()})

	// Only the first pair survives.
	assert.Equal(t, 2.0, m.MAE())
	assert.Equal(t, 2.0, m.RMSE())
	assert.Equal(t, 18.18, m.SMAPE())
}

func TestMetricsShorterPrediction(t *testing.T) {
	m := NewMetrics([]float64{10, 20, 30}, []float64{10, 20})
	assert.Equal(t, 0.0, m.MAE())
}

func TestMetricsEmpty(t *testing.T) {
	m := NewMetrics(nil, nil)
	assert.True(t, math.IsNaN(m.SMAPE()))
	assert.True(t, math.IsNaN(m.MAE()))
	assert.True(t, math.IsNaN(m.RMSE()))
}

func TestSEM(t *testing.T) {
	assert.InDelta(t, 0.7559, SEM([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.True(t, math.IsNaN(SEM([]float64{1})))
	assert.True(t, math.IsNaN(SEM(nil)))
}

func TestDecompose(t *testing.T) {
	values := []float64{1, 3, 1, 3, 1, 3, 1, 3}
	d := Decompose(values, 2)

	require.Len(t, d.Trend, len(values))
	require.Len(t, d.Seasonal, len(values))
	require.Len(t, d.Residual, len(values))

	// Pure alternation: flat trend, perfectly seasonal.
	for i := 1; i < len(values)-1; i++ {
		assert.InDelta(t, 2.0, d.Trend[i], 1e-9, "trend at %d", i)
	}
	assert.True(t, math.IsNaN(d.Trend[0]))
	assert.True(t, math.IsNaN(d.Trend[len(values)-1]))

	assert.Equal(t, 1.0, d.SeasonalityStrength)
	assert.True(t, math.IsNaN(d.TrendStrength), "a constant trend has no variance to explain")
}

func TestDecomposeTooShort(t *testing.T) {
	d := Decompose([]float64{1, 2, 3}, 2)
	assert.Nil(t, d.Trend)
	assert.True(t, math.IsNaN(d.TrendStrength))
	assert.True(t, math.IsNaN(d.SeasonalityStrength))
}

func TestDecomposeBadPeriod(t *testing.T) {
	d := Decompose([]float64{1, 2, 3, 4}, 1)
	assert.True(t, math.IsNaN(d.TrendStrength))
	assert.True(t, math.IsNaN(d.SeasonalityStrength))
}
