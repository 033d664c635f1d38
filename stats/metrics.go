package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const smapeEpsilon = 1e-10

// Metrics scores predicted values against observed ones. Pairs where either
// side is NaN are dropped on construction so a partially-parsed prediction
// still yields defined numbers.
type Metrics struct {
	yVal  []float64
	yPred []float64
}

// NewMetrics pairs observed and predicted values up to the shorter length.
func NewMetrics(yVal, yPred []float64) *Metrics {
	n := len(yVal)
	if len(yPred) < n {
		n = len(yPred)
	}
	m := &Metrics{}
	for i := 0; i < n; i++ {
		if math.IsNaN(yVal[i]) || math.IsNaN(yPred[i]) {
			continue
		}
		m.yVal = append(m.yVal, yVal[i])
		m.yPred = append(m.yPred, yPred[i])
	}
	return m
}

// SMAPE returns the symmetric mean absolute percentage error, in percent,
// rounded to 2 decimals.
func (m *Metrics) SMAPE() float64 {
	if len(m.yVal) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range m.yVal {
		num := math.Abs(m.yVal[i] - m.yPred[i])
		den := (math.Abs(m.yVal[i])+math.Abs(m.yPred[i]))/2 + smapeEpsilon
		sum += num / den
	}
	return round(sum/float64(len(m.yVal))*100, 2)
}

// MAE returns the mean absolute error rounded to 2 decimals.
func (m *Metrics) MAE() float64 {
	if len(m.yVal) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range m.yVal {
		sum += math.Abs(m.yVal[i] - m.yPred[i])
	}
	return round(sum/float64(len(m.yVal)), 2)
}

// RMSE returns the root mean squared error rounded to 2 decimals.
func (m *Metrics) RMSE() float64 {
	if len(m.yVal) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range m.yVal {
		d := m.yVal[i] - m.yPred[i]
		sum += d * d
	}
	return round(math.Sqrt(sum/float64(len(m.yVal))), 2)
}

// SEM returns the standard error of the mean of the given errors, rounded
// to 4 decimals.
func SEM(errors []float64) float64 {
	valid := dropNaN(errors)
	if len(valid) < 2 {
		return math.NaN()
	}
	return round(stat.StdDev(valid, nil)/math.Sqrt(float64(len(valid))), 4)
}
