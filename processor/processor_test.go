package processor

import (
	"math"
	"testing"

	"llm4time/models"
)

func table(rows ...[]string) models.Table {
	return models.Table{Columns: []string{"date", "value"}, Rows: rows}
}

func values(ts models.Series) []float64 { return ts.Values() }

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) != math.IsNaN(b[i]) {
			return false
		}
		if !math.IsNaN(a[i]) && math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestStandardizeSortsByDate(t *testing.T) {
	tbl := table(
		[]string{"2025-01-03", "3"},
		[]string{"2025-01-01", "1"},
		[]string{"2025-01-02", "2"},
	)
	ts, err := Standardize(tbl, "date", "value", models.DuplicateKeepNone)
	if err != nil {
		t.Fatalf("Standardize failed: %v", err)
	}
	if !floatsEqual(values(ts), []float64{1, 2, 3}) {
		t.Errorf("unexpected order: %v", ts)
	}
	if ts[0].Date != "2025-01-01" {
		t.Errorf("date strings should be preserved, got %q", ts[0].Date)
	}
}

func TestStandardizeMissingTokens(t *testing.T) {
	tbl := table(
		[]string{"2025-01-01", "nan"},
		[]string{"2025-01-02", ""},
		[]string{"2025-01-03", "NULL"},
	)
	ts, err := Standardize(tbl, "date", "value", models.DuplicateKeepNone)
	if err != nil {
		t.Fatalf("Standardize failed: %v", err)
	}
	if ts.MissingCount() != 3 {
		t.Errorf("expected 3 missing points, got %d", ts.MissingCount())
	}
}

func TestStandardizeMissingColumn(t *testing.T) {
	tbl := table([]string{"2025-01-01", "1"})
	if _, err := Standardize(tbl, "timestamp", "value", models.DuplicateKeepNone); err == nil {
		t.Fatal("expected error for missing date column")
	}
	if _, err := Standardize(tbl, "date", "price", models.DuplicateKeepNone); err == nil {
		t.Fatal("expected error for missing value column")
	}
}

func TestStandardizeBadDate(t *testing.T) {
	tbl := table([]string{"not-a-date", "1"})
	if _, err := Standardize(tbl, "date", "value", models.DuplicateKeepNone); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestStandardizeDuplicates(t *testing.T) {
	tbl := table(
		[]string{"2025-01-01", "1"},
		[]string{"2025-01-01", "2"},
		[]string{"2025-01-02", "5"},
	)
	cases := []struct {
		dup  models.DuplicatePolicy
		want []float64
	}{
		{models.DuplicateKeepNone, []float64{1, 2, 5}},
		{models.DuplicateKeepFirst, []float64{1, 5}},
		{models.DuplicateKeepLast, []float64{2, 5}},
		{models.DuplicateSum, []float64{3, 5}},
	}
	for _, c := range cases {
		ts, err := Standardize(tbl, "date", "value", c.dup)
		if err != nil {
			t.Fatalf("Standardize(%s) failed: %v", c.dup, err)
		}
		if !floatsEqual(values(ts), c.want) {
			t.Errorf("policy %s: got %v, want %v", c.dup, values(ts), c.want)
		}
	}
	if _, err := Standardize(tbl, "date", "value", "KEEP_SOME"); err == nil {
		t.Fatal("expected error for unknown duplicate policy")
	}
}

func TestRegularizeFillsGaps(t *testing.T) {
	ts := models.Series{
		{Date: "2025-01-01", Value: 1},
		{Date: "2025-01-03", Value: 3},
	}
	out, err := Regularize(ts, FreqDaily, "", "")
	if err != nil {
		t.Fatalf("Regularize failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 points, got %v", out)
	}
	if out[1].Date != "2025-01-02" || !math.IsNaN(out[1].Value) {
		t.Errorf("gap should become a missing point, got %v", out[1])
	}
}

func TestRegularizeExplicitRange(t *testing.T) {
	ts := models.Series{{Date: "2025-01-02", Value: 2}}
	out, err := Regularize(ts, FreqDaily, "2025-01-01", "2025-01-03")
	if err != nil {
		t.Fatalf("Regularize failed: %v", err)
	}
	want := []float64{math.NaN(), 2, math.NaN()}
	if !floatsEqual(values(out), want) {
		t.Errorf("got %v, want %v", values(out), want)
	}
}

func TestRegularizeMonthly(t *testing.T) {
	ts := models.Series{
		{Date: "2025-01", Value: 1},
		{Date: "2025-03", Value: 3},
	}
	out, err := Regularize(ts, FreqMonthly, "", "")
	if err != nil {
		t.Fatalf("Regularize failed: %v", err)
	}
	if len(out) != 3 || out[1].Date != "2025-02" {
		t.Errorf("monthly reindex should keep the input layout, got %v", out)
	}
}

func TestSplit(t *testing.T) {
	ts := models.Series{
		{Date: "2025-01-01", Value: 1.00049},
		{Date: "2025-01-02", Value: 2},
		{Date: "2025-01-03", Value: 3},
		{Date: "2025-01-04", Value: 4},
		{Date: "2025-01-05", Value: 5},
	}
	train, yVal, err := Split(ts, "2025-01-01", "2025-01-02", 2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if !floatsEqual(values(train), []float64{1, 2}) {
		t.Errorf("unexpected train values: %v", values(train))
	}
	if !floatsEqual(yVal, []float64{3, 4}) {
		t.Errorf("validation should cap at periods, got %v", yVal)
	}
}

func TestSplitBadDates(t *testing.T) {
	ts := models.Series{{Date: "2025-01-01", Value: 1}}
	if _, _, err := Split(ts, "bogus", "2025-01-02", 1); err == nil {
		t.Fatal("expected error for bad start date")
	}
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" d ")
	if err != nil || f != FreqDaily {
		t.Fatalf("ParseFrequency: got %v, %v", f, err)
	}
	if f.Label() != "day" {
		t.Errorf("unexpected label: %q", f.Label())
	}
	if _, err := ParseFrequency("Q"); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}

func series(vals ...float64) models.Series {
	out := make(models.Series, len(vals))
	for i, v := range vals {
		out[i] = models.Point{Date: "2025-01-01", Value: v}
	}
	return out
}

func TestImputeMean(t *testing.T) {
	nan := math.NaN()
	out := Mean(series(1, nan, 3, nan, 5))
	if !floatsEqual(values(out), []float64{1, 3, 3, 3, 5}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeMedian(t *testing.T) {
	nan := math.NaN()
	out := Median(series(1, nan, 2, 2, 5))
	if !floatsEqual(values(out), []float64{1, 2, 2, 2, 5}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeZero(t *testing.T) {
	nan := math.NaN()
	out := Zero(series(nan, 1))
	if !floatsEqual(values(out), []float64{0, 1}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeForwardFill(t *testing.T) {
	nan := math.NaN()
	out := ForwardFill(series(nan, 2, nan, 4, nan))
	if !floatsEqual(values(out), []float64{2, 2, 2, 4, 4}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeBackwardFill(t *testing.T) {
	nan := math.NaN()
	out := BackwardFill(series(nan, 2, nan, 4, nan))
	if !floatsEqual(values(out), []float64{2, 2, 4, 4, 4}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeLinear(t *testing.T) {
	nan := math.NaN()
	out := Linear(series(1, nan, nan, 4))
	if !floatsEqual(values(out), []float64{1, 2, 3, 4}) {
		t.Errorf("got %v", values(out))
	}

	// Edges fall back to fills.
	out = Linear(series(nan, 2, nan, 4))
	if !floatsEqual(values(out), []float64{2, 2, 3, 4}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeSMA(t *testing.T) {
	nan := math.NaN()
	out := SMA(series(1, nan, nan, 4, nan), 3)
	if !floatsEqual(values(out), []float64{1, 1, 1, 4, 4}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeEMA(t *testing.T) {
	nan := math.NaN()
	out := EMA(series(nan, 2, nan, 4, nan), 3)
	if !floatsEqual(values(out), []float64{2, 2, 2, 4, 3}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeSpline(t *testing.T) {
	nan := math.NaN()
	out := Spline(series(0, 1, nan, 9, 16))
	v := values(out)
	if math.IsNaN(v[2]) {
		t.Fatal("interior gap should be filled")
	}
	if v[2] <= 1 || v[2] >= 9 {
		t.Errorf("spline fill out of range: %v", v[2])
	}

	// Too few valid points falls back to linear.
	out = Spline(series(1, nan, 3))
	if !floatsEqual(values(out), []float64{1, 2, 3}) {
		t.Errorf("got %v", values(out))
	}
}

func TestImputeDispatch(t *testing.T) {
	nan := math.NaN()
	ts := series(1, nan, 3)
	for _, s := range []models.ImputationStrategy{
		models.ImputeMean, models.ImputeMedian, models.ImputeForwardFill,
		models.ImputeBackwardFill, models.ImputeSMA, models.ImputeEMA,
		models.ImputeLinear, models.ImputeSpline, models.ImputeZero,
	} {
		out, err := Impute(ts, s, 0)
		if err != nil {
			t.Fatalf("Impute(%s) failed: %v", s, err)
		}
		if out.MissingCount() != 0 {
			t.Errorf("Impute(%s) left missing points: %v", s, out)
		}
	}
	if _, err := Impute(ts, "ORACLE", 0); err == nil {
		t.Fatal("expected error for unknown imputation strategy")
	}
}

func TestImputeDoesNotMutateInput(t *testing.T) {
	nan := math.NaN()
	ts := series(1, nan, 3)
	if _, err := Impute(ts, models.ImputeMean, 0); err != nil {
		t.Fatalf("Impute failed: %v", err)
	}
	if !math.IsNaN(ts[1].Value) {
		t.Error("input series was mutated")
	}
}
