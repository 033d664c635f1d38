package sampler

import (
	"fmt"
	"math/rand"
	"testing"

	"llm4time/models"
)

func makeSeries(n int) models.Series {
	s := make(models.Series, n)
	for i := range s {
		s[i] = models.Point{Date: fmt.Sprintf("2025-01-%02d", i+1), Value: float64(i)}
	}
	return s
}

// checkPair verifies the invariants every strategy shares: equal window
// lengths and a forecast that starts right after the history.
func checkPair(t *testing.T, data models.Series, p models.WindowPair, windowSize int) {
	t.Helper()
	if len(p.History) != windowSize || len(p.Forecast) != windowSize {
		t.Fatalf("window lengths: history %d, forecast %d, want %d", len(p.History), len(p.Forecast), windowSize)
	}
	histEnd := p.History[len(p.History)-1].Value
	if p.Forecast[0].Value != histEnd+1 {
		t.Fatalf("forecast not contiguous with history: history ends at %v, forecast starts at %v",
			histEnd, p.Forecast[0].Value)
	}
}

func TestFront(t *testing.T) {
	data := makeSeries(16)
	pairs := Front(data, 2, 3)
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	wantStarts := []float64{0, 4, 8}
	for i, p := range pairs {
		checkPair(t, data, p, 2)
		if p.History[0].Value != wantStarts[i] {
			t.Errorf("pair %d starts at %v, want %v", i, p.History[0].Value, wantStarts[i])
		}
	}
}

func TestFrontStopsAtEnd(t *testing.T) {
	data := makeSeries(8)
	pairs := Front(data, 2, 10)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
}

func TestBack(t *testing.T) {
	data := makeSeries(16)
	pairs := Back(data, 2, 2)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	wantStarts := []float64{8, 12}
	for i, p := range pairs {
		checkPair(t, data, p, 2)
		if p.History[0].Value != wantStarts[i] {
			t.Errorf("pair %d starts at %v, want %v", i, p.History[0].Value, wantStarts[i])
		}
	}
	// The most recent points are covered.
	last := pairs[len(pairs)-1]
	if last.Forecast[len(last.Forecast)-1].Value != 15 {
		t.Errorf("back sampling should end at the last point, got %v", last.Forecast)
	}
}

func TestBackCapsSampleCount(t *testing.T) {
	data := makeSeries(16)
	pairs := Back(data, 2, 10)
	for _, p := range pairs {
		checkPair(t, data, p, 2)
	}
	if len(pairs) != 4 {
		t.Fatalf("expected 4 pairs after capping, got %d", len(pairs))
	}
	if pairs[0].History[0].Value != 0 {
		t.Errorf("first capped pair should start at 0, got %v", pairs[0].History[0].Value)
	}
}

func TestRandom(t *testing.T) {
	data := makeSeries(32)
	rng := rand.New(rand.NewSource(42))
	pairs := Random(data, 3, 4, rng)
	if len(pairs) != 4 {
		t.Fatalf("expected 4 pairs, got %d", len(pairs))
	}
	prev := -1.0
	for _, p := range pairs {
		checkPair(t, data, p, 3)
		if p.History[0].Value <= prev {
			t.Errorf("starts not strictly ascending: %v after %v", p.History[0].Value, prev)
		}
		prev = p.History[0].Value
	}

	// Same seed, same picks.
	again := Random(data, 3, 4, rand.New(rand.NewSource(42)))
	for i := range pairs {
		if pairs[i].History[0].Value != again[i].History[0].Value {
			t.Errorf("pair %d differs between identical seeds", i)
		}
	}
}

func TestRandomShortSeries(t *testing.T) {
	data := makeSeries(6)
	pairs := Random(data, 3, 5, rand.New(rand.NewSource(1)))
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair on a minimal series, got %d", len(pairs))
	}
	checkPair(t, data, pairs[0], 3)
}

func TestUniform(t *testing.T) {
	data := makeSeries(20)
	pairs := Uniform(data, 2, 3, 0)
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	wantStarts := []float64{0, 8, 16}
	for i, p := range pairs {
		checkPair(t, data, p, 2)
		if p.History[0].Value != wantStarts[i] {
			t.Errorf("pair %d starts at %v, want %v", i, p.History[0].Value, wantStarts[i])
		}
	}
}

func TestUniformWithStep(t *testing.T) {
	data := makeSeries(20)
	pairs := Uniform(data, 2, 3, 5)
	wantStarts := []float64{0, 5, 10}
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
	for i, p := range pairs {
		if p.History[0].Value != wantStarts[i] {
			t.Errorf("pair %d starts at %v, want %v", i, p.History[0].Value, wantStarts[i])
		}
	}
}

func TestSampleDispatch(t *testing.T) {
	data := makeSeries(16)
	for _, strategy := range []models.SamplingStrategy{
		models.SamplingFront, models.SamplingBack, models.SamplingRandom, models.SamplingUniform,
	} {
		pairs, err := Sample(strategy, data, 2, 2, 0, rand.New(rand.NewSource(7)))
		if err != nil {
			t.Fatalf("Sample(%s) failed: %v", strategy, err)
		}
		if len(pairs) == 0 {
			t.Errorf("Sample(%s) returned no pairs", strategy)
		}
	}
	if _, err := Sample("SPIRAL", data, 2, 2, 0, nil); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
