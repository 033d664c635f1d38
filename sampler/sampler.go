// Package sampler carves (history, forecast) window pairs out of a series
// for use as in-prompt examples. Every strategy yields pairs of exactly
// windowSize points each, with the forecast window immediately following
// the history window.
package sampler

import (
	"fmt"
	"math/rand"
	"sort"

	"llm4time/models"
)

// Sample dispatches to the strategy named by the token. step is only
// honoured by the UNIFORM strategy; rng is only consulted by RANDOM and may
// be nil, in which case the shared source is used.
func Sample(strategy models.SamplingStrategy, data models.Series, windowSize, numSamples, step int, rng *rand.Rand) ([]models.WindowPair, error) {
	switch strategy {
	case models.SamplingFront:
		return Front(data, windowSize, numSamples), nil
	case models.SamplingBack:
		return Back(data, windowSize, numSamples), nil
	case models.SamplingRandom:
		return Random(data, windowSize, numSamples, rng), nil
	case models.SamplingUniform:
		return Uniform(data, windowSize, numSamples, step), nil
	}
	return nil, fmt.Errorf("unknown sampling strategy: %q", strategy)
}

func pairAt(data models.Series, start, windowSize int) models.WindowPair {
	return models.WindowPair{
		History:  data[start : start+windowSize],
		Forecast: data[start+windowSize : start+2*windowSize],
	}
}

// Front lays pairs out sequentially from index 0, each consuming
// 2*windowSize points, stopping once a pair would run past the end.
func Front(data models.Series, windowSize, numSamples int) []models.WindowPair {
	var windows []models.WindowPair
	for i := 0; i < numSamples; i++ {
		start := i * 2 * windowSize
		if start+2*windowSize > len(data) {
			break
		}
		windows = append(windows, pairAt(data, start, windowSize))
	}
	return windows
}

// Back mirrors Front from the end of the series, favouring the most recent
// observations. The effective sample count is capped at
// len(data)/windowSize - 1.
func Back(data models.Series, windowSize, numSamples int) []models.WindowPair {
	var windows []models.WindowPair
	if windowSize <= 0 {
		return windows
	}
	total := len(data)/windowSize - 1
	if numSamples > total {
		numSamples = total
	}
	for i := 0; i < numSamples; i++ {
		start := len(data) - (numSamples-i)*windowSize*2
		if start < 0 {
			continue
		}
		windows = append(windows, pairAt(data, start, windowSize))
	}
	return windows
}

// Random draws min(numSamples, maxStart+1) distinct start indexes uniformly
// without replacement from [0, maxStart] and emits them in ascending order,
// so the pick set is random but the output ordering is deterministic.
func Random(data models.Series, windowSize, numSamples int, rng *rand.Rand) []models.WindowPair {
	var windows []models.WindowPair
	maxStart := len(data) - 2*windowSize
	if maxStart < 0 || numSamples <= 0 {
		return windows
	}

	n := numSamples
	if n > maxStart+1 {
		n = maxStart + 1
	}
	var perm []int
	if rng != nil {
		perm = rng.Perm(maxStart + 1)
	} else {
		perm = rand.Perm(maxStart + 1)
	}
	starts := perm[:n]
	sort.Ints(starts)

	for _, start := range starts {
		windows = append(windows, pairAt(data, start, windowSize))
	}
	return windows
}

// Uniform spreads pairs across the whole series. Without a step the start
// indexes are linearly interpolated over [0, maxStart] (integer-truncated);
// with a step it takes every step-th start up to numSamples pairs.
func Uniform(data models.Series, windowSize, numSamples, step int) []models.WindowPair {
	var windows []models.WindowPair
	maxStart := len(data) - 2*windowSize
	if maxStart < 0 || numSamples <= 0 {
		return windows
	}

	var starts []int
	if step <= 0 {
		if numSamples == 1 {
			starts = []int{0}
		} else {
			for i := 0; i < numSamples; i++ {
				starts = append(starts, int(float64(i)*float64(maxStart)/float64(numSamples-1)))
			}
		}
	} else {
		for start := 0; start <= maxStart && len(starts) < numSamples; start += step {
			starts = append(starts, start)
		}
	}

	for _, start := range starts {
		windows = append(windows, pairAt(data, start, windowSize))
	}
	return windows
}
