// Package prompt assembles forecasting prompts from a training series, a
// serialization format and a prompting strategy. Templates are standard
// text/template with snake_case variables, so user-supplied templates use
// the same placeholder set as the built-in ones.
package prompt

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"text/template"

	"llm4time/codec"
	"llm4time/models"
	"llm4time/sampler"
	"llm4time/stats"
)

// Legacy few-shot layout: four fixed windows of 24 points each.
const (
	legacyWindowSize = 24
	legacyWindows    = 4
	legacyMinPoints  = legacyWindows * legacyWindowSize
)

// ErrSizing reports a series too short for the requested example layout.
var ErrSizing = errors.New("series too short for requested examples")

// Params controls one prompt assembly. WindowSize defaults to Periods when
// zero; Step and Rand are only consulted by the UNIFORM and RANDOM sampling
// strategies respectively.
type Params struct {
	Strategy  models.PromptStrategy
	Format    models.Format
	ValueType models.ValueType

	// Periods is the forecast horizon the model is asked for.
	Periods int
	// Freq is the human label of the series frequency, e.g. "day".
	Freq string

	// NumExamples selects sampler-built example pairs; zero switches the
	// example-bearing strategies to the fixed four-window layout.
	NumExamples int
	Sampling    models.SamplingStrategy
	WindowSize  int
	Step        int
	Rand        *rand.Rand

	// SeasonalPeriod feeds the decomposition behind the strength
	// statistics; below 2 the strengths render as "nan".
	SeasonalPeriod int

	// CustomTemplate is required by the CUSTOM strategy and ignored
	// otherwise.
	CustomTemplate string
}

// Assembler renders prompts using an injected codec for all series
// serialization.
type Assembler struct {
	codec *codec.Codec
}

func NewAssembler(c *codec.Codec) *Assembler {
	return &Assembler{codec: c}
}

// Generate assembles the prompt for the given training series. Every
// placeholder the template mentions must resolve; a custom template naming
// an unknown variable fails rather than rendering a hole.
func (a *Assembler) Generate(train models.Series, p Params) (string, error) {
	if p.Periods <= 0 {
		return "", fmt.Errorf("prompt: periods must be positive, got %d", p.Periods)
	}
	src, err := templateSource(p)
	if err != nil {
		return "", err
	}

	vars, err := a.buildVars(train, p)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(string(p.Strategy)).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("prompt: parse template: %w", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("prompt: render template: %w", err)
	}
	return buf.String(), nil
}

func templateSource(p Params) (string, error) {
	switch p.Strategy {
	case models.PromptZeroShot:
		return zeroShotTemplate, nil
	case models.PromptFewShot:
		return fewShotTemplate, nil
	case models.PromptCOT:
		return cotTemplate, nil
	case models.PromptCOTFew:
		return cotFewTemplate, nil
	case models.PromptCustom:
		if strings.TrimSpace(p.CustomTemplate) == "" {
			return "", errors.New("prompt: CUSTOM strategy requires a template")
		}
		return p.CustomTemplate, nil
	}
	return "", fmt.Errorf("prompt: unknown strategy: %q", p.Strategy)
}

// buildVars computes the full variable set. All variables are always
// populated, whichever template is in play, so custom templates may mix
// statistics and examples freely.
func (a *Assembler) buildVars(train models.Series, p Params) (map[string]any, error) {
	windowSize := p.WindowSize
	if windowSize <= 0 {
		windowSize = p.Periods
	}

	input, err := a.codec.Format(train, p.Format, p.ValueType)
	if err != nil {
		return nil, err
	}
	inputExample, err := a.codec.Format(head(train, 4), p.Format, p.ValueType)
	if err != nil {
		return nil, err
	}
	outputExample, err := a.codec.Format(head(train, p.Periods), p.Format, p.ValueType)
	if err != nil {
		return nil, err
	}

	examples, exampleLen, err := a.buildExamples(train, p, windowSize)
	if err != nil {
		return nil, err
	}

	values := train.Values()
	summary := stats.Describe(values)
	decomp := stats.Decompose(values, p.SeasonalPeriod)

	freq := p.Freq
	if freq == "" {
		freq = "period"
	}

	return map[string]any{
		"n_periods_input":      len(train),
		"n_periods_forecast":   p.Periods,
		"n_periods_example":    exampleLen,
		"freq":                 freq,
		"input":                input,
		"input_example":        inputExample,
		"output_example":       outputExample,
		"examples":             examples,
		"mean":                 codec.NormalizeMissing(summary.Mean),
		"median":               codec.NormalizeMissing(summary.Median),
		"std":                  codec.NormalizeMissing(summary.Std),
		"min":                  codec.NormalizeMissing(summary.Min),
		"max":                  codec.NormalizeMissing(summary.Max),
		"first_quartile":       codec.NormalizeMissing(summary.FirstQuartile),
		"third_quartile":       codec.NormalizeMissing(summary.ThirdQuartile),
		"trend_strength":       codec.NormalizeMissing(decomp.TrendStrength),
		"seasonality_strength": codec.NormalizeMissing(decomp.SeasonalityStrength),
	}, nil
}

// buildExamples renders the examples block and reports the per-example
// window length. With NumExamples > 0 the pairs come from the configured
// sampler; otherwise the fixed four-window layout over the first 96 points
// is used, matching the original few-shot prompts.
func (a *Assembler) buildExamples(train models.Series, p Params, windowSize int) (string, int, error) {
	if p.NumExamples > 0 {
		required := p.NumExamples * windowSize * 2
		if len(train) < required {
			return "", 0, fmt.Errorf("%w: need %d points for %d examples of window %d, have %d",
				ErrSizing, required, p.NumExamples, windowSize, len(train))
		}
		sampling := p.Sampling
		if sampling == "" {
			sampling = models.SamplingBack
		}
		pairs, err := sampler.Sample(sampling, train, windowSize, p.NumExamples, p.Step, p.Rand)
		if err != nil {
			return "", 0, err
		}
		var blocks []string
		for i, pair := range pairs {
			hist, err := a.codec.Format(pair.History, p.Format, p.ValueType)
			if err != nil {
				return "", 0, err
			}
			fc, err := a.codec.Format(pair.Forecast, p.Format, p.ValueType)
			if err != nil {
				return "", 0, err
			}
			blocks = append(blocks, fmt.Sprintf("Example %d:\nInput:\n%s\nOutput:\n%s", i+1, hist, fc))
		}
		return strings.Join(blocks, "\n\n"), windowSize, nil
	}

	if p.Strategy != models.PromptFewShot && p.Strategy != models.PromptCOTFew {
		return "", windowSize, nil
	}
	if len(train) < legacyMinPoints {
		return "", 0, fmt.Errorf("%w: fixed window layout needs %d points, have %d",
			ErrSizing, legacyMinPoints, len(train))
	}
	base := train[:legacyMinPoints]
	var blocks []string
	for i := 0; i < legacyWindows; i++ {
		window := base[i*legacyWindowSize : (i+1)*legacyWindowSize]
		text, err := a.codec.Format(window, p.Format, p.ValueType)
		if err != nil {
			return "", 0, err
		}
		blocks = append(blocks, fmt.Sprintf("Example %d:\n%s", i+1, text))
	}
	return strings.Join(blocks, "\n\n"), legacyWindowSize, nil
}

func head(s models.Series, n int) models.Series {
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
