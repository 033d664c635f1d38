package models

import (
	"fmt"
	"strings"
)

// Format identifies one of the textual serialization conventions for a
// series. The set is closed; the codec rejects anything else.
type Format string

const (
	FormatCSV      Format = "CSV"
	FormatTSV      Format = "TSV"
	FormatCustom   Format = "CUSTOM"
	FormatJSON     Format = "JSON"
	FormatMarkdown Format = "MARKDOWN"
	FormatPlain    Format = "PLAIN"
	FormatContext  Format = "CONTEXT"
	FormatSymbol   Format = "SYMBOL"
	FormatArray    Format = "ARRAY"
)

// Formats lists every member of the closed set.
func Formats() []Format {
	return []Format{
		FormatCSV, FormatTSV, FormatCustom, FormatJSON, FormatMarkdown,
		FormatPlain, FormatContext, FormatSymbol, FormatArray,
	}
}

// ParseFormat maps a config/API string onto the closed set.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format: %q", s)
}

// ValueType selects how a single value is encoded inside serialized text.
type ValueType string

const (
	// TypeNumeric writes the value as a plain decimal token.
	TypeNumeric ValueType = "NUMERIC"
	// TypeTextual writes the decimal form with a space between every
	// character, e.g. 100 -> "1 0 0".
	TypeTextual ValueType = "TEXTUAL"
)

// ParseValueType maps a config/API string onto the closed set.
func ParseValueType(s string) (ValueType, error) {
	t := ValueType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TypeNumeric, TypeTextual:
		return t, nil
	}
	return "", fmt.Errorf("unknown value type: %q", s)
}

// PromptStrategy selects the reasoning/example template used when assembling
// a forecasting prompt.
type PromptStrategy string

const (
	PromptZeroShot PromptStrategy = "ZERO_SHOT"
	PromptFewShot  PromptStrategy = "FEW_SHOT"
	PromptCOT      PromptStrategy = "COT"
	PromptCOTFew   PromptStrategy = "COT_FEW"
	PromptCustom   PromptStrategy = "CUSTOM"
)

// ParsePromptStrategy maps a config/API string onto the closed set.
func ParsePromptStrategy(s string) (PromptStrategy, error) {
	p := PromptStrategy(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PromptZeroShot, PromptFewShot, PromptCOT, PromptCOTFew, PromptCustom:
		return p, nil
	}
	return "", fmt.Errorf("unknown prompt strategy: %q", s)
}

// SamplingStrategy selects how example window pairs are carved out of a
// series.
type SamplingStrategy string

const (
	SamplingFront   SamplingStrategy = "FRONT"
	SamplingBack    SamplingStrategy = "BACK"
	SamplingRandom  SamplingStrategy = "RANDOM"
	SamplingUniform SamplingStrategy = "UNIFORM"
)

// ParseSamplingStrategy maps a config/API string onto the closed set.
func ParseSamplingStrategy(s string) (SamplingStrategy, error) {
	v := SamplingStrategy(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case SamplingFront, SamplingBack, SamplingRandom, SamplingUniform:
		return v, nil
	}
	return "", fmt.Errorf("unknown sampling strategy: %q", s)
}

// DuplicatePolicy decides how duplicate dates are resolved during
// standardization.
type DuplicatePolicy string

const (
	DuplicateKeepNone  DuplicatePolicy = ""
	DuplicateKeepFirst DuplicatePolicy = "first"
	DuplicateKeepLast  DuplicatePolicy = "last"
	DuplicateSum       DuplicatePolicy = "sum"
)

// ParseDuplicatePolicy maps a config/API string onto the closed set.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case DuplicateKeepNone, DuplicateKeepFirst, DuplicateKeepLast, DuplicateSum:
		return p, nil
	}
	return "", fmt.Errorf("unknown duplicate policy: %q", s)
}

// ImputationStrategy names a missing-value fill method.
type ImputationStrategy string

const (
	ImputeMean         ImputationStrategy = "MEAN"
	ImputeMedian       ImputationStrategy = "MEDIAN"
	ImputeForwardFill  ImputationStrategy = "FORWARD_FILL"
	ImputeBackwardFill ImputationStrategy = "BACKWARD_FILL"
	ImputeSMA          ImputationStrategy = "SMA"
	ImputeEMA          ImputationStrategy = "EMA"
	ImputeLinear       ImputationStrategy = "LINEAR"
	ImputeSpline       ImputationStrategy = "SPLINE"
	ImputeZero         ImputationStrategy = "ZERO"
)

// ParseImputationStrategy maps a config/API string onto the closed set.
func ParseImputationStrategy(s string) (ImputationStrategy, error) {
	v := ImputationStrategy(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case ImputeMean, ImputeMedian, ImputeForwardFill, ImputeBackwardFill,
		ImputeSMA, ImputeEMA, ImputeLinear, ImputeSpline, ImputeZero:
		return v, nil
	}
	return "", fmt.Errorf("unknown imputation strategy: %q", s)
}

// Provider identifies a language-model backend.
type Provider string

const (
	ProviderOpenAI   Provider = "OPENAI"
	ProviderAzure    Provider = "AZURE"
	ProviderLMStudio Provider = "LM_STUDIO"
)

// ParseProvider maps a config/API string onto the closed set.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case ProviderOpenAI, ProviderAzure, ProviderLMStudio:
		return p, nil
	}
	return "", fmt.Errorf("unknown provider: %q", s)
}
