package codec

import (
	"errors"
	"fmt"

	"llm4time/models"
)

// Codec holds the format dispatch tables. The tables are built once by New
// and injected wherever serialization is needed; there is no package-level
// mutable state.
type Codec struct {
	formatters map[models.Format]func([]Pair) string
	parsers    map[models.Format]func(string) ([]Pair, error)
}

// Result is the outcome of Parse. Values is always populated. Series is nil
// when the text carried no timestamps: for the ARRAY format and for anything
// recovered through the fallback path, which is flagged explicitly.
type Result struct {
	Series   models.Series
	Values   []float64
	Fallback bool
}

// New builds a codec with every member of the closed format set registered.
func New() *Codec {
	return &Codec{
		formatters: map[models.Format]func([]Pair) string{
			models.FormatCSV:      toCSV,
			models.FormatTSV:      toTSV,
			models.FormatCustom:   toCustom,
			models.FormatJSON:     toJSON,
			models.FormatMarkdown: toMarkdown,
			models.FormatPlain:    toPlain,
			models.FormatContext:  toContext,
			models.FormatSymbol:   toSymbol,
			models.FormatArray:    toArray,
		},
		parsers: map[models.Format]func(string) ([]Pair, error){
			models.FormatCSV:      fromCSV,
			models.FormatTSV:      fromTSV,
			models.FormatCustom:   fromCustom,
			models.FormatJSON:     fromJSON,
			models.FormatMarkdown: fromMarkdown,
			models.FormatPlain:    fromPlain,
			models.FormatContext:  fromContext,
			models.FormatSymbol:   fromSymbol,
			models.FormatArray:    fromArray,
		},
	}
}

// Format serializes a series: values are encoded per the value type, then
// laid out per the format. Unknown tokens fail fast.
func (c *Codec) Format(s models.Series, f models.Format, t models.ValueType) (string, error) {
	formatter, ok := c.formatters[f]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	pairs, err := EncodeSeries(s, t)
	if err != nil {
		return "", err
	}
	return formatter(pairs), nil
}

// Parse converts serialized text back into values, deserializing per the
// format and decoding per the value type. When the primary path fails with
// a data-shape error the text is reinterpreted as a bare ARRAY of numeric
// values; this is the single designed fallback against a language model
// answering in an unexpected shape, at the cost of losing the timestamps.
// Errors inside the fallback itself propagate: there is no second fallback.
func (c *Codec) Parse(text string, f models.Format, t models.ValueType) (Result, error) {
	parser, ok := c.parsers[f]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	switch t {
	case models.TypeNumeric, models.TypeTextual:
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	res, err := c.parsePrimary(text, parser, f, t)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, ErrMalformed) {
		return Result{}, err
	}
	return c.parseFallback(text)
}

func (c *Codec) parsePrimary(text string, parser func(string) ([]Pair, error), f models.Format, t models.ValueType) (Result, error) {
	pairs, err := parser(text)
	if err != nil {
		return Result{}, err
	}
	if f == models.FormatArray {
		values, err := DecodeValues(pairValues(pairs), t)
		if err != nil {
			return Result{}, err
		}
		return Result{Values: values}, nil
	}
	series, err := DecodeSeries(pairs, t)
	if err != nil {
		return Result{}, err
	}
	return Result{Series: series, Values: series.Values()}, nil
}

func (c *Codec) parseFallback(text string) (Result, error) {
	pairs, err := fromArray(text)
	if err != nil {
		return Result{}, err
	}
	values, err := DecodeValues(pairValues(pairs), models.TypeNumeric)
	if err != nil {
		return Result{}, err
	}
	return Result{Values: values, Fallback: true}, nil
}

func pairValues(pairs []Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Value
	}
	return out
}
