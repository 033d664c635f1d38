package codec

import (
	"fmt"
	"strings"

	"llm4time/models"
)

// Pair is one serialized row: an opaque date string and an already-encoded
// value token. Serializers and deserializers only ever see pairs; the value
// encoding above them decides what the token looks like.
type Pair struct {
	Date  string
	Value string
}

// spaceOut inserts a single space between every character of a token,
// e.g. "100" -> "1 0 0". Character-level spacing gives language models a
// finer tokenization of digit sequences.
func spaceOut(token string) string {
	runes := []rune(token)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

func encodeToken(v float64, t models.ValueType) (string, error) {
	switch t {
	case models.TypeNumeric:
		return NormalizeMissing(v), nil
	case models.TypeTextual:
		return spaceOut(NormalizeMissing(v)), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func decodeToken(token string, t models.ValueType) (float64, error) {
	switch t {
	case models.TypeNumeric:
		return DenormalizeMissing(token)
	case models.TypeTextual:
		return DenormalizeMissing(strings.ReplaceAll(token, " ", ""))
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// EncodeValues encodes a bare value list into one token per value.
func EncodeValues(values []float64, t models.ValueType) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		tok, err := encodeToken(v, t)
		if err != nil {
			return nil, err
		}
		out[i] = tok
	}
	return out, nil
}

// EncodeSeries encodes a (date, value) series into serializable pairs.
func EncodeSeries(s models.Series, t models.ValueType) ([]Pair, error) {
	out := make([]Pair, len(s))
	for i, p := range s {
		tok, err := encodeToken(p.Value, t)
		if err != nil {
			return nil, err
		}
		out[i] = Pair{Date: p.Date, Value: tok}
	}
	return out, nil
}

// DecodeValues decodes one token per value back into floats. A token that
// is neither the sentinel nor a number yields ErrMalformed.
func DecodeValues(tokens []string, t models.ValueType) ([]float64, error) {
	out := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := decodeToken(tok, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DecodeSeries decodes deserialized pairs back into a series, keeping the
// date column intact.
func DecodeSeries(pairs []Pair, t models.ValueType) (models.Series, error) {
	out := make(models.Series, len(pairs))
	for i, p := range pairs {
		v, err := decodeToken(p.Value, t)
		if err != nil {
			return nil, err
		}
		out[i] = models.Point{Date: p.Date, Value: v}
	}
	return out, nil
}
