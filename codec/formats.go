package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction glyphs for the SYMBOL format. The glyph is derived from the
// value column, never stored: the deserializer discards it.
const (
	glyphFlat = "→"
	glyphUp   = "↑"
	glyphDown = "↓"
)

func toCSV(pairs []Pair) string {
	return toDelimited(pairs, ",")
}

func toTSV(pairs []Pair) string {
	return toDelimited(pairs, "\t")
}

func toCustom(pairs []Pair) string {
	return toDelimited(pairs, "|")
}

func toDelimited(pairs []Pair, sep string) string {
	var b strings.Builder
	b.WriteString("Date" + sep + "Value")
	for _, p := range pairs {
		b.WriteString("\n" + p.Date + sep + p.Value)
	}
	return b.String()
}

func toJSON(pairs []Pair) string {
	rows := make([]string, len(pairs))
	for i, p := range pairs {
		rows[i] = fmt.Sprintf(`{"Date": %q, "Value": %s}`, p.Date, jsonValueToken(p.Value))
	}
	return "[" + strings.Join(rows, ", ") + "]"
}

// jsonValueToken keeps numeric tokens as JSON numbers and quotes everything
// else (the sentinel and character-spaced tokens).
func jsonValueToken(token string) string {
	if !IsMissingToken(token) && !strings.Contains(token, " ") {
		if _, err := strconv.ParseFloat(token, 64); err == nil {
			return token
		}
	}
	return strconv.Quote(token)
}

func toMarkdown(pairs []Pair) string {
	var b strings.Builder
	b.WriteString("|Date|Value|\n|---|---|")
	for _, p := range pairs {
		b.WriteString("\n|" + p.Date + "|" + p.Value + "|")
	}
	return b.String()
}

func toPlain(pairs []Pair) string {
	rows := make([]string, len(pairs))
	for i, p := range pairs {
		rows[i] = "Date: " + p.Date + ", Value: " + p.Value
	}
	return strings.Join(rows, "\n")
}

func toContext(pairs []Pair) string {
	var b strings.Builder
	b.WriteString("Date,Value")
	for _, p := range pairs {
		b.WriteString("\n" + p.Date + ",[" + p.Value + "]")
	}
	return b.String()
}

func toSymbol(pairs []Pair) string {
	var b strings.Builder
	b.WriteString("Date,Value,DirectionIndicator")
	prev := 0.0
	prevOK := false
	for _, p := range pairs {
		glyph := glyphFlat
		v, err := tokenNumber(p.Value)
		if err == nil && prevOK {
			switch {
			case v > prev:
				glyph = glyphUp
			case v < prev:
				glyph = glyphDown
			}
		}
		if err == nil {
			prev, prevOK = v, true
		}
		b.WriteString("\n" + p.Date + "," + p.Value + "," + glyph)
	}
	return b.String()
}

// tokenNumber reads the numeric value behind an encoded token so SYMBOL can
// compare neighbours regardless of the value encoding.
func tokenNumber(token string) (float64, error) {
	tok := strings.ReplaceAll(token, " ", "")
	if IsMissingToken(tok) {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(tok, 64)
}

// toArray drops the date column on purpose: ARRAY is the degenerate,
// values-only encoding used as the parse fallback.
func toArray(pairs []Pair) string {
	vals := make([]string, len(pairs))
	for i, p := range pairs {
		vals[i] = p.Value
	}
	return "[" + strings.Join(vals, ", ") + "]"
}
