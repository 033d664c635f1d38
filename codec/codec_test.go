package codec

import (
	"errors"
	"math"
	"strings"
	"testing"

	"llm4time/models"
)

func sampleSeries() models.Series {
	return models.Series{
		{Date: "2025-01-01", Value: 10.123},
		{Date: "2025-01-02", Value: 20.456},
		{Date: "2025-01-03", Value: math.NaN()},
		{Date: "2025-01-04", Value: 30},
	}
}

func seriesEqual(a, b models.Series) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Date != b[i].Date {
			return false
		}
		if math.IsNaN(a[i].Value) != math.IsNaN(b[i].Value) {
			return false
		}
		if !math.IsNaN(a[i].Value) && a[i].Value != b[i].Value {
			return false
		}
	}
	return true
}

func TestRoundTripAllFormats(t *testing.T) {
	c := New()
	series := sampleSeries()
	types := []models.ValueType{models.TypeNumeric, models.TypeTextual}

	for _, f := range models.Formats() {
		if f == models.FormatArray {
			continue
		}
		for _, vt := range types {
			text, err := c.Format(series, f, vt)
			if err != nil {
				t.Fatalf("Format(%s, %s) failed: %v", f, vt, err)
			}
			res, err := c.Parse(text, f, vt)
			if err != nil {
				t.Fatalf("Parse(%s, %s) failed: %v\ntext:\n%s", f, vt, err, text)
			}
			if res.Fallback {
				t.Errorf("Parse(%s, %s) went through the fallback", f, vt)
			}
			if !seriesEqual(series, res.Series) {
				t.Errorf("round trip mismatch for %s/%s:\ngot  %v\nwant %v", f, vt, res.Series, series)
			}
		}
	}
}

func TestFormatCSVExample(t *testing.T) {
	c := New()
	series := models.Series{
		{Date: "2025-01-01", Value: 10.123},
		{Date: "2025-01-02", Value: 20.456},
	}
	got, err := c.Format(series, models.FormatCSV, models.TypeNumeric)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "Date,Value\n2025-01-01,10.123\n2025-01-02,20.456"
	if got != want {
		t.Errorf("unexpected CSV output:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatTextualSpacing(t *testing.T) {
	c := New()
	series := models.Series{{Date: "2025-01-01", Value: 10.123}}
	got, err := c.Format(series, models.FormatCSV, models.TypeTextual)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "Date,Value\n2025-01-01,1 0 . 1 2 3"
	if got != want {
		t.Errorf("unexpected textual output:\ngot  %q\nwant %q", got, want)
	}
}

func TestArrayIsLossy(t *testing.T) {
	c := New()
	series := models.Series{
		{Date: "2025-01-01", Value: 1},
		{Date: "2025-01-02", Value: 2.5},
	}
	text, err := c.Format(series, models.FormatArray, models.TypeNumeric)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if text != "[1, 2.5]" {
		t.Errorf("unexpected array output: %q", text)
	}

	res, err := c.Parse(text, models.FormatArray, models.TypeNumeric)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Series != nil {
		t.Errorf("array parse should not recover timestamps, got %v", res.Series)
	}
	if len(res.Values) != 2 || res.Values[0] != 1 || res.Values[1] != 2.5 {
		t.Errorf("unexpected values: %v", res.Values)
	}
}

func TestParseFallback(t *testing.T) {
	c := New()
	res, err := c.Parse("[1, 2, 3]", models.FormatCSV, models.TypeNumeric)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !res.Fallback {
		t.Error("expected fallback parse")
	}
	if res.Series != nil {
		t.Errorf("fallback must not invent timestamps, got %v", res.Series)
	}
	want := []float64{1, 2, 3}
	if len(res.Values) != len(want) {
		t.Fatalf("unexpected values: %v", res.Values)
	}
	for i := range want {
		if res.Values[i] != want[i] {
			t.Errorf("value %d: got %v, want %v", i, res.Values[i], want[i])
		}
	}
}

func TestParseFallbackErrorsPropagate(t *testing.T) {
	c := New()
	if _, err := c.Parse("[a, b, c]", models.FormatCSV, models.TypeNumeric); err == nil {
		t.Fatal("expected error when the fallback itself cannot decode")
	}
}

func TestParseUnknownTokens(t *testing.T) {
	c := New()
	if _, err := c.Parse("Date,Value", "YAML", models.TypeNumeric); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := c.Parse("Date,Value", models.FormatCSV, "BINARY"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if _, err := c.Format(sampleSeries(), "YAML", models.TypeNumeric); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestMissingSentinel(t *testing.T) {
	c := New()
	series := models.Series{{Date: "2025-01-01", Value: math.NaN()}}
	text, err := c.Format(series, models.FormatCSV, models.TypeNumeric)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(text, "nan") {
		t.Errorf("missing value should serialize as the sentinel, got %q", text)
	}

	// Decoding is case-insensitive.
	for _, token := range []string{"nan", "NaN", "NAN"} {
		res, err := c.Parse("Date,Value\n2025-01-01,"+token, models.FormatCSV, models.TypeNumeric)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", token, err)
		}
		if !math.IsNaN(res.Values[0]) {
			t.Errorf("token %q should decode to NaN, got %v", token, res.Values[0])
		}
	}
}

func TestNormalizeMissingIdempotence(t *testing.T) {
	v, err := DenormalizeMissing(NormalizeMissing(math.NaN()))
	if err != nil {
		t.Fatalf("DenormalizeMissing failed: %v", err)
	}
	if !math.IsNaN(v) {
		t.Errorf("expected NaN, got %v", v)
	}

	got, err := DenormalizeMissing(NormalizeMissing(10.123))
	if err != nil {
		t.Fatalf("DenormalizeMissing failed: %v", err)
	}
	if got != 10.123 {
		t.Errorf("expected exact round trip, got %v", got)
	}
}

func TestNormalizeMissingPlainDecimals(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{1234567, "1234567"},
		{0.5, "0.5"},
		{-42, "-42"},
		{0, "0"},
		{0.0001, "0.0001"},
		{12345678901234.5, "12345678901234.5"},
	}
	for _, c := range cases {
		if got := NormalizeMissing(c.v); got != c.want {
			t.Errorf("NormalizeMissing(%v) = %q, want %q", c.v, got, c.want)
		}
	}

	// Extreme magnitudes may use exponent form but must round-trip.
	for _, v := range []float64{1e21, 3.5e-9} {
		got, err := DenormalizeMissing(NormalizeMissing(v))
		if err != nil {
			t.Fatalf("DenormalizeMissing failed: %v", err)
		}
		if got != v {
			t.Errorf("round trip of %v yielded %v", v, got)
		}
	}
}

func TestSymbolDirections(t *testing.T) {
	c := New()
	series := models.Series{
		{Date: "d1", Value: 10},
		{Date: "d2", Value: 30},
		{Date: "d3", Value: 20},
		{Date: "d4", Value: 20},
	}
	text, err := c.Format(series, models.FormatSymbol, models.TypeNumeric)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	lines := strings.Split(text, "\n")
	wantGlyphs := []string{"→", "↑", "↓", "→"}
	if len(lines) != len(wantGlyphs)+1 {
		t.Fatalf("unexpected line count: %q", text)
	}
	for i, glyph := range wantGlyphs {
		if !strings.HasSuffix(lines[i+1], ","+glyph) {
			t.Errorf("line %d: got %q, want glyph %q", i+1, lines[i+1], glyph)
		}
	}
}

func TestJSONKeepsNumericTokensUnquoted(t *testing.T) {
	c := New()
	series := models.Series{{Date: "2025-01-01", Value: 10.5}}
	text, err := c.Format(series, models.FormatJSON, models.TypeNumeric)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := `[{"Date": "2025-01-01", "Value": 10.5}]`
	if text != want {
		t.Errorf("unexpected JSON output:\ngot  %q\nwant %q", text, want)
	}
}

func TestParseMarkdown(t *testing.T) {
	c := New()
	text := "|Date|Value|\n|---|---|\n|2025-01-01|1|\n|2025-01-02|2|"
	res, err := c.Parse(text, models.FormatMarkdown, models.TypeNumeric)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Series) != 2 || res.Series[0].Date != "2025-01-01" || res.Series[1].Value != 2 {
		t.Errorf("unexpected series: %v", res.Series)
	}
}
