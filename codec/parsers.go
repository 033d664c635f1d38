package codec

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

func fromCSV(text string) ([]Pair, error) {
	return fromDelimited(text, ",", nil)
}

func fromTSV(text string) ([]Pair, error) {
	return fromDelimited(text, "\t", nil)
}

func fromCustom(text string) ([]Pair, error) {
	return fromDelimited(text, "|", nil)
}

// fromDelimited parses header-first delimited text. The header must name a
// Date and a Value column; extra columns (e.g. SYMBOL's direction glyph)
// are located by name and everything else is discarded. transform, when
// set, post-processes each raw value cell.
func fromDelimited(text, sep string, transform func(string) (string, error)) ([]Pair, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	dateIdx, valueIdx, err := headerIndexes(lines[0], sep)
	if err != nil {
		return nil, err
	}
	out := make([]Pair, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := strings.Split(line, sep)
		if len(cells) <= dateIdx || len(cells) <= valueIdx {
			return nil, fmt.Errorf("%w: row %q has too few columns", ErrMalformed, line)
		}
		value := strings.TrimSpace(cells[valueIdx])
		if transform != nil {
			value, err = transform(value)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, Pair{
			Date:  strings.TrimSpace(cells[dateIdx]),
			Value: value,
		})
	}
	return out, nil
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if l := strings.TrimSpace(line); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func headerIndexes(header, sep string) (dateIdx, valueIdx int, err error) {
	dateIdx, valueIdx = -1, -1
	for i, cell := range strings.Split(header, sep) {
		switch strings.TrimSpace(cell) {
		case "Date":
			dateIdx = i
		case "Value":
			valueIdx = i
		}
	}
	if dateIdx < 0 || valueIdx < 0 {
		return 0, 0, fmt.Errorf("%w: header %q lacks Date/Value columns", ErrMalformed, header)
	}
	return dateIdx, valueIdx, nil
}

func fromJSON(text string) ([]Pair, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]Pair, len(rows))
	for i, row := range rows {
		date, ok := row["Date"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: object %d lacks a Date string", ErrMalformed, i)
		}
		var value string
		switch v := row["Value"].(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		default:
			return nil, fmt.Errorf("%w: object %d lacks a usable Value", ErrMalformed, i)
		}
		out[i] = Pair{Date: date, Value: value}
	}
	return out, nil
}

func fromMarkdown(text string) ([]Pair, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: markdown table needs a header and separator row", ErrMalformed)
	}
	// Drop the |---|---| separator row before parsing.
	rows := append([]string{lines[0]}, lines[2:]...)
	for i, line := range rows {
		rows[i] = strings.Trim(line, "|")
	}
	return fromDelimited(strings.Join(rows, "\n"), "|", nil)
}

var plainRowRe = regexp.MustCompile(`^Date:\s*([^,]+),\s*Value:\s*(.*)$`)

func fromPlain(text string) ([]Pair, error) {
	lines := splitLines(text)
	out := make([]Pair, 0, len(lines))
	for _, line := range lines {
		m := plainRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, Pair{Date: strings.TrimSpace(m[1]), Value: strings.TrimSpace(m[2])})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no \"Date: ..., Value: ...\" lines found", ErrMalformed)
	}
	return out, nil
}

func fromContext(text string) ([]Pair, error) {
	return fromDelimited(text, ",", func(value string) (string, error) {
		return strings.Trim(value, "[]"), nil
	})
}

// fromSymbol reads Date and Value and ignores the direction column: the
// glyph carries no information that is not already in the values.
func fromSymbol(text string) ([]Pair, error) {
	return fromDelimited(text, ",", nil)
}

// fromArray parses the bracketed values-only form. Dates are gone by
// construction, so the resulting pairs carry empty date strings.
func fromArray(text string) ([]Pair, error) {
	body := strings.TrimSpace(text)
	body = strings.Trim(body, "[]")
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: empty array", ErrMalformed)
	}
	cells := strings.Split(body, ",")
	out := make([]Pair, len(cells))
	for i, cell := range cells {
		out[i] = Pair{Value: strings.TrimSpace(cell)}
	}
	return out, nil
}
