// Package processor turns raw tabular uploads into clean (date, value)
// series: column standardization, duplicate resolution, frequency
// regularization, train/validation splitting and missing-value imputation.
package processor

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"llm4time/models"
)

// Frequency names the fixed step of a regularized series.
type Frequency string

const (
	FreqHourly  Frequency = "H"
	FreqDaily   Frequency = "D"
	FreqWeekly  Frequency = "W"
	FreqMonthly Frequency = "M"
)

// ParseFrequency maps a config/API string onto the closed set.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	switch f {
	case FreqHourly, FreqDaily, FreqWeekly, FreqMonthly:
		return f, nil
	}
	return "", fmt.Errorf("unknown frequency: %q", s)
}

// Label returns the human word used in prompt text for one step.
func (f Frequency) Label() string {
	switch f {
	case FreqHourly:
		return "hour"
	case FreqDaily:
		return "day"
	case FreqWeekly:
		return "week"
	case FreqMonthly:
		return "month"
	}
	return "period"
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

func parseDate(s string) (time.Time, string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unparseable date: %q", s)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable value: %q", s)
	}
	return v, nil
}

type stampedPoint struct {
	at    time.Time
	point models.Point
}

// Standardize selects the date and value columns out of a raw table,
// parses them, sorts ascending by date and resolves duplicate dates per
// the policy. The resulting series keeps the original date strings.
func Standardize(tbl models.Table, dateCol, valueCol string, dup models.DuplicatePolicy) (models.Series, error) {
	di := tbl.ColumnIndex(dateCol)
	if di < 0 {
		return nil, fmt.Errorf("standardize: missing date column %q", dateCol)
	}
	vi := tbl.ColumnIndex(valueCol)
	if vi < 0 {
		return nil, fmt.Errorf("standardize: missing value column %q", valueCol)
	}

	stamped := make([]stampedPoint, 0, len(tbl.Rows))
	for r := range tbl.Rows {
		at, _, err := parseDate(tbl.Cell(r, di))
		if err != nil {
			return nil, fmt.Errorf("standardize: row %d: %w", r, err)
		}
		v, err := parseValue(tbl.Cell(r, vi))
		if err != nil {
			return nil, fmt.Errorf("standardize: row %d: %w", r, err)
		}
		stamped = append(stamped, stampedPoint{
			at:    at,
			point: models.Point{Date: strings.TrimSpace(tbl.Cell(r, di)), Value: v},
		})
	}
	sort.SliceStable(stamped, func(i, j int) bool { return stamped[i].at.Before(stamped[j].at) })

	return resolveDuplicates(stamped, dup)
}

func resolveDuplicates(stamped []stampedPoint, dup models.DuplicatePolicy) (models.Series, error) {
	out := make(models.Series, 0, len(stamped))
	switch dup {
	case models.DuplicateKeepNone:
		for _, sp := range stamped {
			out = append(out, sp.point)
		}
	case models.DuplicateKeepFirst:
		seen := make(map[time.Time]bool)
		for _, sp := range stamped {
			if seen[sp.at] {
				continue
			}
			seen[sp.at] = true
			out = append(out, sp.point)
		}
	case models.DuplicateKeepLast:
		last := make(map[time.Time]int)
		for _, sp := range stamped {
			if i, ok := last[sp.at]; ok {
				out[i] = sp.point
				continue
			}
			last[sp.at] = len(out)
			out = append(out, sp.point)
		}
	case models.DuplicateSum:
		idx := make(map[time.Time]int)
		for _, sp := range stamped {
			i, ok := idx[sp.at]
			if !ok {
				idx[sp.at] = len(out)
				out = append(out, sp.point)
				continue
			}
			// Summing with a missing side follows float addition: the
			// slot stays missing.
			out[i].Value += sp.point.Value
		}
	default:
		return nil, fmt.Errorf("standardize: unknown duplicate policy: %q", dup)
	}
	return out, nil
}

// Regularize reindexes a standardized series onto a contiguous date range
// at the given frequency. Dates absent from the input become missing
// points. Empty start/end default to the series bounds. Output dates use
// the layout of the first input date.
func Regularize(ts models.Series, freq Frequency, start, end string) (models.Series, error) {
	step, err := stepper(freq)
	if err != nil {
		return nil, err
	}
	if len(ts) == 0 && (start == "" || end == "") {
		return nil, fmt.Errorf("regularize: empty series needs explicit start and end")
	}

	layout := ""
	byTime := make(map[time.Time]float64, len(ts))
	var minAt, maxAt time.Time
	for i, p := range ts {
		at, l, err := parseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("regularize: %w", err)
		}
		if layout == "" {
			layout = l
		}
		byTime[at] = p.Value
		if i == 0 || at.Before(minAt) {
			minAt = at
		}
		if i == 0 || at.After(maxAt) {
			maxAt = at
		}
	}

	from, to := minAt, maxAt
	if start != "" {
		at, l, err := parseDate(start)
		if err != nil {
			return nil, fmt.Errorf("regularize: start: %w", err)
		}
		from = at
		if layout == "" {
			layout = l
		}
	}
	if end != "" {
		at, _, err := parseDate(end)
		if err != nil {
			return nil, fmt.Errorf("regularize: end: %w", err)
		}
		to = at
	}

	var out models.Series
	for at := from; !at.After(to); at = step(at) {
		v, ok := byTime[at]
		if !ok {
			v = math.NaN()
		}
		out = append(out, models.Point{Date: at.Format(layout), Value: v})
	}
	return out, nil
}

func stepper(freq Frequency) (func(time.Time) time.Time, error) {
	switch freq {
	case FreqHourly:
		return func(t time.Time) time.Time { return t.Add(time.Hour) }, nil
	case FreqDaily:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }, nil
	case FreqWeekly:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }, nil
	case FreqMonthly:
		return func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }, nil
	}
	return nil, fmt.Errorf("unknown frequency: %q", freq)
}

// Split cuts a series into the training window [startDate, endDate] and
// the validation values strictly after endDate, capped at periods entries.
// Values on both sides are rounded to 3 decimals.
func Split(ts models.Series, startDate, endDate string, periods int) (models.Series, []float64, error) {
	from, _, err := parseDate(startDate)
	if err != nil {
		return nil, nil, fmt.Errorf("split: start: %w", err)
	}
	to, _, err := parseDate(endDate)
	if err != nil {
		return nil, nil, fmt.Errorf("split: end: %w", err)
	}

	var train models.Series
	var yVal []float64
	for _, p := range ts {
		at, _, err := parseDate(p.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("split: %w", err)
		}
		switch {
		case at.Before(from):
		case !at.After(to):
			train = append(train, models.Point{Date: p.Date, Value: round3(p.Value)})
		case len(yVal) < periods:
			yVal = append(yVal, round3(p.Value))
		}
	}
	return train, yVal, nil
}

func round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*1000) / 1000
}
