package writer

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"llm4time/models"
	"llm4time/reader"
)

func exportSeries() models.Series {
	return models.Series{
		{Date: "2025-01-01", Value: 1.5},
		{Date: "2025-01-02", Value: math.NaN()},
		{Date: "2025-01-03", Value: 3},
	}
}

func columnIndexFold(tbl models.Table, name string) int {
	for i, c := range tbl.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Every export format must survive a reload through the reader with dates
// intact and missing values as the sentinel token.
func TestSaveSeriesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ts := exportSeries()

	for _, name := range []string{"out.csv", "out.tsv", "out.json", "out.xlsx", "out.parquet"} {
		path := filepath.Join(dir, name)
		if err := SaveSeries(path, ts); err != nil {
			t.Fatalf("SaveSeries(%s) failed: %v", name, err)
		}

		tbl, err := reader.Load(path)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", name, err)
		}
		if len(tbl.Rows) != len(ts) {
			t.Fatalf("%s: got %d rows, want %d", name, len(tbl.Rows), len(ts))
		}
		di := columnIndexFold(tbl, "date")
		vi := columnIndexFold(tbl, "value")
		if di < 0 || vi < 0 {
			t.Fatalf("%s: missing columns in %v", name, tbl.Columns)
		}
		if tbl.Cell(0, di) != "2025-01-01" || tbl.Cell(0, vi) != "1.5" {
			t.Errorf("%s: unexpected first row: %v", name, tbl.Rows[0])
		}
		if got := tbl.Cell(1, vi); got != "nan" {
			t.Errorf("%s: missing value should export as the sentinel, got %q", name, got)
		}
	}
}

func TestSaveSeriesUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := SaveSeries(path, exportSeries()); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
