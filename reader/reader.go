// Package reader loads raw tabular datasets from disk. The file extension
// selects the decoder; every decoder produces the same models.Table shape
// for the preprocessing pipeline.
package reader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	parquetreader "github.com/xitongsys/parquet-go/reader"
	"github.com/xuri/excelize/v2"

	"llm4time/logger"
	"llm4time/models"
)

// Load reads the file at path into a table. Supported extensions:
// .csv, .txt, .tsv, .xlsx, .json, .parquet. Legacy binary .xls is not
// readable by excelize and is rejected up front.
func Load(path string) (models.Table, error) {
	log := logger.GetLogger().WithComponent("reader")

	ext := strings.ToLower(filepath.Ext(path))
	var (
		tbl models.Table
		err error
	)
	switch ext {
	case ".csv", ".txt":
		tbl, err = loadDelimited(path, ',')
	case ".tsv":
		tbl, err = loadDelimited(path, '\t')
	case ".xlsx":
		tbl, err = loadExcel(path)
	case ".xls":
		return models.Table{}, fmt.Errorf("legacy .xls format is not supported, convert %s to .xlsx", path)
	case ".json":
		tbl, err = loadJSON(path)
	case ".parquet":
		tbl, err = loadParquet(path)
	default:
		return models.Table{}, fmt.Errorf("unsupported file extension: %q", ext)
	}
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{"path": path}).Error("failed to load dataset")
		return models.Table{}, err
	}

	logger.IncrementDatasetLoaded()
	log.WithFields(logger.Fields{
		"path":    path,
		"columns": len(tbl.Columns),
		"rows":    len(tbl.Rows),
	}).Info("dataset loaded")
	return tbl, nil
}

func loadDelimited(path string, sep rune) (models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return models.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return models.Table{}, fmt.Errorf("empty file: %s", path)
	}
	return models.Table{Columns: records[0], Rows: records[1:]}, nil
}

func loadExcel(path string) (models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return models.Table{}, fmt.Errorf("no sheets in %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return models.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return models.Table{}, fmt.Errorf("empty sheet: %s", sheets[0])
	}
	return models.Table{Columns: rows[0], Rows: rows[1:]}, nil
}

// loadJSON expects an array of flat objects. Column order follows first
// appearance across the document, matching the usual dataframe reading.
func loadJSON(path string) (models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return models.Table{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return tableFromMaps(raw), nil
}

func loadParquet(path string) (models.Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return models.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := parquetreader.NewParquetReader(fr, nil, 4)
	if err != nil {
		return models.Table{}, fmt.Errorf("read parquet %s: %w", path, err)
	}
	defer pr.ReadStop()

	rows, err := pr.ReadByNumber(int(pr.GetNumRows()))
	if err != nil {
		return models.Table{}, fmt.Errorf("read parquet rows %s: %w", path, err)
	}

	// Round-trip through JSON to get column-name keyed rows regardless of
	// the generated row struct type.
	data, err := json.Marshal(rows)
	if err != nil {
		return models.Table{}, fmt.Errorf("convert parquet rows: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return models.Table{}, fmt.Errorf("convert parquet rows: %w", err)
	}
	return tableFromMaps(raw), nil
}

func tableFromMaps(raw []map[string]any) models.Table {
	var columns []string
	seen := make(map[string]bool)
	for _, row := range raw {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	tbl := models.Table{Columns: columns}
	for _, row := range raw {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cellString(row[c])
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return tbl
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
