// Package writer persists series and run outcomes: local exports keyed by
// file extension and an S3 archiver for completed benchmark runs.
package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	parquetwriter "github.com/xitongsys/parquet-go/writer"
	"github.com/xuri/excelize/v2"

	"llm4time/codec"
	"llm4time/logger"
	"llm4time/models"
)

// SeriesRecord is the parquet row layout for an exported series. Missing
// values are written as the "nan" token so the file round-trips through
// the same value parsing as every other source.
type SeriesRecord struct {
	Date  string `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Value string `parquet:"name=value, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// SaveSeries writes a series to path, choosing the encoder from the file
// extension: .csv, .tsv, .json, .xlsx or .parquet.
func SaveSeries(path string, ts models.Series) error {
	log := logger.GetLogger().WithComponent("writer")

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		err = saveDelimited(path, ts, ',')
	case ".tsv":
		err = saveDelimited(path, ts, '\t')
	case ".json":
		err = saveJSON(path, ts)
	case ".xlsx":
		err = saveExcel(path, ts)
	case ".parquet":
		err = saveParquet(path, ts)
	default:
		err = fmt.Errorf("unsupported file extension: %q", ext)
	}
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{"path": path}).Error("failed to save series")
		return err
	}

	log.WithFields(logger.Fields{"path": path, "points": len(ts)}).Info("series saved")
	return nil
}

func saveDelimited(path string, ts models.Series, sep rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = sep
	if err := w.Write([]string{"date", "value"}); err != nil {
		return err
	}
	for _, p := range ts {
		if err := w.Write([]string{p.Date, codec.NormalizeMissing(p.Value)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func saveJSON(path string, ts models.Series) error {
	rows := make([]map[string]string, len(ts))
	for i, p := range ts {
		rows[i] = map[string]string{"date": p.Date, "value": codec.NormalizeMissing(p.Value)}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func saveExcel(path string, ts models.Series) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]string{"date", "value"}); err != nil {
		return err
	}
	for i, p := range ts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]string{p.Date, codec.NormalizeMissing(p.Value)}); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func saveParquet(path string, ts models.Series) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer fw.Close()

	pw, err := parquetwriter.NewParquetWriter(fw, new(SeriesRecord), 4)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, p := range ts {
		record := SeriesRecord{Date: p.Date, Value: codec.NormalizeMissing(p.Value)}
		if err := pw.Write(record); err != nil {
			pw.WriteStop()
			return fmt.Errorf("write parquet record: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet writing: %w", err)
	}
	return nil
}
