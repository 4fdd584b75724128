package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"vizkit/adapters/datareadiness/coercer"
	"vizkit/domain/dataset"
	"vizkit/internal"
	"vizkit/internal/errors"
)

// ctxCheckEvery is how many rows are converted between context checks
const ctxCheckEvery = 1024

// DataReader reads CSV, TSV, JSON and XLSX files into datasets
type DataReader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewDataReader creates a reader with config
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.Header == "" {
		config.Header = HeaderAuto
	}
	return &DataReader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  logger,
	}
}

// ReadFile reads the file at path; the format comes from its extension
func (r *DataReader) ReadFile(ctx context.Context, path string) (dataset.Dataset, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, errors.InvalidInputf("unsupported file type: %s", path)
	}
	r.logger.Debug("[DataReader] Starting to read %s file: %s", format, path)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.IOError(fmt.Sprintf("%s file not found: %s", strings.ToUpper(string(format)), path), err)
		}
		return nil, errors.IOError("open "+path, err)
	}
	defer f.Close()

	return r.Read(ctx, f, string(format))
}

// Read parses a dataset of the given format from src
func (r *DataReader) Read(ctx context.Context, src io.Reader, format string) (dataset.Dataset, error) {
	f, ok := ParseFormat(format)
	if !ok {
		return nil, errors.InvalidInputf("unsupported format: %q", format)
	}
	start := time.Now()

	var (
		ds  dataset.Dataset
		err error
	)
	switch f {
	case FormatJSON:
		ds, err = dataset.Decode(src)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "read json"))
		}
	case FormatXLSX:
		ds, err = r.readExcel(ctx, src)
	default:
		ds, err = r.readDelimited(ctx, src, f)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("[DataReader] %s read in %.2fms (%d records)",
		strings.ToUpper(string(f)), float64(time.Since(start).Nanoseconds())/1e6, len(ds))
	return ds, nil
}

func (r *DataReader) readExcel(ctx context.Context, src io.Reader) (dataset.Dataset, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.IOError("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	return r.processRows(ctx, rows)
}

func (r *DataReader) readDelimited(ctx context.Context, src io.Reader, format Format) (dataset.Dataset, error) {
	reader := csv.NewReader(src)
	if format == FormatTSV {
		reader.Comma = '\t'
		reader.LazyQuotes = true
	}
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "failed to read %s file", format))
	}
	return r.processRows(ctx, rows)
}

// processRows converts raw string rows into records: picks the header,
// drops blank rows and coerces each column to its inferred type
func (r *DataReader) processRows(ctx context.Context, rows [][]string) (dataset.Dataset, error) {
	rows = dropBlank(rows)
	if len(rows) == 0 {
		return dataset.Dataset{}, nil
	}

	var headers []string
	if r.hasHeader(rows[0]) {
		headers = make([]string, len(rows[0]))
		for i, h := range rows[0] {
			headers[i] = strings.TrimSpace(h)
		}
		rows = rows[1:]
	} else {
		width := 0
		for _, row := range rows {
			width = max(width, len(row))
		}
		headers = make([]string, width)
		for i := range headers {
			headers[i] = ColumnName(i)
		}
	}

	types := make([]coercer.ValueType, len(headers))
	if r.config.Coerce {
		for j := range headers {
			column := make([]any, 0, len(rows))
			for _, row := range rows {
				if j < len(row) {
					column = append(column, row[j])
				}
			}
			types[j] = r.coercer.AnalyzeTypeDistribution(column).RecommendedType
		}
	}

	ds := make(dataset.Dataset, 0, len(rows))
	for i, row := range rows {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec := dataset.NewRecord()
		for j, cell := range row {
			if j >= len(headers) {
				break
			}
			if r.config.Coerce {
				rec.Set(headers[j], r.coercer.CoerceAs(cell, types[j]))
			} else {
				rec.Set(headers[j], strings.TrimSpace(cell))
			}
		}
		ds = append(ds, rec)
	}

	r.logger.Debug("[DataReader] processed %d columns, %d rows", len(headers), len(ds))
	return ds, nil
}

// hasHeader applies the header mode. In auto mode the first row is a
// header when its cells are non-empty, unique and not numbers.
func (r *DataReader) hasHeader(first []string) bool {
	switch r.config.Header {
	case HeaderPresent:
		return true
	case HeaderAbsent:
		return false
	}
	seen := make(map[string]bool, len(first))
	for _, cell := range first {
		cell = strings.TrimSpace(cell)
		if cell == "" || seen[cell] {
			return false
		}
		if _, ok := coercer.ParseNumber(cell); ok {
			return false
		}
		seen[cell] = true
	}
	return len(first) > 0
}

func dropBlank(rows [][]string) [][]string {
	kept := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}
