package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"vizkit/domain/dataset"
	"vizkit/internal/errors"
)

// WriteDataset writes ds in format with a header row of the union of its
// fields. Missing values are left empty.
func WriteDataset(w io.Writer, ds dataset.Dataset, format Format) error {
	if ds == nil {
		return errors.NotADataset("write")
	}
	switch format {
	case FormatJSON:
		if err := ds.Encode(w); err != nil {
			return errors.IOError("write json", err)
		}
		return nil
	case FormatXLSX:
		return writeExcel(w, ds)
	case FormatCSV, FormatTSV:
		return writeDelimited(w, ds, format)
	}
	return errors.InvalidInputf("unsupported format: %q", format)
}

func writeDelimited(w io.Writer, ds dataset.Dataset, format Format) error {
	cw := csv.NewWriter(w)
	if format == FormatTSV {
		cw.Comma = '\t'
	}
	headers := ds.Fields()
	if err := cw.Write(headers); err != nil {
		return errors.IOError("write header", err)
	}
	row := make([]string, len(headers))
	for _, rec := range ds {
		for j, field := range headers {
			row[j] = cellText(rec, field)
		}
		if err := cw.Write(row); err != nil {
			return errors.IOError("write row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.IOError("flush "+string(format), err)
	}
	return nil
}

func cellText(rec *dataset.Record, field string) string {
	if rec == nil {
		return ""
	}
	switch v := rec.Value(field).(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func writeExcel(w io.Writer, ds dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := ds.Fields()
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.IOError("write header", err)
	}

	for i, rec := range ds {
		row := make([]any, len(headers))
		for j, field := range headers {
			if rec != nil {
				row[j] = rec.Value(field)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WithCode(errors.CodeInternalError, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.IOError("write row", err)
		}
	}
	if err := f.Write(w); err != nil {
		return errors.IOError("write xlsx", err)
	}
	return nil
}
