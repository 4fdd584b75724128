package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vizkit/domain/dataset"
	"vizkit/internal"
	"vizkit/internal/errors"
)

func newTestReader(mut ...func(*ReaderConfig)) *DataReader {
	cfg := DefaultReaderConfig()
	for _, m := range mut {
		m(&cfg)
	}
	return NewDataReader(cfg, internal.Discard())
}

func TestReadCSVWithHeader(t *testing.T) {
	r := newTestReader()
	src := "region,sales,active,day\nNorth,120,yes,2024-03-01\nSouth,80.5,no,2024-03-02\n"

	ds, err := r.Read(context.Background(), strings.NewReader(src), "csv")
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, []string{"region", "sales", "active", "day"}, ds[0].Fields())
	assert.Equal(t, "North", ds[0].Value("region"))
	assert.Equal(t, 120.0, ds[0].Value("sales"))
	assert.Equal(t, 80.5, ds[1].Value("sales"))
	assert.Equal(t, false, ds[1].Value("active"))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), ds[1].Value("day"))
}

func TestReadCSVPositionalColumns(t *testing.T) {
	r := newTestReader()
	src := "1,2\n3,4,5\n"

	ds, err := r.Read(context.Background(), strings.NewReader(src), "csv")
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, 1.0, ds[0].Value("col0"))
	assert.False(t, ds[0].Has("col2"))
	assert.Equal(t, 5.0, ds[1].Value("col2"))
}

func TestHeaderModes(t *testing.T) {
	src := "a,b\nx,y\n"

	absent := newTestReader(func(c *ReaderConfig) { c.Header = HeaderAbsent })
	ds, err := absent.Read(context.Background(), strings.NewReader(src), "csv")
	require.NoError(t, err)
	assert.Len(t, ds, 2)
	assert.Equal(t, "a", ds[0].Value("col0"))

	present := newTestReader(func(c *ReaderConfig) { c.Header = HeaderPresent })
	ds, err = present.Read(context.Background(), strings.NewReader("1,2\n3,4\n"), "csv")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, 3.0, ds[0].Value("1"))
}

func TestDuplicateHeaderIsData(t *testing.T) {
	r := newTestReader()
	ds, err := r.Read(context.Background(), strings.NewReader("a,a\nb,c\n"), "csv")
	require.NoError(t, err)
	assert.Len(t, ds, 2)
}

func TestReadTSVSkipsBlankRows(t *testing.T) {
	r := newTestReader()
	src := "name\tscore\nann\t3\n\t\nbob\t4\n"

	ds, err := r.Read(context.Background(), strings.NewReader(src), "tsv")
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "bob", ds[1].Value("name"))
	assert.Equal(t, 4.0, ds[1].Value("score"))
}

func TestReadWithoutCoercion(t *testing.T) {
	r := newTestReader(func(c *ReaderConfig) { c.Coerce = false })
	ds, err := r.Read(context.Background(), strings.NewReader("n\n 7 \n"), "csv")
	require.NoError(t, err)
	assert.Equal(t, "7", ds[0].Value("n"))
}

func TestReadJSON(t *testing.T) {
	r := newTestReader()
	ds, err := r.Read(context.Background(), strings.NewReader(`[{"x":1,"y":"a"},{"x":2,"y":"b"}]`), "json")
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, 2.0, ds[1].Value("x"))

	_, err = r.Read(context.Background(), strings.NewReader(`{"x":1}`), "json")
	assert.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestReadUnsupportedFormat(t *testing.T) {
	r := newTestReader()
	_, err := r.Read(context.Background(), strings.NewReader(""), "parquet")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = r.ReadFile(context.Background(), "data.parquet")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestReadFileMissing(t *testing.T) {
	r := newTestReader()
	_, err := r.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeIOError))
	assert.Contains(t, err.Error(), "CSV file not found")
}

func TestReadFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"month", "revenue"},
		{"Jan", 10},
		{"Feb", 12.5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	r := newTestReader()
	ds, err := r.ReadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "Feb", ds[1].Value("month"))
	assert.Equal(t, 12.5, ds[1].Value("revenue"))

	named := newTestReader(func(c *ReaderConfig) { c.Sheet = "Nope" })
	_, err = named.ReadFile(context.Background(), path)
	assert.True(t, errors.HasCode(err, errors.CodeIOError))
}

func TestReadFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n"), 0o644))

	r := newTestReader()
	ds, err := r.ReadFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, 2.0, ds[0].Value("y"))
}

func TestReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestReader()
	_, err := r.Read(ctx, strings.NewReader("x\n1\n"), "csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatFromPath(t *testing.T) {
	f, ok := FormatFromPath("/tmp/DATA.XLSX")
	assert.True(t, ok)
	assert.Equal(t, FormatXLSX, f)

	_, ok = FormatFromPath("notes.txt")
	assert.False(t, ok)

	f, ok = ParseFormat("tab")
	assert.True(t, ok)
	assert.Equal(t, FormatTSV, f)
}

func TestWriteDatasetRoundTrip(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ds := dataset.Dataset{
		dataset.NewRecord("name", "a, b", "n", 1.5, "ok", true, "day", day),
		dataset.NewRecord("name", "c", "n", 2),
	}
	r := newTestReader()

	for _, format := range []Format{FormatCSV, FormatTSV, FormatJSON, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteDataset(&buf, ds, format))

			back, err := r.Read(context.Background(), &buf, string(format))
			require.NoError(t, err)
			require.Len(t, back, 2)
			assert.Equal(t, "a, b", back[0].Value("name"))
			assert.Equal(t, 2.0, back[1].Value("n"))
			assert.Equal(t, true, back[0].Value("ok"))
		})
	}

	assert.True(t, errors.HasCode(WriteDataset(&bytes.Buffer{}, nil, FormatCSV), errors.CodeInvalidInput))
	assert.True(t, errors.HasCode(WriteDataset(&bytes.Buffer{}, ds, "parquet"), errors.CodeInvalidInput))
}
