package excel

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Format is a supported input file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, bool) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseFormat accepts a format name or extension, case-insensitively
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, true
	case FormatTSV, "tab":
		return FormatTSV, true
	case FormatJSON:
		return FormatJSON, true
	case FormatXLSX, "xlsm":
		return FormatXLSX, true
	}
	return "", false
}

// ColumnName is the positional name of column i in a headerless file
func ColumnName(i int) string {
	return "col" + strconv.Itoa(i)
}
