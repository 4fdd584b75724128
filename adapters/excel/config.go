package excel

import (
	"vizkit/adapters/datareadiness/coercer"
)

// HeaderMode says whether the first row names the columns
type HeaderMode string

const (
	HeaderAuto    HeaderMode = "auto"    // header when the first row looks like one
	HeaderPresent HeaderMode = "present" // first row is always the header
	HeaderAbsent  HeaderMode = "absent"  // columns are named col0..colN
)

// ReaderConfig holds configuration for reading tabular files
type ReaderConfig struct {
	Sheet          string                 `json:"sheet" toml:"sheet"` // XLSX sheet, first sheet when empty
	Header         HeaderMode             `json:"header" toml:"header"`
	Coerce         bool                   `json:"coerce" toml:"coerce"` // infer column types; otherwise cells stay strings
	CoercionConfig coercer.CoercionConfig `json:"coercion_config" toml:"coercion"`
}

// DefaultReaderConfig returns sensible defaults for tabular files
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Header:         HeaderAuto,
		Coerce:         true,
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
