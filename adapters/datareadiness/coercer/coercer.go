package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vizkit/domain/dataset"
)

// ValueType is the inferred type of a column
type ValueType string

const (
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeString    ValueType = "string"
)

// TypeCoercer handles deterministic type coercion of raw cell values
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold" toml:"numeric_threshold"`     // share of values that must parse as numbers
	BooleanThreshold   float64 `json:"boolean_threshold" toml:"boolean_threshold"`     // share of values that must parse as booleans
	TimestampThreshold float64 `json:"timestamp_threshold" toml:"timestamp_threshold"` // share of values that must parse as timestamps
	Lenient            bool    `json:"lenient" toml:"lenient"`                         // accept currency, grouping and parenthesised negatives
	NormalizeStrings   bool    `json:"normalize_strings" toml:"normalize_strings"`     // collapse whitespace and drop control chars
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		BooleanThreshold:   0.9,
		TimestampThreshold: 0.8,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// ParseNumber accepts a string only when the whole of it, minus surrounding
// whitespace, is a finite number. This is the rule data cleaning applies.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// CoerceNumeric converts numeric-looking strings to float64 and normalizes
// everything else; it is what Clean applies to every value
func (c *TypeCoercer) CoerceNumeric(raw any) any {
	if s, ok := raw.(string); ok {
		if v, ok := c.tryParseNumeric(s); ok {
			return v
		}
		return s
	}
	return dataset.Normalize(raw)
}

// CoerceValue converts a raw cell into the most specific scalar it parses as.
// Empty cells become nil.
func (c *TypeCoercer) CoerceValue(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return dataset.Normalize(raw)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if v, ok := c.tryParseNumeric(s); ok {
		return v
	}
	if b, ok := tryParseBoolean(s); ok {
		return b
	}
	if t, ok := tryParseTimestamp(s); ok {
		return t
	}
	return c.coerceToString(s)
}

// CoerceAs converts a raw cell to a fixed column type; cells that do not
// parse keep their string form so nothing is silently lost
func (c *TypeCoercer) CoerceAs(raw any, typ ValueType) any {
	s, ok := raw.(string)
	if !ok {
		return dataset.Normalize(raw)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	switch typ {
	case ValueTypeNumeric:
		if v, ok := c.tryParseNumeric(s); ok {
			return v
		}
	case ValueTypeBoolean:
		if b, ok := tryParseBoolean(s); ok {
			return b
		}
	case ValueTypeTimestamp:
		if t, ok := tryParseTimestamp(s); ok {
			return t
		}
	}
	return c.coerceToString(s)
}

// AnalyzeTypeDistribution analyzes a column sample to pick a coercion type
func (c *TypeCoercer) AnalyzeTypeDistribution(values []any) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, val := range values {
		s, isString := val.(string)
		if val == nil || (isString && strings.TrimSpace(s) == "") {
			continue
		}
		analysis.ValidCount++
		if !isString {
			if dataset.IsNumber(val) {
				analysis.NumericCount++
			}
			continue
		}
		if _, ok := c.tryParseNumeric(s); ok {
			analysis.NumericCount++
		}
		if _, ok := tryParseBoolean(s); ok {
			analysis.BooleanCount++
		}
		if _, ok := tryParseTimestamp(s); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

func (c *TypeCoercer) coerceToString(s string) any {
	if c.config.NormalizeStrings {
		s = normalizeString(s)
		if s == "" {
			return nil
		}
	}
	return s
}

func (c *TypeCoercer) tryParseNumeric(s string) (float64, bool) {
	if v, ok := ParseNumber(s); ok {
		return v, true
	}
	if !c.config.Lenient {
		return 0, false
	}
	return parseLenient(s)
}

// parseLenient handles accounting formats: parentheses for negatives,
// currency symbols, percent signs and thousands separators
func parseLenient(s string) (float64, bool) {
	clean := strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		clean = strings.ReplaceAll(clean, symbol, "")
	}
	clean = strings.TrimSpace(clean)

	hasComma := strings.Contains(clean, ",")
	hasPeriod := strings.Contains(clean, ".")
	hasSpace := strings.Contains(clean, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56
		idx := strings.LastIndex(clean, ",")
		if idx > strings.LastIndex(clean, ".") && len(clean)-idx-1 <= 3 {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, " ", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
			clean = strings.ReplaceAll(clean, " ", "")
		}
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", "")
	default:
		clean = strings.ReplaceAll(clean, " ", "")
	}

	if negative {
		clean = "-" + clean
	}
	return ParseNumber(clean)
}

func tryParseBoolean(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "on":
		return true, true
	case "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

func tryParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var whitespace = regexp.MustCompile(`\s+`)

func normalizeString(s string) string {
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

func (c *TypeCoercer) determineRecommendedType(analysis TypeAnalysis) ValueType {
	if analysis.ValidCount == 0 {
		return ValueTypeString
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return ValueTypeNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return ValueTypeBoolean
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return ValueTypeTimestamp
	}
	return ValueTypeString
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int       `json:"total_count"`
	ValidCount      int       `json:"valid_count"`
	NumericCount    int       `json:"numeric_count"`
	BooleanCount    int       `json:"boolean_count"`
	TimestampCount  int       `json:"timestamp_count"`
	NumericRatio    float64   `json:"numeric_ratio"`
	BooleanRatio    float64   `json:"boolean_ratio"`
	TimestampRatio  float64   `json:"timestamp_ratio"`
	RecommendedType ValueType `json:"recommended_type"`
}
