package coercer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"42", 42, true},
		{"  3.5 ", 3.5, true},
		{"-1e3", -1000, true},
		{"12abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1,000", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumber(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.input)
		}
	}
}

func TestCoerceNumericStrict(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	assert.Equal(t, 7.0, c.CoerceNumeric(" 7 "))
	assert.Equal(t, "$7", c.CoerceNumeric("$7"))
	assert.Equal(t, 2.0, c.CoerceNumeric(2))
	assert.Equal(t, true, c.CoerceNumeric(true))
	assert.Nil(t, c.CoerceNumeric(nil))
}

func TestLenientNumbers(t *testing.T) {
	cfg := DefaultCoercionConfig()
	cfg.Lenient = true
	c := NewTypeCoercer(cfg)

	tests := map[string]float64{
		"$1,234.50": 1234.5,
		"(250)":     -250,
		"1.234,56":  1234.56,
		"45%":       45,
		"1 000":     1000,
	}
	for input, want := range tests {
		assert.Equal(t, want, c.CoerceValue(input), "input %q", input)
	}
}

func TestCoerceValue(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	assert.Nil(t, c.CoerceValue("   "))
	assert.Equal(t, true, c.CoerceValue("yes"))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.CoerceValue("2024-03-01"))
	assert.Equal(t, "North", c.CoerceValue("North"))
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	numeric := c.AnalyzeTypeDistribution([]any{"1", "2", "3", "", "4", "x"})
	assert.Equal(t, 5, numeric.ValidCount)
	assert.Equal(t, ValueTypeNumeric, numeric.RecommendedType)

	text := c.AnalyzeTypeDistribution([]any{"a", "b", "1"})
	assert.Equal(t, ValueTypeString, text.RecommendedType)

	empty := c.AnalyzeTypeDistribution(nil)
	assert.Equal(t, ValueTypeString, empty.RecommendedType)
}

func TestCoerceAsKeepsUnparsedText(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	assert.Equal(t, 5.0, c.CoerceAs("5", ValueTypeNumeric))
	assert.Equal(t, "n/a", c.CoerceAs("n/a", ValueTypeNumeric))
	assert.Nil(t, c.CoerceAs("", ValueTypeNumeric))
}
