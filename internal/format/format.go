// Package format renders numbers for axis ticks, legends and tooltips.
package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Fixed formats v with exactly digits decimals
func Fixed(v float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// Grouped formats v with thousands separators, e.g. 1,234,567.89
func Grouped(v float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Fixed(v, digits)
	}
	return printer.Sprintf("%."+strconv.Itoa(digits)+"f", v)
}

// Int formats n with thousands separators
func Int(n int) string {
	return printer.Sprintf("%d", n)
}

// Percent formats a ratio as a percentage: 0.125 -> "12.5%"
func Percent(ratio float64, digits int) string {
	return trimZeros(Fixed(ratio*100, digits)) + "%"
}

// Currency formats an amount with a leading symbol and two decimals
func Currency(amount float64, symbol string) string {
	s := Grouped(math.Abs(amount), 2)
	if amount < 0 {
		return "-" + symbol + s
	}
	return symbol + s
}

var siPrefixes = []struct {
	exp    float64
	prefix string
}{
	{12, "T"},
	{9, "G"},
	{6, "M"},
	{3, "k"},
	{0, ""},
	{-3, "m"},
	{-6, "µ"},
	{-9, "n"},
}

// SI formats v with an SI prefix: 1500 -> "1.5k", 0.002 -> "2m"
func SI(v float64, digits int) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return trimZeros(Fixed(v, digits))
	}
	abs := math.Abs(v)
	for _, p := range siPrefixes {
		scale := math.Pow(10, p.exp)
		if abs >= scale {
			return trimZeros(Fixed(v/scale, digits)) + p.prefix
		}
	}
	last := siPrefixes[len(siPrefixes)-1]
	return trimZeros(Fixed(v/math.Pow(10, last.exp), digits)) + last.prefix
}

// Tick formats an axis tick given the spacing between ticks. Large values
// switch to SI prefixes; otherwise the decimals follow the step.
func Tick(v, step float64) string {
	if math.Abs(v) >= 1e4 {
		return SI(v, 2)
	}
	return Fixed(v, Digits(step))
}

// Digits returns the decimals needed to tell apart values step apart
func Digits(step float64) int {
	step = math.Abs(step)
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) || step >= 1 {
		return 0
	}
	d := int(math.Ceil(-math.Log10(step) - 1e-9))
	if d > 10 {
		d = 10
	}
	return d
}

// Value formats a record value for a label or tooltip
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return Grouped(x, 0)
		}
		return trimZeros(Grouped(x, 4))
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case interface{ String() string }:
		return x.String()
	default:
		return printer.Sprint(x)
	}
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
