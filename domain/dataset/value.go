package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Normalize maps a raw value onto the scalar set a Record holds:
// float64, string, bool, time.Time or nil. Every integer and float kind becomes
// float64 so equal numbers compare equal regardless of how they were produced.
// Non-scalar values are rendered with fmt so they stay comparable.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case json.Number:
		if f, err := strconv.ParseFloat(string(x), 64); err == nil {
			return f
		}
		return string(x)
	case string, bool, time.Time:
		return x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	default:
		return fmt.Sprint(x)
	}
}

// AsNumber reports the value as a well-formed number. NaN and ±Inf are not
// well-formed; strings are never numbers here (cleaning converts them first).
func AsNumber(v any) (float64, bool) {
	f, ok := Normalize(v).(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsNumber reports whether v is a well-formed number
func IsNumber(v any) bool {
	_, ok := AsNumber(v)
	return ok
}

// Compare orders two values: numbers < strings < bools < times < nil.
// Values of the same kind compare naturally.
func Compare(a, b any) int {
	a, b = Normalize(a), Normalize(b)
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		case math.IsNaN(x) && !math.IsNaN(y):
			return 1
		case !math.IsNaN(x) && math.IsNaN(y):
			return -1
		}
		return 0
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case float64:
		return 0
	case string:
		return 1
	case bool:
		return 2
	case time.Time:
		return 3
	default:
		return 4
	}
}

// Equal reports value equality after normalization
func Equal(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

// SameKind reports whether a and b fall in the same ordering class
func SameKind(a, b any) bool {
	return rank(Normalize(a)) == rank(Normalize(b))
}
