package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"vizkit/domain/dataset"
	domainStats "vizkit/domain/stats"
)

// DefaultBins is the histogram bin count used when none is given
const DefaultBins = 10

// Histogram partitions the finite values of xs into equal-width bins over
// [min, max]. The maximum lands in the last bin. Data with zero range yields a
// single bin holding every value.
func Histogram(xs []float64, bins int) []domainStats.Bin {
	if bins <= 0 {
		bins = DefaultBins
	}
	data := Sorted(xs)
	if len(data) == 0 {
		return nil
	}

	lo, hi := data[0], data[len(data)-1]
	if hi-lo == 0 {
		return []domainStats.Bin{{Lower: lo, Upper: hi, Count: len(data)}}
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram bins are half-open; nudge the last divider so max is counted
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, data, nil)

	out := make([]domainStats.Bin, bins)
	for i := range out {
		out[i] = domainStats.Bin{
			Lower: dividers[i],
			Upper: dividers[i+1],
			Count: int(counts[i]),
		}
	}
	out[bins-1].Upper = hi
	return out
}

// CategoryCounts counts occurrences of each distinct value, most frequent
// first; ties keep first-encounter order. Missing values are skipped.
func CategoryCounts(values []any) []domainStats.CategoryCount {
	index := make(map[any]int)
	var out []domainStats.CategoryCount
	for _, raw := range values {
		v := dataset.Normalize(raw)
		if v == nil {
			continue
		}
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			continue
		}
		key := categoryKey(v)
		if i, seen := index[key]; seen {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, domainStats.CategoryCount{Value: v, Count: 1})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// categoryKey makes time values with different locations collide
func categoryKey(v any) any {
	if t, ok := v.(interface{ UnixNano() int64 }); ok {
		return struct{ nanos int64 }{t.UnixNano()}
	}
	return v
}

// FrequencyDistribution builds a histogram for numeric data or category counts
// otherwise. Non-numeric entries are ignored for the numeric variant.
func FrequencyDistribution(values []any, numeric bool, bins int) domainStats.Distribution {
	if !numeric {
		return domainStats.Distribution{Categories: CategoryCounts(values)}
	}
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := dataset.AsNumber(v); ok {
			xs = append(xs, f)
		}
	}
	return domainStats.Distribution{Numeric: true, Bins: Histogram(xs, bins)}
}
