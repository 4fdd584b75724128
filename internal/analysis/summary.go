package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	domainStats "vizkit/domain/stats"
)

// Valid returns the finite values of xs in their original order
func Valid(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// Sorted returns a sorted copy of the finite values of xs
func Sorted(xs []float64) []float64 {
	out := Valid(xs)
	sort.Float64s(out)
	return out
}

// Quantile returns the p-quantile of sorted data, interpolating linearly
// between the order statistics around position (n-1)*p. Quantile(0.5) is the
// median and Q1, Q3 sit symmetrically around it. Empty data yields 0.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	switch {
	case p <= 0 || n == 1:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	pos := float64(n-1) * p
	i := int(math.Floor(pos))
	lo := sorted[i]
	if i+1 >= n {
		return lo
	}
	return lo + (pos-float64(i))*(sorted[i+1]-lo)
}

// Summarize computes descriptive statistics over the finite values of xs
func Summarize(xs []float64) domainStats.Summary {
	data := Sorted(xs)
	if len(data) == 0 {
		return domainStats.Summary{}
	}

	// montanaflynn only errors on empty input, which is excluded above
	sum, _ := stats.Sum(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	variance, _ := stats.PopulationVariance(data)

	min, max := data[0], data[len(data)-1]
	return domainStats.Summary{
		Count:    len(data),
		Sum:      sum,
		Mean:     mean,
		Median:   median,
		Min:      min,
		Max:      max,
		Range:    max - min,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Q1:       Quantile(data, 0.25),
		Q3:       Quantile(data, 0.75),
	}
}

// Describe reports skewness and excess kurtosis; fewer than 3 values, or
// constant data, give a zero Shape
func Describe(xs []float64) domainStats.Shape {
	data := Valid(xs)
	if len(data) < 3 {
		return domainStats.Shape{}
	}
	if constant(data) {
		return domainStats.Shape{}
	}
	shape := domainStats.Shape{Skewness: stat.Skew(data, nil)}
	if len(data) >= 4 {
		shape.Kurtosis = stat.ExKurtosis(data, nil)
	}
	return shape
}
