package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	domainStats "vizkit/domain/stats"
)

// validPairs splits pairs into x and y slices, dropping any pair with a
// non-finite coordinate
func validPairs(pairs []domainStats.Pair) (xs, ys []float64) {
	xs = make([]float64, 0, len(pairs))
	ys = make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	return xs, ys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Pairs zips two columns into pairs; the shorter length wins
func Pairs(xs, ys []float64) []domainStats.Pair {
	n := min(len(xs), len(ys))
	out := make([]domainStats.Pair, n)
	for i := 0; i < n; i++ {
		out[i] = domainStats.Pair{X: xs[i], Y: ys[i]}
	}
	return out
}

// Correlation is the Pearson coefficient over valid pairs. Fewer than two
// pairs, or a constant variable, yields 0; the result is never NaN.
func Correlation(pairs []domainStats.Pair) float64 {
	xs, ys := validPairs(pairs)
	if len(xs) < 2 {
		return 0
	}
	if constant(xs) || constant(ys) {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// LinearRegression fits y = slope*x + intercept by ordinary least squares.
// Fewer than two points or zero x-variance gives the zero Regression; zero
// y-variance gives RSquared 0.
func LinearRegression(pairs []domainStats.Pair) domainStats.Regression {
	xs, ys := validPairs(pairs)
	if len(xs) < 2 || constant(xs) {
		return domainStats.Regression{}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	result := domainStats.Regression{Slope: slope, Intercept: intercept}
	if !constant(ys) {
		r2 := stat.RSquared(xs, ys, nil, intercept, slope)
		if !math.IsNaN(r2) {
			result.RSquared = r2
		}
	}
	return result
}

// constant reports whether every value equals the first. Scale does not
// matter: values 1e-13 apart still vary.
func constant(xs []float64) bool {
	for _, x := range xs {
		if x != xs[0] {
			return false
		}
	}
	return true
}
