package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vizkit/domain/core"
	domainStats "vizkit/domain/stats"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, math.NaN(), 3, 2, math.Inf(1)})

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 10.0, s.Sum)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 3.0, s.Range)
	assert.InDelta(t, 1.25, s.Variance, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.StdDev, 1e-12)
	assert.InDelta(t, 1.75, s.Q1, 1e-12)
	assert.InDelta(t, 3.25, s.Q3, 1e-12)
}

func TestSummarizeEmptyIsZero(t *testing.T) {
	assert.Equal(t, domainStats.Summary{}, Summarize(nil))
	assert.Equal(t, domainStats.Summary{}, Summarize([]float64{math.NaN()}))
}

func TestQuantileInterpolates(t *testing.T) {
	data := []float64{1, 2, 3, 4, 100}
	assert.Equal(t, 2.0, Quantile(data, 0.25))
	assert.Equal(t, 3.0, Quantile(data, 0.5))
	assert.Equal(t, 4.0, Quantile(data, 0.75))
	assert.InDelta(t, 2.4, Quantile(data, 0.35), 1e-12)
	assert.Equal(t, 1.0, Quantile(data, 0))
	assert.Equal(t, 100.0, Quantile(data, 1))
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.3))
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestQuartilesAreSymmetric(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	q1, median, q3 := Quantile(data, 0.25), Quantile(data, 0.5), Quantile(data, 0.75)

	assert.InDelta(t, 1.75, q1, 1e-12)
	assert.InDelta(t, 3.25, q3, 1e-12)
	assert.Equal(t, Summarize(data).Median, median)
	assert.InDelta(t, median-q1, q3-median, 1e-12)

	idx, bounds, err := DetectOutliers([]float64{1, 2, 3, 4}, domainStats.OutlierPercentile, 25)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, idx)
	assert.InDelta(t, 1.75, bounds.Lower, 1e-12)
	assert.InDelta(t, 3.25, bounds.Upper, 1e-12)
}

func TestDetectOutliersIQRScenario(t *testing.T) {
	values := []float64{1, 2, 3, 4, 100}
	idx, bounds, err := DetectOutliers(values, domainStats.OutlierIQR, 1.5)
	require.NoError(t, err)

	assert.Equal(t, []int{4}, idx)
	assert.InDelta(t, -1.0, bounds.Lower, 1e-12)
	assert.InDelta(t, 7.0, bounds.Upper, 1e-12)
}

func TestDetectOutliersBoundaryNotFlagged(t *testing.T) {
	// Q1 = 2 and Q3 = 4, so with k = 1 the bounds are exactly 0 and 6
	values := []float64{0, 1, 2, 3, 3, 3, 4, 6, 7, math.NaN()}
	idx, bounds, err := DetectOutliers(values, domainStats.OutlierIQR, 1)
	require.NoError(t, err)

	assert.Equal(t, 0.0, bounds.Lower)
	assert.Equal(t, 6.0, bounds.Upper)
	assert.Equal(t, []int{8}, idx)
}

func TestDetectOutliersZScore(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 50}
	idx, _, err := DetectOutliers(values, domainStats.OutlierZScore, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, idx)

	// with the default multiplier of 3 the point sits exactly on the upper bound
	idx, _, err = DetectOutliers(values, domainStats.OutlierZScore, 0)
	require.NoError(t, err)
	assert.Empty(t, idx)
}

func TestDetectOutliersPercentile(t *testing.T) {
	values := make([]float64, 0, 101)
	for i := 0; i <= 100; i++ {
		values = append(values, float64(i))
	}
	idx, bounds, err := DetectOutliers(values, domainStats.OutlierPercentile, 5)
	require.NoError(t, err)

	assert.Greater(t, bounds.Lower, 0.0)
	assert.Less(t, bounds.Upper, 100.0)
	assert.Contains(t, idx, 0)
	assert.Contains(t, idx, 100)
	assert.NotContains(t, idx, 50)
}

func TestDetectOutliersRejectsBadThresholds(t *testing.T) {
	_, _, err := DetectOutliers([]float64{1, 2}, domainStats.OutlierPercentile, 60)
	assert.True(t, core.IsInvalidInput(err))

	_, _, err = DetectOutliers([]float64{1, 2}, domainStats.OutlierIQR, -1)
	assert.True(t, core.IsInvalidInput(err))

	_, _, err = DetectOutliers([]float64{1, 2}, "mad", 1)
	assert.True(t, core.IsInvalidInput(err))
}

func TestDetectOutliersEmpty(t *testing.T) {
	idx, _, err := DetectOutliers(nil, domainStats.OutlierIQR, 0)
	require.NoError(t, err)
	assert.Empty(t, idx)
}

func TestOutlierPolicyKeepsParametersApart(t *testing.T) {
	p := DefaultOutlierPolicy()
	p.Method = domainStats.OutlierPercentile
	p = p.WithThreshold(10)

	assert.Equal(t, 10.0, p.PercentileTail)
	assert.Equal(t, DefaultIQRMultiplier, p.IQRMultiplier)
	assert.Equal(t, DefaultZScoreMultiplier, p.ZScoreMultiplier)
	assert.Equal(t, 10.0, p.Threshold())
}

func TestLinearRegressionCollinear(t *testing.T) {
	var pairs []domainStats.Pair
	for x := 0; x < 10; x++ {
		pairs = append(pairs, domainStats.Pair{X: float64(x), Y: 2*float64(x) + 1})
	}
	r := LinearRegression(pairs)

	assert.InDelta(t, 2, r.Slope, 1e-9)
	assert.InDelta(t, 1, r.Intercept, 1e-9)
	assert.InDelta(t, 1, r.RSquared, 1e-9)
	assert.InDelta(t, 21, r.Predict(10), 1e-9)
}

func TestLinearRegressionDegenerate(t *testing.T) {
	assert.Equal(t, domainStats.Regression{}, LinearRegression(nil))
	assert.Equal(t, domainStats.Regression{}, LinearRegression([]domainStats.Pair{{X: 1, Y: 2}}))
	assert.Equal(t, domainStats.Regression{}, LinearRegression([]domainStats.Pair{{X: 1, Y: 2}, {X: 1, Y: 5}}))

	flat := LinearRegression([]domainStats.Pair{{X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3}})
	assert.InDelta(t, 0, flat.Slope, 1e-12)
	assert.InDelta(t, 3, flat.Intercept, 1e-12)
	assert.Equal(t, 0.0, flat.RSquared)
}

func TestCorrelation(t *testing.T) {
	perfect := Pairs([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	assert.InDelta(t, 1, Correlation(perfect), 1e-12)

	inverse := Pairs([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	assert.InDelta(t, -1, Correlation(inverse), 1e-12)

	flat := Pairs([]float64{5, 5, 5}, []float64{7, 7, 7})
	r := Correlation(flat)
	assert.False(t, math.IsNaN(r))
	assert.Equal(t, 0.0, r)

	assert.Equal(t, 0.0, Correlation([]domainStats.Pair{{X: 1, Y: 1}}))
	withNaN := Pairs([]float64{1, math.NaN(), 3}, []float64{1, 2, 3})
	assert.InDelta(t, 1, Correlation(withNaN), 1e-12)
}

func TestRelationshipAtSmallScale(t *testing.T) {
	xs := []float64{1e-13, 2e-13, 3e-13, 4e-13}
	ys := []float64{2e-13, 4e-13, 6e-13, 8e-13}

	assert.InDelta(t, 1, Correlation(Pairs(xs, ys)), 1e-9)

	r := LinearRegression(Pairs(xs, ys))
	assert.InDelta(t, 2, r.Slope, 1e-9)
	assert.InDelta(t, 1, r.RSquared, 1e-9)

	assert.NotEqual(t, domainStats.Shape{}, Describe([]float64{1e-13, 1e-13, 2e-13, 9e-13}))
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5)
	require.Len(t, bins, 5)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 11, total)
	assert.Equal(t, 0.0, bins[0].Lower)
	assert.Equal(t, 10.0, bins[4].Upper)
	assert.Equal(t, 3, bins[4].Count) // 8, 9 and the maximum
}

func TestHistogramDefaultsAndDegenerate(t *testing.T) {
	assert.Len(t, Histogram([]float64{1, 2, 3}, 0), DefaultBins)
	assert.Nil(t, Histogram(nil, 4))

	single := Histogram([]float64{7, 7, 7}, 4)
	require.Len(t, single, 1)
	assert.Equal(t, 3, single[0].Count)
}

func TestCategoryCounts(t *testing.T) {
	counts := CategoryCounts([]any{"b", "a", nil, "a", "c", "b", 1, 1.0})

	require.Len(t, counts, 4)
	assert.Equal(t, domainStats.CategoryCount{Value: "b", Count: 2}, counts[0])
	assert.Equal(t, domainStats.CategoryCount{Value: "a", Count: 2}, counts[1])
	assert.Equal(t, domainStats.CategoryCount{Value: 1.0, Count: 2}, counts[2])
	assert.Equal(t, domainStats.CategoryCount{Value: "c", Count: 1}, counts[3])
}

func TestCategoryCountsTimeKeys(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	counts := CategoryCounts([]any{ts, ts.In(time.FixedZone("X", 3600))})
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Count)
}

func TestFrequencyDistribution(t *testing.T) {
	numeric := FrequencyDistribution([]any{1, 2, "x", 3}, true, 2)
	assert.True(t, numeric.Numeric)
	require.Len(t, numeric.Bins, 2)
	assert.Equal(t, 3, numeric.Bins[0].Count+numeric.Bins[1].Count)

	categorical := FrequencyDistribution([]any{"x", "y", "x"}, false, 0)
	assert.False(t, categorical.Numeric)
	assert.Equal(t, "x", categorical.Categories[0].Value)
}

func TestMovingAverage(t *testing.T) {
	out, err := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1.5, 2, 3, 4}, out)
}

func TestMovingAverageSkipsInvalid(t *testing.T) {
	nan := math.NaN()
	out, err := MovingAverage([]float64{nan, nan, 4, nan, nan, nan}, 2)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 4.0, out[2])
	assert.Equal(t, 4.0, out[3])
	assert.True(t, math.IsNaN(out[4]))
}

func TestMovingAverageMixedMagnitudes(t *testing.T) {
	out, err := MovingAverage([]float64{1e16, 1, 1, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1e16, 1, 1, 1}, out)

	out, err = MovingAverage([]float64{1e16, 1, 3, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, out[2:])
}

func TestMovingAverageRejectsWindow(t *testing.T) {
	_, err := MovingAverage([]float64{1}, 0)
	assert.True(t, core.IsInvalidInput(err))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, domainStats.Shape{}, Describe([]float64{1, 2}))
	assert.Equal(t, domainStats.Shape{}, Describe([]float64{3, 3, 3, 3}))

	skewed := Describe([]float64{1, 1, 1, 2, 2, 3, 10})
	assert.Greater(t, skewed.Skewness, 0.0)
}
