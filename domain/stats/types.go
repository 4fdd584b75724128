package stats

import "fmt"

// ============================================================================
// SUMMARY
// ============================================================================

// Summary is the descriptive statistics of a numeric sequence.
// Variance and StdDev are population figures. A sequence without valid
// values yields the zero Summary.
type Summary struct {
	Count    int     `json:"count"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
}

// IQR returns the interquartile range
func (s Summary) IQR() float64 {
	return s.Q3 - s.Q1
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d mean=%.4g median=%.4g sd=%.4g min=%.4g max=%.4g",
		s.Count, s.Mean, s.Median, s.StdDev, s.Min, s.Max)
}

// Shape describes the asymmetry and tail weight of a distribution
type Shape struct {
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"excess_kurtosis"`
}

// ============================================================================
// RELATIONSHIPS
// ============================================================================

// Pair is one (x, y) observation
type Pair struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Regression is an ordinary least squares fit y = Slope*x + Intercept
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// Predict evaluates the fitted line at x
func (r Regression) Predict(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// ============================================================================
// DISTRIBUTIONS
// ============================================================================

// Bin is one histogram bucket. Bins are half-open [Lower, Upper) except the
// last one, which also holds the maximum.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// CategoryCount is the frequency of one categorical value
type CategoryCount struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// Distribution is either a numeric histogram or categorical counts
type Distribution struct {
	Numeric    bool            `json:"numeric"`
	Bins       []Bin           `json:"bins,omitempty"`
	Categories []CategoryCount `json:"categories,omitempty"`
}

// ============================================================================
// OUTLIERS
// ============================================================================

// OutlierMethod selects the outlier detection rule
type OutlierMethod string

const (
	OutlierIQR        OutlierMethod = "iqr"
	OutlierZScore     OutlierMethod = "zscore"
	OutlierPercentile OutlierMethod = "percentile"
)

// ParseOutlierMethod accepts the method names used on the command line and in env
func ParseOutlierMethod(s string) (OutlierMethod, bool) {
	switch s {
	case "iqr", "IQR":
		return OutlierIQR, true
	case "zscore", "z-score", "z", "ZSCORE":
		return OutlierZScore, true
	case "percentile", "PERCENTILE":
		return OutlierPercentile, true
	}
	return "", false
}

// OutlierBounds is the open interval outside which values are outliers
type OutlierBounds struct {
	Method OutlierMethod `json:"method"`
	Lower  float64       `json:"lower"`
	Upper  float64       `json:"upper"`
}

// Contains reports whether v is inside the bounds (bounds inclusive)
func (b OutlierBounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}
