package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	domainStats "vizkit/domain/stats"
	"vizkit/internal/errors"
)

// Default thresholds, one per method
const (
	DefaultIQRMultiplier    = 1.5
	DefaultZScoreMultiplier = 3.0
	DefaultPercentileTail   = 5.0
)

// OutlierPolicy selects a detection method and carries a separate threshold
// for each method so they are never confused with one another
type OutlierPolicy struct {
	Method           domainStats.OutlierMethod `toml:"method"`
	IQRMultiplier    float64                   `toml:"iqr_multiplier"`
	ZScoreMultiplier float64                   `toml:"zscore_multiplier"`
	PercentileTail   float64                   `toml:"percentile_tail"` // percent in each tail
}

// DefaultOutlierPolicy is IQR with k = 1.5
func DefaultOutlierPolicy() OutlierPolicy {
	return OutlierPolicy{
		Method:           domainStats.OutlierIQR,
		IQRMultiplier:    DefaultIQRMultiplier,
		ZScoreMultiplier: DefaultZScoreMultiplier,
		PercentileTail:   DefaultPercentileTail,
	}
}

// WithThreshold returns a copy whose active method uses threshold;
// zero keeps the method default
func (p OutlierPolicy) WithThreshold(threshold float64) OutlierPolicy {
	if threshold == 0 {
		return p
	}
	switch p.Method {
	case domainStats.OutlierZScore:
		p.ZScoreMultiplier = threshold
	case domainStats.OutlierPercentile:
		p.PercentileTail = threshold
	default:
		p.IQRMultiplier = threshold
	}
	return p
}

// Threshold is the parameter of the active method
func (p OutlierPolicy) Threshold() float64 {
	switch p.Method {
	case domainStats.OutlierZScore:
		return p.ZScoreMultiplier
	case domainStats.OutlierPercentile:
		return p.PercentileTail
	default:
		return p.IQRMultiplier
	}
}

// Validate fills zero parameters with defaults and rejects impossible ones
func (p OutlierPolicy) Validate() (OutlierPolicy, error) {
	if p.Method == "" {
		p.Method = domainStats.OutlierIQR
	}
	if p.IQRMultiplier == 0 {
		p.IQRMultiplier = DefaultIQRMultiplier
	}
	if p.ZScoreMultiplier == 0 {
		p.ZScoreMultiplier = DefaultZScoreMultiplier
	}
	if p.PercentileTail == 0 {
		p.PercentileTail = DefaultPercentileTail
	}

	switch p.Method {
	case domainStats.OutlierIQR:
		if p.IQRMultiplier < 0 || !finite(p.IQRMultiplier) {
			return p, errors.InvalidInputf("iqr multiplier must be positive, got %v", p.IQRMultiplier)
		}
	case domainStats.OutlierZScore:
		if p.ZScoreMultiplier < 0 || !finite(p.ZScoreMultiplier) {
			return p, errors.InvalidInputf("z-score multiplier must be positive, got %v", p.ZScoreMultiplier)
		}
	case domainStats.OutlierPercentile:
		if p.PercentileTail <= 0 || p.PercentileTail >= 50 {
			return p, errors.InvalidInputf("percentile tail must be within (0, 50), got %v", p.PercentileTail)
		}
	default:
		return p, errors.InvalidInputf("unknown outlier method %q", p.Method)
	}
	return p, nil
}

// DetectOutliers flags values outside bounds computed by method with the
// given threshold (zero means the method default). Returned indices refer to
// positions in values; non-finite values are never flagged.
func DetectOutliers(values []float64, method domainStats.OutlierMethod, threshold float64) ([]int, domainStats.OutlierBounds, error) {
	policy := DefaultOutlierPolicy()
	policy.Method = method
	return DetectOutliersWith(values, policy.WithThreshold(threshold))
}

// DetectOutliersWith flags values outside the bounds computed by policy
func DetectOutliersWith(values []float64, policy OutlierPolicy) ([]int, domainStats.OutlierBounds, error) {
	policy, err := policy.Validate()
	if err != nil {
		return nil, domainStats.OutlierBounds{}, err
	}

	bounds, ok := OutlierBoundsFor(values, policy)
	if !ok {
		return nil, bounds, nil
	}

	var idx []int
	for i, v := range values {
		if !finite(v) {
			continue
		}
		if v < bounds.Lower || v > bounds.Upper {
			idx = append(idx, i)
		}
	}
	return idx, bounds, nil
}

// OutlierBoundsFor computes the bounds for an already validated policy.
// ok is false when there is no finite value to compute them from.
func OutlierBoundsFor(values []float64, policy OutlierPolicy) (domainStats.OutlierBounds, bool) {
	data := Sorted(values)
	bounds := domainStats.OutlierBounds{Method: policy.Method}
	if len(data) == 0 {
		return bounds, false
	}

	switch policy.Method {
	case domainStats.OutlierZScore:
		mean, _ := stats.Mean(data)
		sd, _ := stats.StandardDeviationPopulation(data)
		k := policy.ZScoreMultiplier
		bounds.Lower, bounds.Upper = mean-k*sd, mean+k*sd
	case domainStats.OutlierPercentile:
		tail := policy.PercentileTail / 100
		bounds.Lower, bounds.Upper = Quantile(data, tail), Quantile(data, 1-tail)
	default:
		q1, q3 := Quantile(data, 0.25), Quantile(data, 0.75)
		fence := policy.IQRMultiplier * (q3 - q1)
		bounds.Lower, bounds.Upper = q1-fence, q3+fence
	}

	if math.IsNaN(bounds.Lower) || math.IsNaN(bounds.Upper) {
		return bounds, false
	}
	return bounds, true
}
