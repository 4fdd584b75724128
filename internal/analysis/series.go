package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"vizkit/internal/errors"
)

// MovingAverage returns the trailing mean over positions [i-window+1, i],
// clipped at the start of the series. Only finite values are averaged; a
// window with none of them yields NaN at that position.
func MovingAverage(series []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.InvalidInputf("moving average window must be positive, got %d", window)
	}

	// summed per window; a running sum keeps residue from large values
	out := make([]float64, len(series))
	for i := range series {
		vals := Valid(series[max(0, i-window+1) : i+1])
		if len(vals) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = floats.Sum(vals) / float64(len(vals))
	}
	return out, nil
}
