package ports

import (
	"context"
	"io"
	"time"

	"vizkit/domain/dataset"
)

// DatasetReader loads a dataset from a file or stream
type DatasetReader interface {
	// ReadFile loads the dataset stored at path
	ReadFile(ctx context.Context, path string) (dataset.Dataset, error)
	// Read loads a dataset of the given format from r
	Read(ctx context.Context, r io.Reader, format string) (dataset.Dataset, error)
}

// Point is one observation of a live series
type Point struct {
	Time  time.Time
	Value float64
}

// PointSource produces the next point of a live series
type PointSource interface {
	Next() Point
}
