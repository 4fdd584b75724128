package ports

import (
	"vizkit/domain/chart"
	"vizkit/domain/core"
	"vizkit/domain/dataset"
)

// Chart is the lifecycle contract every chart type implements.
//
// Render binds the chart to a caller-owned surface (nil reuses the bound
// one) and replaces everything the chart drew before. Update swaps the
// dataset wholesale, Resize changes the layout, and Destroy releases what
// the chart created itself without touching the surface. After Destroy,
// every other call fails with a chart-destroyed error.
type Chart interface {
	ID() core.ChartID
	Type() string
	State() chart.State

	Render(surface Surface) error
	Update(ds dataset.Dataset) error
	Resize(dims chart.Dimensions) error
	Destroy() error

	// Data returns a copy of the current dataset
	Data() dataset.Dataset
	// Config returns a copy of the current configuration
	Config() chart.Config
}

// ChartConstructor builds a chart from a configuration
type ChartConstructor func(cfg chart.Config) (Chart, error)

// EventPublisher receives lifecycle and data notifications
type EventPublisher interface {
	Emit(event string, payload any)
}
