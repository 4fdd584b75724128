package charts

import (
	"vizkit/domain/chart"
	"vizkit/domain/dataset"
	"vizkit/ports"
)

// Canvas is what a Painter draws through: the bound surface scoped to one
// chart, plus a snapshot of the chart's config and data.
type Canvas struct {
	surface ports.Surface
	owner   string

	Config chart.Config
	Data   dataset.Dataset
}

// NewCanvas scopes surface to owner. Charts get theirs from the lifecycle;
// tests build one directly.
func NewCanvas(surface ports.Surface, owner string, cfg chart.Config, data dataset.Dataset) *Canvas {
	return &Canvas{surface: surface, owner: owner, Config: cfg, Data: data}
}

// Owner is the ID the chart's elements are attached under
func (c *Canvas) Owner() string { return c.owner }

// Attach adds elements to layer, stamped with the chart as owner
func (c *Canvas) Attach(layer chart.Layer, elems ...chart.Element) error {
	for i := range elems {
		elems[i].Owner = c.owner
	}
	return c.surface.Attach(layer, c.owner, elems...)
}

// Dimensions is the configured chart size
func (c *Canvas) Dimensions() chart.Dimensions { return c.Config.Dimensions }

// Plot is the rectangle inside the margins
func (c *Canvas) Plot() Rect {
	d := c.Config.Dimensions
	return Rect{X: d.Margin.Left, Y: d.Margin.Top, W: d.InnerWidth(), H: d.InnerHeight()}
}

// Field returns the dataset field mapped to ch
func (c *Canvas) Field(ch chart.Channel) string {
	return c.Config.Fields.Field(ch)
}

// Palette is the configured color palette
func (c *Canvas) Palette() chart.Palette {
	return chart.Palette(c.Config.Visual.ColorPalette)
}

// Rect is an axis-aligned area of the surface
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the middle of the rectangle
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}
