package chart

import (
	"fmt"
	"math"

	"vizkit/domain/core"
)

// Margin is the space between the surface edge and the plot area
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

func (m Margin) Horizontal() float64 {
	return m.Left + m.Right
}

func (m Margin) Vertical() float64 {
	return m.Top + m.Bottom
}

// DefaultMargin leaves room for axes and labels
func DefaultMargin() Margin {
	return Margin{Top: 20, Right: 30, Bottom: 40, Left: 50}
}

// Dimensions is the size of the drawing area in surface units
type Dimensions struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Margin Margin  `json:"margin" toml:"margin"`
}

// DefaultDimensions is 800x400 with DefaultMargin
func DefaultDimensions() Dimensions {
	return Dimensions{Width: 800, Height: 400, Margin: DefaultMargin()}
}

// InnerWidth is the plot width inside the margins
func (d Dimensions) InnerWidth() float64 {
	return math.Max(0, d.Width-d.Margin.Horizontal())
}

// InnerHeight is the plot height inside the margins
func (d Dimensions) InnerHeight() float64 {
	return math.Max(0, d.Height-d.Margin.Vertical())
}

// Validate rejects sizes a chart cannot be laid out in
func (d Dimensions) Validate() error {
	if !(d.Width > 0) || !(d.Height > 0) || math.IsInf(d.Width, 0) || math.IsInf(d.Height, 0) {
		return core.NewInvalidInputError("resize", fmt.Sprintf("dimensions must be positive, got %gx%g", d.Width, d.Height))
	}
	m := d.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return core.NewInvalidInputError("resize", "margins cannot be negative")
	}
	if m.Horizontal() >= d.Width || m.Vertical() >= d.Height {
		return core.NewInvalidInputError("resize", "margins leave no plot area")
	}
	return nil
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%gx%g", d.Width, d.Height)
}
