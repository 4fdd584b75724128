package chart

import (
	"fmt"
	"strings"
	"time"

	"vizkit/domain/core"
	"vizkit/domain/dataset"
)

// Channel is a visual channel a dataset field can be mapped to
type Channel string

const (
	ChannelX     Channel = "x"
	ChannelY     Channel = "y"
	ChannelColor Channel = "color"
	ChannelSize  Channel = "size"
)

// FieldMapping names the dataset field feeding each visual channel
type FieldMapping struct {
	X     string `json:"x,omitempty" toml:"x"`
	Y     string `json:"y,omitempty" toml:"y"`
	Color string `json:"color,omitempty" toml:"color"`
	Size  string `json:"size,omitempty" toml:"size"`
}

// IsZero reports whether no channel is mapped
func (m FieldMapping) IsZero() bool {
	return m == FieldMapping{}
}

// Field returns the field mapped to ch
func (m FieldMapping) Field(ch Channel) string {
	switch ch {
	case ChannelX:
		return m.X
	case ChannelY:
		return m.Y
	case ChannelColor:
		return m.Color
	case ChannelSize:
		return m.Size
	}
	return ""
}

// Sort directions
const (
	SortNone       = ""
	SortAscending  = "asc"
	SortDescending = "desc"
)

// VisualOptions controls appearance
type VisualOptions struct {
	ColorValue    string   `json:"color_value,omitempty" toml:"color_value"`
	ColorPalette  []string `json:"color_palette,omitempty" toml:"color_palette"`
	CornerRadius  float64  `json:"corner_radius,omitempty" toml:"corner_radius"`
	SortDirection string   `json:"sort_direction,omitempty" toml:"sort_direction"`
	PointRadius   float64  `json:"point_radius,omitempty" toml:"point_radius"`
	InnerRadius   float64  `json:"inner_radius,omitempty" toml:"inner_radius"` // pie: fraction of the outer radius
	TrendLine     bool     `json:"trend_line,omitempty" toml:"trend_line"`     // scatter: least squares fit
}

// Animation describes transitions between renders. Surfaces that cannot
// animate ignore it.
type Animation struct {
	Duration time.Duration `json:"duration,omitempty" toml:"duration"`
	Easing   string        `json:"easing,omitempty" toml:"easing"`
}

var easings = map[string]bool{
	"linear": true, "cubic": true, "quad": true, "sin": true, "exp": true, "elastic": true, "bounce": true,
}

// RealtimeOptions configures self-refreshing charts
type RealtimeOptions struct {
	Interval  time.Duration `json:"interval,omitempty" toml:"interval"`
	MaxPoints int           `json:"max_points,omitempty" toml:"max_points"`
}

// Default realtime settings
const (
	DefaultRealtimeInterval  = time.Second
	DefaultRealtimeMaxPoints = 50
)

// Config is the full configuration of one chart instance
type Config struct {
	Type       string          `json:"type,omitempty" toml:"type"`
	Title      string          `json:"title,omitempty" toml:"title"`
	Dataset    dataset.Dataset `json:"-" toml:"-"`
	Fields     FieldMapping    `json:"fields" toml:"fields"`
	Visual     VisualOptions   `json:"visual" toml:"visual"`
	Animation  Animation       `json:"animation" toml:"animation"`
	Tooltip    bool            `json:"tooltip" toml:"tooltip"`
	Legend     bool            `json:"legend" toml:"legend"`
	Grid       bool            `json:"grid" toml:"grid"`
	Dimensions Dimensions      `json:"dimensions" toml:"dimensions"`
	Realtime   RealtimeOptions `json:"realtime" toml:"realtime"`
}

// NewConfig returns a config with tooltip, legend and grid enabled
func NewConfig() Config {
	return Config{Tooltip: true, Legend: true, Grid: true}
}

// WithDefaults fills unset parts of the config. The field mapping is only
// defaulted when no channel at all is mapped, so a partial mapping is kept
// as given and validated as such.
func (c Config) WithDefaults(fields FieldMapping) Config {
	if c.Fields.IsZero() {
		c.Fields = fields
	}
	if c.Dimensions.Width == 0 && c.Dimensions.Height == 0 {
		margin := c.Dimensions.Margin
		c.Dimensions = DefaultDimensions()
		if margin != (Margin{}) {
			c.Dimensions.Margin = margin
		}
	}
	if c.Visual.ColorValue == "" {
		c.Visual.ColorValue = DefaultColor
	}
	if len(c.Visual.ColorPalette) == 0 {
		c.Visual.ColorPalette = append([]string(nil), Category10...)
	}
	if c.Visual.PointRadius == 0 {
		c.Visual.PointRadius = 4
	}
	if c.Animation.Easing == "" {
		c.Animation.Easing = "cubic"
	}
	if c.Realtime.Interval == 0 {
		c.Realtime.Interval = DefaultRealtimeInterval
	}
	if c.Realtime.MaxPoints == 0 {
		c.Realtime.MaxPoints = DefaultRealtimeMaxPoints
	}
	return c
}

// Validate checks the config once defaults are applied; required lists the
// channels the chart type cannot draw without
func (c Config) Validate(required ...Channel) error {
	for _, ch := range required {
		if strings.TrimSpace(c.Fields.Field(ch)) == "" {
			return fmt.Errorf("%w: channel %q is not mapped", core.ErrMissingField, ch)
		}
	}
	if err := c.Dimensions.Validate(); err != nil {
		return err
	}
	switch c.Visual.SortDirection {
	case SortNone, SortAscending, SortDescending:
	default:
		return core.NewInvalidInputError("config", fmt.Sprintf("unknown sort direction %q", c.Visual.SortDirection))
	}
	if c.Visual.CornerRadius < 0 || c.Visual.PointRadius < 0 {
		return core.NewInvalidInputError("config", "radii cannot be negative")
	}
	if c.Visual.InnerRadius < 0 || c.Visual.InnerRadius >= 1 {
		return core.NewInvalidInputError("config", "inner radius must be a fraction in [0, 1)")
	}
	if c.Animation.Duration < 0 {
		return core.NewInvalidInputError("config", "animation duration cannot be negative")
	}
	if !easings[c.Animation.Easing] {
		return core.NewInvalidInputError("config", fmt.Sprintf("unknown easing %q", c.Animation.Easing))
	}
	if c.Realtime.Interval < 0 || c.Realtime.MaxPoints < 0 {
		return core.NewInvalidInputError("config", "realtime interval and window must be positive")
	}
	return nil
}

// Clone deep-copies the config including its dataset
func (c Config) Clone() Config {
	c.Dataset = c.Dataset.Clone()
	c.Visual.ColorPalette = append([]string(nil), c.Visual.ColorPalette...)
	return c
}
