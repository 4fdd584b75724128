package chart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vizkit/domain/core"
)

func TestWithDefaultsOnlyFillsEmptyMapping(t *testing.T) {
	defaults := FieldMapping{X: "category", Y: "value"}

	cfg := Config{}.WithDefaults(defaults)
	assert.Equal(t, defaults, cfg.Fields)
	assert.Equal(t, DefaultDimensions(), cfg.Dimensions)
	assert.NotEmpty(t, cfg.Visual.ColorPalette)
	require.NoError(t, cfg.Validate(ChannelX, ChannelY))

	partial := Config{Fields: FieldMapping{X: "region"}}.WithDefaults(defaults)
	assert.Equal(t, "", partial.Fields.Y)
	err := partial.Validate(ChannelX, ChannelY)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMissingField))
	assert.True(t, core.IsInvalidInput(err))
}

func TestValidateRejectsBadOptions(t *testing.T) {
	base := Config{}.WithDefaults(FieldMapping{X: "x", Y: "y"})

	bad := []func(*Config){
		func(c *Config) { c.Visual.SortDirection = "sideways" },
		func(c *Config) { c.Visual.CornerRadius = -1 },
		func(c *Config) { c.Visual.InnerRadius = 1 },
		func(c *Config) { c.Animation.Easing = "wobble" },
		func(c *Config) { c.Animation.Duration = -1 },
		func(c *Config) { c.Dimensions.Width = -5 },
	}
	for i, mutate := range bad {
		cfg := base.Clone()
		mutate(&cfg)
		assert.True(t, core.IsInvalidInput(cfg.Validate()), "case %d", i)
	}
}

func TestDimensions(t *testing.T) {
	d := Dimensions{Width: 300, Height: 200, Margin: Margin{Top: 10, Right: 10, Bottom: 20, Left: 30}}
	require.NoError(t, d.Validate())
	assert.Equal(t, 260.0, d.InnerWidth())
	assert.Equal(t, 170.0, d.InnerHeight())

	assert.Error(t, Dimensions{Width: 0, Height: 10}.Validate())
	assert.Error(t, Dimensions{Width: 50, Height: 50, Margin: Margin{Left: 50}}.Validate())
	assert.Error(t, Dimensions{Width: 50, Height: 50, Margin: Margin{Top: -1}}.Validate())
}

func TestLinearScale(t *testing.T) {
	s := NewLinearScale(0, 10, NewRange(0, 100))
	assert.Equal(t, 50.0, s.Scale(5))
	assert.Equal(t, 100.0, s.Scale(10))

	inverted := NewLinearScale(0, 10, NewRange(100, 0))
	assert.Equal(t, 80.0, inverted.Scale(2))

	flat := NewLinearScale(3, 3, NewRange(0, 100))
	assert.Equal(t, 50.0, flat.Scale(3))
}

func TestTicksAndNice(t *testing.T) {
	s := NewLinearScale(0.3, 9.7, NewRange(0, 1))
	assert.Equal(t, []float64{2, 4, 6, 8}, s.Ticks(5))

	nice := s.Nice(5)
	assert.Equal(t, 0.0, nice.D0)
	assert.Equal(t, 10.0, nice.D1)

	small := NewLinearScale(0, 1, NewRange(0, 1))
	assert.Equal(t, []float64{0, 0.2, 0.4, 0.6, 0.8, 1}, small.Ticks(5))
}

func TestExtent(t *testing.T) {
	lo, hi, ok := Extent([]float64{3, -1, 7})
	assert.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)

	_, _, ok = Extent(nil)
	assert.False(t, ok)
}

func TestBandScale(t *testing.T) {
	b := NewBandScale([]string{"a", "b", "a", "c"}, NewRange(0, 300), 0.2)
	assert.Equal(t, []string{"a", "b", "c"}, b.Keys())
	assert.InDelta(t, 80, b.Bandwidth(), 1e-9)

	x, ok := b.Position("b")
	assert.True(t, ok)
	assert.InDelta(t, 110, x, 1e-9)

	_, ok = b.Position("zzz")
	assert.False(t, ok)
}

func TestColors(t *testing.T) {
	o := NewOrdinalColors(Category10)
	first := o.Color("north")
	assert.Equal(t, Category10[0], first)
	assert.Equal(t, Category10[1], o.Color("south"))
	assert.Equal(t, first, o.Color("north"))

	seq := NewSequentialColors(0, 10, "#000000", "#ffffff")
	assert.Equal(t, "#000000", seq.Color(0))
	assert.Equal(t, "#ffffff", seq.Color(10))
	assert.Equal(t, "#ffffff", seq.Color(50))
	assert.Equal(t, "#808080", seq.Color(5))
}

func TestStateAndElements(t *testing.T) {
	assert.True(t, StateUpdated.IsLive())
	assert.False(t, StateDestroyed.IsLive())
	assert.Equal(t, "resized", StateResized.String())

	r := Rect(1, 2, 3, 4, "#fff")
	assert.Equal(t, 3.0, r.Attr("width"))
	assert.Equal(t, "rect[height=4 width=3 x=1 y=2]", r.String())
}
