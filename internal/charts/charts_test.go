package charts

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vizkit/adapters/surface"
	"vizkit/domain/chart"
	"vizkit/domain/core"
	"vizkit/domain/dataset"
	"vizkit/internal"
	"vizkit/internal/errors"
	"vizkit/ports"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Emit(event string, payload any) {
	m.Called(event, payload)
}

// dotPainter draws one circle per record
var dotPainter = PainterFunc(func(c *Canvas) error {
	plot := c.Plot()
	elems := make([]chart.Element, 0, len(c.Data))
	for i := range c.Data {
		elems = append(elems, chart.Circle(plot.X+float64(i), plot.Y, 2, chart.DefaultColor))
	}
	return c.Attach(chart.LayerMarks, elems...)
})

func newTestLifecycle(data dataset.Dataset, opts ...Option) *Lifecycle {
	cfg := chart.NewConfig().WithDefaults(chart.FieldMapping{X: "x", Y: "y"})
	cfg.Dataset = data
	return NewLifecycle("dots", cfg, dotPainter, append([]Option{WithLogger(internal.Discard())}, opts...)...)
}

func sample() dataset.Dataset {
	return dataset.Dataset{
		dataset.NewRecord("x", 1, "y", 2),
		dataset.NewRecord("x", 2, "y", 4),
	}
}

func TestRenderRequiresSurface(t *testing.T) {
	l := newTestLifecycle(sample())

	err := l.Render(nil)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrMissingSurface))
	assert.Equal(t, errors.CodeMissingSurface, errors.GetCode(err))
	assert.Equal(t, chart.StateUninitialized, l.State())
}

func TestRenderIsIdempotent(t *testing.T) {
	s := surface.NewMemory(chart.DefaultDimensions())
	l := newTestLifecycle(sample())

	require.NoError(t, l.Render(s))
	first := s.Owned(l.ID().String())
	require.NoError(t, l.Render(nil))
	require.NoError(t, l.Render(s))

	assert.Equal(t, first, s.Owned(l.ID().String()))
	assert.Len(t, s.Elements(chart.LayerMarks), 2)
	assert.Equal(t, chart.StateRendered, l.State())
}

func TestEmptyDatasetDrawsPlaceholder(t *testing.T) {
	s := surface.NewMemory(chart.DefaultDimensions())
	l := newTestLifecycle(nil)

	require.NoError(t, l.Render(s))
	assert.Empty(t, s.Elements(chart.LayerMarks))
	notes := s.Elements(chart.LayerAnnotations)
	require.Len(t, notes, 1)
	assert.Equal(t, chart.NoDataMessage, notes[0].Text)

	require.NoError(t, l.Update(sample()))
	assert.Len(t, s.Elements(chart.LayerMarks), 2)
	assert.Empty(t, s.Elements(chart.LayerAnnotations))
}

func TestStateTransitionsAndEvents(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Emit", mock.Anything, mock.Anything).Return()

	s := surface.NewMemory(chart.DefaultDimensions())
	l := newTestLifecycle(sample(), WithPublisher(pub))

	require.NoError(t, l.Render(s))
	assert.Equal(t, chart.StateRendered, l.State())

	require.NoError(t, l.Update(dataset.Dataset{dataset.NewRecord("x", 1, "y", 1)}))
	assert.Equal(t, chart.StateUpdated, l.State())
	assert.Len(t, s.Elements(chart.LayerMarks), 1)

	dims := chart.Dimensions{Width: 400, Height: 300, Margin: chart.DefaultMargin()}
	require.NoError(t, l.Resize(dims))
	assert.Equal(t, chart.StateResized, l.State())
	assert.Equal(t, dims, l.Config().Dimensions)
	assert.Len(t, l.Data(), 1)

	require.NoError(t, l.Destroy())
	assert.Equal(t, chart.StateDestroyed, l.State())

	var names []string
	for _, call := range pub.Calls {
		names = append(names, call.Arguments.String(0))
		ev := call.Arguments.Get(1).(chart.Event)
		assert.Equal(t, l.ID().String(), ev.ChartID)
		assert.Equal(t, "dots", ev.Type)
	}
	assert.Equal(t, []string{chart.EventRendered, chart.EventUpdated, chart.EventResized, chart.EventDestroyed}, names)
}

func TestUpdateBeforeRender(t *testing.T) {
	l := newTestLifecycle(nil)
	require.NoError(t, l.Update(sample()))
	assert.Equal(t, chart.StateUninitialized, l.State())
	assert.Len(t, l.Data(), 2)

	err := l.Update(nil)
	assert.True(t, core.IsInvalidInput(err))
}

func TestUpdateCopiesDataset(t *testing.T) {
	l := newTestLifecycle(nil)
	data := sample()
	require.NoError(t, l.Update(data))

	data[0].Set("x", 99)
	x, _ := l.Data()[0].Number("x")
	assert.Equal(t, 1.0, x)

	out := l.Data()
	out[0].Set("x", 42)
	x, _ = l.Data()[0].Number("x")
	assert.Equal(t, 1.0, x)
}

func TestResizeRejectsBadDimensions(t *testing.T) {
	s := surface.NewMemory(chart.DefaultDimensions())
	l := newTestLifecycle(sample())
	require.NoError(t, l.Render(s))
	dims := l.Config().Dimensions

	err := l.Resize(chart.Dimensions{Width: -1, Height: 10})
	assert.True(t, core.IsInvalidInput(err))
	assert.Equal(t, chart.StateRendered, l.State())
	assert.Equal(t, dims, l.Config().Dimensions)
}

func TestDestroyReleasesOwnedResources(t *testing.T) {
	sched := surface.NewManual()
	doc := surface.NewDocument()
	s := surface.NewMemory(chart.DefaultDimensions())
	l := newTestLifecycle(sample(), WithDocument(doc))

	require.NoError(t, l.Render(s))
	require.Len(t, doc.Nodes(), 1)

	ticks := 0
	l.Own(sched.Every(0, func() { ticks++ }))
	var order []string
	l.Own(func() { order = append(order, "first") })
	l.Own(func() { order = append(order, "second") })
	assert.Equal(t, 3, l.Owned())
	assert.Equal(t, 1, sched.Active())

	require.NoError(t, l.Destroy())
	require.NoError(t, l.Destroy())

	assert.Equal(t, 0, sched.Active())
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Empty(t, doc.Nodes())
	assert.Equal(t, 0, l.Owned())

	// the surface belongs to the caller
	assert.Len(t, s.Elements(chart.LayerMarks), 2)

	late := false
	l.Own(func() { late = true })
	assert.True(t, late)
}

func TestCallsAfterDestroyFail(t *testing.T) {
	l := newTestLifecycle(sample())
	require.NoError(t, l.Destroy())

	calls := map[string]error{
		"render": l.Render(surface.NewMemory(chart.DefaultDimensions())),
		"update": l.Update(sample()),
		"resize": l.Resize(chart.DefaultDimensions()),
	}
	for name, err := range calls {
		require.Error(t, err, name)
		assert.True(t, stderrors.Is(err, core.ErrChartDestroyed), name)
		assert.True(t, core.IsLifecycleError(err), name)
	}
}

func TestTooltip(t *testing.T) {
	doc := surface.NewDocument()
	l := newTestLifecycle(sample(), WithDocument(doc))
	require.NoError(t, l.Render(surface.NewMemory(chart.DefaultDimensions())))

	l.ShowTooltip("x: 1", 10, 20)
	node := doc.Nodes()[0].(*surface.Node)
	assert.True(t, node.Visible())
	assert.Equal(t, "x: 1", node.Text())

	l.HideTooltip()
	assert.False(t, node.Visible())
}

func TestPaintErrorKeepsState(t *testing.T) {
	boom := stderrors.New("boom")
	fail := false
	painter := PainterFunc(func(c *Canvas) error {
		if fail {
			return boom
		}
		return dotPainter(c)
	})
	cfg := chart.NewConfig().WithDefaults(chart.FieldMapping{X: "x"})
	cfg.Dataset = sample()
	l := NewLifecycle("dots", cfg, painter, WithLogger(internal.Discard()))

	s := surface.NewMemory(chart.DefaultDimensions())
	require.NoError(t, l.Render(s))
	before := s.Owned(l.ID().String())
	require.NotEmpty(t, before)
	dims := l.Config().Dimensions

	fail = true
	err := l.Update(dataset.Dataset{dataset.NewRecord("x", 5)})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, chart.StateRendered, l.State())
	assert.Len(t, l.Data(), 2)
	assert.Equal(t, before, s.Owned(l.ID().String()))

	err = l.Resize(chart.Dimensions{Width: 300, Height: 200})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, s.Owned(l.ID().String()))
	assert.Equal(t, dims, l.Config().Dimensions)

	fail = false
	require.NoError(t, l.Update(dataset.Dataset{dataset.NewRecord("x", 5)}))
	assert.Len(t, s.Owned(l.ID().String()), 1)
}

func TestPaintErrorLeavesOtherChartsAlone(t *testing.T) {
	s := surface.NewMemory(chart.DefaultDimensions())
	cfg := chart.NewConfig().WithDefaults(chart.FieldMapping{X: "x"})
	cfg.Dataset = sample()
	other := NewLifecycle("dots", cfg, dotPainter, WithLogger(internal.Discard()))
	require.NoError(t, other.Render(s))

	broken := NewLifecycle("dots", cfg, PainterFunc(func(c *Canvas) error {
		if err := dotPainter(c); err != nil {
			return err
		}
		return stderrors.New("half drawn")
	}), WithLogger(internal.Discard()))
	assert.Error(t, broken.Render(s))

	assert.Empty(t, s.Owned(broken.ID().String()))
	assert.Len(t, s.Owned(other.ID().String()), 2)
	assert.Equal(t, chart.StateUninitialized, broken.State())
}

func TestTitleAndLegend(t *testing.T) {
	s := surface.NewMemory(chart.DefaultDimensions())
	cfg := chart.NewConfig().WithDefaults(chart.FieldMapping{X: "x"})
	cfg.Title = "Revenue"
	c := NewCanvas(s, "owner", cfg, sample())

	require.NoError(t, DrawTitle(c, cfg.Title))
	require.NoError(t, DrawLegend(c, []LegendEntry{{"north", "#111111"}, {"south", "#222222"}}))
	require.NoError(t, DrawLegend(c, []LegendEntry{{"only", "#111111"}}))

	assert.Equal(t, "Revenue", s.Elements(chart.LayerAnnotations)[0].Text)
	assert.Len(t, s.Elements(chart.LayerLegend), 4)

	cfg.Legend = false
	c = NewCanvas(s, "other", cfg, sample())
	require.NoError(t, DrawLegend(c, []LegendEntry{{"a", "#1"}, {"b", "#2"}}))
	assert.Empty(t, s.Owned("other"))
}

func TestAxes(t *testing.T) {
	s := surface.NewMemory(chart.DefaultDimensions())
	cfg := chart.NewConfig().WithDefaults(chart.FieldMapping{X: "x"})
	c := NewCanvas(s, "owner", cfg, sample())
	plot := c.Plot()

	y := NumberAxis{Orientation: OrientLeft, Scale: chart.NewLinearScale(0, 10, chart.NewRange(plot.Bottom(), plot.Y))}
	require.NoError(t, y.Draw(c, true))

	var labels []string
	grid := 0
	for _, e := range s.Elements(chart.LayerAxes) {
		switch e.Class {
		case "tick-label end":
			labels = append(labels, e.Text)
		case "grid":
			grid++
		}
	}
	assert.Equal(t, []string{"0", "2", "4", "6", "8", "10"}, labels)
	assert.Equal(t, 6, grid)

	x := CategoryAxis{Orientation: OrientBottom, Scale: chart.NewBandScale([]string{"a", "b"}, chart.NewRange(plot.X, plot.Right()), 0.1), Label: "region"}
	require.NoError(t, x.Draw(c))
	var last chart.Element
	for _, e := range s.Elements(chart.LayerAxes) {
		last = e
	}
	assert.Equal(t, "region", last.Text)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(internal.Discard())
	ctor := func(cfg chart.Config) (ports.Chart, error) {
		return NewLifecycle(cfg.Type, cfg.WithDefaults(chart.FieldMapping{X: "x"}), dotPainter, WithLogger(internal.Discard())), nil
	}

	require.NoError(t, reg.Register("bar", ctor))
	assert.True(t, reg.IsRegistered("bar"))
	assert.Equal(t, []string{"bar"}, reg.ListTypes())

	c, err := reg.Create("bar", chart.Config{})
	require.NoError(t, err)
	assert.Equal(t, "bar", c.Type())
	assert.Equal(t, chart.StateUninitialized, c.State())

	assert.True(t, reg.Unregister("bar"))
	assert.False(t, reg.Unregister("bar"))
	_, err = reg.Create("bar", chart.Config{})
	require.Error(t, err)
	assert.True(t, core.IsUnknownType(err))
	assert.Equal(t, errors.CodeUnknownType, errors.GetCode(err))

	assert.True(t, core.IsInvalidInput(reg.Register(" ", ctor)))
	assert.True(t, core.IsInvalidInput(reg.Register("pie", nil)))
}

func TestRegistryListsSortedAndConfiguresCharts(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Emit", chart.EventRendered, mock.Anything).Return().Once()

	reg := NewRegistry(internal.Discard(), WithPublisher(pub))
	ctor := func(cfg chart.Config) (ports.Chart, error) {
		cfg.Dataset = sample()
		return NewLifecycle(cfg.Type, cfg.WithDefaults(chart.FieldMapping{X: "x"}), dotPainter, WithLogger(internal.Discard())), nil
	}
	for _, name := range []string{"scatter", "Bar", "line"} {
		require.NoError(t, reg.Register(name, ctor))
	}
	assert.Equal(t, []string{"bar", "line", "scatter"}, reg.ListTypes())

	c, err := reg.Create("LINE", chart.Config{})
	require.NoError(t, err)
	require.NoError(t, c.Render(surface.NewMemory(chart.DefaultDimensions())))
	pub.AssertExpectations(t)
}

func TestRegistryWrapsConstructorErrors(t *testing.T) {
	reg := NewRegistry(internal.Discard())
	require.NoError(t, reg.Register("bar", func(cfg chart.Config) (ports.Chart, error) {
		return nil, cfg.Validate(chart.ChannelY)
	}))

	_, err := reg.Create("bar", chart.Config{}.WithDefaults(chart.FieldMapping{X: "x"}))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrMissingField))
}
