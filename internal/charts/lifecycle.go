// Package charts holds what every chart type shares: the lifecycle state
// machine, the type registry and the axis, legend and placeholder helpers.
// Concrete chart types live in adapters/charts and plug a Painter into a
// Lifecycle.
package charts

import (
	"sync"

	"vizkit/domain/chart"
	"vizkit/domain/core"
	"vizkit/domain/dataset"
	"vizkit/internal"
	"vizkit/internal/errors"
	"vizkit/ports"
)

// Painter draws one chart type onto a canvas. It is only called with a
// non-empty dataset; the lifecycle draws the placeholder otherwise.
type Painter interface {
	Paint(c *Canvas) error
}

// PainterFunc adapts a function to Painter
type PainterFunc func(c *Canvas) error

func (f PainterFunc) Paint(c *Canvas) error { return f(c) }

// Lifecycle implements ports.Chart around a Painter. Chart types embed it
// and add their own behaviour on top.
type Lifecycle struct {
	mu        sync.Mutex
	id        core.ChartID
	typ       string
	state     chart.State
	cfg       chart.Config
	data      dataset.Dataset
	surface   ports.Surface
	painter   Painter
	publisher ports.EventPublisher
	document  ports.Document
	tooltip   ports.Node
	releasers []func()
	logger    *internal.Logger
}

// Option configures a Lifecycle
type Option func(*Lifecycle)

// WithPublisher sends lifecycle events to p
func WithPublisher(p ports.EventPublisher) Option {
	return func(l *Lifecycle) { l.publisher = p }
}

// WithDocument lets the chart inject a tooltip node into d
func WithDocument(d ports.Document) Option {
	return func(l *Lifecycle) { l.document = d }
}

// WithLogger overrides the default logger
func WithLogger(logger *internal.Logger) Option {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLifecycle creates an uninitialized chart. cfg is copied; a missing
// dataset becomes an empty one.
func NewLifecycle(typ string, cfg chart.Config, painter Painter, opts ...Option) *Lifecycle {
	cfg = cfg.Clone()
	if cfg.Type == "" {
		cfg.Type = typ
	}
	data := cfg.Dataset
	if data == nil {
		data = dataset.Dataset{}
	}
	cfg.Dataset = nil

	l := &Lifecycle{
		id:      core.NewChartID(),
		typ:     typ,
		state:   chart.StateUninitialized,
		cfg:     cfg,
		data:    data,
		painter: painter,
		logger:  internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Configure applies options after construction; the registry uses it to
// hand the bus and document to charts built by plain constructors.
func (l *Lifecycle) Configure(opts ...Option) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, opt := range opts {
		opt(l)
	}
}

func (l *Lifecycle) ID() core.ChartID { return l.id }

func (l *Lifecycle) Type() string { return l.typ }

func (l *Lifecycle) State() chart.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Data returns a copy of the current dataset
func (l *Lifecycle) Data() dataset.Dataset {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data.Clone()
}

// Config returns a copy of the configuration, dataset included
func (l *Lifecycle) Config() chart.Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	cfg := l.cfg.Clone()
	cfg.Dataset = l.data.Clone()
	return cfg
}

// Render binds the chart to surface and draws it. A nil surface redraws on
// the one already bound.
func (l *Lifecycle) Render(surface ports.Surface) error {
	l.mu.Lock()
	if l.state == chart.StateDestroyed {
		l.mu.Unlock()
		return errors.ChartDestroyed(l.id)
	}
	if surface == nil {
		surface = l.surface
	}
	if surface == nil {
		l.mu.Unlock()
		return errors.MissingSurface(l.id)
	}
	if err := l.paintLocked(surface); err != nil {
		l.mu.Unlock()
		return err
	}
	l.surface = surface
	l.state = chart.StateRendered
	l.ensureTooltipLocked()
	ev := l.eventLocked()
	l.mu.Unlock()

	l.publish(chart.EventRendered, ev)
	return nil
}

// Update replaces the dataset wholesale and redraws when a surface is bound
func (l *Lifecycle) Update(ds dataset.Dataset) error {
	if ds == nil {
		return errors.NotADataset("update")
	}
	l.mu.Lock()
	if l.state == chart.StateDestroyed {
		l.mu.Unlock()
		return errors.ChartDestroyed(l.id)
	}
	prev := l.data
	l.data = ds.Clone()
	if l.surface != nil {
		if err := l.paintLocked(l.surface); err != nil {
			l.data = prev
			l.mu.Unlock()
			return err
		}
	}
	if l.state.IsLive() {
		l.state = chart.StateUpdated
	}
	ev := l.eventLocked()
	l.mu.Unlock()

	l.publish(chart.EventUpdated, ev)
	return nil
}

// Resize changes the layout and redraws when a surface is bound. The
// dataset is left alone.
func (l *Lifecycle) Resize(dims chart.Dimensions) error {
	if err := dims.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	if l.state == chart.StateDestroyed {
		l.mu.Unlock()
		return errors.ChartDestroyed(l.id)
	}
	prev := l.cfg.Dimensions
	l.cfg.Dimensions = dims
	if l.surface != nil {
		if err := l.paintLocked(l.surface); err != nil {
			l.cfg.Dimensions = prev
			l.mu.Unlock()
			return err
		}
	}
	if l.state.IsLive() {
		l.state = chart.StateResized
	}
	ev := l.eventLocked()
	l.mu.Unlock()

	l.publish(chart.EventResized, ev)
	return nil
}

// Destroy releases timers, subscriptions and injected nodes. The surface is
// not touched. Calling it again is a no-op.
func (l *Lifecycle) Destroy() error {
	l.mu.Lock()
	if l.state == chart.StateDestroyed {
		l.mu.Unlock()
		return nil
	}
	releasers := l.releasers
	l.releasers = nil
	if l.tooltip != nil && l.document != nil {
		l.document.RemoveNode(l.tooltip.ID())
	}
	l.tooltip = nil
	l.surface = nil
	l.state = chart.StateDestroyed
	ev := l.eventLocked()
	l.mu.Unlock()

	for i := len(releasers) - 1; i >= 0; i-- {
		releasers[i]()
	}
	l.logger.Debug("[Chart] destroyed %s %s", l.typ, l.id)
	l.publish(chart.EventDestroyed, ev)
	return nil
}

// Own registers a release func to run on Destroy, in reverse order. On a
// destroyed chart it runs immediately.
func (l *Lifecycle) Own(release func()) {
	if release == nil {
		return
	}
	l.mu.Lock()
	if l.state == chart.StateDestroyed {
		l.mu.Unlock()
		release()
		return
	}
	l.releasers = append(l.releasers, release)
	l.mu.Unlock()
}

// Owned reports how many release funcs are pending
func (l *Lifecycle) Owned() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.releasers)
}

// ShowTooltip moves the injected tooltip node to (x, y) with text. It does
// nothing when tooltips are off or no document is attached.
func (l *Lifecycle) ShowTooltip(text string, x, y float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tooltip == nil {
		return
	}
	l.tooltip.SetText(text)
	l.tooltip.Move(x, y)
	l.tooltip.SetVisible(true)
}

// HideTooltip hides the tooltip node
func (l *Lifecycle) HideTooltip() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tooltip != nil {
		l.tooltip.SetVisible(false)
	}
}

// Mutate changes the dataset under the chart's lock and redraws it when a
// surface is bound, like Update. Charts that feed themselves, such as the
// real-time chart, use it to append without copying the whole dataset.
func (l *Lifecycle) Mutate(fn func(data dataset.Dataset, cfg chart.Config) dataset.Dataset) error {
	l.mu.Lock()
	if l.state == chart.StateDestroyed {
		l.mu.Unlock()
		return errors.ChartDestroyed(l.id)
	}
	prev := l.data
	l.data = fn(l.data, l.cfg)
	if l.data == nil {
		l.data = dataset.Dataset{}
	}
	if l.surface != nil {
		if err := l.paintLocked(l.surface); err != nil {
			l.data = prev
			l.mu.Unlock()
			return err
		}
	}
	if l.state.IsLive() {
		l.state = chart.StateUpdated
	}
	ev := l.eventLocked()
	l.mu.Unlock()

	l.publish(chart.EventUpdated, ev)
	return nil
}

func (l *Lifecycle) ensureTooltipLocked() {
	if !l.cfg.Tooltip || l.document == nil || l.tooltip != nil {
		return
	}
	l.tooltip = l.document.CreateNode("vizkit-tooltip")
	l.tooltip.SetVisible(false)
}

// paintLocked draws the chart into a staging area and, once the painter
// succeeds, replaces the chart's own elements on surface with it. A failed
// paint leaves surface untouched.
func (l *Lifecycle) paintLocked(surface ports.Surface) error {
	owner := l.id.String()
	stage := newStaging(surface)
	c := &Canvas{
		surface: stage,
		owner:   owner,
		Config:  l.cfg,
		Data:    l.data,
	}
	if err := l.drawLocked(c); err != nil {
		l.logger.Warn("[Chart] %s %s failed to paint: %v", l.typ, l.id, err)
		return err
	}
	return stage.commit(owner)
}

func (l *Lifecycle) drawLocked(c *Canvas) error {
	if l.data.IsEmpty() {
		return DrawPlaceholder(c)
	}
	if err := l.painter.Paint(c); err != nil {
		return err
	}
	if l.cfg.Title != "" {
		return DrawTitle(c, l.cfg.Title)
	}
	return nil
}

func (l *Lifecycle) eventLocked() chart.Event {
	return chart.Event{
		ChartID: l.id.String(),
		Type:    l.typ,
		State:   l.state,
		Records: len(l.data),
	}
}

func (l *Lifecycle) publish(name string, ev chart.Event) {
	if l.publisher == nil {
		return
	}
	l.publisher.Emit(name, ev)
}
