package app

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vizkit/adapters/charts"
	"vizkit/adapters/excel"
	"vizkit/adapters/surface"
	"vizkit/domain/chart"
	"vizkit/domain/core"
	"vizkit/domain/dataset"
	domainStats "vizkit/domain/stats"
	"vizkit/internal"
	"vizkit/internal/analysis"
	internalCharts "vizkit/internal/charts"
	"vizkit/internal/config"
	internalDataset "vizkit/internal/dataset"
	"vizkit/internal/errors"
	"vizkit/internal/events"
	"vizkit/ports"
)

// EventDataUpdated carries a replacement dataset to bound charts
const EventDataUpdated = "data:updated"

// maxConcurrentLoads bounds LoadAll
const maxConcurrentLoads = 4

// owner is implemented by charts that can tie a release func to Destroy
type owner interface {
	Own(release func())
}

// Visualizer wires readers, the processor, the chart registry and the bus
type Visualizer struct {
	config    *config.Config
	bus       *events.Bus
	processor *internalDataset.Processor
	registry  *internalCharts.Registry
	reader    ports.DatasetReader
	document  ports.Document
	logger    *internal.Logger

	mu     sync.Mutex
	charts map[core.ChartID]ports.Chart
}

// Options supplies the collaborators of a Visualizer. Zero fields get
// defaults: env config, the file reader, a real ticker and an in-memory
// document.
type Options struct {
	Config    *config.Config
	Reader    ports.DatasetReader
	Scheduler ports.Scheduler
	Document  ports.Document
	Logger    *internal.Logger
}

// NewVisualizer creates a visualizer with every built-in chart type registered
func NewVisualizer(opts Options) (*Visualizer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	reader := opts.Reader
	if reader == nil {
		reader = excel.NewDataReader(excel.DefaultReaderConfig(), logger)
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = surface.NewTicker()
	}
	document := opts.Document
	if document == nil {
		document = surface.NewDocument()
	}

	bus := events.NewBus(events.WithMaxDepth(cfg.Events.MaxEmitDepth), events.WithLogger(logger))
	processor := internalDataset.NewProcessor(
		internalDataset.WithOutlierPolicy(cfg.Processing.Outliers),
		internalDataset.WithBins(cfg.Processing.HistogramBins),
		internalDataset.WithPublisher(bus),
		internalDataset.WithLogger(logger),
	)
	registry := internalCharts.NewRegistry(logger,
		internalCharts.WithPublisher(bus),
		internalCharts.WithDocument(document),
		internalCharts.WithLogger(logger),
	)
	if err := charts.RegisterDefaults(registry, charts.RealtimeDeps{Scheduler: scheduler}); err != nil {
		return nil, errors.Wrap(err, "failed to register chart types")
	}

	return &Visualizer{
		config:    cfg,
		bus:       bus,
		processor: processor,
		registry:  registry,
		reader:    reader,
		document:  document,
		logger:    logger,
		charts:    make(map[core.ChartID]ports.Chart),
	}, nil
}

func (v *Visualizer) Bus() *events.Bus { return v.bus }

func (v *Visualizer) Processor() *internalDataset.Processor { return v.processor }

func (v *Visualizer) Registry() *internalCharts.Registry { return v.registry }

func (v *Visualizer) Document() ports.Document { return v.document }

// Load reads one dataset file
func (v *Visualizer) Load(ctx context.Context, path string) (dataset.Dataset, error) {
	return v.reader.ReadFile(ctx, path)
}

// LoadAll reads several files concurrently. Results keep the order of
// paths; the first failure cancels the rest.
func (v *Visualizer) LoadAll(ctx context.Context, paths ...string) ([]dataset.Dataset, error) {
	start := time.Now()
	results := make([]dataset.Dataset, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		g.Go(func() error {
			ds, err := v.reader.ReadFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "load %s", path)
			}
			results[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v.logger.Info("[Visualizer] loaded %d files in %s", len(paths), time.Since(start).Round(time.Millisecond))
	return results, nil
}

// CreateChart builds a chart of typ over ds. Config gaps are filled from
// the environment defaults before the chart type applies its own.
func (v *Visualizer) CreateChart(typ string, cfg chart.Config, ds dataset.Dataset) (ports.Chart, error) {
	cfg = v.config.Chart.Apply(cfg)
	if ds != nil {
		cfg.Dataset = ds
	}
	c, err := v.registry.Create(typ, cfg)
	if core.IsUnknownType(err) {
		return nil, errors.Wrapf(err, "chart types are %s", strings.Join(v.registry.ListTypes(), ", "))
	}
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.charts[c.ID()] = c
	v.mu.Unlock()
	if o, ok := c.(owner); ok {
		id := c.ID()
		o.Own(func() {
			v.mu.Lock()
			delete(v.charts, id)
			v.mu.Unlock()
		})
	}
	return c, nil
}

// Charts returns the live charts created by this visualizer, by ID
func (v *Visualizer) Charts() []ports.Chart {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]ports.Chart, 0, len(v.charts))
	for _, c := range v.charts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out
}

// Bind updates c with every dataset published on event (EventDataUpdated
// when empty). The subscription is released when the chart is destroyed.
func (v *Visualizer) Bind(c ports.Chart, event string) (events.Subscription, error) {
	if event == "" {
		event = EventDataUpdated
	}
	o, ok := c.(owner)
	if !ok {
		return events.Subscription{}, errors.InvalidInputf("chart %s cannot own subscriptions", c.ID())
	}
	sub := v.bus.On(event, func(_ context.Context, payload any) error {
		ds, ok := payload.(dataset.Dataset)
		if !ok {
			return errors.NotADataset(event)
		}
		err := c.Update(ds)
		if core.IsLifecycleError(err) {
			v.logger.Debug("[Visualizer] %s skipped %s: %v", c.ID(), event, err)
			return nil
		}
		return err
	})
	o.Own(sub.Unsubscribe)
	return sub, nil
}

// Publish sends ds to the charts bound to event
func (v *Visualizer) Publish(event string, ds dataset.Dataset) {
	if event == "" {
		event = EventDataUpdated
	}
	v.bus.Emit(event, ds)
}

// RenderRequest describes one file-to-SVG render
type RenderRequest struct {
	DataPath string
	Type     string
	Chart    chart.Config
	Process  *internalDataset.ProcessOptions
}

// Render loads and processes a dataset, draws it as a chart on a fresh
// surface and writes the surface as SVG to w. The chart is destroyed
// afterwards.
func (v *Visualizer) Render(ctx context.Context, req RenderRequest, w io.Writer) error {
	ds, err := v.Load(ctx, req.DataPath)
	if err != nil {
		return err
	}
	if req.Process != nil {
		if ds, err = v.processor.Process(ds, *req.Process); err != nil {
			return err
		}
	}

	typ := req.Type
	if typ == "" {
		typ = req.Chart.Type
	}
	c, err := v.CreateChart(typ, req.Chart, ds)
	if err != nil {
		return err
	}
	defer c.Destroy()

	s := surface.NewMemory(c.Config().Dimensions)
	if err := c.Render(s); err != nil {
		return err
	}
	v.logger.Debug("[Visualizer] rendered %s chart with %d elements", c.Type(), s.Len())
	return surface.WriteSVG(w, s)
}

// FieldStats is the summary and shape of one numeric field
type FieldStats struct {
	Field   string              `json:"field"`
	Summary domainStats.Summary `json:"summary"`
	Shape   domainStats.Shape   `json:"shape"`
}

// Describe summarizes the numeric fields of ds, or only fields when given
func (v *Visualizer) Describe(ds dataset.Dataset, fields ...string) ([]FieldStats, error) {
	cleaned, err := v.processor.Clean(ds)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = cleaned.NumericFields()
	}
	summaries, err := v.processor.CalculateStatistics(cleaned, fields...)
	if err != nil {
		return nil, err
	}
	out := make([]FieldStats, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldStats{
			Field:   field,
			Summary: summaries[field],
			Shape:   analysis.Describe(cleaned.Numbers(field)),
		})
	}
	return out, nil
}

// Close destroys every chart still alive
func (v *Visualizer) Close() error {
	var firstErr error
	for _, c := range v.Charts() {
		if err := c.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
