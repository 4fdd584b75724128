// Package charts implements the concrete chart types. Each one is a
// Painter plugged into the shared lifecycle; RegisterDefaults wires them
// all into a registry.
package charts

import (
	"math"
	"sort"
	"time"

	"vizkit/domain/chart"
	"vizkit/domain/dataset"
	"vizkit/internal/errors"
	"vizkit/internal/format"
	"vizkit/ports"

	internalCharts "vizkit/internal/charts"
)

// Registered chart type names
const (
	TypeBar      = "bar"
	TypeLine     = "line"
	TypeScatter  = "scatter"
	TypePie      = "pie"
	TypeHeatmap  = "heatmap"
	TypeGeo      = "geo"
	TypeRealtime = "realtime"
	Type3D       = "3d"
)

// RealtimeDeps supplies what the real-time chart needs beyond its config
type RealtimeDeps struct {
	Scheduler ports.Scheduler
	// Source builds a point source per chart; nil uses a random walk
	Source func() ports.PointSource
}

// RegisterDefaults registers every built-in chart type
func RegisterDefaults(reg *internalCharts.Registry, deps RealtimeDeps) error {
	ctors := map[string]ports.ChartConstructor{
		TypeBar:     func(cfg chart.Config) (ports.Chart, error) { return NewBar(cfg) },
		TypeLine:    func(cfg chart.Config) (ports.Chart, error) { return NewLine(cfg) },
		TypeScatter: func(cfg chart.Config) (ports.Chart, error) { return NewScatter(cfg) },
		TypePie:     func(cfg chart.Config) (ports.Chart, error) { return NewPie(cfg) },
		TypeHeatmap: func(cfg chart.Config) (ports.Chart, error) { return NewHeatmap(cfg) },
		TypeGeo:     func(cfg chart.Config) (ports.Chart, error) { return NewGeo(cfg) },
		Type3D:      func(cfg chart.Config) (ports.Chart, error) { return New3D(cfg) },
		TypeRealtime: func(cfg chart.Config) (ports.Chart, error) {
			var source ports.PointSource
			if deps.Source != nil {
				source = deps.Source()
			}
			return NewRealtime(cfg, deps.Scheduler, source)
		},
	}
	names := make([]string, 0, len(ctors))
	for name := range ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := reg.Register(name, ctors[name]); err != nil {
			return err
		}
	}
	return nil
}

// prepare fills defaults and validates cfg for one chart type
func prepare(typ string, cfg chart.Config, defaults chart.FieldMapping, required ...chart.Channel) (chart.Config, error) {
	cfg = cfg.WithDefaults(defaults)
	if cfg.Type == "" {
		cfg.Type = typ
	}
	if err := cfg.Validate(required...); err != nil {
		return chart.Config{}, errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "%s chart", typ))
	}
	return cfg, nil
}

// colorer picks the fill of one record: by the color channel when mapped,
// otherwise the configured single color
type colorer struct {
	field    string
	fallback string
	ordinal  *chart.OrdinalColors
	seq      *chart.SequentialColors
	entries  []internalCharts.LegendEntry
	seen     map[string]bool
}

func newColorer(c *internalCharts.Canvas) *colorer {
	field := c.Field(chart.ChannelColor)
	cl := &colorer{
		field:    field,
		fallback: c.Config.Visual.ColorValue,
		ordinal:  chart.NewOrdinalColors(c.Palette()),
		seen:     make(map[string]bool),
	}
	if field == "" {
		return cl
	}
	numeric := true
	for _, v := range c.Data.Values(field) {
		if v != nil && !dataset.IsNumber(v) {
			numeric = false
			break
		}
	}
	if lo, hi, ok := chart.Extent(c.Data.Numbers(field)); numeric && ok {
		seq := chart.NewSequentialColors(lo, hi, c.Palette().At(0), c.Palette().At(1))
		cl.seq = &seq
	}
	return cl
}

func (cl *colorer) color(rec *dataset.Record) string {
	if cl.field == "" {
		return cl.fallback
	}
	v, ok := rec.Get(cl.field)
	if !ok || v == nil {
		return cl.fallback
	}
	if cl.seq != nil {
		if f, ok := dataset.AsNumber(v); ok {
			return cl.seq.Color(f)
		}
		return cl.fallback
	}
	key := format.Value(v)
	color := cl.ordinal.Color(key)
	if !cl.seen[key] {
		cl.seen[key] = true
		cl.entries = append(cl.entries, internalCharts.LegendEntry{Label: key, Color: color})
	}
	return color
}

// legend returns one entry per category seen so far
func (cl *colorer) legend() []internalCharts.LegendEntry {
	return cl.entries
}

// sortByValue orders items by value per the configured direction; ties
// keep their input order
func sortByValue[T any](items []T, direction string, value func(T) float64) {
	switch direction {
	case chart.SortAscending:
		sort.SliceStable(items, func(i, j int) bool { return value(items[i]) < value(items[j]) })
	case chart.SortDescending:
		sort.SliceStable(items, func(i, j int) bool { return value(items[i]) > value(items[j]) })
	}
}

// valueScale spans lo..hi, widened to include zero when asked, and
// extended to round ticks
func valueScale(lo, hi float64, withZero bool, rg chart.Range) chart.LinearScale {
	if withZero {
		lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return chart.NewLinearScale(lo, hi, rg).Nice(internalCharts.TickCount)
}

// axisKind classifies the x values of a dataset
type axisKind int

const (
	axisCategory axisKind = iota
	axisNumber
	axisTime
)

func classifyAxis(values []any) axisKind {
	kind := axisKind(-1)
	for _, v := range values {
		if v == nil {
			continue
		}
		var k axisKind
		switch x := v.(type) {
		case time.Time:
			k = axisTime
		default:
			if !dataset.IsNumber(x) {
				return axisCategory
			}
			k = axisNumber
		}
		if kind >= 0 && kind != k {
			return axisCategory
		}
		kind = k
	}
	if kind < 0 {
		return axisCategory
	}
	return kind
}

// timeValue maps a time onto a linear axis in seconds
func timeValue(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// timeFormatter labels ticks over a span of seconds
func timeFormatter(span float64) func(float64) string {
	layout := "2006-01-02"
	switch {
	case span < 60:
		layout = "15:04:05.0"
	case span < 24*3600:
		layout = "15:04:05"
	case span < 7*24*3600:
		layout = "Jan 2 15:04"
	}
	return func(v float64) string {
		sec, frac := math.Modf(v)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC().Format(layout)
	}
}

// maxRadiusFactor bounds the largest sized point relative to PointRadius
const maxRadiusFactor = 4

// radiusFunc sizes points by the size channel when it is mapped. Area, not
// radius, grows with the value.
func radiusFunc(c *internalCharts.Canvas) func(*dataset.Record) float64 {
	base := c.Config.Visual.PointRadius
	field := c.Field(chart.ChannelSize)
	fixed := func(*dataset.Record) float64 { return base }
	if field == "" {
		return fixed
	}
	lo, hi, ok := chart.Extent(c.Data.Numbers(field))
	if !ok {
		return fixed
	}
	sizes := chart.NewLinearScale(lo, hi, chart.NewRange(1, maxRadiusFactor*maxRadiusFactor))
	return func(rec *dataset.Record) float64 {
		v, ok := rec.Number(field)
		if !ok {
			return base
		}
		return base * math.Sqrt(sizes.Scale(v))
	}
}

func datum(rec *dataset.Record) map[string]any {
	return rec.ToMap()
}
