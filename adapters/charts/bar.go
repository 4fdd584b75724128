package charts

import (
	"math"

	"vizkit/domain/chart"
	"vizkit/domain/dataset"
	"vizkit/internal/format"

	internalCharts "vizkit/internal/charts"
)

// Bar draws one vertical bar per record: category on x, value on y
type Bar struct {
	*internalCharts.Lifecycle
}

// BarFields is the mapping used when none is given
var BarFields = chart.FieldMapping{X: "category", Y: "value"}

func NewBar(cfg chart.Config, opts ...internalCharts.Option) (*Bar, error) {
	cfg, err := prepare(TypeBar, cfg, BarFields, chart.ChannelX, chart.ChannelY)
	if err != nil {
		return nil, err
	}
	return &Bar{Lifecycle: internalCharts.NewLifecycle(TypeBar, cfg, internalCharts.PainterFunc(paintBar), opts...)}, nil
}

type barDatum struct {
	key   string
	value float64
	rec   *dataset.Record
}

func paintBar(c *internalCharts.Canvas) error {
	xField, yField := c.Field(chart.ChannelX), c.Field(chart.ChannelY)
	var bars []barDatum
	for _, rec := range c.Data {
		if rec == nil || !rec.Has(xField) {
			continue
		}
		v, ok := rec.Number(yField)
		if !ok {
			continue
		}
		bars = append(bars, barDatum{key: format.Value(rec.Value(xField)), value: v, rec: rec})
	}
	if len(bars) == 0 {
		return internalCharts.DrawPlaceholder(c)
	}
	sortByValue(bars, c.Config.Visual.SortDirection, func(b barDatum) float64 { return b.value })

	var (
		plot   = c.Plot()
		keys   = make([]string, len(bars))
		values = make([]float64, len(bars))
	)
	for i, b := range bars {
		keys[i], values[i] = b.key, b.value
	}
	lo, hi, _ := chart.Extent(values)
	y := valueScale(lo, hi, true, chart.NewRange(plot.Bottom(), plot.Y))
	x := chart.NewBandScale(keys, chart.NewRange(plot.X, plot.Right()), 0.1)

	if err := (internalCharts.CategoryAxis{Orientation: internalCharts.OrientBottom, Scale: x, Label: xField}).Draw(c); err != nil {
		return err
	}
	if err := (internalCharts.NumberAxis{Orientation: internalCharts.OrientLeft, Scale: y, Label: yField}).Draw(c, c.Config.Grid); err != nil {
		return err
	}

	colors := newColorer(c)
	base := y.Scale(0)
	marks := make([]chart.Element, 0, len(bars))
	for _, b := range bars {
		pos, _ := x.Position(b.key)
		top := y.Scale(b.value)
		r := chart.Rect(pos, math.Min(base, top), x.Bandwidth(), math.Abs(base-top), colors.color(b.rec))
		if radius := c.Config.Visual.CornerRadius; radius > 0 {
			r.Attrs["rx"] = radius
		}
		r.Class = "bar"
		r.Datum = datum(b.rec)
		marks = append(marks, r)
	}
	if err := c.Attach(chart.LayerMarks, marks...); err != nil {
		return err
	}
	return internalCharts.DrawLegend(c, colors.legend())
}
