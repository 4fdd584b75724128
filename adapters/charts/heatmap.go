package charts

import (
	"vizkit/domain/chart"
	"vizkit/domain/dataset"
	"vizkit/internal/format"

	internalCharts "vizkit/internal/charts"
)

// Heatmap draws a grid of cells: x and y are categories, the color channel
// is the numeric intensity
type Heatmap struct {
	*internalCharts.Lifecycle
}

// HeatmapFields is the mapping used when none is given
var HeatmapFields = chart.FieldMapping{X: "x", Y: "y", Color: "value"}

// Gradient ends for cell intensity
const (
	HeatmapLow  = "#f7fbff"
	HeatmapHigh = "#08306b"
)

func NewHeatmap(cfg chart.Config, opts ...internalCharts.Option) (*Heatmap, error) {
	cfg, err := prepare(TypeHeatmap, cfg, HeatmapFields, chart.ChannelX, chart.ChannelY, chart.ChannelColor)
	if err != nil {
		return nil, err
	}
	return &Heatmap{Lifecycle: internalCharts.NewLifecycle(TypeHeatmap, cfg, internalCharts.PainterFunc(paintHeatmap), opts...)}, nil
}

type heatCell struct {
	col, row string
	value    float64
	rec      *dataset.Record
}

func paintHeatmap(c *internalCharts.Canvas) error {
	xField, yField, valueField := c.Field(chart.ChannelX), c.Field(chart.ChannelY), c.Field(chart.ChannelColor)
	var (
		cells      []heatCell
		cols, rows []string
		values     []float64
	)
	for _, rec := range c.Data {
		if rec == nil || !rec.Has(xField) || !rec.Has(yField) {
			continue
		}
		v, ok := rec.Number(valueField)
		if !ok {
			continue
		}
		cell := heatCell{col: format.Value(rec.Value(xField)), row: format.Value(rec.Value(yField)), value: v, rec: rec}
		cells = append(cells, cell)
		cols, rows = append(cols, cell.col), append(rows, cell.row)
		values = append(values, v)
	}
	if len(cells) == 0 {
		return internalCharts.DrawPlaceholder(c)
	}

	plot := c.Plot()
	x := chart.NewBandScale(cols, chart.NewRange(plot.X, plot.Right()), 0.05)
	y := chart.NewBandScale(rows, chart.NewRange(plot.Y, plot.Bottom()), 0.05)
	if err := (internalCharts.CategoryAxis{Orientation: internalCharts.OrientBottom, Scale: x, Label: xField}).Draw(c); err != nil {
		return err
	}
	if err := (internalCharts.CategoryAxis{Orientation: internalCharts.OrientLeft, Scale: y, Label: yField}).Draw(c); err != nil {
		return err
	}

	lo, hi, _ := chart.Extent(values)
	colors := chart.NewSequentialColors(lo, hi, HeatmapLow, HeatmapHigh)
	marks := make([]chart.Element, 0, len(cells))
	for _, cell := range cells {
		px, _ := x.Position(cell.col)
		py, _ := y.Position(cell.row)
		r := chart.Rect(px, py, x.Bandwidth(), y.Bandwidth(), colors.Color(cell.value))
		if radius := c.Config.Visual.CornerRadius; radius > 0 {
			r.Attrs["rx"] = radius
		}
		r.Class = "cell"
		r.Datum = datum(cell.rec)
		marks = append(marks, r)
	}
	if err := c.Attach(chart.LayerMarks, marks...); err != nil {
		return err
	}
	return internalCharts.DrawLegend(c, []internalCharts.LegendEntry{
		{Label: format.Value(lo), Color: colors.Color(lo)},
		{Label: format.Value(hi), Color: colors.Color(hi)},
	})
}
