package charts

import (
	"math"

	"vizkit/domain/chart"
	"vizkit/domain/dataset"
	"vizkit/internal/format"

	internalCharts "vizkit/internal/charts"
)

// Pie draws one slice per record with a positive value, clockwise from
// twelve o'clock. A non-zero InnerRadius turns it into a donut.
type Pie struct {
	*internalCharts.Lifecycle
}

// PieFields is the mapping used when none is given
var PieFields = chart.FieldMapping{X: "label", Y: "value"}

// slices narrower than this get no percentage label
const minLabelAngle = 0.2

func NewPie(cfg chart.Config, opts ...internalCharts.Option) (*Pie, error) {
	cfg, err := prepare(TypePie, cfg, PieFields, chart.ChannelX, chart.ChannelY)
	if err != nil {
		return nil, err
	}
	return &Pie{Lifecycle: internalCharts.NewLifecycle(TypePie, cfg, internalCharts.PainterFunc(paintPie), opts...)}, nil
}

type pieSlice struct {
	label string
	value float64
	rec   *dataset.Record
}

func paintPie(c *internalCharts.Canvas) error {
	labelField, valueField := c.Field(chart.ChannelX), c.Field(chart.ChannelY)
	var (
		slices []pieSlice
		total  float64
	)
	for _, rec := range c.Data {
		if rec == nil {
			continue
		}
		v, ok := rec.Number(valueField)
		if !ok || v <= 0 {
			continue
		}
		slices = append(slices, pieSlice{label: format.Value(rec.Value(labelField)), value: v, rec: rec})
		total += v
	}
	if len(slices) == 0 || total <= 0 {
		return internalCharts.DrawPlaceholder(c)
	}
	sortByValue(slices, c.Config.Visual.SortDirection, func(s pieSlice) float64 { return s.value })

	var (
		plot    = c.Plot()
		cx, cy  = plot.Center()
		outer   = math.Min(plot.W, plot.H) / 2
		inner   = outer * c.Config.Visual.InnerRadius
		palette = chart.NewOrdinalColors(c.Palette())
		start   float64
		marks   []chart.Element
		labels  []chart.Element
		legend  []internalCharts.LegendEntry
	)
	for _, s := range slices {
		sweep := s.value / total * 2 * math.Pi
		color := palette.Color(s.label)
		arc := chart.Arc(cx, cy, inner, outer, start, start+sweep, color)
		arc.Stroke = "#ffffff"
		arc.Class = "slice"
		arc.Datum = datum(s.rec)
		marks = append(marks, arc)

		if sweep >= minLabelAngle {
			mid := start + sweep/2
			r := (inner + outer) / 2
			if inner == 0 {
				r = outer * 0.65
			}
			label := chart.Text(cx+r*math.Sin(mid), cy-r*math.Cos(mid), format.Percent(s.value/total, 1))
			label.Class = "slice-label"
			label.Fill = "#ffffff"
			labels = append(labels, label)
		}
		legend = append(legend, internalCharts.LegendEntry{Label: s.label, Color: color})
		start += sweep
	}
	if err := c.Attach(chart.LayerMarks, marks...); err != nil {
		return err
	}
	if err := c.Attach(chart.LayerAnnotations, labels...); err != nil {
		return err
	}
	return internalCharts.DrawLegend(c, legend)
}
