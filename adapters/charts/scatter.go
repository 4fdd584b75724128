package charts

import (
	"vizkit/domain/chart"
	"vizkit/domain/dataset"
	domainStats "vizkit/domain/stats"
	"vizkit/internal/analysis"
	"vizkit/internal/format"

	internalCharts "vizkit/internal/charts"
)

// Scatter draws one circle per record with numeric x and y. The size
// channel scales the radius; the color channel picks categorical or
// sequential colors.
type Scatter struct {
	*internalCharts.Lifecycle
}

// ScatterFields is the mapping used when none is given
var ScatterFields = chart.FieldMapping{X: "x", Y: "y"}

func NewScatter(cfg chart.Config, opts ...internalCharts.Option) (*Scatter, error) {
	cfg, err := prepare(TypeScatter, cfg, ScatterFields, chart.ChannelX, chart.ChannelY)
	if err != nil {
		return nil, err
	}
	return &Scatter{Lifecycle: internalCharts.NewLifecycle(TypeScatter, cfg, internalCharts.PainterFunc(paintScatter), opts...)}, nil
}

type scatterPoint struct {
	x, y float64
	rec  *dataset.Record
}

func paintScatter(c *internalCharts.Canvas) error {
	xField, yField := c.Field(chart.ChannelX), c.Field(chart.ChannelY)
	var (
		points []scatterPoint
		pairs  []domainStats.Pair
		xs, ys []float64
	)
	for _, rec := range c.Data {
		if rec == nil {
			continue
		}
		x, okX := rec.Number(xField)
		y, okY := rec.Number(yField)
		if !okX || !okY {
			continue
		}
		points = append(points, scatterPoint{x: x, y: y, rec: rec})
		pairs = append(pairs, domainStats.Pair{X: x, Y: y})
		xs, ys = append(xs, x), append(ys, y)
	}
	if len(points) == 0 {
		return internalCharts.DrawPlaceholder(c)
	}

	plot := c.Plot()
	xlo, xhi, _ := chart.Extent(xs)
	ylo, yhi, _ := chart.Extent(ys)
	xScale := valueScale(xlo, xhi, false, chart.NewRange(plot.X, plot.Right()))
	yScale := valueScale(ylo, yhi, false, chart.NewRange(plot.Bottom(), plot.Y))
	if err := (internalCharts.NumberAxis{Orientation: internalCharts.OrientBottom, Scale: xScale, Label: xField}).Draw(c, c.Config.Grid); err != nil {
		return err
	}
	if err := (internalCharts.NumberAxis{Orientation: internalCharts.OrientLeft, Scale: yScale, Label: yField}).Draw(c, c.Config.Grid); err != nil {
		return err
	}

	radius := radiusFunc(c)

	colors := newColorer(c)
	marks := make([]chart.Element, 0, len(points)+1)
	for _, p := range points {
		dot := chart.Circle(xScale.Scale(p.x), yScale.Scale(p.y), radius(p.rec), colors.color(p.rec))
		dot.Class = "point"
		dot.Datum = datum(p.rec)
		marks = append(marks, dot)
	}

	if c.Config.Visual.TrendLine && len(points) > 1 {
		fit := analysis.LinearRegression(pairs)
		lo, hi := xScale.D0, xScale.D1
		trend := chart.Line(xScale.Scale(lo), yScale.Scale(fit.Predict(lo)), xScale.Scale(hi), yScale.Scale(fit.Predict(hi)), "#555555")
		trend.Class = "trend"
		trend.Text = "R² " + format.Fixed(fit.RSquared, 3)
		marks = append(marks, trend)
	}
	if err := c.Attach(chart.LayerMarks, marks...); err != nil {
		return err
	}
	return internalCharts.DrawLegend(c, colors.legend())
}
