package charts

import (
	"sort"
	"time"

	"vizkit/domain/chart"
	"vizkit/domain/dataset"
	"vizkit/internal/format"

	internalCharts "vizkit/internal/charts"
)

// Line draws one polyline per series. Series are split by the color
// channel when it is mapped. The x axis is numeric, temporal or
// categorical depending on the data.
type Line struct {
	*internalCharts.Lifecycle
}

// LineFields is the mapping used when none is given
var LineFields = chart.FieldMapping{X: "x", Y: "y"}

func NewLine(cfg chart.Config, opts ...internalCharts.Option) (*Line, error) {
	cfg, err := prepare(TypeLine, cfg, LineFields, chart.ChannelX, chart.ChannelY)
	if err != nil {
		return nil, err
	}
	return &Line{Lifecycle: internalCharts.NewLifecycle(TypeLine, cfg, internalCharts.PainterFunc(paintLine), opts...)}, nil
}

type linePoint struct {
	key string
	x   float64
	y   float64
	rec *dataset.Record
}

type lineSeries struct {
	name   string
	color  string
	points []linePoint
}

func paintLine(c *internalCharts.Canvas) error {
	xField, yField, colorField := c.Field(chart.ChannelX), c.Field(chart.ChannelY), c.Field(chart.ChannelColor)
	kind := classifyAxis(c.Data.Values(xField))

	var (
		series []*lineSeries
		byName = make(map[string]*lineSeries)
		keys   []string
		xs, ys []float64
	)
	palette := chart.NewOrdinalColors(c.Palette())
	for _, rec := range c.Data {
		if rec == nil {
			continue
		}
		raw, ok := rec.Get(xField)
		if !ok || raw == nil {
			continue
		}
		y, ok := rec.Number(yField)
		if !ok {
			continue
		}
		p := linePoint{y: y, rec: rec}
		switch kind {
		case axisNumber:
			p.x, _ = dataset.AsNumber(raw)
		case axisTime:
			p.x = timeValue(raw.(time.Time))
		default:
			p.key = format.Value(raw)
			keys = append(keys, p.key)
		}
		xs, ys = append(xs, p.x), append(ys, y)

		name := ""
		if colorField != "" {
			name = format.Value(rec.Value(colorField))
		}
		s, exists := byName[name]
		if !exists {
			s = &lineSeries{name: name, color: c.Config.Visual.ColorValue}
			if colorField != "" {
				s.color = palette.Color(name)
			}
			byName[name] = s
			series = append(series, s)
		}
		s.points = append(s.points, p)
	}
	if len(series) == 0 {
		return internalCharts.DrawPlaceholder(c)
	}

	plot := c.Plot()
	ylo, yhi, _ := chart.Extent(ys)
	yScale := valueScale(ylo, yhi, false, chart.NewRange(plot.Bottom(), plot.Y))
	if err := (internalCharts.NumberAxis{Orientation: internalCharts.OrientLeft, Scale: yScale, Label: yField}).Draw(c, c.Config.Grid); err != nil {
		return err
	}

	var position func(p linePoint) float64
	if kind == axisCategory {
		band := chart.NewBandScale(keys, chart.NewRange(plot.X, plot.Right()), 0)
		position = func(p linePoint) float64 {
			pos, _ := band.Position(p.key)
			return pos + band.Bandwidth()/2
		}
		if err := (internalCharts.CategoryAxis{Orientation: internalCharts.OrientBottom, Scale: band, Label: xField}).Draw(c); err != nil {
			return err
		}
	} else {
		xlo, xhi, _ := chart.Extent(xs)
		if xlo == xhi {
			xlo, xhi = xlo-1, xhi+1
		}
		xScale := chart.NewLinearScale(xlo, xhi, chart.NewRange(plot.X, plot.Right()))
		axis := internalCharts.NumberAxis{Orientation: internalCharts.OrientBottom, Scale: xScale, Label: xField}
		if kind == axisTime {
			axis.Format = timeFormatter(xhi - xlo)
		} else {
			axis.Scale = xScale.Nice(internalCharts.TickCount)
			xScale = axis.Scale
		}
		position = func(p linePoint) float64 { return xScale.Scale(p.x) }
		for _, s := range series {
			sort.SliceStable(s.points, func(i, j int) bool { return s.points[i].x < s.points[j].x })
		}
		if err := axis.Draw(c, c.Config.Grid); err != nil {
			return err
		}
	}

	radius := c.Config.Visual.PointRadius
	var (
		marks  []chart.Element
		legend []internalCharts.LegendEntry
	)
	for _, s := range series {
		path := make([][2]float64, len(s.points))
		for i, p := range s.points {
			path[i] = [2]float64{position(p), yScale.Scale(p.y)}
		}
		line := chart.Path(path, s.color)
		line.Attrs = map[string]float64{"stroke-width": 2}
		line.Class = "line"
		marks = append(marks, line)
		if radius > 0 {
			for i, p := range s.points {
				dot := chart.Circle(path[i][0], path[i][1], radius, s.color)
				dot.Class = "point"
				dot.Datum = datum(p.rec)
				marks = append(marks, dot)
			}
		}
		if s.name != "" {
			legend = append(legend, internalCharts.LegendEntry{Label: s.name, Color: s.color})
		}
	}
	if err := c.Attach(chart.LayerMarks, marks...); err != nil {
		return err
	}
	return internalCharts.DrawLegend(c, legend)
}
