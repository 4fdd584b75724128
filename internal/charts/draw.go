package charts

import (
	"vizkit/domain/chart"
	"vizkit/internal/format"
)

const (
	FontSize  = 12.0
	TickCount = 5
	axisColor = "#333333"
	gridColor = "#e0e0e0"
)

// Orientation is the side of the plot an axis is drawn on
type Orientation int

const (
	OrientBottom Orientation = iota
	OrientLeft
)

func (o Orientation) Vertical() bool {
	return o == OrientLeft
}

// DrawPlaceholder writes the no-data message in the middle of the plot
func DrawPlaceholder(c *Canvas) error {
	x, y := c.Plot().Center()
	label := chart.Text(x, y, chart.NoDataMessage)
	label.Class = "no-data"
	label.Fill = "#999999"
	return c.Attach(chart.LayerAnnotations, label)
}

// DrawTitle centers title above the plot
func DrawTitle(c *Canvas, title string) error {
	d := c.Dimensions()
	label := chart.Text(d.Width/2, FontSize*1.2, title)
	label.Class = "title"
	return c.Attach(chart.LayerAnnotations, label)
}

// NumberAxis draws ticks for a linear scale
type NumberAxis struct {
	Orientation
	Scale  chart.LinearScale
	Ticks  int
	Label  string
	Format func(float64) string
}

// Draw attaches the axis line, ticks and labels. With grid set, a faint line
// crosses the plot at every tick.
func (a NumberAxis) Draw(c *Canvas, grid bool) error {
	plot := c.Plot()
	count := a.Ticks
	if count <= 0 {
		count = TickCount
	}
	ticks := a.Scale.Ticks(count)
	step := 0.0
	if len(ticks) > 1 {
		step = ticks[1] - ticks[0]
	}
	fmtTick := a.Format
	if fmtTick == nil {
		fmtTick = func(v float64) string { return format.Tick(v, step) }
	}

	elems := []chart.Element{domainLine(a.Orientation, plot)}
	for _, v := range ticks {
		pos := a.Scale.Scale(v)
		elems = append(elems, lineTick(a.Orientation, plot, pos), tickText(a.Orientation, plot, pos, fmtTick(v)))
		if grid {
			elems = append(elems, gridLine(a.Orientation, plot, pos))
		}
	}
	if a.Label != "" {
		elems = append(elems, axisLabel(a.Orientation, plot, a.Label))
	}
	return c.Attach(chart.LayerAxes, elems...)
}

// CategoryAxis labels the bands of a band scale
type CategoryAxis struct {
	Orientation
	Scale chart.BandScale
	Label string
}

func (a CategoryAxis) Draw(c *Canvas) error {
	plot := c.Plot()
	align := a.Scale.Bandwidth() / 2
	elems := []chart.Element{domainLine(a.Orientation, plot)}
	for _, key := range a.Scale.Keys() {
		pos, _ := a.Scale.Position(key)
		elems = append(elems, lineTick(a.Orientation, plot, pos+align), tickText(a.Orientation, plot, pos+align, key))
	}
	if a.Label != "" {
		elems = append(elems, axisLabel(a.Orientation, plot, a.Label))
	}
	return c.Attach(chart.LayerAxes, elems...)
}

func domainLine(orient Orientation, plot Rect) chart.Element {
	var line chart.Element
	if orient.Vertical() {
		line = chart.Line(plot.X, plot.Y, plot.X, plot.Bottom(), axisColor)
	} else {
		line = chart.Line(plot.X, plot.Bottom(), plot.Right(), plot.Bottom(), axisColor)
	}
	line.Class = "domain"
	return line
}

func lineTick(orient Orientation, plot Rect, pos float64) chart.Element {
	size := FontSize * 0.5
	var tick chart.Element
	if orient.Vertical() {
		tick = chart.Line(plot.X-size, pos, plot.X, pos, axisColor)
	} else {
		tick = chart.Line(pos, plot.Bottom(), pos, plot.Bottom()+size, axisColor)
	}
	tick.Class = "tick"
	return tick
}

func tickText(orient Orientation, plot Rect, pos float64, str string) chart.Element {
	var text chart.Element
	if orient.Vertical() {
		text = chart.Text(plot.X-FontSize*0.8, pos, str)
		text.Class = "tick-label end"
	} else {
		text = chart.Text(pos, plot.Bottom()+FontSize*1.5, str)
		text.Class = "tick-label middle"
	}
	return text
}

func gridLine(orient Orientation, plot Rect, pos float64) chart.Element {
	var line chart.Element
	if orient.Vertical() {
		line = chart.Line(plot.X, pos, plot.Right(), pos, gridColor)
	} else {
		line = chart.Line(pos, plot.Y, pos, plot.Bottom(), gridColor)
	}
	line.Class = "grid"
	return line
}

func axisLabel(orient Orientation, plot Rect, label string) chart.Element {
	var text chart.Element
	if orient.Vertical() {
		text = chart.Text(plot.X-FontSize*3.5, plot.Y+plot.H/2, label)
		text.Class = "axis-label vertical"
	} else {
		text = chart.Text(plot.X+plot.W/2, plot.Bottom()+FontSize*3, label)
		text.Class = "axis-label"
	}
	return text
}

// LegendEntry is one swatch in a legend
type LegendEntry struct {
	Label string
	Color string
}

// DrawLegend stacks entries in the top right corner of the plot. It draws
// nothing when the legend is turned off or there is at most one entry.
func DrawLegend(c *Canvas, entries []LegendEntry) error {
	if !c.Config.Legend || len(entries) < 2 {
		return nil
	}
	var (
		plot   = c.Plot()
		offset = FontSize * 1.4
		width  float64
	)
	for _, e := range entries {
		if n := float64(len(e.Label)); n > width {
			width = n
		}
	}
	width = width*FontSize*0.6 + 30

	left, top := plot.Right()-width, plot.Y
	elems := make([]chart.Element, 0, 2*len(entries))
	for i, e := range entries {
		y := top + float64(i)*offset
		swatch := chart.Rect(left, y-FontSize/2, FontSize, FontSize, e.Color)
		swatch.Class = "legend-swatch"
		label := chart.Text(left+20, y, e.Label)
		label.Class = "legend-label start"
		elems = append(elems, swatch, label)
	}
	return c.Attach(chart.LayerLegend, elems...)
}
