package charts

import (
	"vizkit/domain/chart"
	"vizkit/internal/format"

	internalCharts "vizkit/internal/charts"
)

// ThreeD stands in for a 3D scene. Nothing is projected; it draws a framed
// notice with the number of records it holds.
type ThreeD struct {
	*internalCharts.Lifecycle
}

// Unsupported3DMessage is shown in place of a 3D scene
const Unsupported3DMessage = "3D rendering is not available"

func New3D(cfg chart.Config, opts ...internalCharts.Option) (*ThreeD, error) {
	cfg, err := prepare(Type3D, cfg, chart.FieldMapping{X: "x", Y: "y"})
	if err != nil {
		return nil, err
	}
	return &ThreeD{Lifecycle: internalCharts.NewLifecycle(Type3D, cfg, internalCharts.PainterFunc(paint3D), opts...)}, nil
}

func paint3D(c *internalCharts.Canvas) error {
	plot := c.Plot()
	frame := chart.Rect(plot.X, plot.Y, plot.W, plot.H, "#fafafa")
	frame.Stroke = "#cccccc"
	frame.Class = "scene"

	x, y := plot.Center()
	notice := chart.Text(x, y, Unsupported3DMessage)
	notice.Class = "notice"
	count := chart.Text(x, y+internalCharts.FontSize*1.5, format.Int(len(c.Data))+" records")
	count.Class = "notice-detail"

	if err := c.Attach(chart.LayerMarks, frame); err != nil {
		return err
	}
	return c.Attach(chart.LayerAnnotations, notice, count)
}
