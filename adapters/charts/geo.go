package charts

import (
	"math"

	"vizkit/domain/chart"

	internalCharts "vizkit/internal/charts"
)

// Geo places records on an equirectangular world map: x is longitude, y is
// latitude. Size and color channels work as in Scatter.
type Geo struct {
	*internalCharts.Lifecycle
}

// GeoFields is the mapping used when none is given
var GeoFields = chart.FieldMapping{X: "longitude", Y: "latitude"}

// graticuleStep is the spacing of meridians and parallels in degrees
const graticuleStep = 30

func NewGeo(cfg chart.Config, opts ...internalCharts.Option) (*Geo, error) {
	cfg, err := prepare(TypeGeo, cfg, GeoFields, chart.ChannelX, chart.ChannelY)
	if err != nil {
		return nil, err
	}
	return &Geo{Lifecycle: internalCharts.NewLifecycle(TypeGeo, cfg, internalCharts.PainterFunc(paintGeo), opts...)}, nil
}

// Projection maps longitude/latitude onto a rectangle keeping a 2:1 aspect
type Projection struct {
	internalCharts.Rect
}

// NewProjection fits the world into plot, centred
func NewProjection(plot internalCharts.Rect) Projection {
	w, h := plot.W, plot.H
	if w > 2*h {
		w = 2 * h
	} else {
		h = w / 2
	}
	return Projection{Rect: internalCharts.Rect{
		X: plot.X + (plot.W-w)/2,
		Y: plot.Y + (plot.H-h)/2,
		W: w,
		H: h,
	}}
}

// Project returns the surface position of (lon, lat); ok is false outside
// the valid coordinate range
func (p Projection) Project(lon, lat float64) (x, y float64, ok bool) {
	if math.Abs(lon) > 180 || math.Abs(lat) > 90 {
		return 0, 0, false
	}
	return p.X + (lon+180)/360*p.W, p.Y + (90-lat)/180*p.H, true
}

func paintGeo(c *internalCharts.Canvas) error {
	lonField, latField := c.Field(chart.ChannelX), c.Field(chart.ChannelY)
	proj := NewProjection(c.Plot())

	outline := chart.Rect(proj.X, proj.Y, proj.W, proj.H, "#f4f8fb")
	outline.Stroke = "#b0bec5"
	outline.Class = "sphere"
	axes := []chart.Element{outline}
	if c.Config.Grid {
		for lon := -180 + graticuleStep; lon < 180; lon += graticuleStep {
			x0, y0, _ := proj.Project(float64(lon), 90)
			x1, y1, _ := proj.Project(float64(lon), -90)
			meridian := chart.Line(x0, y0, x1, y1, "#dde5ea")
			meridian.Class = "graticule"
			axes = append(axes, meridian)
		}
		for lat := -90 + graticuleStep; lat < 90; lat += graticuleStep {
			x0, y0, _ := proj.Project(-180, float64(lat))
			x1, y1, _ := proj.Project(180, float64(lat))
			parallel := chart.Line(x0, y0, x1, y1, "#dde5ea")
			parallel.Class = "graticule"
			axes = append(axes, parallel)
		}
	}
	if err := c.Attach(chart.LayerAxes, axes...); err != nil {
		return err
	}

	radius := radiusFunc(c)

	colors := newColorer(c)
	var marks []chart.Element
	for _, rec := range c.Data {
		if rec == nil {
			continue
		}
		lon, okLon := rec.Number(lonField)
		lat, okLat := rec.Number(latField)
		if !okLon || !okLat {
			continue
		}
		x, y, ok := proj.Project(lon, lat)
		if !ok {
			continue
		}
		dot := chart.Circle(x, y, radius(rec), colors.color(rec))
		dot.Class = "location"
		dot.Datum = datum(rec)
		marks = append(marks, dot)
	}
	if len(marks) == 0 {
		return internalCharts.DrawPlaceholder(c)
	}
	if err := c.Attach(chart.LayerMarks, marks...); err != nil {
		return err
	}
	return internalCharts.DrawLegend(c, colors.legend())
}
