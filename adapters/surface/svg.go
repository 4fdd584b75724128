package surface

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"vizkit/domain/chart"
	"vizkit/internal/errors"
	"vizkit/ports"
)

const fontFamily = "Helvetica,Arial,sans-serif"

// errWriter remembers the first write error; svgo does not report them
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG serializes every layer of s, in paint order, as one SVG document
func WriteSVG(w io.Writer, s ports.Surface) error {
	ew := &errWriter{w: w}
	dims := s.Size()
	canvas := svg.New(ew)
	canvas.Start(dims.Width, dims.Height,
		fmt.Sprintf(`font-size="%gpx" font-family="%s"`, 12.0, fontFamily))
	canvas.Rect(0, 0, dims.Width, dims.Height, "fill:#ffffff")

	for _, layer := range chart.Layers() {
		elems := s.Elements(layer)
		if len(elems) == 0 {
			continue
		}
		canvas.Gid(string(layer))
		for _, e := range elems {
			drawElement(canvas, e)
		}
		canvas.Gend()
	}
	canvas.End()

	if ew.err != nil {
		return errors.IOError("write svg", ew.err)
	}
	return nil
}

func drawElement(canvas *svg.SVG, e chart.Element) {
	attrs := []string{elementStyle(e)}
	if e.Class != "" {
		attrs = append(attrs, fmt.Sprintf(`class="%s"`, html.EscapeString(e.Class)))
	}
	switch e.Kind {
	case chart.KindRect:
		if rx := e.Attr("rx"); rx > 0 {
			canvas.Roundrect(e.Attr("x"), e.Attr("y"), e.Attr("width"), e.Attr("height"), rx, rx, attrs...)
			return
		}
		canvas.Rect(e.Attr("x"), e.Attr("y"), e.Attr("width"), e.Attr("height"), attrs...)
	case chart.KindCircle:
		canvas.Circle(e.Attr("cx"), e.Attr("cy"), e.Attr("r"), attrs...)
	case chart.KindLine:
		canvas.Line(e.Attr("x1"), e.Attr("y1"), e.Attr("x2"), e.Attr("y2"), attrs...)
	case chart.KindPath:
		if len(e.Points) == 0 {
			return
		}
		xs := make([]float64, len(e.Points))
		ys := make([]float64, len(e.Points))
		for i, p := range e.Points {
			xs[i], ys[i] = p[0], p[1]
		}
		canvas.Polyline(xs, ys, attrs...)
	case chart.KindText:
		canvas.Text(e.Attr("x"), e.Attr("y"), e.Text, append(attrs, `dy=".35em"`)...)
	case chart.KindArc:
		canvas.Path(arcPath(e), attrs...)
	}
}

func elementStyle(e chart.Element) string {
	var parts []string
	switch e.Kind {
	case chart.KindLine, chart.KindPath:
		parts = append(parts, "fill:none")
	case chart.KindText:
		anchor := "middle"
		for _, class := range strings.Fields(e.Class) {
			if class == "start" || class == "end" {
				anchor = class
			}
		}
		parts = append(parts, "text-anchor:"+anchor)
	}
	if e.Fill != "" {
		parts = append(parts, "fill:"+e.Fill)
	}
	if e.Stroke != "" {
		parts = append(parts, "stroke:"+e.Stroke)
	}
	if w := e.Attr("stroke-width"); w > 0 {
		parts = append(parts, fmt.Sprintf("stroke-width:%g", w))
	}
	if o := e.Attr("opacity"); o > 0 {
		parts = append(parts, fmt.Sprintf("opacity:%g", o))
	}
	return strings.Join(parts, ";")
}

// arcPath builds the outline of a slice; angles run clockwise from twelve
// o'clock
func arcPath(e chart.Element) string {
	var (
		cx, cy = e.Attr("cx"), e.Attr("cy")
		outer  = e.Attr("r")
		inner  = e.Attr("inner")
		start  = e.Attr("start")
		end    = e.Attr("end")
	)
	if end-start >= 2*math.Pi-1e-9 {
		// a full ring cannot be one arc command
		end = start + 2*math.Pi - 1e-6
	}
	large := 0
	if end-start > math.Pi {
		large = 1
	}
	point := func(a, r float64) (float64, float64) {
		return cx + r*math.Sin(a), cy - r*math.Cos(a)
	}

	x0, y0 := point(start, outer)
	x1, y1 := point(end, outer)
	var b strings.Builder
	fmt.Fprintf(&b, "M%.3f %.3f A%.3f %.3f 0 %d 1 %.3f %.3f", x0, y0, outer, outer, large, x1, y1)
	if inner > 0 {
		x2, y2 := point(end, inner)
		x3, y3 := point(start, inner)
		fmt.Fprintf(&b, " L%.3f %.3f A%.3f %.3f 0 %d 0 %.3f %.3f", x2, y2, inner, inner, large, x3, y3)
	} else {
		fmt.Fprintf(&b, " L%.3f %.3f", cx, cy)
	}
	b.WriteString(" Z")
	return b.String()
}
