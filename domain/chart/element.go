package chart

import (
	"fmt"
	"sort"
	"strings"
)

// Layer is a named group of elements on a surface
type Layer string

const (
	LayerAxes        Layer = "axes"
	LayerMarks       Layer = "marks"
	LayerLegend      Layer = "legend"
	LayerAnnotations Layer = "annotations"
)

// Layers lists the layers in paint order
func Layers() []Layer {
	return []Layer{LayerAxes, LayerMarks, LayerLegend, LayerAnnotations}
}

// Kind is the primitive an element draws
type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindLine   Kind = "line"
	KindPath   Kind = "path"
	KindText   Kind = "text"
	KindArc    Kind = "arc"
)

// Element is one visual primitive. Geometry lives in Attrs (x, y, width,
// height, cx, cy, r, x1, y1, x2, y2, start, end, inner) so a surface can
// paint it without knowing which chart produced it.
type Element struct {
	Kind   Kind               `json:"kind"`
	Owner  string             `json:"owner,omitempty"`
	Attrs  map[string]float64 `json:"attrs,omitempty"`
	Points [][2]float64       `json:"points,omitempty"`
	Fill   string             `json:"fill,omitempty"`
	Stroke string             `json:"stroke,omitempty"`
	Text   string             `json:"text,omitempty"`
	Class  string             `json:"class,omitempty"`
	Datum  map[string]any     `json:"datum,omitempty"`
}

// Attr returns a geometry attribute, 0 when unset
func (e Element) Attr(name string) float64 {
	return e.Attrs[name]
}

func (e Element) String() string {
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.4g", k, e.Attrs[k]))
	}
	s := fmt.Sprintf("%s[%s]", e.Kind, strings.Join(parts, " "))
	if e.Text != "" {
		s += fmt.Sprintf("%q", e.Text)
	}
	return s
}

// Rect builds a rectangle element
func Rect(x, y, w, h float64, fill string) Element {
	return Element{Kind: KindRect, Fill: fill, Attrs: map[string]float64{"x": x, "y": y, "width": w, "height": h}}
}

// Circle builds a circle element
func Circle(cx, cy, r float64, fill string) Element {
	return Element{Kind: KindCircle, Fill: fill, Attrs: map[string]float64{"cx": cx, "cy": cy, "r": r}}
}

// Line builds a straight segment
func Line(x1, y1, x2, y2 float64, stroke string) Element {
	return Element{Kind: KindLine, Stroke: stroke, Attrs: map[string]float64{"x1": x1, "y1": y1, "x2": x2, "y2": y2}}
}

// Path builds a polyline through points
func Path(points [][2]float64, stroke string) Element {
	return Element{Kind: KindPath, Stroke: stroke, Points: points}
}

// Text builds a label anchored at (x, y)
func Text(x, y float64, text string) Element {
	return Element{Kind: KindText, Text: text, Attrs: map[string]float64{"x": x, "y": y}}
}

// Arc builds a pie or donut slice centred on (cx, cy); angles are radians
// clockwise from twelve o'clock
func Arc(cx, cy, inner, outer, start, end float64, fill string) Element {
	return Element{Kind: KindArc, Fill: fill, Attrs: map[string]float64{
		"cx": cx, "cy": cy, "inner": inner, "r": outer, "start": start, "end": end,
	}}
}
