package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Range is an output interval in surface units
type Range struct {
	F float64
	T float64
}

func NewRange(f, t float64) Range {
	return Range{F: f, T: t}
}

func (r Range) Len() float64 {
	return r.T - r.F
}

// ============================================================================
// LINEAR
// ============================================================================

// LinearScale maps a numeric domain onto a range
type LinearScale struct {
	D0, D1 float64
	Range
}

// NewLinearScale builds a linear scale; a degenerate domain maps everything
// to the middle of the range
func NewLinearScale(d0, d1 float64, rg Range) LinearScale {
	return LinearScale{D0: d0, D1: d1, Range: rg}
}

// Scale maps v from the domain onto the range
func (s LinearScale) Scale(v float64) float64 {
	extent := s.D1 - s.D0
	if extent == 0 {
		return s.F + s.Len()/2
	}
	return s.F + (v-s.D0)/extent*s.Len()
}

// Nice extends the domain outward to round tick values
func (s LinearScale) Nice(count int) LinearScale {
	lo, hi := math.Min(s.D0, s.D1), math.Max(s.D0, s.D1)
	if lo == hi {
		return s
	}
	step := tickStep(lo, hi, count)
	lo, hi = math.Floor(lo/step)*step, math.Ceil(hi/step)*step
	if s.D0 > s.D1 {
		lo, hi = hi, lo
	}
	return LinearScale{D0: lo, D1: hi, Range: s.Range}
}

// Ticks returns roughly count round values inside the domain
func (s LinearScale) Ticks(count int) []float64 {
	lo, hi := math.Min(s.D0, s.D1), math.Max(s.D0, s.D1)
	if lo == hi {
		return []float64{lo}
	}
	step := tickStep(lo, hi, count)
	first := math.Ceil(lo / step)
	var ticks []float64
	for i := first; i*step <= hi+step*1e-9; i++ {
		ticks = append(ticks, roundTo(i*step, step))
	}
	return ticks
}

func tickStep(lo, hi float64, count int) float64 {
	if count <= 0 {
		count = 5
	}
	raw := (hi - lo) / float64(count)
	base := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / base; {
	case f < 1.5:
		return base
	case f < 3:
		return 2 * base
	case f < 7:
		return 5 * base
	default:
		return 10 * base
	}
}

// roundTo strips floating point noise below the tick step's precision
func roundTo(v, step float64) float64 {
	digits := int(math.Max(0, -math.Floor(math.Log10(step))))
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', digits, 64), 64)
	return f
}

// Extent returns the min and max of xs; ok is false for empty input
func Extent(xs []float64) (lo, hi float64, ok bool) {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		if !ok {
			lo, hi, ok = x, x, true
			continue
		}
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi, ok
}

// ============================================================================
// BAND
// ============================================================================

// BandScale splits a range into equal bands, one per category
type BandScale struct {
	keys    []string
	index   map[string]int
	Padding float64 // fraction of each step left empty
	Range
}

// NewBandScale builds a band scale over keys in the given order
func NewBandScale(keys []string, rg Range, padding float64) BandScale {
	b := BandScale{index: make(map[string]int, len(keys)), Padding: padding, Range: rg}
	for _, k := range keys {
		if _, dup := b.index[k]; dup {
			continue
		}
		b.index[k] = len(b.keys)
		b.keys = append(b.keys, k)
	}
	return b
}

// Keys returns the domain in order
func (b BandScale) Keys() []string {
	return append([]string(nil), b.keys...)
}

func (b BandScale) step() float64 {
	if len(b.keys) == 0 {
		return 0
	}
	return b.Len() / float64(len(b.keys))
}

// Bandwidth is the drawable width of one band
func (b BandScale) Bandwidth() float64 {
	return b.step() * (1 - b.Padding)
}

// Position returns the start of key's band
func (b BandScale) Position(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.F + float64(i)*b.step() + b.step()*b.Padding/2, true
}

// ============================================================================
// COLOR
// ============================================================================

// OrdinalColors assigns palette colors to keys in first-seen order
type OrdinalColors struct {
	palette Palette
	index   map[string]int
}

func NewOrdinalColors(palette []string) *OrdinalColors {
	return &OrdinalColors{palette: palette, index: make(map[string]int)}
}

// Color returns the stable color of key
func (o *OrdinalColors) Color(key any) string {
	k := fmt.Sprint(key)
	i, ok := o.index[k]
	if !ok {
		i = len(o.index)
		o.index[k] = i
	}
	return o.palette.At(i)
}

// SequentialColors interpolates between two colors over a numeric domain
type SequentialColors struct {
	scale    LinearScale
	from, to colorful.Color
}

// NewSequentialColors maps [d0, d1] onto the gradient from -> to. Colors
// that fail to parse fall back to black.
func NewSequentialColors(d0, d1 float64, from, to string) SequentialColors {
	return SequentialColors{
		scale: NewLinearScale(d0, d1, NewRange(0, 1)),
		from:  parseHex(from),
		to:    parseHex(to),
	}
}

// Color returns the interpolated hex color for v
func (s SequentialColors) Color(v float64) string {
	t := math.Max(0, math.Min(1, s.scale.Scale(v)))
	return s.from.BlendRgb(s.to, t).Clamped().Hex()
}

func parseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}
