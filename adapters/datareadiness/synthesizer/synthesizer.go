package synthesizer

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"vizkit/ports"
)

// WalkConfig defines the random walk
type WalkConfig struct {
	Start float64 `json:"start"`
	Step  float64 `json:"step"` // standard deviation of one move
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Seed  uint64  `json:"seed"` // 0 picks a random seed
}

// DefaultWalkConfig returns a walk around 50 bounded to [0, 100]
func DefaultWalkConfig() WalkConfig {
	return WalkConfig{
		Start: 50,
		Step:  5,
		Min:   0,
		Max:   100,
	}
}

// RandomWalk synthesizes a live series: each point moves the previous
// value by a normally distributed step, reflected back inside [Min, Max]
type RandomWalk struct {
	mu     sync.Mutex
	config WalkConfig
	moves  distuv.Normal
	value  float64
	clock  func() time.Time
}

// Option configures a RandomWalk
type Option func(*RandomWalk)

// WithClock overrides time.Now for point timestamps
func WithClock(clock func() time.Time) Option {
	return func(w *RandomWalk) { w.clock = clock }
}

// NewRandomWalk creates a walk with config
func NewRandomWalk(config WalkConfig, opts ...Option) *RandomWalk {
	if config.Max < config.Min {
		config.Min, config.Max = config.Max, config.Min
	}
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	w := &RandomWalk{
		config: config,
		moves:  distuv.Normal{Mu: 0, Sigma: math.Abs(config.Step), Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)},
		value:  clamp(config.Start, config.Min, config.Max),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Next returns the next point of the walk
func (w *RandomWalk) Next() ports.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.config.Step != 0 {
		w.value = reflect(w.value+w.moves.Rand(), w.config.Min, w.config.Max)
	}
	return ports.Point{Time: w.clock(), Value: w.value}
}

// Value returns the last value without moving
func (w *RandomWalk) Value() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// reflect folds v back into [lo, hi] as if it bounced off the edges
func reflect(v, lo, hi float64) float64 {
	width := hi - lo
	if width <= 0 {
		return lo
	}
	period := 2 * width
	off := math.Mod(v-lo, period)
	if off < 0 {
		off += period
	}
	if off > width {
		off = period - off
	}
	return lo + off
}

// Sequence replays fixed values, cycling, one time step apart
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
	at     time.Time
	step   time.Duration
}

// NewSequence replays values starting at start
func NewSequence(start time.Time, step time.Duration, values ...float64) *Sequence {
	return &Sequence{values: values, at: start, step: step}
}

func (s *Sequence) Next() ports.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := ports.Point{Time: s.at}
	if len(s.values) > 0 {
		p.Value = s.values[s.next%len(s.values)]
		s.next++
	}
	s.at = s.at.Add(s.step)
	return p
}
