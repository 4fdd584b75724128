package charts

import (
	"sync"

	"vizkit/adapters/datareadiness/synthesizer"
	"vizkit/domain/chart"
	"vizkit/domain/dataset"
	"vizkit/internal/errors"
	"vizkit/ports"

	internalCharts "vizkit/internal/charts"
)

// Realtime is a line chart that feeds itself. From its first render it
// appends one point per tick of its scheduler, keeping the newest
// MaxPoints, and redraws. Destroy cancels the task.
type Realtime struct {
	*internalCharts.Lifecycle

	mu        sync.Mutex
	scheduler ports.Scheduler
	source    ports.PointSource
	cancel    func()
}

// RealtimeFields is the mapping used when none is given
var RealtimeFields = chart.FieldMapping{X: "time", Y: "value"}

// NewRealtime creates a real-time chart. A nil source falls back to a
// random walk.
func NewRealtime(cfg chart.Config, scheduler ports.Scheduler, source ports.PointSource, opts ...internalCharts.Option) (*Realtime, error) {
	if scheduler == nil {
		return nil, errors.InvalidInput("realtime chart needs a scheduler")
	}
	cfg, err := prepare(TypeRealtime, cfg, RealtimeFields, chart.ChannelX, chart.ChannelY)
	if err != nil {
		return nil, err
	}
	if source == nil {
		source = synthesizer.NewRandomWalk(synthesizer.DefaultWalkConfig())
	}
	return &Realtime{
		Lifecycle: internalCharts.NewLifecycle(TypeRealtime, cfg, internalCharts.PainterFunc(paintLine), opts...),
		scheduler: scheduler,
		source:    source,
	}, nil
}

// Render draws the chart and starts the refresh task the first time
func (r *Realtime) Render(surface ports.Surface) error {
	if err := r.Lifecycle.Render(surface); err != nil {
		return err
	}
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return nil
	}
	interval := r.Lifecycle.Config().Realtime.Interval
	cancel := r.scheduler.Every(interval, r.tick)
	r.cancel = cancel
	r.mu.Unlock()

	r.Own(func() {
		cancel()
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
	})
	return nil
}

func (r *Realtime) tick() {
	// a tick racing Destroy finds the chart destroyed and does nothing
	_ = r.Push(r.source.Next())
}

// Push appends one point, dropping the oldest beyond MaxPoints
func (r *Realtime) Push(p ports.Point) error {
	return r.Mutate(func(data dataset.Dataset, cfg chart.Config) dataset.Dataset {
		rec := dataset.NewRecord(cfg.Fields.X, p.Time, cfg.Fields.Y, p.Value)
		data = append(data, rec)
		if limit := cfg.Realtime.MaxPoints; limit > 0 && len(data) > limit {
			data = append(dataset.Dataset(nil), data[len(data)-limit:]...)
		}
		return data
	})
}

// Running reports whether the refresh task is scheduled
func (r *Realtime) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}
