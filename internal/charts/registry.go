package charts

import (
	"sort"
	"strings"
	"sync"

	"vizkit/domain/chart"
	"vizkit/internal"
	"vizkit/internal/errors"
	"vizkit/ports"
)

// Configurable is implemented by charts built on Lifecycle
type Configurable interface {
	Configure(opts ...Option)
}

// Registry maps chart type names to constructors. Each process or test
// owns its own instance.
type Registry struct {
	mu     sync.RWMutex
	ctors  map[string]ports.ChartConstructor
	opts   []Option
	logger *internal.Logger
}

// NewRegistry creates an empty registry. opts are applied to every chart
// it creates, which is how charts get the bus and the document.
func NewRegistry(logger *internal.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Registry{
		ctors:  make(map[string]ports.ChartConstructor),
		opts:   opts,
		logger: logger,
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a chart type; registering a name again replaces it
func (r *Registry) Register(name string, ctor ports.ChartConstructor) error {
	key := normalizeName(name)
	if key == "" {
		return errors.InvalidInput("chart type name cannot be empty")
	}
	if ctor == nil {
		return errors.InvalidInputf("chart type %q has no constructor", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[key]; exists {
		r.logger.Warn("[ChartRegistry] replacing chart type %q", key)
	}
	r.ctors[key] = ctor
	r.logger.Debug("[ChartRegistry] registered %q", key)
	return nil
}

// Unregister removes a chart type and reports whether it was registered
func (r *Registry) Unregister(name string) bool {
	key := normalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[key]; !exists {
		return false
	}
	delete(r.ctors, key)
	return true
}

// IsRegistered reports whether name has a constructor
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.ctors[normalizeName(name)]
	return exists
}

// ListTypes returns the registered names in alphabetical order
func (r *Registry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds a new chart of the named type
func (r *Registry) Create(name string, cfg chart.Config) (ports.Chart, error) {
	key := normalizeName(name)
	r.mu.RLock()
	ctor, exists := r.ctors[key]
	r.mu.RUnlock()
	if !exists {
		return nil, errors.UnknownType(name)
	}

	cfg.Type = key
	c, err := ctor(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s chart", key)
	}
	if conf, ok := c.(Configurable); ok && len(r.opts) > 0 {
		conf.Configure(r.opts...)
	}
	r.logger.Debug("[ChartRegistry] created %s chart %s", key, c.ID())
	return c, nil
}
