package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"vizkit/domain/core"
	"vizkit/internal"
	"vizkit/internal/errors"
)

// DefaultMaxDepth bounds re-entrant Emit calls
const DefaultMaxDepth = 16

// Handler receives an event payload. A returned error, like a panic, is
// reported as a listener error and does not stop the other handlers.
// Handlers that emit in turn pass ctx to EmitContext so the nested emit
// counts against the same dispatch chain.
type Handler func(ctx context.Context, payload any) error

type depthKey struct{}

func depthOf(ctx context.Context) int {
	depth, _ := ctx.Value(depthKey{}).(int)
	return depth
}

// ErrorHandler is told about every listener failure
type ErrorHandler func(event string, err error)

type subscription struct {
	id      core.SubscriptionID
	handler Handler
	once    bool
	removed bool
}

// Bus is a synchronous publish/subscribe hub. Handlers run on the emitting
// goroutine, in registration order.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]*subscription
	maxDepth int
	onError  ErrorHandler
	logger   *internal.Logger
}

// Option configures a Bus
type Option func(*Bus)

// WithMaxDepth sets how deep handlers may nest Emit calls
func WithMaxDepth(depth int) Option {
	return func(b *Bus) {
		if depth > 0 {
			b.maxDepth = depth
		}
	}
}

// WithErrorHandler registers a hook for listener failures
func WithErrorHandler(fn ErrorHandler) Option {
	return func(b *Bus) { b.onError = fn }
}

// WithLogger overrides the default logger
func WithLogger(logger *internal.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBus creates an empty bus
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[string][]*subscription),
		maxDepth: DefaultMaxDepth,
		logger:   internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is the handle returned by On and Once
type Subscription struct {
	ID    core.SubscriptionID
	Event string
	bus   *Bus
}

// Unsubscribe removes exactly this registration; calling it again is a no-op
func (s Subscription) Unsubscribe() {
	if s.bus != nil {
		s.bus.Off(s.Event, s.ID)
	}
}

// On registers handler for event
func (b *Bus) On(event string, handler Handler) Subscription {
	return b.add(event, handler, false)
}

// Once registers handler for the next emission of event only
func (b *Bus) Once(event string, handler Handler) Subscription {
	return b.add(event, handler, true)
}

func (b *Bus) add(event string, handler Handler, once bool) Subscription {
	sub := &subscription{id: core.NewSubscriptionID(), handler: handler, once: once}

	b.mu.Lock()
	b.handlers[event] = append(b.handlers[event], sub)
	count := len(b.handlers[event])
	b.mu.Unlock()

	b.logger.Trace("[EventBus] subscribed to %s (listeners: %d)", event, count)
	return Subscription{ID: sub.id, Event: event, bus: b}
}

// Off removes the registration with the given id. Removing the last
// registration for an event frees the event entirely.
func (b *Bus) Off(event string, id core.SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(event, func(s *subscription) bool { return s.id == id })
}

func (b *Bus) removeLocked(event string, match func(*subscription) bool) {
	subs, ok := b.handlers[event]
	if !ok {
		return
	}
	kept := subs[:0:0]
	for _, s := range subs {
		if match(s) {
			s.removed = true
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		delete(b.handlers, event)
		return
	}
	b.handlers[event] = kept
}

// RemoveAllListeners drops every registration, or only those for the named
// events when any are given
func (b *Bus) RemoveAllListeners(events ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(events) == 0 {
		for event := range b.handlers {
			b.removeLocked(event, func(*subscription) bool { return true })
		}
		return
	}
	for _, event := range events {
		b.removeLocked(event, func(*subscription) bool { return true })
	}
}

func (b *Bus) removeWithPrefix(prefix string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for event := range b.handlers {
		if strings.HasPrefix(event, prefix) {
			b.removeLocked(event, func(*subscription) bool { return true })
		}
	}
}

// ListenerCount returns the number of registrations for event
func (b *Bus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}

// EventNames returns every event with at least one registration, sorted
func (b *Bus) EventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Emit starts a new dispatch chain for event. See EmitContext.
func (b *Bus) Emit(event string, payload any) {
	b.EmitContext(context.Background(), event, payload)
}

// EmitContext calls every handler registered for event with payload. It
// works on a snapshot taken at entry, so handlers added during dispatch wait
// for the next emission while handlers removed during dispatch are skipped.
// Failures are logged and reported to the error hook. The nesting depth
// travels in ctx, so only emits made from inside the same chain count
// towards the limit.
func (b *Bus) EmitContext(ctx context.Context, event string, payload any) {
	if ctx == nil {
		ctx = context.Background()
	}
	depth := depthOf(ctx)
	if depth >= b.maxDepth {
		err := fmt.Errorf("%w: %q at depth %d", core.ErrEmitRecursion, event, b.maxDepth)
		b.logger.Warn("[EventBus] %v, emission dropped", err)
		b.report(event, err)
		return
	}
	ctx = context.WithValue(ctx, depthKey{}, depth+1)

	b.mu.Lock()
	snapshot := append([]*subscription(nil), b.handlers[event]...)
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.mu.Lock()
		if sub.removed {
			b.mu.Unlock()
			continue
		}
		if sub.once {
			b.removeLocked(event, func(s *subscription) bool { return s == sub })
		}
		b.mu.Unlock()

		if err := b.invoke(ctx, sub.handler, payload); err != nil {
			listenerErr := errors.ListenerError(event, err)
			b.logger.Error("[EventBus] %v", listenerErr)
			b.report(event, listenerErr)
		}
	}
}

func (b *Bus) invoke(ctx context.Context, handler Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, payload)
}

func (b *Bus) report(event string, err error) {
	if b.onError != nil {
		b.onError(event, err)
	}
}

// Namespace returns a view of the bus whose event names are prefixed with
// "prefix:"
func (b *Bus) Namespace(prefix string) *Namespace {
	return &Namespace{bus: b, prefix: prefix + ":"}
}

// Namespace is a prefixed view of a Bus
type Namespace struct {
	bus    *Bus
	prefix string
}

func (n *Namespace) name(event string) string {
	return n.prefix + event
}

// On registers handler for prefix:event
func (n *Namespace) On(event string, handler Handler) Subscription {
	return n.bus.On(n.name(event), handler)
}

// Once registers handler for the next prefix:event
func (n *Namespace) Once(event string, handler Handler) Subscription {
	return n.bus.Once(n.name(event), handler)
}

// Off removes a registration for prefix:event
func (n *Namespace) Off(event string, id core.SubscriptionID) {
	n.bus.Off(n.name(event), id)
}

// Emit emits prefix:event
func (n *Namespace) Emit(event string, payload any) {
	n.bus.Emit(n.name(event), payload)
}

// EmitContext emits prefix:event within the dispatch chain of ctx
func (n *Namespace) EmitContext(ctx context.Context, event string, payload any) {
	n.bus.EmitContext(ctx, n.name(event), payload)
}

// ListenerCount counts registrations for prefix:event
func (n *Namespace) ListenerCount(event string) int {
	return n.bus.ListenerCount(n.name(event))
}

// Namespace nests a further prefix
func (n *Namespace) Namespace(prefix string) *Namespace {
	return &Namespace{bus: n.bus, prefix: n.prefix + prefix + ":"}
}

// RemoveAllListeners removes only events under this namespace
func (n *Namespace) RemoveAllListeners() {
	n.bus.removeWithPrefix(n.prefix)
}

// EventNames lists the events under this namespace without the prefix
func (n *Namespace) EventNames() []string {
	var out []string
	for _, name := range n.bus.EventNames() {
		if strings.HasPrefix(name, n.prefix) {
			out = append(out, strings.TrimPrefix(name, n.prefix))
		}
	}
	return out
}
