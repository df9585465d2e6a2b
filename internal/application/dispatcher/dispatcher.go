package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/opsflow/internal/domain/event"
)

// ErrClosed is returned when dispatching on a closed dispatcher
var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher routes entity events to registered handlers
type Dispatcher interface {
	// Subscribe registers a named handler for one event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// SubscribeAll registers a named handler for every event type
	SubscribeAll(name string, handler Handler)

	// Dispatch runs matching handlers in registration order and stops at the first error
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync runs matching handlers on their own goroutines without waiting
	DispatchAsync(ctx context.Context, evt *event.Event)

	// ListHandlers returns the handlers that would receive eventType
	ListHandlers(eventType event.Type) []HandlerInfo

	// Close stops accepting events and waits for async handlers
	Close() error
}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerInfo
	wildcard []HandlerInfo
	logger   *zap.Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger *zap.Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		handlers: make(map[event.Type][]HandlerInfo),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventType] = append(d.handlers[eventType], HandlerInfo{Name: name, EventType: eventType, Handler: handler})
	d.logger.Debug("Handler registered",
		zap.String("event_type", eventType.String()),
		zap.String("handler_name", name))
}

func (d *eventDispatcher) SubscribeAll(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.wildcard = append(d.wildcard, HandlerInfo{Name: name, Handler: handler})
	d.logger.Debug("Wildcard handler registered", zap.String("handler_name", name))
}

// matching returns a snapshot of the handlers for eventType, specific ones first
func (d *eventDispatcher) matching(eventType event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	specific := d.handlers[eventType]
	out := make([]HandlerInfo, 0, len(specific)+len(d.wildcard))
	out = append(out, specific...)
	out = append(out, d.wildcard...)
	return out
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return ErrClosed
	}

	for _, info := range d.matching(evt.Type) {
		if err := d.safeExecute(ctx, evt, info); err != nil {
			d.logger.Error("Handler error",
				zap.String("event_type", evt.Type.String()),
				zap.String("event_id", evt.ID),
				zap.String("handler_name", info.Name),
				zap.Error(err))
			return fmt.Errorf("handler %s failed: %w", info.Name, err)
		}
	}
	return nil
}

func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	if d.closed.Load() {
		d.logger.Warn("Dropping event, dispatcher is closed",
			zap.String("event_type", evt.Type.String()),
			zap.String("event_id", evt.ID))
		return
	}

	for _, info := range d.matching(evt.Type) {
		d.wg.Add(1)
		go func(h HandlerInfo) {
			defer d.wg.Done()
			if err := d.safeExecute(ctx, evt, h); err != nil {
				d.logger.Error("Async handler error",
					zap.String("event_type", evt.Type.String()),
					zap.String("event_id", evt.ID),
					zap.String("handler_name", h.Name),
					zap.Error(err))
			}
		}(info)
	}
}

func (d *eventDispatcher) ListHandlers(eventType event.Type) []HandlerInfo {
	handlers := d.matching(eventType)
	for i := range handlers {
		handlers[i].Handler = nil
	}
	return handlers
}

func (d *eventDispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatcher already closed")
	}

	d.logger.Info("Closing dispatcher, waiting for async handlers")
	d.wg.Wait()
	return nil
}

// safeExecute runs a handler with panic recovery
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return info.Handler(ctx, evt)
}
