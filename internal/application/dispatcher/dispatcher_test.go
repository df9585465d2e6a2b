package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/event"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func statusChanged() *event.Event {
	return event.NewTransition(entity.KindTask, "task-1", entity.Actor{ID: "emp-1"},
		entity.ActionStart, entity.TaskStatusPending, entity.TaskStatusInProgress, time.Now())
}

func TestDispatch(t *testing.T) {
	t.Run("runs specific handlers before wildcard handlers", func(t *testing.T) {
		d := NewDispatcher()
		var order []string

		d.SubscribeAll("audit", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "audit")
			return nil
		})
		d.Subscribe(event.TypeStatusChanged, "notify", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "notify")
			return nil
		})
		d.Subscribe(event.TypeEntityCreated, "ignored", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "ignored")
			return nil
		})

		if err := d.Dispatch(context.Background(), statusChanged()); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if len(order) != 2 || order[0] != "notify" || order[1] != "audit" {
			t.Errorf("handler order = %v, want [notify audit]", order)
		}
	})

	t.Run("returns first error encountered", func(t *testing.T) {
		logger, logs := observedLogger()
		d := NewDispatcher(WithLogger(logger))
		secondCalled := false
		boom := errors.New("boom")

		d.Subscribe(event.TypeStatusChanged, "first", func(ctx context.Context, evt *event.Event) error {
			return boom
		})
		d.Subscribe(event.TypeStatusChanged, "second", func(ctx context.Context, evt *event.Event) error {
			secondCalled = true
			return nil
		})

		err := d.Dispatch(context.Background(), statusChanged())

		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped boom error, got %v", err)
		}
		if secondCalled {
			t.Error("second handler should not run after an error")
		}
		if logs.FilterMessage("Handler error").Len() != 1 {
			t.Error("expected handler error to be logged")
		}
	})

	t.Run("recovers from handler panic", func(t *testing.T) {
		d := NewDispatcher()
		d.Subscribe(event.TypeStatusChanged, "panics", func(ctx context.Context, evt *event.Event) error {
			panic("test panic")
		})

		if err := d.Dispatch(context.Background(), statusChanged()); err == nil {
			t.Fatal("expected error from panic recovery")
		}
	})

	t.Run("returns ErrClosed after close", func(t *testing.T) {
		d := NewDispatcher()
		if err := d.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		if err := d.Dispatch(context.Background(), statusChanged()); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	})
}

func TestDispatchAsync(t *testing.T) {
	t.Run("close waits for handlers", func(t *testing.T) {
		d := NewDispatcher()
		var called atomic.Int32

		for _, name := range []string{"a", "b"} {
			d.Subscribe(event.TypeStatusChanged, name, func(ctx context.Context, evt *event.Event) error {
				time.Sleep(10 * time.Millisecond)
				called.Add(1)
				return nil
			})
		}

		d.DispatchAsync(context.Background(), statusChanged())

		if err := d.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if called.Load() != 2 {
			t.Errorf("expected 2 handlers to be called, got %d", called.Load())
		}
	})

	t.Run("errors and panics are logged, not propagated", func(t *testing.T) {
		logger, logs := observedLogger()
		d := NewDispatcher(WithLogger(logger))
		var called atomic.Int32

		d.Subscribe(event.TypeStatusChanged, "fails", func(ctx context.Context, evt *event.Event) error {
			return errors.New("handler error")
		})
		d.Subscribe(event.TypeStatusChanged, "panics", func(ctx context.Context, evt *event.Event) error {
			panic("async panic")
		})
		d.SubscribeAll("works", func(ctx context.Context, evt *event.Event) error {
			called.Add(1)
			return nil
		})

		d.DispatchAsync(context.Background(), statusChanged())
		if err := d.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		if called.Load() != 1 {
			t.Errorf("expected healthy handler to run once, got %d", called.Load())
		}
		if got := logs.FilterMessage("Async handler error").Len(); got != 2 {
			t.Errorf("expected 2 async errors logged, got %d", got)
		}
	})

	t.Run("drops events after close", func(t *testing.T) {
		logger, logs := observedLogger()
		d := NewDispatcher(WithLogger(logger))
		var called atomic.Int32
		d.SubscribeAll("counter", func(ctx context.Context, evt *event.Event) error {
			called.Add(1)
			return nil
		})

		_ = d.Close()
		d.DispatchAsync(context.Background(), statusChanged())

		if called.Load() != 0 {
			t.Error("handler should not run after close")
		}
		if logs.FilterMessage("Dropping event, dispatcher is closed").Len() != 1 {
			t.Error("expected dropped event to be logged")
		}
	})
}

func TestListHandlers(t *testing.T) {
	d := NewDispatcher()
	noop := func(ctx context.Context, evt *event.Event) error { return nil }
	d.Subscribe(event.TypeStatusChanged, "history", noop)
	d.SubscribeAll("audit", noop)

	handlers := d.ListHandlers(event.TypeStatusChanged)

	if len(handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(handlers))
	}
	for _, h := range handlers {
		if h.Handler != nil {
			t.Errorf("handler %s should not expose its function", h.Name)
		}
	}
	if got := d.ListHandlers(event.TypeEntityCreated); len(got) != 1 || got[0].Name != "audit" {
		t.Errorf("ListHandlers(created) = %+v, want only audit", got)
	}
}

func TestClose_Twice(t *testing.T) {
	d := NewDispatcher()
	if err := d.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := d.Close(); err == nil {
		t.Error("expected error on double close")
	}
}

func TestConcurrentDispatch(t *testing.T) {
	d := NewDispatcher()
	var called atomic.Int32
	d.Subscribe(event.TypeStatusChanged, "counter", func(ctx context.Context, evt *event.Event) error {
		called.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.DispatchAsync(context.Background(), statusChanged())
		}()
	}
	wg.Wait()

	if err := d.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if called.Load() != 50 {
		t.Errorf("expected 50 calls, got %d", called.Load())
	}
}
