package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/garyjia/opsflow/internal/application/dispatcher"
	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/event"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

// mockDocumentRepo keeps snapshots in memory; function fields override it
type mockDocumentRepo[T port.Document] struct {
	mu   sync.Mutex
	docs map[string]T

	createFunc         func(ctx context.Context, doc T) error
	updateIfStatusFunc func(ctx context.Context, doc T, expected domainwf.State) error
}

func newMockDocumentRepo[T port.Document](seed ...T) *mockDocumentRepo[T] {
	m := &mockDocumentRepo[T]{docs: make(map[string]T)}
	for _, doc := range seed {
		m.docs[doc.EntityID()] = doc
	}
	return m
}

func (m *mockDocumentRepo[T]) Create(ctx context.Context, doc T) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.EntityID()] = doc
	return nil
}

func (m *mockDocumentRepo[T]) GetByID(ctx context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return doc, fmt.Errorf("%s: %w", id, port.ErrNotFound)
	}
	return doc, nil
}

func (m *mockDocumentRepo[T]) UpdateIfStatus(ctx context.Context, doc T, expected domainwf.State) error {
	if m.updateIfStatusFunc != nil {
		return m.updateIfStatusFunc(ctx, doc, expected)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.docs[doc.EntityID()]
	if !ok {
		return port.ErrNotFound
	}
	if stored.CurrentStatus() != expected {
		return port.ErrStaleStatus
	}
	m.docs[doc.EntityID()] = doc
	return nil
}

func (m *mockDocumentRepo[T]) stored(id string) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id]
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	records []*entity.TransitionRecord

	createFunc func(ctx context.Context, record *entity.TransitionRecord) error
}

func (m *mockHistoryRepo) Create(ctx context.Context, record *entity.TransitionRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = int64(len(m.records) + 1)
	m.records = append(m.records, record)
	return nil
}

func (m *mockHistoryRepo) GetByEntity(ctx context.Context, kind entity.Kind, entityID string) ([]*entity.TransitionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.TransitionRecord
	for _, r := range m.records {
		if r.Kind == kind && r.EntityID == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type logEntry struct {
	level string
	msg   string
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{"info", msg})
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{"error", msg})
}

func (m *mockLogger) has(level, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

// harness wires a service's collaborators and records dispatched events
type harness struct {
	history    *mockHistoryRepo
	logger     *mockLogger
	dispatcher dispatcher.Dispatcher

	mu     sync.Mutex
	events []*event.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		history:    &mockHistoryRepo{},
		logger:     &mockLogger{},
		dispatcher: dispatcher.NewDispatcher(),
	}
	h.dispatcher.SubscribeAll("recorder", func(ctx context.Context, evt *event.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.events = append(h.events, evt)
		return nil
	})
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		History:    h.history,
		TxManager:  &mockTxManager{},
		Dispatcher: h.dispatcher,
		Logger:     h.logger,
	}
}

func (h *harness) opts() []Option {
	return []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return "new-id" }),
	}
}

// drain waits for async handlers and returns every recorded event
func (h *harness) drain(t *testing.T) []*event.Event {
	t.Helper()
	if err := h.dispatcher.Close(); err != nil {
		t.Fatalf("close dispatcher: %v", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events
}

func actionNames(actions []domainwf.Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.String()
	}
	return names
}
