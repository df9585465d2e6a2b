package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/opsflow/internal/application/dispatcher"
	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/event"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Option configures a service
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock replaces time.Now as the source of the current time
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator replaces the uuid generator used for new entities
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Deps are the collaborators every entity service needs
type Deps struct {
	History    port.HistoryRepository
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
	Logger     Logger
}

// store runs the persistence side of every operation for one entity kind:
// load, apply, conditional update, history row, then an event after commit
type store[T port.Document] struct {
	kind entity.Kind
	repo port.DocumentRepository[T]
	Deps
	options
}

func newStore[T port.Document](kind entity.Kind, repo port.DocumentRepository[T], deps Deps, opts []Option) store[T] {
	return store[T]{
		kind:    kind,
		repo:    repo,
		Deps:    deps,
		options: buildOptions(opts),
	}
}

// create persists a snapshot produced by a workflow Create
func (s *store[T]) create(ctx context.Context, doc T, actor entity.Actor) error {
	err := s.TxManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, doc); err != nil {
			return fmt.Errorf("create %s: %w", s.kind, err)
		}
		_, at := doc.Timestamps()
		record := &entity.TransitionRecord{
			EntityID:  doc.EntityID(),
			Kind:      s.kind,
			ActorID:   actor.ID,
			ActorRole: actor.Role,
			Action:    entity.ActionCreate.String(),
			NewStatus: doc.CurrentStatus().String(),
			Timestamp: at,
		}
		if err := s.History.Create(txCtx, record); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.Logger.Error("Failed to create entity", "kind", s.kind, "id", doc.EntityID(), "error", err)
		return err
	}

	_, at := doc.Timestamps()
	evt := event.NewEvent(event.TypeEntityCreated, s.kind, doc.EntityID(), at)
	evt.ActorID = actor.ID
	evt.To = doc.CurrentStatus()
	s.Dispatcher.DispatchAsync(ctx, evt)

	s.Logger.Info("Entity created", "kind", s.kind, "id", doc.EntityID(), "status", doc.CurrentStatus())
	return nil
}

// get loads a snapshot
func (s *store[T]) get(ctx context.Context, id string) (T, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, port.ErrNotFound) {
		s.Logger.Error("Failed to get entity", "kind", s.kind, "id", id, "error", err)
	}
	return doc, err
}

// mutate loads the entity, runs fn on it and writes the result only if the
// stored status is still the one fn started from. data is recorded in history.
func (s *store[T]) mutate(ctx context.Context, id string, actor entity.Actor, action domainwf.Action, data interface{}, fn func(T) (T, error)) (T, error) {
	var (
		before T
		after  T
	)

	err := s.TxManager.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		before = current

		next, err := fn(current)
		if err != nil {
			return err
		}
		after = next

		if err := s.repo.UpdateIfStatus(txCtx, next, current.CurrentStatus()); err != nil {
			return err
		}

		_, at := next.Timestamps()
		record := &entity.TransitionRecord{
			EntityID:       id,
			Kind:           s.kind,
			ActorID:        actor.ID,
			ActorRole:      actor.Role,
			Action:         action.String(),
			PreviousStatus: current.CurrentStatus().String(),
			NewStatus:      next.CurrentStatus().String(),
			ActionData:     encodeActionData(data),
			Timestamp:      at,
		}
		if err := s.History.Create(txCtx, record); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.reportFailure(ctx, id, actor, action, err)
		return before, err
	}

	_, at := after.Timestamps()
	var evt *event.Event
	if action == entity.ActionEdit {
		evt = event.NewEvent(event.TypeEntityEdited, s.kind, id, at)
		evt.ActorID = actor.ID
		evt.Action = action
	} else {
		evt = event.NewTransition(s.kind, id, actor, action, before.CurrentStatus(), after.CurrentStatus(), at)
	}
	s.Dispatcher.DispatchAsync(ctx, evt)

	s.Logger.Info("Entity updated",
		"kind", s.kind,
		"id", id,
		"action", action,
		"previous_status", before.CurrentStatus(),
		"new_status", after.CurrentStatus())
	return after, nil
}

// reportFailure logs failed operations. Caller mistakes stay at info;
// integrity violations are raised as errors and events.
func (s *store[T]) reportFailure(ctx context.Context, id string, actor entity.Actor, action domainwf.Action, err error) {
	var integrityErr *workflow.IntegrityError
	switch {
	case errors.As(err, &integrityErr):
		s.Logger.Error("Integrity violation",
			"kind", s.kind,
			"id", id,
			"action", action,
			"detail", integrityErr.Detail)
		evt := event.NewEvent(event.TypeIntegrityViolation, s.kind, id, s.now())
		evt.ActorID = actor.ID
		evt.Action = action
		s.Dispatcher.DispatchAsync(ctx, evt.WithPayload("detail", integrityErr.Detail))
	case isCallerError(err):
		s.Logger.Info("Operation rejected", "kind", s.kind, "id", id, "action", action, "reason", err.Error())
	default:
		s.Logger.Error("Operation failed", "kind", s.kind, "id", id, "action", action, "error", err)
	}
}

// history returns the transition log of one entity
func (s *store[T]) history(ctx context.Context, id string) ([]*entity.TransitionRecord, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.History.GetByEntity(ctx, s.kind, id)
}

func isCallerError(err error) bool {
	return errors.Is(err, workflow.ErrForbidden) ||
		errors.Is(err, workflow.ErrInvalidTransition) ||
		errors.Is(err, workflow.ErrInvalidPayload) ||
		errors.Is(err, port.ErrNotFound) ||
		errors.Is(err, port.ErrStaleStatus)
}

func encodeActionData(data interface{}) string {
	if data == nil {
		return ""
	}
	b, err := json.Marshal(data)
	if err != nil || string(b) == "{}" || string(b) == "null" {
		return ""
	}
	return string(b)
}
