package port

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/workflow"
)

var (
	// ErrNotFound is returned when no entity of the requested kind has the ID
	ErrNotFound = errors.New("entity not found")

	// ErrStaleStatus is returned when a conditional update finds the stored
	// status changed since the entity was read
	ErrStaleStatus = errors.New("entity status changed concurrently")
)

// Document is a workflow entity persisted as a whole snapshot
type Document interface {
	Kind() entity.Kind
	EntityID() string
	CurrentStatus() workflow.State
	Timestamps() (created, updated time.Time)
}

// DocumentRepository persists snapshots of one entity kind
type DocumentRepository[T Document] interface {
	// Create stores a new snapshot
	Create(ctx context.Context, doc T) error

	// GetByID returns the stored snapshot or ErrNotFound
	GetByID(ctx context.Context, id string) (T, error)

	// UpdateIfStatus replaces the snapshot only while the stored status still
	// equals expected, returning ErrStaleStatus otherwise
	UpdateIfStatus(ctx context.Context, doc T, expected workflow.State) error
}

// HistoryRepository stores the transition log
type HistoryRepository interface {
	Create(ctx context.Context, record *entity.TransitionRecord) error
	GetByEntity(ctx context.Context, kind entity.Kind, entityID string) ([]*entity.TransitionRecord, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
