package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/workflow"
	"github.com/garyjia/opsflow/internal/infrastructure/persistence/sqlite"
)

// DocumentRepository implements port.DocumentRepository for one entity kind.
// Snapshots are stored as JSON with the status kept in its own column.
type DocumentRepository[T port.Document] struct {
	db     *sql.DB
	kind   entity.Kind
	logger *zap.Logger
}

// NewDocumentRepository creates a repository for the kind of T
func NewDocumentRepository[T port.Document](db *sql.DB, logger *zap.Logger) *DocumentRepository[T] {
	var zero T
	return &DocumentRepository[T]{
		db:     db,
		kind:   zero.Kind(),
		logger: logger.With(zap.String("kind", zero.Kind().String())),
	}
}

// NewLeaveRequestRepository creates the leave request repository
func NewLeaveRequestRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository[entity.LeaveRequest] {
	return NewDocumentRepository[entity.LeaveRequest](db, logger)
}

// NewWorkSubmissionRepository creates the work submission repository
func NewWorkSubmissionRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository[entity.WorkSubmission] {
	return NewDocumentRepository[entity.WorkSubmission](db, logger)
}

// NewInvoiceRepository creates the invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository[entity.Invoice] {
	return NewDocumentRepository[entity.Invoice](db, logger)
}

// NewTaskRepository creates the task repository
func NewTaskRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository[entity.Task] {
	return NewDocumentRepository[entity.Task](db, logger)
}

// Create inserts a new snapshot
func (r *DocumentRepository[T]) Create(ctx context.Context, doc T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.kind, err)
	}

	created, updated := doc.Timestamps()
	query := `
		INSERT INTO documents (kind, id, status, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		r.kind, doc.EntityID(), doc.CurrentStatus(), string(body), created, updated)
	if err != nil {
		r.logger.Error("Failed to create document", zap.String("id", doc.EntityID()), zap.Error(err))
		return fmt.Errorf("failed to create %s: %w", r.kind, err)
	}
	return nil
}

// GetByID loads a snapshot
func (r *DocumentRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var doc T
	var body string

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx,
		`SELECT body FROM documents WHERE kind = ? AND id = ?`, r.kind, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return doc, fmt.Errorf("%s %s: %w", r.kind, id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.String("id", id), zap.Error(err))
		return doc, fmt.Errorf("failed to get %s: %w", r.kind, err)
	}

	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return doc, fmt.Errorf("failed to decode %s %s: %w", r.kind, id, err)
	}
	return doc, nil
}

// UpdateIfStatus replaces the snapshot while the stored status equals expected
func (r *DocumentRepository[T]) UpdateIfStatus(ctx context.Context, doc T, expected workflow.State) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.kind, err)
	}

	exec := sqlite.ExecutorFor(ctx, r.db)
	_, updated := doc.Timestamps()
	query := `
		UPDATE documents
		SET status = ?, body = ?, updated_at = ?
		WHERE kind = ? AND id = ? AND status = ?
	`
	result, err := exec.ExecContext(ctx, query,
		doc.CurrentStatus(), string(body), updated, r.kind, doc.EntityID(), expected)
	if err != nil {
		r.logger.Error("Failed to update document", zap.String("id", doc.EntityID()), zap.Error(err))
		return fmt.Errorf("failed to update %s: %w", r.kind, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 1 {
		return nil
	}

	var current string
	err = exec.QueryRowContext(ctx, `SELECT status FROM documents WHERE kind = ? AND id = ?`, r.kind, doc.EntityID()).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", r.kind, doc.EntityID(), port.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s status: %w", r.kind, err)
	}

	r.logger.Warn("Stale status on update",
		zap.String("id", doc.EntityID()),
		zap.String("expected", expected.String()),
		zap.String("stored", current))
	return fmt.Errorf("%s %s is %s, expected %s: %w", r.kind, doc.EntityID(), current, expected, port.ErrStaleStatus)
}

var (
	_ port.DocumentRepository[entity.LeaveRequest]   = (*DocumentRepository[entity.LeaveRequest])(nil)
	_ port.DocumentRepository[entity.WorkSubmission] = (*DocumentRepository[entity.WorkSubmission])(nil)
	_ port.DocumentRepository[entity.Invoice]        = (*DocumentRepository[entity.Invoice])(nil)
	_ port.DocumentRepository[entity.Task]           = (*DocumentRepository[entity.Task])(nil)
)
