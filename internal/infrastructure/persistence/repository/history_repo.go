package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a transition record
func (r *HistoryRepository) Create(ctx context.Context, record *entity.TransitionRecord) error {
	query := `
		INSERT INTO transition_history (
			kind, entity_id, actor_id, actor_role, action,
			previous_status, new_status, action_data, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		record.Kind,
		record.EntityID,
		record.ActorID,
		record.ActorRole,
		record.Action,
		record.PreviousStatus,
		record.NewStatus,
		record.ActionData,
		record.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history record",
			zap.String("entity_id", record.EntityID),
			zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// GetByEntity returns the transitions of one entity, oldest first
func (r *HistoryRepository) GetByEntity(ctx context.Context, kind entity.Kind, entityID string) ([]*entity.TransitionRecord, error) {
	query := `
		SELECT id, kind, entity_id, actor_id, actor_role, action,
			previous_status, new_status, action_data, timestamp
		FROM transition_history
		WHERE kind = ? AND entity_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, kind, entityID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.String("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*entity.TransitionRecord
	for rows.Next() {
		var record entity.TransitionRecord
		err := rows.Scan(
			&record.ID,
			&record.Kind,
			&record.EntityID,
			&record.ActorID,
			&record.ActorRole,
			&record.Action,
			&record.PreviousStatus,
			&record.NewStatus,
			&record.ActionData,
			&record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

var _ port.HistoryRepository = (*HistoryRepository)(nil)
