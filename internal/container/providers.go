package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/opsflow/internal/application/dispatcher"
	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/service"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/event"
	"github.com/garyjia/opsflow/internal/infrastructure/export"
	"github.com/garyjia/opsflow/internal/infrastructure/persistence/repository"
	"github.com/garyjia/opsflow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/opsflow/internal/infrastructure/storage"
	"github.com/garyjia/opsflow/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.TxManager
}

// StorageBundle holds the export pipeline.
type StorageBundle struct {
	Exporter port.InvoiceExporter
	Archive  port.FileArchive
}

// WorkflowBundle groups the four workflows.
type WorkflowBundle struct {
	Leave      *workflow.LeaveRequestWorkflow
	Submission *workflow.WorkSubmissionWorkflow
	Invoice    *workflow.InvoiceWorkflow
	Task       *workflow.TaskWorkflow
}

// ProvideDatabase opens the database and applies the embedded migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).Run(database.Migrations()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewTxManager(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		LeaveRequest:   repository.NewLeaveRequestRepository(db.DB, logger),
		WorkSubmission: repository.NewWorkSubmissionRepository(db.DB, logger),
		Invoice:        repository.NewInvoiceRepository(db.DB, logger),
		Task:           repository.NewTaskRepository(db.DB, logger),
		History:        repository.NewHistoryRepository(db.DB, logger),
	}, nil
}

// ProvideStorage creates the invoice exporter and, when an archive directory
// is configured, the export archive.
func ProvideStorage(cfg *ExportConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("export config is required")
	}

	bundle := &StorageBundle{
		Exporter: export.NewInvoiceWorkbookExporter(cfg.DefaultFont, logger),
	}
	if cfg.ArchiveDir != "" {
		bundle.Archive = storage.NewLocalArchive(cfg.ArchiveDir, logger)
	} else {
		logger.Info("Export archive disabled")
	}
	return bundle, nil
}

// ProvideDispatcher creates the event dispatcher and registers the logging
// subscribers.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(logger))
	disp.Subscribe(event.TypeIntegrityViolation, "integrity-alert", integrityAlertHandler(logger))
	disp.SubscribeAll("audit-log", auditLogHandler(logger))
	return disp, nil
}

func auditLogHandler(logger *zap.Logger) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		fields := []zap.Field{
			zap.String("event_id", evt.ID),
			zap.String("event_type", evt.Type.String()),
			zap.String("kind", evt.Kind.String()),
			zap.String("entity_id", evt.EntityID),
			zap.String("actor_id", evt.ActorID),
		}
		if evt.Action != "" {
			fields = append(fields, zap.String("action", string(evt.Action)))
		}
		if evt.IsTransition() {
			fields = append(fields, zap.String("from", string(evt.From)), zap.String("to", string(evt.To)))
		}
		logger.Info("Entity event", fields...)
		return nil
	}
}

func integrityAlertHandler(logger *zap.Logger) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		logger.Error("Stored entity failed reconciliation",
			zap.String("kind", evt.Kind.String()),
			zap.String("entity_id", evt.EntityID),
			zap.String("action", string(evt.Action)),
			zap.String("detail", evt.GetPayloadString("detail")))
		return nil
	}
}

// ProvideWorkflows creates the workflows over the default permission table.
func ProvideWorkflows() *WorkflowBundle {
	return &WorkflowBundle{
		Leave:      workflow.NewLeaveRequestWorkflow(),
		Submission: workflow.NewWorkSubmissionWorkflow(),
		Invoice:    workflow.NewInvoiceWorkflow(),
		Task:       workflow.NewTaskWorkflow(),
	}
}

// ServiceDeps holds the dependencies for ProvideServices.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	Workflows  *WorkflowBundle
	Storage    *StorageBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service deps are required")
	}
	if deps.Repos == nil || deps.Workflows == nil || deps.Storage == nil ||
		deps.TxManager == nil || deps.Dispatcher == nil || deps.Logger == nil {
		return nil, fmt.Errorf("incomplete service deps")
	}

	shared := service.Deps{
		History:    deps.Repos.History,
		TxManager:  deps.TxManager,
		Dispatcher: deps.Dispatcher,
		Logger:     &zapLoggerAdapter{logger: deps.Logger},
	}

	return &ServiceBundle{
		Leave:      service.NewLeaveService(deps.Repos.LeaveRequest, deps.Workflows.Leave, shared),
		Submission: service.NewSubmissionService(deps.Repos.WorkSubmission, deps.Workflows.Submission, shared),
		Invoice: service.NewInvoiceService(deps.Repos.Invoice, deps.Workflows.Invoice,
			deps.Storage.Exporter, deps.Storage.Archive, shared),
		Task: service.NewTaskService(deps.Repos.Task, deps.Workflows.Task, shared),
	}, nil
}

