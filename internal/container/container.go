package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/opsflow/internal/application/dispatcher"
	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/service"
	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/opsflow/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	db           *database.DB
	txManager    *sqlite.TxManager
	repositories *RepositoryBundle
	storage      *StorageBundle

	// Application
	dispatcher dispatcher.Dispatcher
	workflows  *WorkflowBundle
	services   *ServiceBundle

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	LeaveRequest   port.DocumentRepository[entity.LeaveRequest]
	WorkSubmission port.DocumentRepository[entity.WorkSubmission]
	Invoice        port.DocumentRepository[entity.Invoice]
	Task           port.DocumentRepository[entity.Task]
	History        port.HistoryRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Leave      *service.LeaveService
	Submission *service.SubmissionService
	Invoice    *service.InvoiceService
	Task       *service.TaskService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Database, migrations and repositories
// 2. Export storage
// 3. Event dispatcher
// 4. Workflows and application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	if err := c.initStorage(); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.logger.Info("Storage initialized")

	disp, err := ProvideDispatcher(c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.dispatcher = disp
	c.logger.Info("Dispatcher initialized")

	if err := c.initServices(); err != nil {
		_ = c.dispatcher.Close()
		c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	// Drain in-flight event handlers before the database goes away
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		} else {
			c.logger.Info("Dispatcher closed")
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.db != nil && !c.closed.Load() {
		if err := c.db.PingContext(ctx); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{
			Healthy: false,
			Message: "not initialized",
		}
		status.Overall = false
	}

	check := func(name string, initialized bool) {
		if initialized {
			status.Components[name] = ComponentHealth{Healthy: true}
			return
		}
		status.Components[name] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}
	check("dispatcher", c.dispatcher != nil && !c.closed.Load())
	check("repositories", c.repositories != nil)
	check("services", c.services != nil)

	return status
}

func (c *Container) initDatabase() error {
	dbBundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.db = dbBundle.DB
	c.txManager = dbBundle.TransactionMgr

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		c.closeDatabase()
		return err
	}

	c.repositories = repos
	return nil
}

func (c *Container) closeDatabase() {
	if c.db != nil {
		_ = c.db.Close()
		c.db = nil
	}
}

func (c *Container) initStorage() error {
	storageBundle, err := ProvideStorage(&c.config.Export, c.logger)
	if err != nil {
		return err
	}

	c.storage = storageBundle
	return nil
}

func (c *Container) initServices() error {
	c.workflows = ProvideWorkflows()

	services, err := ProvideServices(&ServiceDeps{
		Repos:      c.repositories,
		Workflows:  c.workflows,
		Storage:    c.storage,
		TxManager:  c.txManager,
		Dispatcher: c.dispatcher,
		Logger:     c.logger,
	})
	if err != nil {
		return err
	}

	c.services = services
	return nil
}

// Getters for accessing container components

// TxManager returns the transaction manager.
func (c *Container) TxManager() port.TransactionManager {
	return c.txManager
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Workflows returns the workflows.
func (c *Container) Workflows() *WorkflowBundle {
	return c.workflows
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Info(msg, fields...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	fields := convertToZapFields(keysAndValues...)
	a.logger.Error(msg, fields...)
}

// NewLogger adapts a zap logger to the key/value Logger used by services and
// the HTTP adapter.
func NewLogger(logger *zap.Logger) service.Logger {
	return &zapLoggerAdapter{logger: logger}
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
