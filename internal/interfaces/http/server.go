// Package http exposes the workflow services over a JSON API.
// Actor identity is taken from headers set by the upstream identity provider.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Services groups the application services served over HTTP
type Services struct {
	Leave       LeaveService
	Submissions SubmissionService
	Invoices    InvoiceService
	Tasks       TaskService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(services, logger),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"actor_id", c.GetHeader(HeaderActorID),
		)
	}
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api", h.RequireActor)
	{
		api.GET("/payroll/salary-breakdown", h.SalaryBreakdown)

		leave := api.Group("/leave-requests")
		leave.POST("", h.CreateLeaveRequest)
		leave.GET("/:id", h.GetLeaveRequest)
		leave.PATCH("/:id", h.EditLeaveRequest)
		leave.POST("/:id/actions/:action", h.ApplyLeaveAction)
		leave.GET("/:id/history", h.LeaveHistory)

		submissions := api.Group("/submissions")
		submissions.POST("", h.CreateSubmission)
		submissions.GET("/:id", h.GetSubmission)
		submissions.PATCH("/:id", h.EditSubmission)
		submissions.POST("/:id/actions/:action", h.ApplySubmissionAction)
		submissions.GET("/:id/history", h.SubmissionHistory)

		invoices := api.Group("/invoices")
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PATCH("/:id", h.ReviseInvoice)
		invoices.POST("/:id/actions/:action", h.ApplyInvoiceAction)
		invoices.GET("/:id/history", h.InvoiceHistory)
		invoices.GET("/:id/export", h.ExportInvoice)

		tasks := api.Group("/tasks")
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PATCH("/:id", h.EditTask)
		tasks.POST("/:id/actions/:action", h.ApplyTaskAction)
		tasks.GET("/:id/history", h.TaskHistory)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
