package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/reconcile"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
	"github.com/garyjia/opsflow/pkg/utils"
)

// Identity headers set by the upstream identity provider
const (
	HeaderActorID       = "X-Actor-ID"
	HeaderActorRole     = "X-Actor-Role"
	HeaderActorProjects = "X-Actor-Projects"

	actorKey = "actor"
)

// LeaveService is the leave request API used by the handlers
type LeaveService interface {
	Create(ctx context.Context, draft entity.LeaveRequest, actor entity.Actor) (entity.LeaveRequest, error)
	Get(ctx context.Context, id string) (entity.LeaveRequest, workflow.LeaveSummary, error)
	Edit(ctx context.Context, id string, actor entity.Actor, patch workflow.LeavePatch) (entity.LeaveRequest, error)
	Apply(ctx context.Context, id string, action domainwf.Action, actor entity.Actor, payload workflow.LeavePayload) (entity.LeaveRequest, error)
	History(ctx context.Context, id string) ([]*entity.TransitionRecord, error)
}

// SubmissionService is the work submission API used by the handlers
type SubmissionService interface {
	Create(ctx context.Context, draft entity.WorkSubmission, actor entity.Actor) (entity.WorkSubmission, error)
	Get(ctx context.Context, id string) (entity.WorkSubmission, []domainwf.Action, error)
	Edit(ctx context.Context, id string, actor entity.Actor, patch workflow.SubmissionPatch) (entity.WorkSubmission, error)
	Apply(ctx context.Context, id string, action domainwf.Action, actor entity.Actor, payload workflow.SubmissionPayload) (entity.WorkSubmission, error)
	History(ctx context.Context, id string) ([]*entity.TransitionRecord, error)
}

// InvoiceService is the invoice API used by the handlers
type InvoiceService interface {
	Create(ctx context.Context, draft entity.Invoice, actor entity.Actor) (entity.Invoice, error)
	Get(ctx context.Context, id string) (entity.Invoice, workflow.InvoiceSummary, error)
	Revise(ctx context.Context, id string, actor entity.Actor, patch workflow.InvoicePatch) (entity.Invoice, error)
	Apply(ctx context.Context, id string, action domainwf.Action, actor entity.Actor, payload workflow.InvoicePayload) (entity.Invoice, error)
	History(ctx context.Context, id string) ([]*entity.TransitionRecord, error)
	Export(ctx context.Context, id string) ([]byte, string, error)
}

// TaskService is the task API used by the handlers
type TaskService interface {
	Create(ctx context.Context, draft entity.Task, actor entity.Actor) (entity.Task, error)
	Get(ctx context.Context, id string) (entity.Task, workflow.TaskSummary, error)
	Edit(ctx context.Context, id string, actor entity.Actor, patch workflow.TaskPatch) (entity.Task, error)
	Apply(ctx context.Context, id string, action domainwf.Action, actor entity.Actor) (entity.Task, error)
	History(ctx context.Context, id string) ([]*entity.TransitionRecord, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// EntityResponse pairs a stored entity with its derived fields
type EntityResponse struct {
	Entity  interface{} `json:"entity"`
	Summary interface{} `json:"summary,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// RequireActor reads the identity headers and rejects requests without a known role
func (h *Handlers) RequireActor(c *gin.Context) {
	id := utils.SanitizeString(c.GetHeader(HeaderActorID))
	role := entity.Role(utils.SanitizeString(c.GetHeader(HeaderActorRole)))

	if id == "" || !knownRole(role) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "missing or invalid actor identity",
		})
		return
	}

	c.Set(actorKey, entity.Actor{
		ID:         id,
		Role:       role,
		ProjectIDs: utils.SplitList(c.GetHeader(HeaderActorProjects)),
	})
	c.Next()
}

func knownRole(role entity.Role) bool {
	for _, r := range entity.AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func actorFrom(c *gin.Context) entity.Actor {
	actor, _ := c.MustGet(actorKey).(entity.Actor)
	return actor
}

// SalaryBreakdown handles GET /api/payroll/salary-breakdown?annual=
func (h *Handlers) SalaryBreakdown(c *gin.Context) {
	annual, err := decimal.NewFromString(c.Query("annual"))
	if err != nil || annual.IsNegative() {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   "annual must be a non-negative number",
			Field:   "annual",
		})
		return
	}

	salary := reconcile.SalaryBreakdown(annual)
	if c.Query("exact") != "true" {
		salary = salary.Rounded()
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: salary})
}

// bind decodes the JSON body into dst, writing a 400 on failure
func (h *Handlers) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Info("Invalid request body", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return false
	}
	return true
}

// bindOptional decodes the JSON body into dst when one was sent
func (h *Handlers) bindOptional(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bind(c, dst)
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// writeError maps service errors onto status codes
func (h *Handlers) writeError(c *gin.Context, err error) {
	var payloadErr *workflow.PayloadError

	switch {
	case errors.As(err, &payloadErr):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   payloadErr.Reason,
			Field:   payloadErr.Field,
		})
	case errors.Is(err, workflow.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, port.ErrStaleStatus):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "entity was modified concurrently, reload and retry"})
	case errors.Is(err, port.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "not found"})
	default:
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
