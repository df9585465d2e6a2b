package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// CreateTask handles POST /api/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var draft entity.Task
	if !h.bind(c, &draft) {
		return
	}

	created, err := h.services.Tasks.Create(c.Request.Context(), draft, actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// GetTask handles GET /api/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	task, summary, err := h.services.Tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, EntityResponse{Entity: task, Summary: summary})
}

// EditTask handles PATCH /api/tasks/:id
func (h *Handlers) EditTask(c *gin.Context) {
	var patch workflow.TaskPatch
	if !h.bind(c, &patch) {
		return
	}

	updated, err := h.services.Tasks.Edit(c.Request.Context(), c.Param("id"), actorFrom(c), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// ApplyTaskAction handles POST /api/tasks/:id/actions/:action. Task actions take no payload.
func (h *Handlers) ApplyTaskAction(c *gin.Context) {
	action := domainwf.Action(c.Param("action"))
	updated, err := h.services.Tasks.Apply(c.Request.Context(), c.Param("id"), action, actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// TaskHistory handles GET /api/tasks/:id/history
func (h *Handlers) TaskHistory(c *gin.Context) {
	records, err := h.services.Tasks.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, records)
}
