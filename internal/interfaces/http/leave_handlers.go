package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// CreateLeaveRequest handles POST /api/leave-requests
func (h *Handlers) CreateLeaveRequest(c *gin.Context) {
	var draft entity.LeaveRequest
	if !h.bind(c, &draft) {
		return
	}

	created, err := h.services.Leave.Create(c.Request.Context(), draft, actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// GetLeaveRequest handles GET /api/leave-requests/:id
func (h *Handlers) GetLeaveRequest(c *gin.Context) {
	req, summary, err := h.services.Leave.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, EntityResponse{Entity: req, Summary: summary})
}

// EditLeaveRequest handles PATCH /api/leave-requests/:id
func (h *Handlers) EditLeaveRequest(c *gin.Context) {
	var patch workflow.LeavePatch
	if !h.bind(c, &patch) {
		return
	}

	updated, err := h.services.Leave.Edit(c.Request.Context(), c.Param("id"), actorFrom(c), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// ApplyLeaveAction handles POST /api/leave-requests/:id/actions/:action
func (h *Handlers) ApplyLeaveAction(c *gin.Context) {
	var payload workflow.LeavePayload
	if !h.bindOptional(c, &payload) {
		return
	}

	action := domainwf.Action(c.Param("action"))
	updated, err := h.services.Leave.Apply(c.Request.Context(), c.Param("id"), action, actorFrom(c), payload)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// LeaveHistory handles GET /api/leave-requests/:id/history
func (h *Handlers) LeaveHistory(c *gin.Context) {
	records, err := h.services.Leave.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, records)
}
