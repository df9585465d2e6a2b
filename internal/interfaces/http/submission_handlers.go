package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// SubmissionSummary lists the review actions available for a submission
type SubmissionSummary struct {
	PermittedActions []domainwf.Action `json:"permitted_actions"`
}

// CreateSubmission handles POST /api/submissions
func (h *Handlers) CreateSubmission(c *gin.Context) {
	var draft entity.WorkSubmission
	if !h.bind(c, &draft) {
		return
	}

	created, err := h.services.Submissions.Create(c.Request.Context(), draft, actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// GetSubmission handles GET /api/submissions/:id
func (h *Handlers) GetSubmission(c *gin.Context) {
	sub, actions, err := h.services.Submissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, EntityResponse{Entity: sub, Summary: SubmissionSummary{PermittedActions: actions}})
}

// EditSubmission handles PATCH /api/submissions/:id
func (h *Handlers) EditSubmission(c *gin.Context) {
	var patch workflow.SubmissionPatch
	if !h.bind(c, &patch) {
		return
	}

	updated, err := h.services.Submissions.Edit(c.Request.Context(), c.Param("id"), actorFrom(c), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// ApplySubmissionAction handles POST /api/submissions/:id/actions/:action
func (h *Handlers) ApplySubmissionAction(c *gin.Context) {
	var payload workflow.SubmissionPayload
	if !h.bindOptional(c, &payload) {
		return
	}

	action := domainwf.Action(c.Param("action"))
	updated, err := h.services.Submissions.Apply(c.Request.Context(), c.Param("id"), action, actorFrom(c), payload)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// SubmissionHistory handles GET /api/submissions/:id/history
func (h *Handlers) SubmissionHistory(c *gin.Context) {
	records, err := h.services.Submissions.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, records)
}
