package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CreateInvoice handles POST /api/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var draft entity.Invoice
	if !h.bind(c, &draft) {
		return
	}

	created, err := h.services.Invoices.Create(c.Request.Context(), draft, actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	inv, summary, err := h.services.Invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, EntityResponse{Entity: inv, Summary: summary})
}

// ReviseInvoice handles PATCH /api/invoices/:id
func (h *Handlers) ReviseInvoice(c *gin.Context) {
	var patch workflow.InvoicePatch
	if !h.bind(c, &patch) {
		return
	}

	updated, err := h.services.Invoices.Revise(c.Request.Context(), c.Param("id"), actorFrom(c), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// ApplyInvoiceAction handles POST /api/invoices/:id/actions/:action
func (h *Handlers) ApplyInvoiceAction(c *gin.Context) {
	var payload workflow.InvoicePayload
	if !h.bindOptional(c, &payload) {
		return
	}

	action := domainwf.Action(c.Param("action"))
	updated, err := h.services.Invoices.Apply(c.Request.Context(), c.Param("id"), action, actorFrom(c), payload)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// InvoiceHistory handles GET /api/invoices/:id/history
func (h *Handlers) InvoiceHistory(c *gin.Context) {
	records, err := h.services.Invoices.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, records)
}

// ExportInvoice handles GET /api/invoices/:id/export
func (h *Handlers) ExportInvoice(c *gin.Context) {
	content, fileName, err := h.services.Invoices.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, xlsxContentType, content)
}
