package service

import (
	"context"
	"fmt"

	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
	"github.com/garyjia/opsflow/pkg/utils"
)

// InvoiceService runs invoice operations against storage
type InvoiceService struct {
	store    store[entity.Invoice]
	workflow *workflow.InvoiceWorkflow
	exporter port.InvoiceExporter
	archive  port.FileArchive
}

// NewInvoiceService creates a new InvoiceService. archive may be nil, in
// which case exports are not kept.
func NewInvoiceService(
	repo port.DocumentRepository[entity.Invoice],
	wf *workflow.InvoiceWorkflow,
	exporter port.InvoiceExporter,
	archive port.FileArchive,
	deps Deps,
	opts ...Option,
) *InvoiceService {
	return &InvoiceService{
		store:    newStore(entity.KindInvoice, repo, deps, opts),
		workflow: wf,
		exporter: exporter,
		archive:  archive,
	}
}

// Create drafts a new invoice with computed totals
func (s *InvoiceService) Create(ctx context.Context, draft entity.Invoice, actor entity.Actor) (entity.Invoice, error) {
	draft.ID = s.store.newID()
	created, err := s.workflow.Create(draft, actor, s.store.now())
	if err != nil {
		return draft, err
	}
	if err := s.store.create(ctx, created, actor); err != nil {
		return draft, err
	}
	return created, nil
}

// Get returns the invoice with every derived field
func (s *InvoiceService) Get(ctx context.Context, id string) (entity.Invoice, workflow.InvoiceSummary, error) {
	inv, err := s.store.get(ctx, id)
	if err != nil {
		return inv, workflow.InvoiceSummary{}, err
	}
	return inv, s.workflow.Summarize(inv, s.store.now()), nil
}

// Revise changes a draft invoice and recomputes its totals
func (s *InvoiceService) Revise(ctx context.Context, id string, actor entity.Actor, patch workflow.InvoicePatch) (entity.Invoice, error) {
	return s.store.mutate(ctx, id, actor, entity.ActionEdit, patch, func(inv entity.Invoice) (entity.Invoice, error) {
		return s.workflow.Revise(inv, actor, patch, s.store.now())
	})
}

// Apply performs a status transition or records a payment
func (s *InvoiceService) Apply(ctx context.Context, id string, action domainwf.Action, actor entity.Actor, payload workflow.InvoicePayload) (entity.Invoice, error) {
	return s.store.mutate(ctx, id, actor, action, payload, func(inv entity.Invoice) (entity.Invoice, error) {
		return s.workflow.Apply(inv, action, actor, payload, s.store.now())
	})
}

// History returns the transition log of an invoice
func (s *InvoiceService) History(ctx context.Context, id string) ([]*entity.TransitionRecord, error) {
	return s.store.history(ctx, id)
}

// Export renders the invoice workbook and returns it with a file name.
// A stored invoice that fails verification is not exported.
func (s *InvoiceService) Export(ctx context.Context, id string) ([]byte, string, error) {
	inv, summary, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if err := workflow.VerifyInvoice(inv); err != nil {
		s.store.reportFailure(ctx, id, entity.Actor{}, "export", err)
		return nil, "", err
	}

	content, err := s.exporter.InvoiceWorkbook(inv, summary)
	if err != nil {
		s.store.Logger.Error("Failed to render invoice workbook", "id", id, "error", err)
		return nil, "", fmt.Errorf("render workbook: %w", err)
	}

	name := inv.InvoiceNumber
	if name == "" {
		name = inv.ID
	}
	fileName := utils.SanitizeFileName(name) + ".xlsx"

	if s.archive != nil {
		path, err := s.archive.Store(ctx, "invoices/"+fileName, content)
		if err != nil {
			s.store.Logger.Error("Failed to archive invoice workbook", "id", id, "error", err)
			return nil, "", fmt.Errorf("archive workbook: %w", err)
		}
		s.store.Logger.Info("Invoice workbook archived", "id", id, "path", path)
	}

	return content, fileName, nil
}
