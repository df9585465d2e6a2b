package port

import (
	"context"

	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
)

// InvoiceExporter renders an invoice as a spreadsheet
type InvoiceExporter interface {
	InvoiceWorkbook(inv entity.Invoice, summary workflow.InvoiceSummary) ([]byte, error)
}

// FileArchive keeps generated files under a base directory
type FileArchive interface {
	// Store writes content and returns its path relative to the archive root
	Store(ctx context.Context, relativePath string, content []byte) (string, error)
	Read(ctx context.Context, relativePath string) ([]byte, error)
	Exists(ctx context.Context, relativePath string) bool
}
