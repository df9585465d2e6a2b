package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
)

// Workbook layout
const (
	SheetName = "Invoice"

	cellInvoiceNumber = "B1"
	cellClient        = "B2"
	cellProject       = "B3"
	cellDateIssued    = "B4"
	cellDueDate       = "B5"
	cellStatus        = "B6"

	itemHeaderRow = 8
	itemRowStart  = 9

	dateLayout = "2006-01-02"
)

// InvoiceWorkbookExporter renders invoices as xlsx workbooks
type InvoiceWorkbookExporter struct {
	defaultFont string
	logger      *zap.Logger
}

// NewInvoiceWorkbookExporter creates an exporter. An empty defaultFont keeps
// the excelize default.
func NewInvoiceWorkbookExporter(defaultFont string, logger *zap.Logger) *InvoiceWorkbookExporter {
	return &InvoiceWorkbookExporter{
		defaultFont: defaultFont,
		logger:      logger,
	}
}

// InvoiceWorkbook renders the invoice header, its items and the reconciled totals
func (e *InvoiceWorkbookExporter) InvoiceWorkbook(inv entity.Invoice, summary workflow.InvoiceSummary) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if e.defaultFont != "" {
		if err := file.SetDefaultFont(e.defaultFont); err != nil {
			e.logger.Warn("Failed to set default font for invoice workbook",
				zap.String("font", e.defaultFont),
				zap.Error(err))
		}
	}

	if err := e.fillHeader(file, inv, summary); err != nil {
		return nil, fmt.Errorf("failed to fill header: %w", err)
	}

	totalsRow, err := e.fillItems(file, inv.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to fill items: %w", err)
	}

	if err := e.fillTotals(file, totalsRow, inv, summary); err != nil {
		return nil, fmt.Errorf("failed to fill totals: %w", err)
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Invoice workbook rendered",
		zap.String("invoice_id", inv.ID),
		zap.Int("item_count", len(inv.Items)),
		zap.Int("size", buf.Len()))

	return buf.Bytes(), nil
}

func (e *InvoiceWorkbookExporter) fillHeader(file *excelize.File, inv entity.Invoice, summary workflow.InvoiceSummary) error {
	number := inv.InvoiceNumber
	if number == "" {
		number = inv.ID
	}

	cells := []struct {
		label string
		cell  string
		value interface{}
	}{
		{"Invoice", cellInvoiceNumber, number},
		{"Client", cellClient, inv.ClientID},
		{"Project", cellProject, inv.ProjectID},
		{"Date Issued", cellDateIssued, formatDate(inv.DateIssued)},
		{"Due Date", cellDueDate, formatDate(inv.DueDate)},
		{"Status", cellStatus, summary.DisplayStatus.String()},
	}

	for _, c := range cells {
		labelCell := "A" + c.cell[1:]
		if err := file.SetCellValue(SheetName, labelCell, c.label); err != nil {
			return fmt.Errorf("failed to set %s label: %w", c.label, err)
		}
		if err := file.SetCellValue(SheetName, c.cell, c.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", c.label, err)
		}
	}
	return nil
}

// fillItems writes one row per item and returns the first row after them
func (e *InvoiceWorkbookExporter) fillItems(file *excelize.File, items []entity.InvoiceItem) (int, error) {
	headers := []interface{}{"#", "Description", "Quantity", "Unit Price", "Total"}
	if err := file.SetSheetRow(SheetName, fmt.Sprintf("A%d", itemHeaderRow), &headers); err != nil {
		return 0, fmt.Errorf("failed to set item header: %w", err)
	}

	for i, item := range items {
		row := itemRowStart + i
		values := []interface{}{
			i + 1,
			item.Description,
			amount(item.Quantity),
			amount(item.UnitPrice),
			amount(item.Total),
		}
		if err := file.SetSheetRow(SheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return 0, fmt.Errorf("failed to set item at row %d: %w", row, err)
		}
	}

	return itemRowStart + len(items) + 1, nil
}

func (e *InvoiceWorkbookExporter) fillTotals(file *excelize.File, row int, inv entity.Invoice, summary workflow.InvoiceSummary) error {
	lines := []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal", summary.Subtotal},
		{fmt.Sprintf("Tax (%s%%)", inv.TaxRate.String()), summary.TaxAmount},
		{"Total", inv.TotalAmount},
		{"Paid", inv.PaidAmount},
		{"Remaining", summary.RemainingAmount},
	}

	for i, line := range lines {
		r := row + i
		if err := file.SetCellValue(SheetName, fmt.Sprintf("D%d", r), line.label); err != nil {
			return fmt.Errorf("failed to set %s label: %w", line.label, err)
		}
		if err := file.SetCellValue(SheetName, fmt.Sprintf("E%d", r), amount(line.value)); err != nil {
			return fmt.Errorf("failed to set %s: %w", line.label, err)
		}
	}
	return nil
}

func amount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

var _ port.InvoiceExporter = (*InvoiceWorkbookExporter)(nil)
