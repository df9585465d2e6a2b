package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/opsflow/internal/domain/workflow"
)

// InvoiceItem is one billed line. Total is always Quantity * UnitPrice.
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// Invoice bills a client for project work.
// TotalAmount is stored but must always equal the reconciled total of Items and TaxRate.
type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	ClientID      string          `json:"client_id"`
	ProjectID     string          `json:"project_id"`
	Items         []InvoiceItem   `json:"items"`
	TaxRate       decimal.Decimal `json:"tax_rate"` // percent
	DateIssued    time.Time       `json:"date_issued"`
	DueDate       time.Time       `json:"due_date"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        workflow.State  `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Kind returns KindInvoice
func (i Invoice) Kind() Kind { return KindInvoice }

// EntityID returns the invoice ID
func (i Invoice) EntityID() string { return i.ID }

// CurrentStatus returns the stored status
func (i Invoice) CurrentStatus() workflow.State { return i.Status }

// Timestamps returns the creation and last update times
func (i Invoice) Timestamps() (created, updated time.Time) { return i.CreatedAt, i.UpdatedAt }

// Clone returns a copy that shares no slice storage with i
func (i Invoice) Clone() Invoice {
	c := i
	if i.Items != nil {
		c.Items = make([]InvoiceItem, len(i.Items))
		copy(c.Items, i.Items)
	}
	return c
}
