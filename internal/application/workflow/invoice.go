package workflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/reconcile"
	"github.com/garyjia/opsflow/internal/domain/rolegate"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// InvoicePayload carries the payment amount or cancellation note
type InvoicePayload struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// InvoicePatch holds the fields editable while an invoice is a draft; nil fields are unchanged
type InvoicePatch struct {
	Items      *[]entity.InvoiceItem `json:"items"`
	TaxRate    *decimal.Decimal      `json:"tax_rate"`
	DateIssued *time.Time            `json:"date_issued"`
	DueDate    *time.Time            `json:"due_date"`
	Notes      *string               `json:"notes"`
}

// InvoiceSummary holds every derived invoice field. None of these are stored.
type InvoiceSummary struct {
	reconcile.Totals
	RemainingAmount  decimal.Decimal   `json:"remaining_amount"`
	PaymentProgress  float64           `json:"payment_progress"`
	IsOverdue        bool              `json:"is_overdue"`
	DaysOverdue      int               `json:"days_overdue"`
	DisplayStatus    domainwf.State    `json:"display_status"`
	PermittedActions []domainwf.Action `json:"permitted_actions"`
}

// InvoiceWorkflow drives invoices from draft to payment and keeps totals reconciled
type InvoiceWorkflow struct {
	guard
}

// NewInvoiceWorkflow creates an invoice workflow
func NewInvoiceWorkflow(opts ...Option) *InvoiceWorkflow {
	o := buildOptions(opts)
	return &InvoiceWorkflow{
		guard: guard{kind: entity.KindInvoice, gate: o.gate, table: BuildInvoiceTable()},
	}
}

func invoiceSubject(inv entity.Invoice) rolegate.Subject {
	return rolegate.Subject{ProjectID: inv.ProjectID, Status: inv.Status}
}

// Create validates a new invoice, computes its totals and places it in draft
func (w *InvoiceWorkflow) Create(draft entity.Invoice, actor entity.Actor, now time.Time) (entity.Invoice, error) {
	if err := w.authorize(actor, entity.ActionCreate, invoiceSubject(draft)); err != nil {
		return draft, err
	}
	if blank(draft.ClientID) {
		return draft, invalid("clientId", "required")
	}
	if blank(draft.ProjectID) {
		return draft, invalid("projectId", "required")
	}
	if err := validateInvoiceFields(draft); err != nil {
		return draft, err
	}

	created := draft.Clone()
	created.Items = reconcile.ReconcileItems(draft.Items)
	created.TotalAmount = reconcile.InvoiceTotals(created.Items, created.TaxRate).Total
	created.PaidAmount = decimal.Zero
	created.Status = entity.InvoiceStatusDraft
	created.CreatedAt = now
	created.UpdatedAt = now
	return created, nil
}

// Revise changes items, tax rate, dates or notes of a draft and recomputes the total
func (w *InvoiceWorkflow) Revise(inv entity.Invoice, actor entity.Actor, patch InvoicePatch, now time.Time) (entity.Invoice, error) {
	if err := w.authorize(actor, entity.ActionEdit, invoiceSubject(inv)); err != nil {
		return inv, err
	}
	if inv.Status != entity.InvoiceStatusDraft {
		return inv, &TransitionError{From: inv.Status, Action: entity.ActionEdit}
	}

	updated := inv.Clone()
	if patch.Items != nil {
		updated.Items = reconcile.ReconcileItems(*patch.Items)
	}
	if patch.TaxRate != nil {
		updated.TaxRate = *patch.TaxRate
	}
	if patch.DateIssued != nil {
		updated.DateIssued = *patch.DateIssued
	}
	if patch.DueDate != nil {
		updated.DueDate = *patch.DueDate
	}
	if patch.Notes != nil {
		updated.Notes = *patch.Notes
	}
	if err := validateInvoiceFields(updated); err != nil {
		return inv, err
	}

	updated.TotalAmount = reconcile.InvoiceTotals(updated.Items, updated.TaxRate).Total
	updated.UpdatedAt = now
	return updated, nil
}

// Apply performs a status transition on an invoice. record_payment moves to paid
// when the payment settles the remaining balance and to partially_paid otherwise.
func (w *InvoiceWorkflow) Apply(inv entity.Invoice, action domainwf.Action, actor entity.Actor, payload InvoicePayload, now time.Time) (entity.Invoice, error) {
	subject := invoiceSubject(inv)
	if err := w.authorize(actor, action, subject); err != nil {
		return inv, err
	}

	if action == entity.ActionRecordPayment {
		return w.recordPayment(inv, payload, now)
	}

	next, err := w.table.Transition(inv.Status, action)
	if err != nil {
		return inv, err
	}
	if err := VerifyInvoice(inv); err != nil {
		return inv, err
	}

	updated := inv.Clone()
	switch action {
	case entity.ActionIssue:
		if len(inv.Items) == 0 {
			return inv, invalid("items", "at least one item is required")
		}
		if err := checkIssueDates(inv.DateIssued, inv.DueDate); err != nil {
			return inv, err
		}
	case entity.ActionCancel:
		if !blank(payload.Note) {
			updated.Notes = payload.Note
		}
	}

	updated.Status = next
	updated.UpdatedAt = now
	return updated, nil
}

func (w *InvoiceWorkflow) recordPayment(inv entity.Invoice, payload InvoicePayload, now time.Time) (entity.Invoice, error) {
	if !w.table.Permits(inv.Status, actionRecordPartialPayment) && !w.table.Permits(inv.Status, actionRecordFullPayment) {
		return inv, &TransitionError{From: inv.Status, Action: entity.ActionRecordPayment}
	}

	remaining := reconcile.RemainingAmount(inv.TotalAmount, inv.PaidAmount)
	if !payload.Amount.IsPositive() {
		return inv, invalid("amount", "must be greater than zero")
	}
	if payload.Amount.GreaterThan(remaining) {
		return inv, invalid("amount", "exceeds remaining balance")
	}
	if err := VerifyInvoice(inv); err != nil {
		return inv, err
	}

	paid := inv.PaidAmount.Add(payload.Amount)
	variant := actionRecordPartialPayment
	if paid.Equal(inv.TotalAmount) {
		variant = actionRecordFullPayment
	}
	next, err := w.table.Transition(inv.Status, variant)
	if err != nil {
		return inv, &TransitionError{From: inv.Status, Action: entity.ActionRecordPayment}
	}

	updated := inv.Clone()
	updated.PaidAmount = paid
	updated.Status = next
	updated.UpdatedAt = now
	return updated, nil
}

// PermittedActions lists the public actions legal from status
func (w *InvoiceWorkflow) PermittedActions(status domainwf.State) []domainwf.Action {
	var actions []domainwf.Action
	payment := false
	for _, action := range w.table.PermittedActions(status) {
		if action == actionRecordPartialPayment || action == actionRecordFullPayment {
			payment = true
			continue
		}
		actions = append(actions, action)
	}
	if payment {
		actions = append(actions, entity.ActionRecordPayment)
	}
	return actions
}

// Summarize recomputes every derived invoice field as of now
func (w *InvoiceWorkflow) Summarize(inv entity.Invoice, now time.Time) InvoiceSummary {
	totals := reconcile.InvoiceTotals(inv.Items, inv.TaxRate)
	overdue := reconcile.OverdueStatus(inv.DueDate, inv.Status, now)
	return InvoiceSummary{
		Totals:           totals,
		RemainingAmount:  reconcile.RemainingAmount(inv.TotalAmount, inv.PaidAmount),
		PaymentProgress:  reconcile.PaymentProgress(inv.PaidAmount, inv.TotalAmount),
		IsOverdue:        overdue.IsOverdue,
		DaysOverdue:      overdue.DaysOverdue,
		DisplayStatus:    reconcile.DisplayStatus(inv.Status, inv.DueDate, now),
		PermittedActions: w.PermittedActions(inv.Status),
	}
}

// VerifyInvoice checks stored totals against their recomputation
func VerifyInvoice(inv entity.Invoice) error {
	for i, item := range inv.Items {
		if want := reconcile.ItemTotal(item.Quantity, item.UnitPrice); !item.Total.Equal(want) {
			return &IntegrityError{EntityID: inv.ID, Detail: fmt.Sprintf("item %d total %s, expected %s", i, item.Total, want)}
		}
	}
	want := reconcile.InvoiceTotals(inv.Items, inv.TaxRate).Total
	if !inv.TotalAmount.Equal(want) {
		return &IntegrityError{EntityID: inv.ID, Detail: fmt.Sprintf("total amount %s, expected %s", inv.TotalAmount, want)}
	}
	if inv.PaidAmount.IsNegative() || inv.PaidAmount.GreaterThan(inv.TotalAmount) {
		return &IntegrityError{EntityID: inv.ID, Detail: fmt.Sprintf("paid amount %s outside [0, %s]", inv.PaidAmount, inv.TotalAmount)}
	}
	return nil
}

func validateInvoiceFields(inv entity.Invoice) error {
	for i, item := range inv.Items {
		if blank(item.Description) {
			return invalid(fmt.Sprintf("items[%d].description", i), "required")
		}
		if !item.Quantity.IsPositive() {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
		if item.UnitPrice.IsNegative() {
			return invalid(fmt.Sprintf("items[%d].unitPrice", i), "must not be negative")
		}
	}
	if inv.TaxRate.IsNegative() {
		return invalid("taxRate", "must not be negative")
	}
	return checkIssueDates(inv.DateIssued, inv.DueDate)
}

func checkIssueDates(issued, due time.Time) error {
	if issued.IsZero() {
		return invalid("dateIssued", "required")
	}
	if due.IsZero() {
		return invalid("dueDate", "required")
	}
	if !issued.Before(due) {
		return invalid("dueDate", "must be after dateIssued")
	}
	return nil
}
