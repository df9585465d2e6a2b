// Package reconcile computes derived financial and time fields from authoritative
// entity fields. Every function is pure; time-sensitive ones take now explicitly.
package reconcile

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/workflow"
)

var (
	hundred = decimal.NewFromInt(100)
	day     = 24 * time.Hour
)

// Totals is the tax breakdown of an invoice
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// ItemTotal returns quantity * unitPrice
func ItemTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// ReconcileItems returns a copy of items with every Total recomputed
func ReconcileItems(items []entity.InvoiceItem) []entity.InvoiceItem {
	out := make([]entity.InvoiceItem, len(items))
	for i, item := range items {
		item.Total = ItemTotal(item.Quantity, item.UnitPrice)
		out[i] = item
	}
	return out
}

// InvoiceTotals sums item totals and applies taxRate (a percentage)
func InvoiceTotals(items []entity.InvoiceItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
	}
	tax := subtotal.Mul(taxRate).Div(hundred)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// RemainingAmount returns what is still owed on an invoice
func RemainingAmount(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid)
}

// PaymentProgress returns paid as a percentage of total, clamped to [0, 100].
// A zero total yields 0.
func PaymentProgress(paid, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	pct := paid.Div(total).Mul(hundred)
	switch {
	case pct.LessThan(decimal.Zero):
		return 0
	case pct.GreaterThan(hundred):
		return 100
	}
	return pct.InexactFloat64()
}

// Overdue describes whether an invoice is past due and by how many days
type Overdue struct {
	IsOverdue   bool `json:"is_overdue"`
	DaysOverdue int  `json:"days_overdue"`
}

// OverdueStatus reports overdue state. Paid and cancelled invoices are never overdue.
// Partial days count as a full day.
func OverdueStatus(dueDate time.Time, status workflow.State, now time.Time) Overdue {
	if status == entity.InvoiceStatusPaid || status == entity.InvoiceStatusCancelled {
		return Overdue{}
	}
	days := DaysPastDue(dueDate, now)
	return Overdue{IsOverdue: days > 0, DaysOverdue: days}
}

// DaysPastDue returns the whole days, rounded up, that now lies after dueDate
func DaysPastDue(dueDate, now time.Time) int {
	if !now.After(dueDate) {
		return 0
	}
	late := now.Sub(dueDate)
	days := int(late / day)
	if late%day != 0 {
		days++
	}
	return days
}

// DisplayStatus overlays overdue on the stored status
func DisplayStatus(status workflow.State, dueDate, now time.Time) workflow.State {
	if OverdueStatus(dueDate, status, now).IsOverdue {
		return entity.InvoiceStatusOverdue
	}
	return status
}

// TimelineProgress returns how far now sits between start and end, as a whole percentage
func TimelineProgress(start, end, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	if now.After(end) || !end.After(start) {
		return 100
	}
	elapsed := float64(now.Sub(start))
	span := float64(end.Sub(start))
	return int(math.Round(elapsed / span * 100))
}

// LeaveDays counts calendar days from start to end inclusive; an inverted range is 0
func LeaveDays(start, end time.Time) int {
	s := civilDate(start)
	e := civilDate(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s)/day) + 1
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
