package entity

import "github.com/garyjia/opsflow/internal/domain/workflow"

// Kind identifies which workflow governs an entity
type Kind string

const (
	KindLeaveRequest   Kind = "LeaveRequest"
	KindWorkSubmission Kind = "WorkSubmission"
	KindInvoice        Kind = "Invoice"
	KindTask           Kind = "Task"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// LeaveRequest statuses
const (
	LeaveStatusPending             workflow.State = "pending"
	LeaveStatusCoordinatorApproved workflow.State = "coordinator_approved"
	LeaveStatusHRApproved          workflow.State = "hr_approved"
	LeaveStatusRejected            workflow.State = "rejected"
	LeaveStatusCancelled           workflow.State = "cancelled"
)

// WorkSubmission statuses
const (
	SubmissionStatusPendingReview workflow.State = "pending_review"
	SubmissionStatusApproved      workflow.State = "approved"
	SubmissionStatusRejected      workflow.State = "rejected"
	SubmissionStatusNeedsRevision workflow.State = "needs_revision"
)

// Invoice statuses. InvoiceStatusOverdue is a display overlay computed from the
// due date and is never stored or reached through a transition.
const (
	InvoiceStatusDraft         workflow.State = "draft"
	InvoiceStatusPending       workflow.State = "pending"
	InvoiceStatusPartiallyPaid workflow.State = "partially_paid"
	InvoiceStatusPaid          workflow.State = "paid"
	InvoiceStatusOverdue       workflow.State = "overdue"
	InvoiceStatusCancelled     workflow.State = "cancelled"
)

// Task statuses
const (
	TaskStatusPending    workflow.State = "pending"
	TaskStatusInProgress workflow.State = "in_progress"
	TaskStatusCompleted  workflow.State = "completed"
	TaskStatusRejected   workflow.State = "rejected"
)

// Actions accepted by the workflows
const (
	ActionApproveCoordinator workflow.Action = "approve_coordinator"
	ActionApproveHR          workflow.Action = "approve_hr"
	ActionReject             workflow.Action = "reject"
	ActionCancel             workflow.Action = "cancel"

	ActionApprove         workflow.Action = "approve"
	ActionRequestRevision workflow.Action = "request_revision"
	ActionResubmit        workflow.Action = "resubmit"

	ActionIssue         workflow.Action = "issue"
	ActionRecordPayment workflow.Action = "record_payment"

	ActionStart    workflow.Action = "start"
	ActionComplete workflow.Action = "complete"

	// Field edits and creation are gated like transitions but never change status
	ActionEdit   workflow.Action = "edit"
	ActionCreate workflow.Action = "create"
)

// Task types
const (
	TaskTypeMain = "main"
	TaskTypeSub  = "sub"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)
