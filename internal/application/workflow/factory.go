package workflow

import (
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// Invoice payments are recorded with a single public action. The table keeps the
// partial and full outcomes as separate edges so each can be permitted per state.
const (
	actionRecordPartialPayment domainwf.Action = "record_payment.partial"
	actionRecordFullPayment    domainwf.Action = "record_payment.full"
)

// BuildLeaveRequestTable creates the leave request transition table
func BuildLeaveRequestTable() *domainwf.Table {
	builder := domainwf.NewBuilder(entity.KindLeaveRequest.String(),
		entity.LeaveStatusPending,
		entity.LeaveStatusCoordinatorApproved,
		entity.LeaveStatusHRApproved,
		entity.LeaveStatusRejected,
		entity.LeaveStatusCancelled,
	)

	builder.Configure(entity.LeaveStatusPending).
		Permit(entity.ActionApproveCoordinator, entity.LeaveStatusCoordinatorApproved).
		Permit(entity.ActionReject, entity.LeaveStatusRejected).
		Permit(entity.ActionCancel, entity.LeaveStatusCancelled)

	builder.Configure(entity.LeaveStatusCoordinatorApproved).
		Permit(entity.ActionApproveHR, entity.LeaveStatusHRApproved).
		Permit(entity.ActionReject, entity.LeaveStatusRejected).
		Permit(entity.ActionCancel, entity.LeaveStatusCancelled)

	// HR_APPROVED, REJECTED and CANCELLED are terminal

	return builder.Build()
}

// BuildWorkSubmissionTable creates the work submission transition table
func BuildWorkSubmissionTable() *domainwf.Table {
	builder := domainwf.NewBuilder(entity.KindWorkSubmission.String(),
		entity.SubmissionStatusPendingReview,
		entity.SubmissionStatusApproved,
		entity.SubmissionStatusRejected,
		entity.SubmissionStatusNeedsRevision,
	)

	builder.Configure(entity.SubmissionStatusPendingReview).
		Permit(entity.ActionApprove, entity.SubmissionStatusApproved).
		Permit(entity.ActionReject, entity.SubmissionStatusRejected).
		Permit(entity.ActionRequestRevision, entity.SubmissionStatusNeedsRevision)

	builder.Configure(entity.SubmissionStatusNeedsRevision).
		Permit(entity.ActionResubmit, entity.SubmissionStatusPendingReview)

	return builder.Build()
}

// BuildInvoiceTable creates the invoice transition table. Overdue is declared so
// the table recognises it, but no edge leads there.
func BuildInvoiceTable() *domainwf.Table {
	builder := domainwf.NewBuilder(entity.KindInvoice.String(),
		entity.InvoiceStatusDraft,
		entity.InvoiceStatusPending,
		entity.InvoiceStatusPartiallyPaid,
		entity.InvoiceStatusPaid,
		entity.InvoiceStatusOverdue,
		entity.InvoiceStatusCancelled,
	)

	builder.Configure(entity.InvoiceStatusDraft).
		Permit(entity.ActionIssue, entity.InvoiceStatusPending).
		Permit(entity.ActionCancel, entity.InvoiceStatusCancelled)

	builder.Configure(entity.InvoiceStatusPending).
		Permit(actionRecordPartialPayment, entity.InvoiceStatusPartiallyPaid).
		Permit(actionRecordFullPayment, entity.InvoiceStatusPaid).
		Permit(entity.ActionCancel, entity.InvoiceStatusCancelled)

	builder.Configure(entity.InvoiceStatusPartiallyPaid).
		Permit(actionRecordFullPayment, entity.InvoiceStatusPaid).
		Permit(entity.ActionCancel, entity.InvoiceStatusCancelled)

	return builder.Build()
}

// BuildTaskTable creates the task transition table
func BuildTaskTable() *domainwf.Table {
	builder := domainwf.NewBuilder(entity.KindTask.String(),
		entity.TaskStatusPending,
		entity.TaskStatusInProgress,
		entity.TaskStatusCompleted,
		entity.TaskStatusRejected,
	)

	builder.Configure(entity.TaskStatusPending).
		Permit(entity.ActionStart, entity.TaskStatusInProgress).
		Permit(entity.ActionReject, entity.TaskStatusRejected)

	builder.Configure(entity.TaskStatusInProgress).
		Permit(entity.ActionComplete, entity.TaskStatusCompleted).
		Permit(entity.ActionReject, entity.TaskStatusRejected)

	return builder.Build()
}
