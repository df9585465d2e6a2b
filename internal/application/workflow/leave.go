package workflow

import (
	"time"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/reconcile"
	"github.com/garyjia/opsflow/internal/domain/rolegate"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// LeavePayload carries the approver's comments for leave transitions
type LeavePayload struct {
	Comments string `json:"comments"`
}

// LeavePatch holds the editable fields of a leave request; nil fields are unchanged
type LeavePatch struct {
	LeaveType *string    `json:"leave_type"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Reason    *string    `json:"reason"`
}

// LeaveSummary holds the derived fields shown next to a leave request
type LeaveSummary struct {
	Days             int               `json:"days"`
	TimelineProgress int               `json:"timeline_progress"`
	PermittedActions []domainwf.Action `json:"permitted_actions"`
}

// LeaveRequestWorkflow drives leave requests through coordinator then HR approval
type LeaveRequestWorkflow struct {
	guard
}

// NewLeaveRequestWorkflow creates a leave request workflow
func NewLeaveRequestWorkflow(opts ...Option) *LeaveRequestWorkflow {
	o := buildOptions(opts)
	return &LeaveRequestWorkflow{
		guard: guard{kind: entity.KindLeaveRequest, gate: o.gate, table: BuildLeaveRequestTable()},
	}
}

func leaveSubject(r entity.LeaveRequest) rolegate.Subject {
	return rolegate.Subject{OwnerID: r.EmployeeID, Status: r.Status}
}

// Create validates a new request submitted by its employee and places it in pending
func (w *LeaveRequestWorkflow) Create(draft entity.LeaveRequest, actor entity.Actor, now time.Time) (entity.LeaveRequest, error) {
	if err := w.authorize(actor, entity.ActionCreate, leaveSubject(draft)); err != nil {
		return draft, err
	}
	if err := validateLeave(draft); err != nil {
		return draft, err
	}

	created := draft
	created.Status = entity.LeaveStatusPending
	created.CoordinatorApproval = nil
	created.HRApproval = nil
	created.CreatedAt = now
	created.UpdatedAt = now
	return created, nil
}

// Edit changes request fields while the request is still awaiting a final decision
func (w *LeaveRequestWorkflow) Edit(req entity.LeaveRequest, actor entity.Actor, patch LeavePatch, now time.Time) (entity.LeaveRequest, error) {
	if err := w.authorize(actor, entity.ActionEdit, leaveSubject(req)); err != nil {
		return req, err
	}
	if !req.IsEditable() {
		return req, &TransitionError{From: req.Status, Action: entity.ActionEdit}
	}

	updated := req
	if patch.LeaveType != nil {
		updated.LeaveType = *patch.LeaveType
	}
	if patch.StartDate != nil {
		updated.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		updated.EndDate = *patch.EndDate
	}
	if patch.Reason != nil {
		updated.Reason = *patch.Reason
	}
	if err := validateLeave(updated); err != nil {
		return req, err
	}

	updated.UpdatedAt = now
	return updated, nil
}

// Apply performs a status transition on a leave request
func (w *LeaveRequestWorkflow) Apply(req entity.LeaveRequest, action domainwf.Action, actor entity.Actor, payload LeavePayload, now time.Time) (entity.LeaveRequest, error) {
	next, err := w.transition(actor, action, leaveSubject(req))
	if err != nil {
		return req, err
	}

	if action == entity.ActionApproveCoordinator || action == entity.ActionApproveHR {
		if err := checkDateRange("startDate", req.StartDate, "endDate", req.EndDate); err != nil {
			return req, err
		}
	}

	decision := &entity.Approval{
		ApprovedBy: actor.ID,
		ApprovedAt: now,
		Comments:   payload.Comments,
	}

	updated := req
	switch action {
	case entity.ActionApproveCoordinator:
		decision.Approved = true
		updated.CoordinatorApproval = decision
	case entity.ActionApproveHR:
		if req.CoordinatorApproval == nil || !req.CoordinatorApproval.Approved {
			return req, &IntegrityError{EntityID: req.ID, Detail: "coordinator approval missing for coordinator_approved request"}
		}
		decision.Approved = true
		updated.HRApproval = decision
	case entity.ActionReject:
		// The rejection is recorded against whichever stage made it
		if req.Status == entity.LeaveStatusPending {
			updated.CoordinatorApproval = decision
		} else {
			updated.HRApproval = decision
		}
	}

	updated.Status = next
	updated.UpdatedAt = now
	return updated, nil
}

// Summarize computes the derived fields for a leave request
func (w *LeaveRequestWorkflow) Summarize(req entity.LeaveRequest, now time.Time) LeaveSummary {
	return LeaveSummary{
		Days:             reconcile.LeaveDays(req.StartDate, req.EndDate),
		TimelineProgress: reconcile.TimelineProgress(req.StartDate, req.EndDate, now),
		PermittedActions: w.PermittedActions(req.Status),
	}
}

func validateLeave(r entity.LeaveRequest) error {
	if blank(r.EmployeeID) {
		return invalid("employeeId", "required")
	}
	if blank(r.LeaveType) {
		return invalid("leaveType", "required")
	}
	if blank(r.Reason) {
		return invalid("reason", "required")
	}
	return checkDateRange("startDate", r.StartDate, "endDate", r.EndDate)
}
