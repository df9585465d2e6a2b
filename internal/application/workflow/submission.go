package workflow

import (
	"time"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/rolegate"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// SubmissionPayload carries reviewer input for work submission transitions
type SubmissionPayload struct {
	Feedback        string `json:"feedback"`
	RejectionReason string `json:"rejection_reason"`
}

// SubmissionPatch holds the owner-editable fields; nil fields are unchanged
type SubmissionPatch struct {
	TimeSpent   *float64 `json:"time_spent"`
	Description *string  `json:"description"`
}

// WorkSubmissionWorkflow drives logged work through review
type WorkSubmissionWorkflow struct {
	guard
}

// NewWorkSubmissionWorkflow creates a work submission workflow
func NewWorkSubmissionWorkflow(opts ...Option) *WorkSubmissionWorkflow {
	o := buildOptions(opts)
	return &WorkSubmissionWorkflow{
		guard: guard{kind: entity.KindWorkSubmission, gate: o.gate, table: BuildWorkSubmissionTable()},
	}
}

func submissionSubject(s entity.WorkSubmission) rolegate.Subject {
	return rolegate.Subject{OwnerID: s.EmployeeID, ProjectID: s.ProjectID, Status: s.Status}
}

// Create validates work logged by its employee and places it in pending_review
func (w *WorkSubmissionWorkflow) Create(draft entity.WorkSubmission, actor entity.Actor, now time.Time) (entity.WorkSubmission, error) {
	if err := w.authorize(actor, entity.ActionCreate, submissionSubject(draft)); err != nil {
		return draft, err
	}
	if err := validateSubmission(draft); err != nil {
		return draft, err
	}

	created := draft
	created.Status = entity.SubmissionStatusPendingReview
	created.Feedback = ""
	created.RejectionReason = ""
	created.ReviewedBy = ""
	created.CreatedAt = now
	created.UpdatedAt = now
	return created, nil
}

// Edit lets the owner correct a submission that has not been decided
func (w *WorkSubmissionWorkflow) Edit(sub entity.WorkSubmission, actor entity.Actor, patch SubmissionPatch, now time.Time) (entity.WorkSubmission, error) {
	if err := w.authorize(actor, entity.ActionEdit, submissionSubject(sub)); err != nil {
		return sub, err
	}
	if !sub.IsEditable() {
		return sub, &TransitionError{From: sub.Status, Action: entity.ActionEdit}
	}

	updated := sub
	if patch.TimeSpent != nil {
		updated.TimeSpent = *patch.TimeSpent
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if err := validateSubmission(updated); err != nil {
		return sub, err
	}

	updated.UpdatedAt = now
	return updated, nil
}

// Apply performs a review transition on a work submission
func (w *WorkSubmissionWorkflow) Apply(sub entity.WorkSubmission, action domainwf.Action, actor entity.Actor, payload SubmissionPayload, now time.Time) (entity.WorkSubmission, error) {
	next, err := w.transition(actor, action, submissionSubject(sub))
	if err != nil {
		return sub, err
	}

	updated := sub
	switch action {
	case entity.ActionApprove:
		updated.Feedback = payload.Feedback
		updated.ReviewedBy = actor.ID
	case entity.ActionReject:
		if blank(payload.RejectionReason) {
			return sub, invalid("rejectionReason", "required")
		}
		updated.RejectionReason = payload.RejectionReason
		updated.Feedback = payload.Feedback
		updated.ReviewedBy = actor.ID
	case entity.ActionRequestRevision:
		updated.Feedback = payload.Feedback
		updated.ReviewedBy = actor.ID
	case entity.ActionResubmit:
		updated.ReviewedBy = ""
	}

	updated.Status = next
	updated.UpdatedAt = now
	return updated, nil
}

func validateSubmission(s entity.WorkSubmission) error {
	if blank(s.EmployeeID) {
		return invalid("employeeId", "required")
	}
	if blank(s.TaskID) {
		return invalid("taskId", "required")
	}
	if blank(s.ProjectID) {
		return invalid("projectId", "required")
	}
	if s.TimeSpent < 0 {
		return invalid("timeSpent", "must not be negative")
	}
	if blank(s.Description) {
		return invalid("description", "required")
	}
	return nil
}
