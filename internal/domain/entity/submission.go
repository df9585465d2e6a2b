package entity

import (
	"time"

	"github.com/garyjia/opsflow/internal/domain/workflow"
)

// WorkSubmission is time logged by an employee against a task, awaiting review
type WorkSubmission struct {
	ID              string         `json:"id"`
	EmployeeID      string         `json:"employee_id"`
	TaskID          string         `json:"task_id"`
	ProjectID       string         `json:"project_id"`
	TimeSpent       float64        `json:"time_spent"` // hours
	Description     string         `json:"description"`
	Status          workflow.State `json:"status"`
	Feedback        string         `json:"feedback,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ReviewedBy      string         `json:"reviewed_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Kind returns KindWorkSubmission
func (s WorkSubmission) Kind() Kind { return KindWorkSubmission }

// EntityID returns the submission ID
func (s WorkSubmission) EntityID() string { return s.ID }

// CurrentStatus returns the stored status
func (s WorkSubmission) CurrentStatus() workflow.State { return s.Status }

// Timestamps returns the creation and last update times
func (s WorkSubmission) Timestamps() (created, updated time.Time) { return s.CreatedAt, s.UpdatedAt }

// IsEditable reports whether the owner may still change the submission
func (s WorkSubmission) IsEditable() bool {
	return s.Status == SubmissionStatusPendingReview || s.Status == SubmissionStatusNeedsRevision
}
