package entity

import (
	"time"

	"github.com/garyjia/opsflow/internal/domain/workflow"
)

// Approval is a decision record attached to a leave request.
// It is attached once by the approving transition and never modified afterwards.
type Approval struct {
	ApprovedBy string    `json:"approved_by"`
	ApprovedAt time.Time `json:"approved_at"`
	Approved   bool      `json:"approved"`
	Comments   string    `json:"comments,omitempty"`
}

// LeaveRequest is an employee's request for time off
type LeaveRequest struct {
	ID                  string         `json:"id"`
	EmployeeID          string         `json:"employee_id"`
	LeaveType           string         `json:"leave_type"`
	StartDate           time.Time      `json:"start_date"`
	EndDate             time.Time      `json:"end_date"`
	Reason              string         `json:"reason"`
	Status              workflow.State `json:"status"`
	CoordinatorApproval *Approval      `json:"coordinator_approval,omitempty"`
	HRApproval          *Approval      `json:"hr_approval,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// Kind returns KindLeaveRequest
func (r LeaveRequest) Kind() Kind { return KindLeaveRequest }

// EntityID returns the request ID
func (r LeaveRequest) EntityID() string { return r.ID }

// CurrentStatus returns the stored status
func (r LeaveRequest) CurrentStatus() workflow.State { return r.Status }

// Timestamps returns the creation and last update times
func (r LeaveRequest) Timestamps() (created, updated time.Time) { return r.CreatedAt, r.UpdatedAt }

// IsEditable reports whether the request fields may still change
func (r LeaveRequest) IsEditable() bool {
	return r.Status == LeaveStatusPending || r.Status == LeaveStatusCoordinatorApproved
}
