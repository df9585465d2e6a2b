package entity

import (
	"time"

	"github.com/garyjia/opsflow/internal/domain/workflow"
)

// Task is a unit of project work. A sub task always hangs off a main task;
// TaskType never changes after creation.
type Task struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	ProjectID          string         `json:"project_id"`
	TaskType           string         `json:"task_type"`
	ParentTaskID       string         `json:"parent_task_id,omitempty"`
	AssignedEmployeeID string         `json:"assigned_employee_id"`
	Priority           string         `json:"priority"`
	Status             workflow.State `json:"status"`
	DueDate            time.Time      `json:"due_date"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Kind returns KindTask
func (t Task) Kind() Kind { return KindTask }

// EntityID returns the task ID
func (t Task) EntityID() string { return t.ID }

// CurrentStatus returns the stored status
func (t Task) CurrentStatus() workflow.State { return t.Status }

// Timestamps returns the creation and last update times
func (t Task) Timestamps() (created, updated time.Time) { return t.CreatedAt, t.UpdatedAt }

// IsSubTask reports whether the task hangs off a main task
func (t Task) IsSubTask() bool {
	return t.TaskType == TaskTypeSub
}
