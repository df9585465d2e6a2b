package workflow

import (
	"time"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/reconcile"
	"github.com/garyjia/opsflow/internal/domain/rolegate"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// TaskPatch holds editable task fields; nil fields are unchanged.
// TaskType is accepted only so a change can be refused.
type TaskPatch struct {
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
	TaskType           *string    `json:"task_type"`
	AssignedEmployeeID *string    `json:"assigned_employee_id"`
	Priority           *string    `json:"priority"`
	DueDate            *time.Time `json:"due_date"`
}

// TaskSummary holds the derived fields shown on the task board
type TaskSummary struct {
	TimelineProgress int               `json:"timeline_progress"`
	IsOverdue        bool              `json:"is_overdue"`
	DaysOverdue      int               `json:"days_overdue"`
	PermittedActions []domainwf.Action `json:"permitted_actions"`
}

// TaskWorkflow drives project tasks and enforces the main/sub hierarchy
type TaskWorkflow struct {
	guard
}

// NewTaskWorkflow creates a task workflow
func NewTaskWorkflow(opts ...Option) *TaskWorkflow {
	o := buildOptions(opts)
	return &TaskWorkflow{
		guard: guard{kind: entity.KindTask, gate: o.gate, table: BuildTaskTable()},
	}
}

func taskSubject(t entity.Task) rolegate.Subject {
	return rolegate.Subject{OwnerID: t.AssignedEmployeeID, ProjectID: t.ProjectID, Status: t.Status}
}

// Create validates a new task. parent is the task referenced by ParentTaskID,
// or nil when it could not be found.
func (w *TaskWorkflow) Create(draft entity.Task, actor entity.Actor, parent *entity.Task, now time.Time) (entity.Task, error) {
	if err := w.authorize(actor, entity.ActionCreate, taskSubject(draft)); err != nil {
		return draft, err
	}
	if err := validateTask(draft); err != nil {
		return draft, err
	}
	if err := checkParent(draft, parent); err != nil {
		return draft, err
	}

	created := draft
	if created.Priority == "" {
		created.Priority = entity.PriorityMedium
	}
	created.Status = entity.TaskStatusPending
	created.CreatedAt = now
	created.UpdatedAt = now
	return created, nil
}

// Edit changes task fields. The task type is fixed at creation and finished
// tasks are read-only.
func (w *TaskWorkflow) Edit(task entity.Task, actor entity.Actor, patch TaskPatch, now time.Time) (entity.Task, error) {
	if err := w.authorize(actor, entity.ActionEdit, taskSubject(task)); err != nil {
		return task, err
	}
	if w.table.IsTerminal(task.Status) {
		return task, &TransitionError{From: task.Status, Action: entity.ActionEdit}
	}
	if patch.TaskType != nil && *patch.TaskType != task.TaskType {
		return task, invalid("taskType", "immutable after creation")
	}

	updated := task
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.AssignedEmployeeID != nil {
		updated.AssignedEmployeeID = *patch.AssignedEmployeeID
	}
	if patch.Priority != nil {
		updated.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		updated.DueDate = *patch.DueDate
	}
	if err := validateTask(updated); err != nil {
		return task, err
	}

	updated.UpdatedAt = now
	return updated, nil
}

// Apply performs a status transition on a task
func (w *TaskWorkflow) Apply(task entity.Task, action domainwf.Action, actor entity.Actor, now time.Time) (entity.Task, error) {
	next, err := w.transition(actor, action, taskSubject(task))
	if err != nil {
		return task, err
	}

	updated := task
	updated.Status = next
	updated.UpdatedAt = now
	return updated, nil
}

// Summarize computes the derived fields for a task
func (w *TaskWorkflow) Summarize(task entity.Task, now time.Time) TaskSummary {
	summary := TaskSummary{
		TimelineProgress: reconcile.TimelineProgress(task.CreatedAt, task.DueDate, now),
		PermittedActions: w.PermittedActions(task.Status),
	}
	if !w.table.IsTerminal(task.Status) {
		if days := reconcile.DaysPastDue(task.DueDate, now); days > 0 {
			summary.IsOverdue = true
			summary.DaysOverdue = days
		}
	}
	return summary
}

func validateTask(t entity.Task) error {
	if blank(t.Title) {
		return invalid("title", "required")
	}
	if blank(t.ProjectID) {
		return invalid("projectId", "required")
	}
	if t.TaskType != entity.TaskTypeMain && t.TaskType != entity.TaskTypeSub {
		return invalid("taskType", "must be main or sub")
	}
	switch t.Priority {
	case "", entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh:
	default:
		return invalid("priority", "must be low, medium or high")
	}
	if t.DueDate.IsZero() {
		return invalid("dueDate", "required")
	}
	return nil
}

func checkParent(t entity.Task, parent *entity.Task) error {
	if !t.IsSubTask() {
		if t.ParentTaskID != "" {
			return invalid("parentTaskId", "not allowed for main tasks")
		}
		return nil
	}

	if t.ParentTaskID == "" {
		return invalid("parentTaskId", "required for sub tasks")
	}
	if parent == nil || parent.ID != t.ParentTaskID {
		return invalid("parentTaskId", "parent task not found")
	}
	if parent.TaskType != entity.TaskTypeMain {
		return invalid("parentTaskId", "must reference a main task")
	}
	if parent.ProjectID != t.ProjectID {
		return invalid("parentTaskId", "must belong to the same project")
	}
	return nil
}
