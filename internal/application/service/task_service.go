package service

import (
	"context"
	"errors"

	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// TaskService runs task operations against storage
type TaskService struct {
	store    store[entity.Task]
	workflow *workflow.TaskWorkflow
}

// NewTaskService creates a new TaskService
func NewTaskService(repo port.DocumentRepository[entity.Task], wf *workflow.TaskWorkflow, deps Deps, opts ...Option) *TaskService {
	return &TaskService{
		store:    newStore(entity.KindTask, repo, deps, opts),
		workflow: wf,
	}
}

// Create adds a task. Sub tasks are checked against their stored parent.
func (s *TaskService) Create(ctx context.Context, draft entity.Task, actor entity.Actor) (entity.Task, error) {
	var parent *entity.Task
	if draft.ParentTaskID != "" {
		p, err := s.store.get(ctx, draft.ParentTaskID)
		switch {
		case err == nil:
			parent = &p
		case !errors.Is(err, port.ErrNotFound):
			return draft, err
		}
	}

	draft.ID = s.store.newID()
	created, err := s.workflow.Create(draft, actor, parent, s.store.now())
	if err != nil {
		return draft, err
	}
	if err := s.store.create(ctx, created, actor); err != nil {
		return draft, err
	}
	return created, nil
}

// Get returns the task with its derived fields
func (s *TaskService) Get(ctx context.Context, id string) (entity.Task, workflow.TaskSummary, error) {
	task, err := s.store.get(ctx, id)
	if err != nil {
		return task, workflow.TaskSummary{}, err
	}
	return task, s.workflow.Summarize(task, s.store.now()), nil
}

// Edit changes task fields other than its type
func (s *TaskService) Edit(ctx context.Context, id string, actor entity.Actor, patch workflow.TaskPatch) (entity.Task, error) {
	return s.store.mutate(ctx, id, actor, entity.ActionEdit, patch, func(task entity.Task) (entity.Task, error) {
		return s.workflow.Edit(task, actor, patch, s.store.now())
	})
}

// Apply performs a status transition
func (s *TaskService) Apply(ctx context.Context, id string, action domainwf.Action, actor entity.Actor) (entity.Task, error) {
	return s.store.mutate(ctx, id, actor, action, nil, func(task entity.Task) (entity.Task, error) {
		return s.workflow.Apply(task, action, actor, s.store.now())
	})
}

// History returns the transition log of a task
func (s *TaskService) History(ctx context.Context, id string) ([]*entity.TransitionRecord, error) {
	return s.store.history(ctx, id)
}
