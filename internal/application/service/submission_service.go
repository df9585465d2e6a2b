package service

import (
	"context"

	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// SubmissionService runs work submission operations against storage
type SubmissionService struct {
	store    store[entity.WorkSubmission]
	workflow *workflow.WorkSubmissionWorkflow
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(repo port.DocumentRepository[entity.WorkSubmission], wf *workflow.WorkSubmissionWorkflow, deps Deps, opts ...Option) *SubmissionService {
	return &SubmissionService{
		store:    newStore(entity.KindWorkSubmission, repo, deps, opts),
		workflow: wf,
	}
}

// Create logs new work for review
func (s *SubmissionService) Create(ctx context.Context, draft entity.WorkSubmission, actor entity.Actor) (entity.WorkSubmission, error) {
	draft.ID = s.store.newID()
	created, err := s.workflow.Create(draft, actor, s.store.now())
	if err != nil {
		return draft, err
	}
	if err := s.store.create(ctx, created, actor); err != nil {
		return draft, err
	}
	return created, nil
}

// Get returns the submission and the actions legal from its status
func (s *SubmissionService) Get(ctx context.Context, id string) (entity.WorkSubmission, []domainwf.Action, error) {
	sub, err := s.store.get(ctx, id)
	if err != nil {
		return sub, nil, err
	}
	return sub, s.workflow.PermittedActions(sub.Status), nil
}

// Edit changes the logged time or description
func (s *SubmissionService) Edit(ctx context.Context, id string, actor entity.Actor, patch workflow.SubmissionPatch) (entity.WorkSubmission, error) {
	return s.store.mutate(ctx, id, actor, entity.ActionEdit, patch, func(sub entity.WorkSubmission) (entity.WorkSubmission, error) {
		return s.workflow.Edit(sub, actor, patch, s.store.now())
	})
}

// Apply performs a review transition
func (s *SubmissionService) Apply(ctx context.Context, id string, action domainwf.Action, actor entity.Actor, payload workflow.SubmissionPayload) (entity.WorkSubmission, error) {
	return s.store.mutate(ctx, id, actor, action, payload, func(sub entity.WorkSubmission) (entity.WorkSubmission, error) {
		return s.workflow.Apply(sub, action, actor, payload, s.store.now())
	})
}

// History returns the transition log of a submission
func (s *SubmissionService) History(ctx context.Context, id string) ([]*entity.TransitionRecord, error) {
	return s.store.history(ctx, id)
}
