package service

import (
	"context"

	"github.com/garyjia/opsflow/internal/application/port"
	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// LeaveService runs leave request operations against storage
type LeaveService struct {
	store    store[entity.LeaveRequest]
	workflow *workflow.LeaveRequestWorkflow
}

// NewLeaveService creates a new LeaveService
func NewLeaveService(repo port.DocumentRepository[entity.LeaveRequest], wf *workflow.LeaveRequestWorkflow, deps Deps, opts ...Option) *LeaveService {
	return &LeaveService{
		store:    newStore(entity.KindLeaveRequest, repo, deps, opts),
		workflow: wf,
	}
}

// Create submits a new leave request on behalf of actor
func (s *LeaveService) Create(ctx context.Context, draft entity.LeaveRequest, actor entity.Actor) (entity.LeaveRequest, error) {
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

// Get returns the request with its derived fields
func (s *LeaveService) Get(ctx context.Context, id string) (entity.LeaveRequest, workflow.LeaveSummary, error) {
	req, err := s.store.get(ctx, id)
	if err != nil {
		return req, workflow.LeaveSummary{}, err
	}
	return req, s.workflow.Summarize(req, s.store.now()), nil
}

// Edit changes the fields of an editable request
func (s *LeaveService) Edit(ctx context.Context, id string, actor entity.Actor, patch workflow.LeavePatch) (entity.LeaveRequest, error) {
	return s.store.mutate(ctx, id, actor, entity.ActionEdit, patch, func(req entity.LeaveRequest) (entity.LeaveRequest, error) {
		return s.workflow.Edit(req, actor, patch, s.store.now())
	})
}

// Apply performs a status transition
func (s *LeaveService) Apply(ctx context.Context, id string, action domainwf.Action, actor entity.Actor, payload workflow.LeavePayload) (entity.LeaveRequest, error) {
	return s.store.mutate(ctx, id, actor, action, payload, func(req entity.LeaveRequest) (entity.LeaveRequest, error) {
		return s.workflow.Apply(req, action, actor, payload, s.store.now())
	})
}

// History returns the transition log of a request
func (s *LeaveService) History(ctx context.Context, id string) ([]*entity.TransitionRecord, error) {
	return s.store.history(ctx, id)
}
