package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/opsflow/internal/application/workflow"
	"github.com/garyjia/opsflow/internal/domain/entity"
)

func pendingSubmission() entity.WorkSubmission {
	return entity.WorkSubmission{
		ID:          "sub-1",
		EmployeeID:  "emp-1",
		TaskID:      "task-1",
		ProjectID:   "proj-1",
		TimeSpent:   6.5,
		Description: "Implemented checkout",
		Status:      entity.SubmissionStatusPendingReview,
	}
}

func TestSubmissionService_RevisionRoundTrip(t *testing.T) {
	h := newHarness(t)
	repo := newMockDocumentRepo(pendingSubmission())
	svc := NewSubmissionService(repo, workflow.NewWorkSubmissionWorkflow(), h.deps(), h.opts()...)
	ctx := context.Background()

	revision, err := svc.Apply(ctx, "sub-1", entity.ActionRequestRevision, lead, workflow.SubmissionPayload{Feedback: "add tests"})
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionStatusNeedsRevision, revision.Status)

	hours := 8.0
	edited, err := svc.Edit(ctx, "sub-1", employee, workflow.SubmissionPatch{TimeSpent: &hours})
	require.NoError(t, err)
	assert.Equal(t, 8.0, edited.TimeSpent)

	resubmitted, err := svc.Apply(ctx, "sub-1", entity.ActionResubmit, employee, workflow.SubmissionPayload{})
	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionStatusPendingReview, resubmitted.Status)

	sub, actions, err := svc.Get(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 8.0, sub.TimeSpent)
	assert.ElementsMatch(t, []string{"approve", "reject", "request_revision"}, actionNames(actions))

	records, err := svc.History(ctx, "sub-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "edit", records[1].Action)
	assert.Equal(t, records[1].PreviousStatus, records[1].NewStatus)
}

func TestSubmissionService_RejectRequiresReason(t *testing.T) {
	h := newHarness(t)
	repo := newMockDocumentRepo(pendingSubmission())
	svc := NewSubmissionService(repo, workflow.NewWorkSubmissionWorkflow(), h.deps(), h.opts()...)

	_, err := svc.Apply(context.Background(), "sub-1", entity.ActionReject, lead, workflow.SubmissionPayload{})

	assert.ErrorIs(t, err, workflow.ErrInvalidPayload)
	assert.Equal(t, entity.SubmissionStatusPendingReview, repo.stored("sub-1").Status)
}

func TestSubmissionService_Create(t *testing.T) {
	h := newHarness(t)
	repo := newMockDocumentRepo[entity.WorkSubmission]()
	svc := NewSubmissionService(repo, workflow.NewWorkSubmissionWorkflow(), h.deps(), h.opts()...)

	draft := pendingSubmission()
	draft.Status = entity.SubmissionStatusApproved
	draft.ReviewedBy = "someone"

	created, err := svc.Create(context.Background(), draft, employee)

	require.NoError(t, err)
	assert.Equal(t, entity.SubmissionStatusPendingReview, created.Status)
	assert.Empty(t, created.ReviewedBy)
}
