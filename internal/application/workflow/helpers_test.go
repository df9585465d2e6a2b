package workflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/opsflow/internal/domain/entity"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func actor(id string, role entity.Role, projects ...string) entity.Actor {
	return entity.Actor{ID: id, Role: role, ProjectIDs: projects}
}

func requirePayloadError(t *testing.T, err error, field, reason string) {
	t.Helper()
	require.ErrorIs(t, err, ErrInvalidPayload)
	var pe *PayloadError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, field, pe.Field)
	assert.Equal(t, reason, pe.Reason)
}

func TestErrorTypes_Unwrap(t *testing.T) {
	assert.ErrorIs(t, &ForbiddenError{Role: entity.RoleEmployee, Action: entity.ActionApprove}, ErrForbidden)
	assert.ErrorIs(t, &TransitionError{From: entity.TaskStatusCompleted, Action: entity.ActionStart}, ErrInvalidTransition)
	assert.ErrorIs(t, &PayloadError{Field: "amount", Reason: "required"}, ErrInvalidPayload)
	assert.ErrorIs(t, &IntegrityError{EntityID: "inv-1", Detail: "mismatch"}, ErrIntegrityViolation)

	err := &ForbiddenError{Role: entity.RoleEmployee, Action: entity.ActionApprove}
	assert.Contains(t, err.Error(), `role "employee" may not approve`)
}
