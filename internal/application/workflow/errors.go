package workflow

import (
	"errors"
	"fmt"

	"github.com/garyjia/opsflow/internal/domain/entity"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

var (
	// ErrForbidden is returned when the actor lacks the role or ownership for an action
	ErrForbidden = errors.New("not authorized")

	// ErrInvalidTransition is returned when an action is not legal in the entity's status
	ErrInvalidTransition = domainwf.ErrInvalidTransition

	// ErrInvalidPayload is returned when supporting data is missing or out of range
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrIntegrityViolation is returned when stored derived fields disagree with recomputed values
	ErrIntegrityViolation = errors.New("integrity violation")
)

// TransitionError reports an action that is not legal from the entity's status
type TransitionError = domainwf.TransitionError

// ForbiddenError reports a denied action
type ForbiddenError struct {
	Role   entity.Role
	Action domainwf.Action
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: role %q may not %s", ErrForbidden, e.Role, e.Action)
}

// Unwrap lets errors.Is match ErrForbidden
func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// PayloadError reports the offending input field
type PayloadError struct {
	Field  string
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidPayload, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidPayload
func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}

// IntegrityError reports a stored value that disagrees with its recomputation.
// It indicates an upstream bug and is never corrected automatically.
type IntegrityError struct {
	EntityID string
	Detail   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: entity %s: %s", ErrIntegrityViolation, e.EntityID, e.Detail)
}

// Unwrap lets errors.Is match ErrIntegrityViolation
func (e *IntegrityError) Unwrap() error {
	return ErrIntegrityViolation
}

func invalid(field, reason string) error {
	return &PayloadError{Field: field, Reason: reason}
}
