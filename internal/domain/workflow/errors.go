package workflow

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an action is not legal from the current state
var ErrInvalidTransition = errors.New("invalid state transition")

// TransitionError reports the state and action that had no entry in a transition table
type TransitionError struct {
	From   State
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from state %s", ErrInvalidTransition, e.Action, e.From)
}

// Unwrap lets errors.Is match ErrInvalidTransition
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
