package workflow

// State is the status value of a workflow-managed entity
type State string

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// Action names a requested status change
type Action string

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
