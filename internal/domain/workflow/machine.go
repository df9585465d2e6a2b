package workflow

import "sort"

// Table maps (state, action) pairs to next states for one entity kind.
// It holds no current state; callers pass the entity's status on every call.
type Table struct {
	kind   string
	states map[State]bool
	edges  map[State]map[Action]State
}

// Kind returns the entity kind the table was built for
func (t *Table) Kind() string {
	return t.kind
}

// IsValid reports whether the state was declared for this kind
func (t *Table) IsValid(s State) bool {
	return t.states[s]
}

// IsTerminal reports whether no action is defined from the state
func (t *Table) IsTerminal(s State) bool {
	return t.states[s] && len(t.edges[s]) == 0
}

// Transition returns the state reached by applying action to current
func (t *Table) Transition(current State, action Action) (State, error) {
	next, ok := t.edges[current][action]
	if !ok {
		return current, &TransitionError{From: current, Action: action}
	}
	return next, nil
}

// Permits reports whether action is legal from current
func (t *Table) Permits(current State, action Action) bool {
	_, ok := t.edges[current][action]
	return ok
}

// PermittedActions returns the legal actions from current in sorted order
func (t *Table) PermittedActions(current State) []Action {
	actions := make([]Action, 0, len(t.edges[current]))
	for action := range t.edges[current] {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// States returns every declared state in sorted order
func (t *Table) States() []State {
	states := make([]State, 0, len(t.states))
	for s := range t.states {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}
