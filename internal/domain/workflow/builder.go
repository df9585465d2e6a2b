package workflow

import "fmt"

// TableBuilder assembles an immutable transition table
type TableBuilder interface {
	// Configure returns the configuration for transitions leaving the given state
	Configure(state State) StateConfiguration

	// Build freezes the configured transitions into a Table
	Build() *Table
}

// StateConfiguration configures transitions for a specific state
type StateConfiguration interface {
	// Permit allows an action to move the entity to the target state
	Permit(action Action, toState State) StateConfiguration
}

type stateConfig struct {
	builder   *tableBuilder
	fromState State
}

type tableBuilder struct {
	kind   string
	states map[State]bool
	edges  map[State]map[Action]State
}

// NewBuilder creates a builder for the named entity kind. Every state the kind
// can hold must be declared up front; configuring an undeclared state panics.
func NewBuilder(kind string, states ...State) TableBuilder {
	declared := make(map[State]bool, len(states))
	for _, s := range states {
		declared[s] = true
	}
	return &tableBuilder{
		kind:   kind,
		states: declared,
		edges:  make(map[State]map[Action]State),
	}
}

// Configure returns a state configuration for the given state
func (b *tableBuilder) Configure(state State) StateConfiguration {
	if !b.states[state] {
		panic(fmt.Sprintf("%s: invalid state: %s", b.kind, state))
	}
	if _, exists := b.edges[state]; !exists {
		b.edges[state] = make(map[Action]State)
	}
	return &stateConfig{builder: b, fromState: state}
}

// Build copies the configuration so later builder calls cannot alter the table
func (b *tableBuilder) Build() *Table {
	states := make(map[State]bool, len(b.states))
	for s := range b.states {
		states[s] = true
	}

	edges := make(map[State]map[Action]State, len(b.edges))
	for from, actions := range b.edges {
		copied := make(map[Action]State, len(actions))
		for action, to := range actions {
			copied[action] = to
		}
		edges[from] = copied
	}

	return &Table{kind: b.kind, states: states, edges: edges}
}

// Permit allows an action to move the entity to the target state
func (c *stateConfig) Permit(action Action, toState State) StateConfiguration {
	if !c.builder.states[toState] {
		panic(fmt.Sprintf("%s: invalid target state: %s", c.builder.kind, toState))
	}
	if existing, dup := c.builder.edges[c.fromState][action]; dup && existing != toState {
		panic(fmt.Sprintf("%s: action %s from %s already targets %s", c.builder.kind, action, c.fromState, existing))
	}
	c.builder.edges[c.fromState][action] = toState
	return c
}
