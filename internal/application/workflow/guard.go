package workflow

import (
	"strings"
	"time"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/rolegate"
	domainwf "github.com/garyjia/opsflow/internal/domain/workflow"
)

// Option configures a workflow
type Option func(*options)

type options struct {
	gate *rolegate.Gate
}

// WithGate replaces the default permission table
func WithGate(gate *rolegate.Gate) Option {
	return func(o *options) {
		o.gate = gate
	}
}

func buildOptions(opts []Option) options {
	o := options{gate: rolegate.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// guard runs the checks shared by every workflow: role gate, ownership and
// project scope, then state legality
type guard struct {
	kind  entity.Kind
	gate  *rolegate.Gate
	table *domainwf.Table
}

func (g guard) authorize(actor entity.Actor, action domainwf.Action, subject rolegate.Subject) error {
	if !g.gate.Permits(actor, g.kind, action, subject) {
		return &ForbiddenError{Role: actor.Role, Action: action}
	}
	return nil
}

func (g guard) transition(actor entity.Actor, action domainwf.Action, subject rolegate.Subject) (domainwf.State, error) {
	if err := g.authorize(actor, action, subject); err != nil {
		return subject.Status, err
	}
	return g.table.Transition(subject.Status, action)
}

// PermittedActions lists the actions the table allows from status
func (g guard) PermittedActions(status domainwf.State) []domainwf.Action {
	return g.table.PermittedActions(status)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func checkDateRange(startField string, start time.Time, endField string, end time.Time) error {
	if start.IsZero() {
		return invalid(startField, "required")
	}
	if end.IsZero() {
		return invalid(endField, "required")
	}
	if end.Before(start) {
		return invalid(endField, "must not be before "+startField)
	}
	return nil
}
