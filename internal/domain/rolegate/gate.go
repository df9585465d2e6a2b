// Package rolegate decides which roles may request which actions on which entity kinds.
// Decisions are pure table lookups; instance checks (ownership, project assignment)
// are expressed as conditional grants that the caller resolves against the entity.
package rolegate

import (
	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/workflow"
)

// Grant is a set of conditions under which an action is permitted
type Grant uint8

const (
	// Deny means the role may never request the action
	Deny Grant = 0
	// Always means the role may request the action on any instance
	Always Grant = 1 << iota
	// IfOwner means the action is permitted when the actor owns the entity
	IfOwner
	// IfProjectMember means the action is permitted when the actor coordinates the entity's project
	IfProjectMember
)

// Has reports whether g includes every condition in other
func (g Grant) Has(other Grant) bool {
	return other != Deny && g&other == other
}

// Rule lists who may request one action on one kind.
// A rule with a From state applies only to entities in that state and takes
// precedence over the unqualified rule for the same kind and action.
type Rule struct {
	Kind   entity.Kind
	Action workflow.Action
	From   workflow.State

	// Roles are permitted unconditionally
	Roles []entity.Role
	// ProjectRoles are permitted on entities of projects the actor coordinates
	ProjectRoles []entity.Role
	// Owner permits any role acting on an entity it owns
	Owner bool
}

type ruleKey struct {
	kind   entity.Kind
	action workflow.Action
	from   workflow.State
}

// Subject is the instance context needed to resolve conditional grants
type Subject struct {
	OwnerID   string
	ProjectID string
	Status    workflow.State
}

// Gate is an immutable permission table
type Gate struct {
	grants map[ruleKey]map[entity.Role]Grant
	owner  map[ruleKey]bool
	froms  map[ruleKey][]workflow.State
}

// New builds a gate from a rule table
func New(rules []Rule) *Gate {
	g := &Gate{
		grants: make(map[ruleKey]map[entity.Role]Grant),
		owner:  make(map[ruleKey]bool),
		froms:  make(map[ruleKey][]workflow.State),
	}
	for _, rule := range rules {
		key := ruleKey{kind: rule.Kind, action: rule.Action, from: rule.From}
		grants, ok := g.grants[key]
		if !ok {
			grants = make(map[entity.Role]Grant)
			g.grants[key] = grants
		}
		for _, role := range rule.Roles {
			grants[role] |= Always
		}
		for _, role := range rule.ProjectRoles {
			grants[role] |= IfProjectMember
		}
		if rule.Owner {
			g.owner[key] = true
		}
		if rule.From != "" {
			base := ruleKey{kind: rule.Kind, action: rule.Action}
			g.froms[base] = append(g.froms[base], rule.From)
		}
	}
	return g
}

func (g *Gate) lookup(key ruleKey, role entity.Role) Grant {
	grant := g.grants[key][role]
	if g.owner[key] {
		grant |= IfOwner
	}
	return grant
}

// CheckAt returns the conditions under which role may request action on an
// entity of kind currently in state from. States without a qualified rule fall
// back to Check.
func (g *Gate) CheckAt(role entity.Role, kind entity.Kind, from workflow.State, action workflow.Action) Grant {
	if from != "" {
		key := ruleKey{kind: kind, action: action, from: from}
		if _, ok := g.grants[key]; ok {
			return g.lookup(key, role)
		}
	}
	return g.Check(role, kind, action)
}

// Check returns the conditions under which role may request action on kind in
// any state: the union of the unqualified rule and every state-qualified rule
func (g *Gate) Check(role entity.Role, kind entity.Kind, action workflow.Action) Grant {
	base := ruleKey{kind: kind, action: action}
	grant := g.lookup(base, role)
	for _, from := range g.froms[base] {
		grant |= g.lookup(ruleKey{kind: kind, action: action, from: from}, role)
	}
	return grant
}

// Allowed reports whether role could ever request action on kind
func (g *Gate) Allowed(role entity.Role, kind entity.Kind, action workflow.Action) bool {
	return g.Check(role, kind, action) != Deny
}

// Permits resolves the grant for a concrete actor and entity instance
func (g *Gate) Permits(actor entity.Actor, kind entity.Kind, action workflow.Action, subject Subject) bool {
	grant := g.CheckAt(actor.Role, kind, subject.Status, action)
	switch {
	case grant.Has(Always):
		return true
	case grant.Has(IfOwner) && actor.ID != "" && actor.ID == subject.OwnerID:
		return true
	case grant.Has(IfProjectMember) && actor.CoordinatesProject(subject.ProjectID):
		return true
	default:
		return false
	}
}
