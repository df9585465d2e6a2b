package entity

import "time"

// TransitionRecord is the audit trail entry written for every applied action
type TransitionRecord struct {
	ID             int64     `json:"id"`
	EntityID       string    `json:"entity_id"`
	Kind           Kind      `json:"kind"`
	ActorID        string    `json:"actor_id"`
	ActorRole      Role      `json:"actor_role"`
	Action         string    `json:"action"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActionData     string    `json:"action_data,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
