package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/opsflow/internal/domain/entity"
	"github.com/garyjia/opsflow/internal/domain/workflow"
)

// Event records something that happened to a workflow entity
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	Kind          entity.Kind            `json:"kind"`
	EntityID      string                 `json:"entity_id"`
	ActorID       string                 `json:"actor_id,omitempty"`
	Action        workflow.Action        `json:"action,omitempty"`
	From          workflow.State         `json:"from,omitempty"`
	To            workflow.State         `json:"to,omitempty"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates an event for one entity with a fresh ID and correlation chain
func NewEvent(eventType Type, kind entity.Kind, entityID string, at time.Time) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Kind:          kind,
		EntityID:      entityID,
		Timestamp:     at,
		CorrelationID: uuid.NewString(),
	}
}

// NewTransition creates a status change event
func NewTransition(kind entity.Kind, entityID string, actor entity.Actor, action workflow.Action, from, to workflow.State, at time.Time) *Event {
	evt := NewEvent(TypeStatusChanged, kind, entityID, at)
	evt.ActorID = actor.ID
	evt.Action = action
	evt.From = from
	evt.To = to
	return evt
}

// WithPayload returns a copy of the event with key set in its payload
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	c := *e
	c.Payload = payload
	return &c
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// IsTransition reports whether the event moved the entity to a new status
func (e *Event) IsTransition() bool {
	return e.Type == TypeStatusChanged && e.From != e.To
}
