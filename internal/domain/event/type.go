package event

// Type identifies the type of domain event
type Type string

const (
	TypeEntityCreated      Type = "entity.created"
	TypeEntityEdited       Type = "entity.edited"
	TypeStatusChanged      Type = "entity.status_changed"
	TypeIntegrityViolation Type = "entity.integrity_violation"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeEntityCreated,
		TypeEntityEdited,
		TypeStatusChanged,
		TypeIntegrityViolation:
		return true
	default:
		return false
	}
}
