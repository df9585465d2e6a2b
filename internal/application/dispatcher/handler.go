package dispatcher

import (
	"context"

	"github.com/garyjia/opsflow/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo describes a registered handler. An empty EventType means the
// handler receives every event.
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
