// Package broadcast defines the port interface for pushing events to
// connected dashboard clients.
package broadcast

import (
	"context"

	"github.com/toneforge/toneforge/internal/domain/training"
)

// Broadcaster fans a training lifecycle event out to all connected clients.
type Broadcaster interface {
	BroadcastTrainingEvent(ctx context.Context, ev training.Event)
}

// Noop drops all broadcasts. Used when the WebSocket hub is not mounted.
type Noop struct{}

// BroadcastTrainingEvent implements Broadcaster.
func (Noop) BroadcastTrainingEvent(context.Context, training.Event) {}
