// Package events defines the port interface for publishing lifecycle events.
package events

import "context"

// Publisher sends a message to the given subject. Publishing is best-effort
// observability; failures must not affect the operation being reported.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Noop discards all events. Used when no event stream is configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, string, []byte) error { return nil }
