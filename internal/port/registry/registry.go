// Package registry defines the port interface for adapter readiness tracking.
package registry

import (
	"context"

	"github.com/toneforge/toneforge/internal/domain/tenant"
)

// Registry tracks, per tenant, whether a trained adapter artifact exists on
// durable storage and where. It never holds loaded weights.
type Registry interface {
	// LocationFor returns the adapter location for the tenant, or ok=false
	// when no completed adapter exists (state Absent).
	LocationFor(ctx context.Context, t tenant.Key) (location string, ok bool, err error)

	// Publish atomically marks the tenant's adapter as ready at location.
	// Callers must only publish after the training capability returned a
	// fully usable artifact; an interrupted training leaves the prior state
	// observable.
	Publish(ctx context.Context, t tenant.Key, location string) error
}
