// Package trainer defines the port interface for the opaque adapter training
// capability.
package trainer

import (
	"context"

	"github.com/toneforge/toneforge/internal/domain/example"
	"github.com/toneforge/toneforge/internal/domain/tenant"
)

// Trainer runs one adapter training job over the tenant's example pairs and
// returns the location of the completed artifact. It is invoked at most once
// per trigger; internals (optimizer, hyperparameters) are out of scope.
type Trainer interface {
	Train(ctx context.Context, t tenant.Key, pairs []example.Pair) (location string, err error)
}
