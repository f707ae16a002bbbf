// Package ledger defines the port interface for the append-only example log.
package ledger

import (
	"context"

	"github.com/toneforge/toneforge/internal/domain/example"
	"github.com/toneforge/toneforge/internal/domain/tenant"
)

// Ledger is the port interface for storing draft/final example pairs.
// Appends are atomic single writes; malformed stored records are skipped on
// read, never fatal.
type Ledger interface {
	Append(ctx context.Context, p example.Pair) error
	Count(ctx context.Context) (int, error)
	CountFor(ctx context.Context, t tenant.Key) (int, error)
	ListFor(ctx context.Context, t tenant.Key) ([]example.Pair, error)
}
