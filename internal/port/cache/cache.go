// Package cache defines the port interface for byte-value caching.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for bounded key-value caching of derived
// outputs (revision results). Entries may be evicted at any time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
