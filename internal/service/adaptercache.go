package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/toneforge/toneforge/internal/domain"
	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/port/generation"
	"github.com/toneforge/toneforge/internal/port/registry"
)

// cacheEntry holds one loaded adapter handle and the registry location it was
// loaded from. The location is compared on every lookup so a retrained
// adapter is never served from a stale handle.
type cacheEntry struct {
	handle   generation.Generator
	location string
}

// AdapterCache maps tenants to loaded adapter handles. It loads lazily from
// the registry location on first use and serves repeated requests without a
// reload. A per-tenant lock linearizes lookup and eviction on the same key;
// different tenants never contend.
//
// The map is unbounded on purpose: handle count equals active tenant count in
// the intended deployment. Bounding by TTL or memory pressure is an extension
// point; layer it on via Evict.
type AdapterCache struct {
	reg    registry.Registry
	loader generation.Loader

	mu      sync.Mutex
	entries map[string]*cacheEntry
	locks   map[string]*sync.Mutex
}

// NewAdapterCache creates an empty cache backed by the given registry and
// model loader.
func NewAdapterCache(reg registry.Registry, loader generation.Loader) *AdapterCache {
	return &AdapterCache{
		reg:     reg,
		loader:  loader,
		entries: make(map[string]*cacheEntry),
		locks:   make(map[string]*sync.Mutex),
	}
}

// GetOrLoad returns the loaded handle for the tenant, loading it first when
// absent or loaded from an outdated location. Returns domain.ErrNotReady when
// the registry reports no completed adapter.
func (c *AdapterCache) GetOrLoad(ctx context.Context, t tenant.Key) (generation.Generator, error) {
	location, ok, err := c.reg.LocationFor(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("registry lookup: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotReady
	}

	lock := c.tenantLock(t)
	lock.Lock()
	defer lock.Unlock()

	key := t.String()

	c.mu.Lock()
	entry := c.entries[key]
	c.mu.Unlock()

	if entry != nil && entry.location == location {
		return entry.handle, nil
	}

	handle, err := c.loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load adapter %s: %w", location, err)
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{handle: handle, location: location}
	c.mu.Unlock()

	if entry != nil {
		entry.handle.Close()
	}

	slog.Info("adapter loaded", "tenant", key, "location", location)
	return handle, nil
}

// Evict removes any cached handle for the tenant. Safe to call when no entry
// exists. Called by the training orchestrator after a successful retrain.
func (c *AdapterCache) Evict(t tenant.Key) {
	lock := c.tenantLock(t)
	lock.Lock()
	defer lock.Unlock()

	key := t.String()

	c.mu.Lock()
	entry := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if entry != nil {
		entry.handle.Close()
		slog.Info("adapter evicted", "tenant", key, "location", entry.location)
	}
}

// CachedLocation returns the location the tenant's cached handle was loaded
// from, or an empty string when nothing is cached.
func (c *AdapterCache) CachedLocation(t tenant.Key) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry := c.entries[t.String()]; entry != nil {
		return entry.location
	}
	return ""
}

// Loaded reports whether a handle for the tenant is currently cached.
func (c *AdapterCache) Loaded(t tenant.Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[t.String()] != nil
}

// Close evicts every cached handle. Called on shutdown.
func (c *AdapterCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		entry.handle.Close()
		delete(c.entries, key)
	}
}

func (c *AdapterCache) tenantLock(t tenant.Key) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := t.String()
	lock := c.locks[key]
	if lock == nil {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}
