package service

import (
	"context"
	"errors"
	"testing"

	"github.com/toneforge/toneforge/internal/domain"
)

func TestGetOrLoadNotReady(t *testing.T) {
	cache := NewAdapterCache(newMockRegistry(), &mockLoader{})

	_, err := cache.GetOrLoad(context.Background(), testTenant())
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestGetOrLoadCachesHandle(t *testing.T) {
	reg := newMockRegistry()
	reg.locations[testTenant().String()] = "out/a"
	loader := &mockLoader{output: "hi"}
	cache := NewAdapterCache(reg, loader)

	first, err := cache.GetOrLoad(context.Background(), testTenant())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.GetOrLoad(context.Background(), testTenant())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Fatal("expected the same handle on repeat lookup")
	}
	if loader.loads != 1 {
		t.Fatalf("expected a single load, got %d", loader.loads)
	}
	if !cache.Loaded(testTenant()) {
		t.Fatal("Loaded should report true")
	}
	if got := cache.CachedLocation(testTenant()); got != "out/a" {
		t.Fatalf("unexpected cached location %q", got)
	}
}

func TestGetOrLoadReloadsOnLocationChange(t *testing.T) {
	reg := newMockRegistry()
	reg.locations[testTenant().String()] = "out/v1"
	loader := &mockLoader{output: "hi"}
	cache := NewAdapterCache(reg, loader)

	if _, err := cache.GetOrLoad(context.Background(), testTenant()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reg.locations[testTenant().String()] = "out/v2"

	handle, err := cache.GetOrLoad(context.Background(), testTenant())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.loads != 2 {
		t.Fatalf("expected a reload, loads=%d", loader.loads)
	}
	if handle.(*mockGenerator).location != "out/v2" {
		t.Fatalf("expected handle from new location, got %q", handle.(*mockGenerator).location)
	}
	if !loader.handles[0].closed {
		t.Fatal("stale handle should have been closed")
	}
}

func TestGetOrLoadLoaderFailure(t *testing.T) {
	reg := newMockRegistry()
	reg.locations[testTenant().String()] = "out/a"
	cache := NewAdapterCache(reg, &mockLoader{err: errors.New("sidecar down")})

	if _, err := cache.GetOrLoad(context.Background(), testTenant()); err == nil {
		t.Fatal("expected load error")
	}
	if cache.Loaded(testTenant()) {
		t.Fatal("failed load must not leave an entry behind")
	}
}

func TestEvict(t *testing.T) {
	reg := newMockRegistry()
	reg.locations[testTenant().String()] = "out/a"
	loader := &mockLoader{output: "hi"}
	cache := NewAdapterCache(reg, loader)

	if _, err := cache.GetOrLoad(context.Background(), testTenant()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache.Evict(testTenant())

	if cache.Loaded(testTenant()) {
		t.Fatal("entry should be gone after eviction")
	}
	if !loader.handles[0].closed {
		t.Fatal("evicted handle should have been closed")
	}

	// Evicting again is a no-op.
	cache.Evict(testTenant())
}

func TestCacheClose(t *testing.T) {
	reg := newMockRegistry()
	reg.locations[testTenant().String()] = "out/a"
	loader := &mockLoader{output: "hi"}
	cache := NewAdapterCache(reg, loader)

	if _, err := cache.GetOrLoad(context.Background(), testTenant()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache.Close()

	if cache.Loaded(testTenant()) {
		t.Fatal("Close should drop every entry")
	}
	if !loader.handles[0].closed {
		t.Fatal("Close should close every handle")
	}
}
