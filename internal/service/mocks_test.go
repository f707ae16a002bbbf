package service

import (
	"context"
	"sync"

	"github.com/toneforge/toneforge/internal/domain/example"
	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/port/generation"
)

// mockLedger implements ledger.Ledger for testing.
type mockLedger struct {
	mu        sync.Mutex
	pairs     []example.Pair
	appendErr error
	countErr  error
	listErr   error
}

func (l *mockLedger) Append(_ context.Context, p example.Pair) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pairs = append(l.pairs, p)
	return nil
}

func (l *mockLedger) Count(_ context.Context) (int, error) {
	if l.countErr != nil {
		return 0, l.countErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pairs), nil
}

func (l *mockLedger) CountFor(_ context.Context, t tenant.Key) (int, error) {
	if l.countErr != nil {
		return 0, l.countErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, p := range l.pairs {
		if p.Tenant == t {
			n++
		}
	}
	return n, nil
}

func (l *mockLedger) ListFor(_ context.Context, t tenant.Key) ([]example.Pair, error) {
	if l.listErr != nil {
		return nil, l.listErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []example.Pair
	for _, p := range l.pairs {
		if p.Tenant == t {
			out = append(out, p)
		}
	}
	return out, nil
}

// mockRegistry implements registry.Registry for testing.
type mockRegistry struct {
	mu         sync.Mutex
	locations  map[string]string
	lookupErr  error
	publishErr error
	published  []string
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{locations: make(map[string]string)}
}

func (r *mockRegistry) LocationFor(_ context.Context, t tenant.Key) (string, bool, error) {
	if r.lookupErr != nil {
		return "", false, r.lookupErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	loc, ok := r.locations[t.String()]
	return loc, ok, nil
}

func (r *mockRegistry) Publish(_ context.Context, t tenant.Key, location string) error {
	if r.publishErr != nil {
		return r.publishErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[t.String()] = location
	r.published = append(r.published, location)
	return nil
}

// mockGenerator implements generation.Generator for testing.
type mockGenerator struct {
	mu       sync.Mutex
	output   string
	err      error
	prompts  []string
	closed   bool
	location string
}

func (g *mockGenerator) Generate(_ context.Context, prompt string, _ generation.Sampling) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return g.output, nil
}

func (g *mockGenerator) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// mockLoader implements generation.Loader for testing.
type mockLoader struct {
	mu      sync.Mutex
	err     error
	output  string
	loads   int
	handles []*mockGenerator
}

func (l *mockLoader) Load(_ context.Context, location string) (generation.Generator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	if l.err != nil {
		return nil, l.err
	}
	g := &mockGenerator{output: l.output, location: location}
	l.handles = append(l.handles, g)
	return g, nil
}

// mockTrainer implements trainer.Trainer for testing.
type mockTrainer struct {
	mu       sync.Mutex
	location string
	err      error
	calls    int
	got      []example.Pair
}

func (t *mockTrainer) Train(_ context.Context, _ tenant.Key, pairs []example.Pair) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	t.got = pairs
	if t.err != nil {
		return "", t.err
	}
	return t.location, nil
}

// mockPublisher implements events.Publisher for testing.
type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *mockPublisher) Publish(_ context.Context, subject string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *mockPublisher) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

func testTenant() tenant.Key {
	return tenant.Key{UserID: "user-1", AccountID: "acct-1"}
}
