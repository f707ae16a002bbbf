package service

import (
	"context"
	"testing"

	"github.com/toneforge/toneforge/internal/jobs"
	"github.com/toneforge/toneforge/internal/port/broadcast"
)

func newStatusFixture(led *mockLedger, reg *mockRegistry, loader *mockLoader) (*StatusService, *AdapterCache) {
	gate := NewGate(10)
	cache := NewAdapterCache(reg, loader)
	training := NewTrainingService(led, gate, &mockTrainer{}, reg, cache, jobs.SyncRunner{}, &mockPublisher{}, broadcast.Noop{}, nil)
	return NewStatusService(led, reg, cache, training, gate), cache
}

func TestStatusFreshTenant(t *testing.T) {
	svc, _ := newStatusFixture(&mockLedger{}, newMockRegistry(), &mockLoader{})

	got, err := svc.Get(context.Background(), testTenant())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := TenantStatus{}
	if *got != want {
		t.Fatalf("expected zero status, got %+v", got)
	}
}

func TestStatusReadyForTraining(t *testing.T) {
	led := &mockLedger{}
	seedLedger(led, 10)
	svc, _ := newStatusFixture(led, newMockRegistry(), &mockLoader{})

	got, err := svc.Get(context.Background(), testTenant())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PairCount != 10 || !got.ReadyForTraining {
		t.Fatalf("expected 10 pairs and ready flag, got %+v", got)
	}
	if got.AdapterReady || got.AdapterLoaded {
		t.Fatalf("no adapter exists yet, got %+v", got)
	}
}

func TestStatusWithLoadedAdapter(t *testing.T) {
	led := &mockLedger{}
	seedLedger(led, 12)
	reg := newMockRegistry()
	reg.locations[testTenant().String()] = "out/a"
	svc, cache := newStatusFixture(led, reg, &mockLoader{output: "x"})

	if _, err := cache.GetOrLoad(context.Background(), testTenant()); err != nil {
		t.Fatalf("preload failed: %v", err)
	}

	got, err := svc.Get(context.Background(), testTenant())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AdapterReady || !got.AdapterLoaded {
		t.Fatalf("expected adapter ready and loaded, got %+v", got)
	}
	if got.TrainingInFlight {
		t.Fatalf("no training running, got %+v", got)
	}
}
