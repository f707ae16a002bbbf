package service

import (
	"context"
	"fmt"

	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/port/ledger"
	"github.com/toneforge/toneforge/internal/port/registry"
)

// TenantStatus is the adaptation lifecycle snapshot for one tenant. The JSON
// tags are the wire shape; the HTTP handler serializes this struct as-is.
type TenantStatus struct {
	PairCount        int  `json:"pairs_count"`
	AdapterReady     bool `json:"model_exists"`
	AdapterLoaded    bool `json:"model_loaded"`
	TrainingInFlight bool `json:"training_in_flight"`
	ReadyForTraining bool `json:"ready_for_training"`
}

// StatusService reports per-tenant adaptation state.
type StatusService struct {
	ledger   ledger.Ledger
	reg      registry.Registry
	cache    *AdapterCache
	training *TrainingService
	gate     *Gate
}

// NewStatusService creates a status service.
func NewStatusService(led ledger.Ledger, reg registry.Registry, cache *AdapterCache, training *TrainingService, gate *Gate) *StatusService {
	return &StatusService{ledger: led, reg: reg, cache: cache, training: training, gate: gate}
}

// Get returns the tenant's current lifecycle status.
func (s *StatusService) Get(ctx context.Context, t tenant.Key) (*TenantStatus, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	count, err := s.ledger.CountFor(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("count examples: %w", err)
	}

	_, ready, err := s.reg.LocationFor(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("registry lookup: %w", err)
	}

	return &TenantStatus{
		PairCount:        count,
		AdapterReady:     ready,
		AdapterLoaded:    s.cache.Loaded(t),
		TrainingInFlight: s.training.InFlight(t),
		ReadyForTraining: s.gate.Decide(count) == GateReady,
	}, nil
}
