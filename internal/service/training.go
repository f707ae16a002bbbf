// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toneforge/toneforge/internal/adapter/otel"
	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/domain/training"
	"github.com/toneforge/toneforge/internal/jobs"
	"github.com/toneforge/toneforge/internal/port/broadcast"
	"github.com/toneforge/toneforge/internal/port/events"
	"github.com/toneforge/toneforge/internal/port/ledger"
	"github.com/toneforge/toneforge/internal/port/registry"
	"github.com/toneforge/toneforge/internal/port/trainer"
)

// TrainingService coordinates adapter training: it gates on example counts,
// guarantees at most one in-flight job per tenant, schedules the job on the
// runner without blocking the caller, and on success publishes the artifact
// and evicts the stale cache entry.
type TrainingService struct {
	ledger  ledger.Ledger
	gate    *Gate
	trainer trainer.Trainer
	reg     registry.Registry
	cache   *AdapterCache
	runner  jobs.Runner
	events  events.Publisher
	hub     broadcast.Broadcaster
	metrics *otel.Metrics

	mu       sync.Mutex
	inFlight map[string]string // tenant key -> job ID
}

// NewTrainingService creates a training orchestrator. events and hub may be
// the no-op implementations; metrics may be nil.
func NewTrainingService(
	led ledger.Ledger,
	gate *Gate,
	tr trainer.Trainer,
	reg registry.Registry,
	cache *AdapterCache,
	runner jobs.Runner,
	pub events.Publisher,
	hub broadcast.Broadcaster,
	metrics *otel.Metrics,
) *TrainingService {
	return &TrainingService{
		ledger:   led,
		gate:     gate,
		trainer:  tr,
		reg:      reg,
		cache:    cache,
		runner:   runner,
		events:   pub,
		hub:      hub,
		metrics:  metrics,
		inFlight: make(map[string]string),
	}
}

// Trigger requests training for the tenant. It never blocks on the training
// itself: the job runs in the background and its outcome is observable via
// the event stream and tenant status, not via this call.
func (s *TrainingService) Trigger(ctx context.Context, t tenant.Key) (*training.TriggerResult, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	count, err := s.ledger.CountFor(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("count examples: %w", err)
	}

	result := &training.TriggerResult{Count: count, Required: s.gate.Required()}

	if s.gate.Decide(count) == GateInsufficient {
		result.Status = training.StatusInsufficientData
		return result, nil
	}

	// Atomic check-and-set of the in-flight marker: two concurrent triggers
	// for the same tenant cannot both pass.
	jobID := uuid.NewString()
	s.mu.Lock()
	if existing, busy := s.inFlight[t.String()]; busy {
		s.mu.Unlock()
		result.Status = training.StatusAlreadyInFlight
		result.JobID = existing
		return result, nil
	}
	s.inFlight[t.String()] = jobID
	s.mu.Unlock()

	s.emit(ctx, training.Event{
		Type:      training.EventStarted,
		JobID:     jobID,
		Tenant:    t,
		Timestamp: time.Now().UTC(),
	})
	if s.metrics != nil {
		s.metrics.TrainingsStarted.Add(ctx, 1)
	}
	slog.Info("training started", "tenant", t.String(), "job_id", jobID, "examples", count)

	s.runner.Submit("train:"+t.String(), func(jobCtx context.Context) {
		s.runJob(jobCtx, jobID, t)
	})

	result.Status = training.StatusStarted
	result.JobID = jobID
	return result, nil
}

// InFlight reports whether a training job for the tenant is currently running.
func (s *TrainingService) InFlight(t tenant.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[t.String()]
	return busy
}

// runJob executes one background training job. Failures are logged and
// reported on the event stream, never raised to the original caller; the
// registry is left untouched so the prior adapter state stays observable.
func (s *TrainingService) runJob(ctx context.Context, jobID string, t tenant.Key) {
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, t.String())
		s.mu.Unlock()
	}()

	start := time.Now()

	pairs, err := s.ledger.ListFor(ctx, t)
	if err != nil {
		s.fail(ctx, jobID, t, fmt.Errorf("load examples: %w", err))
		return
	}

	location, err := s.trainer.Train(ctx, t, pairs)
	if err != nil {
		s.fail(ctx, jobID, t, fmt.Errorf("train: %w", err))
		return
	}

	// Publish only after the trainer returned a fully usable artifact, then
	// drop any handle loaded from the pre-training location.
	if err := s.reg.Publish(ctx, t, location); err != nil {
		s.fail(ctx, jobID, t, fmt.Errorf("publish adapter: %w", err))
		return
	}
	s.cache.Evict(t)

	if s.metrics != nil {
		s.metrics.TrainingsCompleted.Add(ctx, 1)
		s.metrics.TrainingDuration.Record(ctx, time.Since(start).Seconds())
	}
	s.emit(ctx, training.Event{
		Type:      training.EventCompleted,
		JobID:     jobID,
		Tenant:    t,
		Location:  location,
		Timestamp: time.Now().UTC(),
	})
	slog.Info("training completed",
		"tenant", t.String(),
		"job_id", jobID,
		"location", location,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (s *TrainingService) fail(ctx context.Context, jobID string, t tenant.Key, err error) {
	if s.metrics != nil {
		s.metrics.TrainingsFailed.Add(ctx, 1)
	}
	s.emit(ctx, training.Event{
		Type:      training.EventFailed,
		JobID:     jobID,
		Tenant:    t,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	})
	slog.Error("training failed", "tenant", t.String(), "job_id", jobID, "error", err)
}

// emit fans the event out to the event stream and the dashboard hub.
// Both are best-effort observability sinks.
func (s *TrainingService) emit(ctx context.Context, ev training.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal training event", "error", err)
		return
	}
	if err := s.events.Publish(ctx, ev.Type, data); err != nil {
		slog.Warn("publish training event", "type", ev.Type, "error", err)
	}
	s.hub.BroadcastTrainingEvent(ctx, ev)
}
