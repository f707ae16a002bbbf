// Package otel holds the OpenTelemetry metric instruments for ToneForge.
// Instruments are created on the global meter provider; exporter wiring is a
// deployment concern.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "toneforge"

// Metrics holds all ToneForge metric instruments.
type Metrics struct {
	PairsLogged        metric.Int64Counter
	TrainingsStarted   metric.Int64Counter
	TrainingsCompleted metric.Int64Counter
	TrainingsFailed    metric.Int64Counter
	TrainingDuration   metric.Float64Histogram
	RevisionsServed    metric.Int64Counter
	RevisionFallbacks  metric.Int64Counter
	RevisionCacheHits  metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.PairsLogged, err = meter.Int64Counter("toneforge.pairs.logged",
		metric.WithDescription("Number of draft/final pairs recorded"))
	if err != nil {
		return nil, err
	}

	m.TrainingsStarted, err = meter.Int64Counter("toneforge.trainings.started",
		metric.WithDescription("Number of training jobs started"))
	if err != nil {
		return nil, err
	}

	m.TrainingsCompleted, err = meter.Int64Counter("toneforge.trainings.completed",
		metric.WithDescription("Number of training jobs completed"))
	if err != nil {
		return nil, err
	}

	m.TrainingsFailed, err = meter.Int64Counter("toneforge.trainings.failed",
		metric.WithDescription("Number of training jobs failed"))
	if err != nil {
		return nil, err
	}

	m.TrainingDuration, err = meter.Float64Histogram("toneforge.training.duration_seconds",
		metric.WithDescription("Training job duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.RevisionsServed, err = meter.Int64Counter("toneforge.revisions.served",
		metric.WithDescription("Number of adapted revisions served"))
	if err != nil {
		return nil, err
	}

	m.RevisionFallbacks, err = meter.Int64Counter("toneforge.revisions.fallbacks",
		metric.WithDescription("Number of revisions that fell back to the draft"))
	if err != nil {
		return nil, err
	}

	m.RevisionCacheHits, err = meter.Int64Counter("toneforge.revisions.cache_hits",
		metric.WithDescription("Number of revision results served from cache"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
