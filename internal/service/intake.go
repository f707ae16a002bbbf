package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/toneforge/toneforge/internal/adapter/otel"
	"github.com/toneforge/toneforge/internal/domain"
	"github.com/toneforge/toneforge/internal/domain/example"
	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/port/ledger"
)

// IntakeService records submitted draft/final pairs on the example ledger.
type IntakeService struct {
	ledger  ledger.Ledger
	metrics *otel.Metrics
	now     func() time.Time
}

// NewIntakeService creates an intake service. metrics may be nil.
func NewIntakeService(led ledger.Ledger, metrics *otel.Metrics) *IntakeService {
	return &IntakeService{ledger: led, metrics: metrics, now: time.Now}
}

// SubmitPair appends one example pair and returns the tenant's new pair count.
func (s *IntakeService) SubmitPair(ctx context.Context, draft, final string, t tenant.Key) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if draft == "" {
		return 0, fmt.Errorf("%w: draft is required", domain.ErrValidation)
	}
	if final == "" {
		return 0, fmt.Errorf("%w: final is required", domain.ErrValidation)
	}

	p := example.Pair{
		Draft:     draft,
		Final:     final,
		Tenant:    t,
		Timestamp: s.now().UTC(),
	}
	if err := s.ledger.Append(ctx, p); err != nil {
		return 0, fmt.Errorf("append pair: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PairsLogged.Add(ctx, 1)
	}

	count, err := s.ledger.CountFor(ctx, t)
	if err != nil {
		// The pair is durably recorded; a failed count readback only
		// degrades the response.
		slog.Warn("count after append failed", "tenant", t.String(), "error", err)
		return 0, nil
	}
	return count, nil
}
