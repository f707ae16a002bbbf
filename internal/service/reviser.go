package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/toneforge/toneforge/internal/adapter/otel"
	"github.com/toneforge/toneforge/internal/domain"
	"github.com/toneforge/toneforge/internal/domain/revision"
	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/port/cache"
	"github.com/toneforge/toneforge/internal/port/generation"
)

// promptPrefix frames the revision task; promptSuffix carries the completion
// marker the sanitizer anchors on. Kept verbatim across training and
// inference so the adapter sees the format it was trained on.
const (
	promptPrefix = "You are an email assistant. " +
		"You receive a draft email reply and should rewrite it to match the user's writing style.\n" +
		"IMPORTANT: Keep the exact meaning and content. Only change the style to match the user's preferences.\n\n" +
		"Draft reply:\n"
	promptSuffix = "\n\nRevised version:\n"
)

// Reviser rewrites drafts in the tenant's learned style. Revision never
// errors to its caller: any downstream failure degrades to returning the
// draft unchanged.
type Reviser struct {
	adapters  *AdapterCache
	sanitizer *Sanitizer
	sampling  generation.Sampling
	results   cache.Cache // optional bounded result cache
	resultTTL time.Duration
	metrics   *otel.Metrics
}

// NewReviser creates a reviser. results may be nil to disable result caching;
// metrics may be nil.
func NewReviser(
	adapters *AdapterCache,
	sanitizer *Sanitizer,
	sampling generation.Sampling,
	results cache.Cache,
	resultTTL time.Duration,
	metrics *otel.Metrics,
) *Reviser {
	return &Reviser{
		adapters:  adapters,
		sanitizer: sanitizer,
		sampling:  sampling,
		results:   results,
		resultTTL: resultTTL,
		metrics:   metrics,
	}
}

// Revise rewrites the draft in the tenant's style. With no trained adapter
// the draft is returned unchanged; on generation failure or a degenerate
// (empty) sanitized result it falls back to the draft as well.
func (r *Reviser) Revise(ctx context.Context, draft string, t tenant.Key) (*revision.Result, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	handle, err := r.adapters.GetOrLoad(ctx, t)
	if err != nil {
		if errors.Is(err, domain.ErrNotReady) {
			return &revision.Result{Revised: draft, UsedAdapter: false, ModelUsed: revision.ModelNone}, nil
		}
		// Load failures degrade like generation failures.
		slog.Error("adapter load failed", "tenant", t.String(), "error", err)
		r.countFallback(ctx)
		return &revision.Result{Revised: draft, UsedAdapter: false, ModelUsed: revision.ModelFallback}, nil
	}

	key := r.resultKey(t, draft)
	// Keying on the adapter location makes a retrain invalidate cached
	// results implicitly: the new location yields new keys.
	if loc := r.adapters.CachedLocation(t); loc != "" {
		key += ":" + loc
	}
	if r.results != nil {
		if cached, ok, cacheErr := r.results.Get(ctx, key); cacheErr == nil && ok {
			if r.metrics != nil {
				r.metrics.RevisionCacheHits.Add(ctx, 1)
			}
			return &revision.Result{Revised: string(cached), UsedAdapter: true, ModelUsed: revision.ModelAdapted}, nil
		}
	}

	prompt := promptPrefix + draft + promptSuffix

	raw, err := handle.Generate(ctx, prompt, r.sampling)
	if err != nil {
		slog.Error("generation failed", "tenant", t.String(), "error", err)
		r.countFallback(ctx)
		return &revision.Result{Revised: draft, UsedAdapter: false, ModelUsed: revision.ModelFallback}, nil
	}

	clean := r.sanitizer.Sanitize(raw, prompt)
	if clean == "" {
		// Degenerate generation; treat like any other generation failure.
		slog.Warn("sanitized result empty", "tenant", t.String(), "raw_len", len(raw))
		r.countFallback(ctx)
		return &revision.Result{Revised: draft, UsedAdapter: false, ModelUsed: revision.ModelFallback}, nil
	}

	if r.results != nil {
		if err := r.results.Set(ctx, key, []byte(clean), r.resultTTL); err != nil {
			slog.Debug("revision cache set failed", "error", err)
		}
	}
	if r.metrics != nil {
		r.metrics.RevisionsServed.Add(ctx, 1)
	}

	return &revision.Result{Revised: clean, UsedAdapter: true, ModelUsed: revision.ModelAdapted}, nil
}

func (r *Reviser) countFallback(ctx context.Context) {
	if r.metrics != nil {
		r.metrics.RevisionFallbacks.Add(ctx, 1)
	}
}

// resultKey is stable per tenant and draft content.
func (r *Reviser) resultKey(t tenant.Key, draft string) string {
	sum := sha256.Sum256([]byte(draft))
	return "rev:" + t.String() + ":" + hex.EncodeToString(sum[:])
}
