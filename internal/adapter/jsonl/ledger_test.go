package jsonl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/toneforge/toneforge/internal/domain/example"
	"github.com/toneforge/toneforge/internal/domain/tenant"
)

func testPair(userID, accountID, draft, final string) example.Pair {
	return example.Pair{
		Draft:     draft,
		Final:     final,
		Tenant:    tenant.Key{UserID: userID, AccountID: accountID},
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAppendAndReadBack(t *testing.T) {
	led, err := New(filepath.Join(t.TempDir(), "pairs.jsonl"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := led.Append(ctx, testPair("u1", "a1", "d1", "f1")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := led.Append(ctx, testPair("u1", "a1", "d2", "f2")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := led.Append(ctx, testPair("u2", "a1", "d3", "f3")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	total, err := led.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 pairs, got %d", total)
	}

	k := tenant.Key{UserID: "u1", AccountID: "a1"}
	n, err := led.CountFor(ctx, k)
	if err != nil {
		t.Fatalf("CountFor: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pairs for tenant, got %d", n)
	}

	pairs, err := led.ListFor(ctx, k)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(pairs) != 2 || pairs[0].Draft != "d1" || pairs[1].Draft != "d2" {
		t.Fatalf("unexpected pairs: %+v", pairs)
	}
	if pairs[0].Tenant != k {
		t.Fatalf("tenant not round-tripped: %+v", pairs[0].Tenant)
	}
}

func TestMissingFileReadsAsEmpty(t *testing.T) {
	led, err := New(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	n, err := led.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 pairs, got %d", n)
	}
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.jsonl")
	led, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := led.Append(ctx, testPair("u1", "a1", "d1", "f1")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("{not json at all\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := led.Append(ctx, testPair("u1", "a1", "d2", "f2")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	n, err := led.CountFor(ctx, tenant.Key{UserID: "u1", AccountID: "a1"})
	if err != nil {
		t.Fatalf("CountFor: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected the corrupt line skipped, got count %d", n)
	}
}
