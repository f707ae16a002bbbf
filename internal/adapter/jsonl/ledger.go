// Package jsonl implements the ledger port as an append-only JSONL file,
// one example pair per line.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/toneforge/toneforge/internal/domain/example"
	"github.com/toneforge/toneforge/internal/domain/tenant"
)

// record is the on-disk line format. Tenant fields are flattened for easy
// inspection with standard text tools.
type record struct {
	Draft     string    `json:"draft"`
	Final     string    `json:"final"`
	UserID    string    `json:"userId"`
	AccountID string    `json:"accountId"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger is a file-backed append-only example store. A mutex serializes
// appends so each record lands as a single uninterleaved write; reads open
// the file independently and tolerate malformed lines.
type Ledger struct {
	mu   sync.Mutex
	path string
}

// New creates a JSONL ledger at path, creating parent directories as needed.
func New(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &Ledger{path: path}, nil
}

// Append writes one pair as a single line.
func (l *Ledger) Append(_ context.Context, p example.Pair) error {
	data, err := json.Marshal(record{
		Draft:     p.Draft,
		Final:     p.Final,
		UserID:    p.Tenant.UserID,
		AccountID: p.Tenant.AccountID,
		Timestamp: p.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("marshal pair: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append pair: %w", err)
	}
	return nil
}

// Count returns the total number of recorded pairs.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	n := 0
	err := l.scan(ctx, func(record) bool {
		n++
		return true
	})
	return n, err
}

// CountFor returns the number of pairs recorded for the tenant.
func (l *Ledger) CountFor(ctx context.Context, t tenant.Key) (int, error) {
	n := 0
	err := l.scan(ctx, func(r record) bool {
		if r.UserID == t.UserID && r.AccountID == t.AccountID {
			n++
		}
		return true
	})
	return n, err
}

// ListFor returns all pairs recorded for the tenant, in append order.
func (l *Ledger) ListFor(ctx context.Context, t tenant.Key) ([]example.Pair, error) {
	var pairs []example.Pair
	err := l.scan(ctx, func(r record) bool {
		if r.UserID == t.UserID && r.AccountID == t.AccountID {
			pairs = append(pairs, example.Pair{
				Draft:     r.Draft,
				Final:     r.Final,
				Tenant:    tenant.Key{UserID: r.UserID, AccountID: r.AccountID},
				Timestamp: r.Timestamp,
			})
		}
		return true
	})
	return pairs, err
}

// scan streams records through fn. Malformed lines are skipped and logged,
// never fatal. A missing file reads as empty.
func (l *Ledger) scan(ctx context.Context, fn func(record) bool) error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		var r record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			slog.Warn("skipping malformed ledger line", "path", l.path, "line", lineNo, "error", err)
			continue
		}
		if !fn(r) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan ledger: %w", err)
	}
	return nil
}
