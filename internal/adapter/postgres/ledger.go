package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toneforge/toneforge/internal/domain/example"
	"github.com/toneforge/toneforge/internal/domain/tenant"
)

// Ledger implements the ledger port backed by the example_pairs table.
// Each append is one INSERT, so records never interleave.
type Ledger struct {
	pool *pgxpool.Pool
}

// NewLedger creates a postgres-backed example ledger.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Append records one example pair.
func (l *Ledger) Append(ctx context.Context, p example.Pair) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO example_pairs (user_id, account_id, draft, final, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.Tenant.UserID, p.Tenant.AccountID, p.Draft, p.Final, p.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert pair: %w", err)
	}
	return nil
}

// Count returns the total number of recorded pairs.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	var n int
	err := l.pool.QueryRow(ctx, `SELECT count(*) FROM example_pairs`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pairs: %w", err)
	}
	return n, nil
}

// CountFor returns the number of pairs recorded for the tenant.
func (l *Ledger) CountFor(ctx context.Context, t tenant.Key) (int, error) {
	var n int
	err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM example_pairs WHERE user_id = $1 AND account_id = $2`,
		t.UserID, t.AccountID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pairs for tenant: %w", err)
	}
	return n, nil
}

// ListFor returns all pairs recorded for the tenant, oldest first.
func (l *Ledger) ListFor(ctx context.Context, t tenant.Key) ([]example.Pair, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT draft, final, created_at FROM example_pairs
		 WHERE user_id = $1 AND account_id = $2
		 ORDER BY id`,
		t.UserID, t.AccountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	defer rows.Close()

	var pairs []example.Pair
	for rows.Next() {
		p := example.Pair{Tenant: t}
		if err := rows.Scan(&p.Draft, &p.Final, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return pairs, nil
}
