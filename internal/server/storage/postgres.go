package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func init() {
	Register("postgres", func(opts Options) (Store, error) {
		return OpenPostgres(context.Background(), opts.PostgresURL)
	})
}

// Postgres is a Store backed by a PostgreSQL connection pool. The budget
// document is stored as JSONB; the authoritative timestamp sits in its
// own column for the comparison query.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database at connURL and ensures the
// budgets table exists.
func OpenPostgres(ctx context.Context, connURL string) (*Postgres, error) {
	if connURL == "" {
		return nil, fmt.Errorf("postgres backend requires a connection URL")
	}

	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS budgets (
			user_id      TEXT PRIMARY KEY,
			data         JSONB NOT NULL,
			last_updated BIGINT NOT NULL
		)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create budgets table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// FetchByKey implements Store.
func (p *Postgres) FetchByKey(ctx context.Context, userID string) (*StoredBudget, error) {
	query := `
		SELECT data, last_updated
		FROM budgets
		WHERE user_id = $1`

	var (
		blob        []byte
		lastUpdated int64
	)
	err := p.pool.QueryRow(ctx, query, userID).Scan(&blob, &lastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch budget for %q: %w", userID, err)
	}

	var data budget.Record
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("corrupt budget row for %q: %w", userID, err)
	}

	return &StoredBudget{UserID: userID, Data: data, LastUpdated: lastUpdated}, nil
}

// UpsertWithTimestamp implements Store.
func (p *Postgres) UpsertWithTimestamp(ctx context.Context, userID string, data budget.Record, serverTimestamp int64) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode budget: %w", err)
	}

	query := `
		INSERT INTO budgets (user_id, data, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET
			data = $2,
			last_updated = $3`

	if _, err := p.pool.Exec(ctx, query, userID, blob, serverTimestamp); err != nil {
		return fmt.Errorf("failed to upsert budget for %q: %w", userID, err)
	}
	return nil
}

// Close implements Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
