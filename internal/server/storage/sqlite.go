package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func init() {
	Register("sqlite", func(opts Options) (Store, error) {
		return OpenSQLite(opts.SQLitePath)
	})
}

// SQLite is a Store backed by embedded SQLite with WAL enabled, suitable
// for a single-node deployment.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if necessary) the budgets database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite backend requires a database path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &SQLite{conn: conn}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := s.conn.Exec(pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS budgets (
			user_id      TEXT PRIMARY KEY,
			data         TEXT NOT NULL,
			last_updated INTEGER NOT NULL
		)`); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create budgets table: %w", err)
	}

	return s, nil
}

// FetchByKey implements Store.
func (s *SQLite) FetchByKey(ctx context.Context, userID string) (*StoredBudget, error) {
	var (
		blob        []byte
		lastUpdated int64
	)
	err := s.conn.QueryRowContext(ctx,
		"SELECT data, last_updated FROM budgets WHERE user_id = ?", userID).
		Scan(&blob, &lastUpdated)
	if err == sql.ErrNoRows {
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
func (s *SQLite) UpsertWithTimestamp(ctx context.Context, userID string, data budget.Record, serverTimestamp int64) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode budget: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO budgets (user_id, data, last_updated) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			data = excluded.data,
			last_updated = excluded.last_updated`,
		userID, blob, serverTimestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert budget for %q: %w", userID, err)
	}
	return nil
}

// Close checkpoints the WAL and closes the connection.
func (s *SQLite) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}
