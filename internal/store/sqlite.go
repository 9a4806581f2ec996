package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteKV is a durable key-value store backed by embedded SQLite.
//
// The database runs in embedded mode with WAL enabled so reads stay
// concurrent with writes. One table holds all keys.
type SQLiteKV struct {
	conn *sql.DB
	path string
}

// OpenKV opens (creating if necessary) a SQLite-backed key-value store at
// the given path. The caller MUST call Close() when done.
//
// Example:
//
//	kv, err := store.OpenKV(filepath.Join(dataDir, "budgetbox.db"))
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
func OpenKV(path string) (*SQLiteKV, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	kv := &SQLiteKV{conn: conn, path: path}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := kv.conn.Exec(pragma); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if _, err := kv.conn.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return kv, nil
}

// Get implements KV.Get.
func (kv *SQLiteKV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := kv.conn.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Put implements KV.Put.
func (kv *SQLiteKV) Put(key string, value []byte) error {
	_, err := kv.conn.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete implements KV.Delete.
func (kv *SQLiteKV) Delete(key string) error {
	if _, err := kv.conn.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Close checkpoints the WAL and closes the connection.
func (kv *SQLiteKV) Close() error {
	if kv.conn == nil {
		return nil
	}

	if _, err := kv.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := kv.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	kv.conn = nil
	return nil
}
