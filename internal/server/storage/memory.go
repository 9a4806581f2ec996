package storage

import (
	"context"
	"sync"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
)

func init() {
	Register("memory", func(Options) (Store, error) {
		return NewMemory(), nil
	})
}

// Memory is an in-process Store, the default backend for development and
// tests. Contents do not survive restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string]StoredBudget
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]StoredBudget)}
}

// FetchByKey implements Store.
func (m *Memory) FetchByKey(ctx context.Context, userID string) (*StoredBudget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := rec
	return &copied, nil
}

// UpsertWithTimestamp implements Store.
func (m *Memory) UpsertWithTimestamp(ctx context.Context, userID string, data budget.Record, serverTimestamp int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[userID] = StoredBudget{
		UserID:      userID,
		Data:        data,
		LastUpdated: serverTimestamp,
	}
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
