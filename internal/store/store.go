// Package store holds the single local budget record and its sync
// bookkeeping, persisted through a durable key-value collaborator.
//
// Every local mutation stamps the record with the current time and marks
// it unsynced, then persists the whole record before returning. The
// hasEverSynced flag is monotonic: once any sync succeeds it never goes
// back to false, which is what distinguishes "never synced" from "was
// synced, now has pending edits".
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
)

// StorageKey is the single durable key holding the serialized record.
const StorageKey = "budgetbox-storage"

// persistedState is the on-disk layout: all Record fields inline plus the
// local-only hasEverSynced flag. Older blobs that predate hasEverSynced
// unmarshal with the flag defaulting to false.
type persistedState struct {
	budget.Record
	HasEverSynced bool `json:"hasEverSynced"`
}

// Store is the local record store. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	kv     KV
	state  persistedState
	now    func() int64
	logger *log.Logger
}

// Open loads the persisted record from kv, creating a default record if
// none exists. If logger is nil, a default logger writing to stderr is
// used.
func Open(kv KV, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}

	s := &Store{
		kv:     kv,
		now:    func() int64 { return time.Now().UnixMilli() },
		logger: logger,
	}

	blob, found, err := kv.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted record: %w", err)
	}

	if !found {
		s.state = persistedState{Record: budget.DefaultRecord(s.now())}
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		s.logger.Printf("No persisted record found, created default")
		return s, nil
	}

	if err := json.Unmarshal(blob, &s.state); err != nil {
		return nil, fmt.Errorf("failed to decode persisted record: %w", err)
	}
	s.logger.Printf("Loaded record (lastUpdated=%d, synced=%v, everSynced=%v)",
		s.state.LastUpdated, s.state.IsSynced, s.state.HasEverSynced)

	return s, nil
}

// Record returns a snapshot of the current budget record.
func (s *Store) Record() budget.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Record
}

// IsSynced reports whether the local record is known to equal the last
// confirmed server copy.
func (s *Store) IsSynced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsSynced
}

// HasEverSynced reports whether any sync has ever completed successfully.
func (s *Store) HasEverSynced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.HasEverSynced
}

// SetIncome writes the income field, stamps LastUpdated, marks the record
// unsynced, and persists. The amount must be finite and non-negative;
// callers sanitize user input with budget.ParseAmount first.
func (s *Store) SetIncome(amount float64) error {
	if err := checkAmount(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Income = amount
	s.touchLocked()
	return s.persistLocked()
}

// SetExpense writes one expense category, stamps LastUpdated, marks the
// record unsynced, and persists.
func (s *Store) SetExpense(category budget.Category, amount float64) error {
	if err := checkAmount(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.Expenses.Set(category, amount); err != nil {
		return err
	}
	s.touchLocked()
	return s.persistLocked()
}

// SetSyncStatus records the outcome of a sync attempt. Confirmed=true
// marks the record synced and latches hasEverSynced; confirmed=false
// marks it unsynced and leaves hasEverSynced alone.
func (s *Store) SetSyncStatus(confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsSynced = confirmed
	if confirmed {
		s.state.HasEverSynced = true
	}
	return s.persistLocked()
}

// ReplaceWithServerRecord overwrites all budget fields with the server's
// copy. The result is by definition synced, so both flags are forced true.
func (s *Store) ReplaceWithServerRecord(rec budget.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Record = rec
	s.state.IsSynced = true
	s.state.HasEverSynced = true
	return s.persistLocked()
}

// touchLocked stamps the mutation time and clears the synced flag.
// Caller must hold s.mu.
func (s *Store) touchLocked() {
	s.state.LastUpdated = s.now()
	s.state.IsSynced = false
}

// persistLocked serializes the whole state to the durable key.
// Caller must hold s.mu.
func (s *Store) persistLocked() error {
	blob, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := s.kv.Put(StorageKey, blob); err != nil {
		return fmt.Errorf("failed to persist record: %w", err)
	}
	return nil
}

func checkAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("amount must be a finite number")
	}
	if v < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	return nil
}
