// Package storage defines the authoritative server-side budget store and
// its selectable backends.
//
// Business logic reaches the store only through the Store interface;
// backend identity is decided once at process startup via the registry.
package storage

import (
	"context"
	"errors"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
)

// ErrNotFound is returned by FetchByKey when no record exists for the
// user. Check with errors.Is().
var ErrNotFound = errors.New("no budget stored for user")

// StoredBudget is one user's server-held record. LastUpdated is the
// authoritative server timestamp, assigned at write time; it is never
// taken from the client.
type StoredBudget struct {
	UserID      string
	Data        budget.Record
	LastUpdated int64
}

// Store is the narrow capability interface the sync endpoint consumes.
// Exactly one record exists per user key.
type Store interface {
	// FetchByKey returns the stored record for userID, or ErrNotFound.
	FetchByKey(ctx context.Context, userID string) (*StoredBudget, error)

	// UpsertWithTimestamp stores data under userID with the given
	// server-assigned timestamp, replacing any previous record.
	UpsertWithTimestamp(ctx context.Context, userID string, data budget.Record, serverTimestamp int64) error

	// Close releases underlying resources.
	Close() error
}
