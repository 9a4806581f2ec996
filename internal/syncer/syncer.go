// Package syncer orchestrates synchronization of the local budget record
// with the remote endpoint.
//
// The protocol is last-write-wins keyed on the record's LastUpdated
// timestamp. Preconditions are checked before any network call: an
// unauthenticated or offline sync fails fast, and an offline attempt
// additionally forces the local record unsynced so the status display
// never claims synced state without connectivity. After the network
// call returns, connectivity is re-checked; a drop mid-call is a failure
// regardless of what the response said.
package syncer

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/Jayasuryanarayana/BudgetBox/internal/api"
	"github.com/Jayasuryanarayana/BudgetBox/internal/auth"
	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
)

// RecordStore is the slice of the local store the orchestrator needs.
type RecordStore interface {
	Record() budget.Record
	IsSynced() bool
	SetSyncStatus(confirmed bool) error
	ReplaceWithServerRecord(rec budget.Record) error
}

// OnlineChecker reports live connectivity.
type OnlineChecker interface {
	IsOnline() bool
}

// Result categorizes a successful sync outcome.
type Result string

const (
	// ResultSynced means the server accepted the client record (created,
	// updated, or already up to date).
	ResultSynced Result = "synced"

	// ResultServerWins means the server held newer data; the local
	// record was replaced with the server copy. Not an error.
	ResultServerWins Result = "server-wins"
)

// Outcome describes a completed sync or pull.
type Outcome struct {
	Result    Result
	Message   string
	Timestamp int64
}

// Syncer drives the exchange protocol. At most one sync is meaningfully
// in flight; overlapping invocations are rejected with ErrSyncInFlight.
type Syncer struct {
	store    RecordStore
	online   OnlineChecker
	identity auth.Identity
	client   *Client
	logger   *log.Logger

	syncing atomic.Bool
}

// New creates a Syncer. If logger is nil, a default logger writing to
// stderr is used.
func New(store RecordStore, online OnlineChecker, identity auth.Identity, client *Client, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Syncer{
		store:    store,
		online:   online,
		identity: identity,
		client:   client,
		logger:   logger,
	}
}

// Syncing reports whether a sync is currently in flight.
func (s *Syncer) Syncing() bool {
	return s.syncing.Load()
}

// Sync pushes the local record to the server and applies the outcome.
//
// Failure always leaves the local record marked unsynced; it is never
// fatal, and the record stays usable offline indefinitely.
func (s *Syncer) Sync(ctx context.Context) (*Outcome, error) {
	if !s.syncing.CompareAndSwap(false, true) {
		return nil, ErrSyncInFlight
	}
	defer s.syncing.Store(false)

	if !s.identity.IsAuthenticated() {
		return nil, ErrAuthRequired
	}

	if !s.online.IsOnline() {
		// Never claim synced state while offline.
		if err := s.store.SetSyncStatus(false); err != nil {
			s.logger.Printf("Failed to mark record unsynced: %v", err)
		}
		return nil, ErrOffline
	}

	// Snapshot at invocation time; later edits mark the record unsynced
	// again and trigger their own future sync.
	snapshot := s.store.Record()
	snapshot.IsSynced = false
	userID := s.identity.UserID()

	s.logger.Printf("Pushing record for %s (lastUpdated=%d)", userID, snapshot.LastUpdated)

	resp, code, err := s.client.Push(ctx, api.SyncRequest{
		Budget: snapshot,
		UserID: userID,
	})

	// The response is only trustworthy if the connection held for the
	// whole exchange.
	if !s.online.IsOnline() {
		s.markUnsynced()
		return nil, ErrConnectionLost
	}

	if err != nil {
		s.markUnsynced()
		return nil, fmt.Errorf("sync failed: %w", err)
	}

	if code < 200 || code >= 300 {
		s.markUnsynced()
		return nil, &RemoteError{StatusCode: code, Message: remoteMessage(resp)}
	}

	if resp == nil {
		s.markUnsynced()
		return nil, fmt.Errorf("sync failed: empty response")
	}

	if !resp.Success && resp.ServerData != nil {
		// Server wins: adopt its copy wholesale.
		if err := s.store.ReplaceWithServerRecord(*resp.ServerData); err != nil {
			return nil, fmt.Errorf("failed to adopt server record: %w", err)
		}
		s.logger.Printf("Server had newer data (timestamp=%d), adopted", resp.Timestamp)
		return &Outcome{
			Result:    ResultServerWins,
			Message:   "Server had newer data. Your local data has been updated.",
			Timestamp: resp.Timestamp,
		}, nil
	}

	if resp.Success {
		// Confirm synced state only while connectivity is still present
		// at this instant.
		if !s.online.IsOnline() {
			s.markUnsynced()
			return nil, ErrConnectionLost
		}
		if err := s.store.SetSyncStatus(true); err != nil {
			return nil, fmt.Errorf("failed to mark record synced: %w", err)
		}
		s.logger.Printf("Sync confirmed (timestamp=%d): %s", resp.Timestamp, resp.Message)
		return &Outcome{
			Result:    ResultSynced,
			Message:   resp.Message,
			Timestamp: resp.Timestamp,
		}, nil
	}

	s.markUnsynced()
	return nil, &RemoteError{StatusCode: code, Message: remoteMessage(resp)}
}

// Pull fetches the server's latest record and adopts it locally.
// A 404 maps to ErrNotFound: absence, not failure.
func (s *Syncer) Pull(ctx context.Context) (*Outcome, error) {
	if !s.online.IsOnline() {
		return nil, ErrOffline
	}

	userID := s.identity.UserID()
	resp, code, err := s.client.FetchLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch latest failed: %w", err)
	}

	if code == 404 {
		return nil, ErrNotFound
	}
	if code < 200 || code >= 300 {
		msg := ""
		if resp != nil {
			if resp.Message != "" {
				msg = resp.Message
			} else {
				msg = resp.Error
			}
		}
		return nil, &RemoteError{StatusCode: code, Message: msg}
	}
	if resp == nil || resp.Budget == nil {
		return nil, fmt.Errorf("fetch latest failed: empty response")
	}

	if err := s.store.ReplaceWithServerRecord(*resp.Budget); err != nil {
		return nil, fmt.Errorf("failed to adopt server record: %w", err)
	}

	s.logger.Printf("Pulled server record for %s (timestamp=%d)", userID, resp.Timestamp)
	return &Outcome{
		Result:    ResultSynced,
		Message:   "Fetched latest budget from server",
		Timestamp: resp.Timestamp,
	}, nil
}

func (s *Syncer) markUnsynced() {
	if err := s.store.SetSyncStatus(false); err != nil {
		s.logger.Printf("Failed to mark record unsynced: %v", err)
	}
}

func remoteMessage(resp *api.SyncResponse) string {
	if resp == nil {
		return ""
	}
	if resp.Message != "" {
		return resp.Message
	}
	return resp.Error
}
