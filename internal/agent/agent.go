// Package agent runs the client-side daemon: it watches connectivity,
// posts the offline banner, auto-syncs when the connection comes back,
// and feeds the dashboard.
//
// A reconnect does not sync immediately. The agent waits a short settle
// time first, then re-checks that the link is still up and that there is
// actually unsynced local data, so a flapping connection does not spray
// half-finished sync attempts at the server.
package agent

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Jayasuryanarayana/BudgetBox/internal/auth"
	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/Jayasuryanarayana/BudgetBox/internal/connectivity"
	"github.com/Jayasuryanarayana/BudgetBox/internal/notify"
	"github.com/Jayasuryanarayana/BudgetBox/internal/status"
	"github.com/Jayasuryanarayana/BudgetBox/internal/syncer"
)

// StateStore is the slice of the local store the agent reads.
type StateStore interface {
	Record() budget.Record
	IsSynced() bool
	HasEverSynced() bool
}

// SyncRunner triggers a sync attempt.
type SyncRunner interface {
	Sync(ctx context.Context) (*syncer.Outcome, error)
}

// Events receives agent activity, typically a dashboard handler. All
// methods may be called from background goroutines.
type Events interface {
	OnStatusChange(st status.Status)
	OnConnectivityChange(online bool)
	OnSyncComplete(outcome syncer.Outcome)
	OnSyncFailed(err error)
}

// Config holds agent configuration.
type Config struct {
	// SyncDebounce is the settle time between a connectivity-restored
	// event and the auto-sync it triggers.
	SyncDebounce time.Duration

	// Logger for agent activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncDebounce: time.Second,
		Logger:       log.New(os.Stderr, "[agent] ", log.LstdFlags),
	}
}

// Agent wires the connectivity monitor, offline banner, syncer, and
// dashboard together.
type Agent struct {
	store    StateStore
	syncer   SyncRunner
	monitor  *connectivity.Monitor
	identity auth.Identity
	banner   *notify.OfflineBanner
	events   Events
	logger   *log.Logger
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending bool
}

// New creates an Agent. events may be nil.
func New(store StateStore, runner SyncRunner, monitor *connectivity.Monitor,
	identity auth.Identity, banner *notify.OfflineBanner, events Events, config *Config) *Agent {

	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[agent] ", log.LstdFlags)
	}
	if config.SyncDebounce <= 0 {
		config.SyncDebounce = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Agent{
		store:    store,
		syncer:   runner,
		monitor:  monitor,
		identity: identity,
		banner:   banner,
		events:   events,
		logger:   config.Logger,
		debounce: config.SyncDebounce,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the connectivity callbacks and starts the monitor.
func (a *Agent) Start() {
	a.monitor.OnOffline(a.handleOffline)
	a.monitor.OnOnline(a.handleOnline)
	a.monitor.Start()
	a.logger.Println("Agent started")
}

// Stop shuts the agent down and waits for in-flight work.
func (a *Agent) Stop() {
	a.cancel()
	a.monitor.Stop()
	a.wg.Wait()
	a.logger.Println("Agent stopped")
}

// Status classifies the current sync status from the live connectivity
// signal and the persisted flags.
func (a *Agent) Status() status.Status {
	return status.Classify(a.monitor.IsOnline(), a.store.IsSynced(), a.store.HasEverSynced())
}

// OnSessionChange is wired to the session file watcher. A fresh login
// with unsynced local data schedules a sync.
func (a *Agent) OnSessionChange() {
	if a.identity.IsAuthenticated() && !a.store.IsSynced() {
		a.logger.Println("Session changed, scheduling sync")
		a.scheduleSync()
	}
	a.publishStatus()
}

func (a *Agent) handleOffline() {
	a.banner.HandleOffline()
	if a.events != nil {
		a.events.OnConnectivityChange(false)
	}
	a.publishStatus()
}

func (a *Agent) handleOnline() {
	a.banner.HandleOnline()
	if a.events != nil {
		a.events.OnConnectivityChange(true)
	}
	a.scheduleSync()
	a.publishStatus()
}

// scheduleSync arms the debounced auto-sync. At most one is pending at
// a time; a second edge while armed is absorbed.
func (a *Agent) scheduleSync() {
	a.mu.Lock()
	if a.pending {
		a.mu.Unlock()
		return
	}
	a.pending = true
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		timer := time.NewTimer(a.debounce)
		defer timer.Stop()

		select {
		case <-a.ctx.Done():
			a.clearPending()
			return
		case <-timer.C:
		}
		a.clearPending()

		a.autoSync()
	}()
}

func (a *Agent) clearPending() {
	a.mu.Lock()
	a.pending = false
	a.mu.Unlock()
}

// autoSync re-validates every precondition after the settle time. The
// edge that armed the timer is stale information by now.
func (a *Agent) autoSync() {
	if !a.identity.IsAuthenticated() {
		a.logger.Println("Auto-sync skipped: not logged in")
		return
	}
	if a.store.IsSynced() {
		a.logger.Println("Auto-sync skipped: nothing to sync")
		return
	}
	if !a.monitor.IsOnline() {
		a.logger.Println("Auto-sync skipped: connection dropped again")
		return
	}

	outcome, err := a.syncer.Sync(a.ctx)
	switch {
	case errors.Is(err, syncer.ErrSyncInFlight):
		// A manual sync beat us to it; fine.
	case err != nil:
		a.logger.Printf("Auto-sync failed: %v", err)
		if a.events != nil {
			a.events.OnSyncFailed(err)
		}
	default:
		a.logger.Printf("Auto-sync complete: %s", outcome.Message)
		if a.events != nil {
			a.events.OnSyncComplete(*outcome)
		}
	}
	a.publishStatus()
}

func (a *Agent) publishStatus() {
	if a.events == nil {
		return
	}
	a.events.OnStatusChange(a.Status())
}
