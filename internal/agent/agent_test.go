package agent

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/Jayasuryanarayana/BudgetBox/internal/connectivity"
	"github.com/Jayasuryanarayana/BudgetBox/internal/notify"
	"github.com/Jayasuryanarayana/BudgetBox/internal/status"
	"github.com/Jayasuryanarayana/BudgetBox/internal/syncer"
)

type fakeProber struct{ online atomic.Bool }

func (p *fakeProber) Probe(ctx context.Context) bool { return p.online.Load() }

type fakeStore struct {
	mu         sync.Mutex
	record     budget.Record
	synced     bool
	everSynced bool
}

func (s *fakeStore) Record() budget.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

func (s *fakeStore) IsSynced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

func (s *fakeStore) HasEverSynced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.everSynced
}

func (s *fakeStore) setSynced(v bool) {
	s.mu.Lock()
	s.synced = v
	s.mu.Unlock()
}

type fakeSyncer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSyncer) Sync(ctx context.Context) (*syncer.Outcome, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &syncer.Outcome{Result: syncer.ResultSynced, Message: "ok"}, nil
}

type fakeIdentity struct{ authed atomic.Bool }

func (f *fakeIdentity) UserID() string        { return "user-1" }
func (f *fakeIdentity) IsAuthenticated() bool { return f.authed.Load() }

// recordingNotifier captures posted banner messages.
type recordingNotifier struct {
	mu        sync.Mutex
	posted    []string
	dismissed []string
}

func (n *recordingNotifier) Post(message string, severity notify.Severity, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.posted = append(n.posted, message)
}

func (n *recordingNotifier) DismissByMessage(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dismissed = append(n.dismissed, message)
}

func (n *recordingNotifier) postedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.posted)
}

// recordingEvents captures agent event callbacks.
type recordingEvents struct {
	mu        sync.Mutex
	statuses  []status.Status
	completes []syncer.Outcome
	failures  []error
}

func (e *recordingEvents) OnStatusChange(st status.Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statuses = append(e.statuses, st)
}

func (e *recordingEvents) OnConnectivityChange(online bool) {}

func (e *recordingEvents) OnSyncComplete(outcome syncer.Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completes = append(e.completes, outcome)
}

func (e *recordingEvents) OnSyncFailed(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = append(e.failures, err)
}

func (e *recordingEvents) completeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.completes)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

type fixture struct {
	agent    *Agent
	prober   *fakeProber
	store    *fakeStore
	syncer   *fakeSyncer
	identity *fakeIdentity
	notifier *recordingNotifier
	events   *recordingEvents
}

func newFixture(t *testing.T, startOnline bool) *fixture {
	t.Helper()

	quiet := log.New(io.Discard, "", 0)

	prober := &fakeProber{}
	prober.online.Store(startOnline)

	monitor := connectivity.New(prober, &connectivity.Config{
		ProbeInterval: 10 * time.Millisecond,
		ProbeTimeout:  10 * time.Millisecond,
		Logger:        quiet,
	})

	store := &fakeStore{record: budget.DefaultRecord(100)}
	runner := &fakeSyncer{}
	identity := &fakeIdentity{}
	identity.authed.Store(true)
	notifier := &recordingNotifier{}
	events := &recordingEvents{}

	a := New(store, runner, monitor, identity, notify.NewOfflineBanner(notifier), events, &Config{
		SyncDebounce: 20 * time.Millisecond,
		Logger:       quiet,
	})
	a.Start()
	t.Cleanup(a.Stop)

	return &fixture{
		agent:    a,
		prober:   prober,
		store:    store,
		syncer:   runner,
		identity: identity,
		notifier: notifier,
		events:   events,
	}
}

func TestOfflineEdgePostsBanner(t *testing.T) {
	f := newFixture(t, true)

	// Drop the connection and wait for the monitor to notice.
	f.prober.online.Store(false)

	if !waitFor(t, 2*time.Second, func() bool { return f.notifier.postedCount() == 1 }) {
		t.Fatal("offline banner was not posted")
	}

	f.notifier.mu.Lock()
	msg := f.notifier.posted[0]
	f.notifier.mu.Unlock()
	if msg != notify.OfflineMessage {
		t.Errorf("posted %q, want offline banner", msg)
	}
}

func TestReconnectTriggersDebouncedSync(t *testing.T) {
	f := newFixture(t, false)
	f.store.setSynced(false)

	if !waitFor(t, 2*time.Second, func() bool { return f.notifier.postedCount() == 1 }) {
		t.Fatal("startup offline edge did not fire")
	}

	f.prober.online.Store(true)

	if !waitFor(t, 2*time.Second, func() bool { return f.syncer.calls.Load() == 1 }) {
		t.Fatal("reconnect did not trigger auto-sync")
	}
	if !waitFor(t, 2*time.Second, func() bool { return f.events.completeCount() == 1 }) {
		t.Fatal("sync completion was not published")
	}
}

func TestReconnectSkipsSyncWhenAlreadySynced(t *testing.T) {
	f := newFixture(t, false)
	f.store.setSynced(true)
	f.store.mu.Lock()
	f.store.everSynced = true
	f.store.mu.Unlock()

	if !waitFor(t, 2*time.Second, func() bool { return f.notifier.postedCount() == 1 }) {
		t.Fatal("startup offline edge did not fire")
	}

	f.prober.online.Store(true)

	// Give the debounce ample time to expire.
	time.Sleep(150 * time.Millisecond)
	if got := f.syncer.calls.Load(); got != 0 {
		t.Errorf("auto-sync ran %d times with nothing to sync", got)
	}
}

func TestReconnectSkipsSyncWhenNotLoggedIn(t *testing.T) {
	f := newFixture(t, false)
	f.store.setSynced(false)
	f.identity.authed.Store(false)

	if !waitFor(t, 2*time.Second, func() bool { return f.notifier.postedCount() == 1 }) {
		t.Fatal("startup offline edge did not fire")
	}

	f.prober.online.Store(true)

	time.Sleep(150 * time.Millisecond)
	if got := f.syncer.calls.Load(); got != 0 {
		t.Errorf("auto-sync ran %d times while logged out", got)
	}
}

func TestSessionChangeSchedulesSync(t *testing.T) {
	f := newFixture(t, true)
	f.store.setSynced(false)

	f.agent.OnSessionChange()

	if !waitFor(t, 2*time.Second, func() bool { return f.syncer.calls.Load() == 1 }) {
		t.Fatal("session change did not trigger sync")
	}
}

func TestStatusClassification(t *testing.T) {
	f := newFixture(t, true)

	f.store.setSynced(true)
	f.store.mu.Lock()
	f.store.everSynced = true
	f.store.mu.Unlock()

	if got := f.agent.Status(); got != status.Synced {
		t.Errorf("status = %v, want synced", got)
	}

	f.prober.online.Store(false)
	if got := f.agent.Status(); got != status.Offline {
		t.Errorf("status = %v, want offline", got)
	}
}
