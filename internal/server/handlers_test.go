package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/Jayasuryanarayana/BudgetBox/internal/api"
	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/Jayasuryanarayana/BudgetBox/internal/server/storage"
)

// newTestServer builds a server over an in-memory store with a
// deterministic, strictly increasing clock.
func newTestServer(t *testing.T) (*Server, *storage.Memory) {
	t.Helper()

	store := storage.NewMemory()
	clock := int64(1700000000000)
	srv := New(store, &Config{
		Addr:   ":0",
		Logger: log.New(os.Stderr, "[test] ", 0),
		Now:    func() int64 { clock += 1000; return clock },
	})
	return srv, store
}

func pushBudget(t *testing.T, srv *Server, userID string, rec budget.Record) (*api.SyncResponse, int) {
	t.Helper()

	body, err := json.Marshal(api.SyncRequest{Budget: rec, UserID: userID})
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/budget/sync", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleSync(w, req)

	var resp api.SyncResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return &resp, w.Code
}

func fetchLatest(t *testing.T, srv *Server, userID string) (*api.LatestResponse, int) {
	t.Helper()

	target := "/api/budget/latest"
	if userID != "" {
		target += "?userId=" + userID
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	srv.handleLatest(w, req)

	var resp api.LatestResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return &resp, w.Code
}

func testRecord(lastUpdated int64) budget.Record {
	rec := budget.DefaultRecord(lastUpdated)
	rec.Income = 3000
	rec.Expenses.Food = 500
	return rec
}

func TestSyncCreatesNewRecord(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, code := pushBudget(t, srv, "ana@example.com", testRecord(100))
	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", code)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if resp.Timestamp <= 0 {
		t.Error("expected a server-assigned timestamp")
	}
}

func TestSyncIdempotentWhenTimestampsEqual(t *testing.T) {
	srv, _ := newTestServer(t)

	first, code := pushBudget(t, srv, "u", testRecord(100))
	if code != http.StatusCreated {
		t.Fatalf("first push status = %d, want 201", code)
	}

	// Same record, now stamped with the server's own timestamp: no-op.
	rec := testRecord(first.Timestamp)
	second, code := pushBudget(t, srv, "u", rec)
	if code != http.StatusOK {
		t.Fatalf("second push status = %d, want 200", code)
	}
	if !second.Success {
		t.Error("no-op must report success")
	}
	if second.Timestamp != first.Timestamp {
		t.Errorf("no-op timestamp = %d, want unchanged %d", second.Timestamp, first.Timestamp)
	}

	// Pushing again is stable.
	third, _ := pushBudget(t, srv, "u", rec)
	if third.Timestamp != first.Timestamp {
		t.Error("repeated no-op must return the same timestamp")
	}
}

func TestSyncServerWins(t *testing.T) {
	srv, _ := newTestServer(t)

	created, _ := pushBudget(t, srv, "u", testRecord(100))

	// A client with a stale timestamp loses; the stored record must be
	// returned and left untouched.
	stale := budget.DefaultRecord(created.Timestamp - 500)
	stale.Income = 1

	resp, code := pushBudget(t, srv, "u", stale)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Success {
		t.Error("server-wins must report success=false")
	}
	if resp.ServerData == nil {
		t.Fatal("server-wins must include the server record")
	}
	if resp.ServerData.Income != 3000 {
		t.Errorf("serverData.income = %v, want stored 3000", resp.ServerData.Income)
	}
	if !resp.ServerData.IsSynced {
		t.Error("returned server record must report isSynced=true")
	}
	if resp.Timestamp != created.Timestamp {
		t.Errorf("timestamp = %d, want stored %d", resp.Timestamp, created.Timestamp)
	}

	// Stored record unchanged.
	latest, _ := fetchLatest(t, srv, "u")
	if latest.Budget.Income != 3000 {
		t.Error("server record must not change on a losing push")
	}
}

func TestSyncClientWinsStampsServerClock(t *testing.T) {
	srv, _ := newTestServer(t)

	created, _ := pushBudget(t, srv, "u", testRecord(100))

	newer := testRecord(created.Timestamp + 5000)
	newer.Income = 4500

	resp, code := pushBudget(t, srv, "u", newer)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !resp.Success {
		t.Error("client-wins must report success")
	}
	// The persisted timestamp is the server's clock, not the client's
	// self-reported lastUpdated.
	if resp.Timestamp == newer.LastUpdated {
		t.Error("server must stamp its own clock, not persist the client timestamp")
	}
	if resp.Timestamp <= created.Timestamp {
		t.Error("new server timestamp must advance")
	}

	latest, _ := fetchLatest(t, srv, "u")
	if latest.Budget.Income != 4500 {
		t.Error("winning client data was not stored")
	}
	if latest.Timestamp != resp.Timestamp {
		t.Error("stored timestamp must match the sync response")
	}
}

func TestSyncTwoPushesCreateThenUpdate(t *testing.T) {
	srv, _ := newTestServer(t)

	first, code := pushBudget(t, srv, "new-user", testRecord(100))
	if code != http.StatusCreated {
		t.Fatalf("first push status = %d, want 201", code)
	}

	second := testRecord(first.Timestamp + 100)
	second.Expenses.Transport = 75
	resp, code := pushBudget(t, srv, "new-user", second)
	if code != http.StatusOK {
		t.Fatalf("second push status = %d, want 200", code)
	}
	if !resp.Success {
		t.Error("expected success on update")
	}

	latest, _ := fetchLatest(t, srv, "new-user")
	if latest.Budget.Expenses.Transport != 75 {
		t.Error("final fetch must reflect the second payload")
	}
}

func TestSyncValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		userID string
		mutate func(*budget.Record)
	}{
		{"missing userId", "", func(r *budget.Record) {}},
		{"blank userId", "   ", func(r *budget.Record) {}},
		{"empty id", "u", func(r *budget.Record) { r.ID = "" }},
		{"negative income", "u", func(r *budget.Record) { r.Income = -1 }},
		{"negative expense", "u", func(r *budget.Record) { r.Expenses.Bills = -2 }},
		{"zero timestamp", "u", func(r *budget.Record) { r.LastUpdated = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecord(100)
			tt.mutate(&rec)
			resp, code := pushBudget(t, srv, tt.userID, rec)
			if code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", code)
			}
			if len(resp.Details) == 0 {
				t.Error("validation failure must include details")
			}
		})
	}
}

func TestSyncRejectsAbsentFields(t *testing.T) {
	srv, _ := newTestServer(t)

	// Absent fields must 400, not decode as zero values.
	tests := []struct {
		name string
		body string
	}{
		{"no userId key", `{"budget":{"id":"b","income":1,"expenses":{"bills":0,"food":0,"transport":0,"subscriptions":0,"miscellaneous":0},"lastUpdated":100}}`},
		{"no income", `{"userId":"u","budget":{"id":"b","expenses":{"bills":0,"food":0,"transport":0,"subscriptions":0,"miscellaneous":0},"lastUpdated":100}}`},
		{"no expenses object", `{"userId":"u","budget":{"id":"b","income":1,"lastUpdated":100}}`},
		{"missing category", `{"userId":"u","budget":{"id":"b","income":1,"expenses":{"bills":0,"transport":0,"subscriptions":0,"miscellaneous":0},"lastUpdated":100}}`},
		{"no lastUpdated", `{"userId":"u","budget":{"id":"b","income":1,"expenses":{"bills":0,"food":0,"transport":0,"subscriptions":0,"miscellaneous":0}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/budget/sync",
				bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			srv.handleSync(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp api.SyncResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Details) == 0 {
				t.Error("absence rejection must include details")
			}
		})
	}
}

func TestSyncRejectsMalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/budget/sync",
		bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.handleSync(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/budget/sync", nil)
	w := httptest.NewRecorder()
	srv.handleSync(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET sync status = %d, want 405", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/budget/latest", nil)
	w = httptest.NewRecorder()
	srv.handleLatest(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST latest status = %d, want 405", w.Code)
	}
}

func TestLatestRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	pushed := testRecord(100)
	created, _ := pushBudget(t, srv, "u", pushed)

	resp, code := fetchLatest(t, srv, "u")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	got := resp.Budget
	if got.ID != pushed.ID || got.Income != pushed.Income || got.Expenses != pushed.Expenses ||
		got.LastUpdated != pushed.LastUpdated {
		t.Errorf("round-trip mismatch: pushed %+v, got %+v", pushed, got)
	}
	if !got.IsSynced {
		t.Error("fetched server copy must report isSynced=true")
	}
	if resp.Timestamp != created.Timestamp {
		t.Errorf("timestamp = %d, want %d", resp.Timestamp, created.Timestamp)
	}
}

func TestLatestMissingUser(t *testing.T) {
	srv, _ := newTestServer(t)

	_, code := fetchLatest(t, srv, "nobody")
	if code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}

	_, code = fetchLatest(t, srv, "")
	if code != http.StatusBadRequest {
		t.Errorf("missing userId status = %d, want 400", code)
	}
}

// failingStore always errors, exercising the 500 paths.
type failingStore struct{}

func (failingStore) FetchByKey(ctx context.Context, userID string) (*storage.StoredBudget, error) {
	return nil, fmt.Errorf("disk on fire")
}

func (failingStore) UpsertWithTimestamp(ctx context.Context, userID string, data budget.Record, ts int64) error {
	return fmt.Errorf("disk on fire")
}

func (failingStore) Close() error { return nil }

func TestStorageFailureReturns500WithTimestamp(t *testing.T) {
	clock := int64(42)
	srv := New(failingStore{}, &Config{
		Logger: log.New(os.Stderr, "[test] ", 0),
		Now:    func() int64 { return clock },
	})

	resp, code := pushBudget(t, srv, "u", testRecord(100))
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}
	if resp.Timestamp != 42 {
		t.Error("storage failure must include a failure timestamp")
	}
	// Internal detail must not leak into the response.
	if resp.Message == "disk on fire" {
		t.Error("internal error detail leaked to the client")
	}

	_, code = fetchLatest(t, srv, "u")
	if code != http.StatusInternalServerError {
		t.Errorf("latest status = %d, want 500", code)
	}
}

func TestUserLockStableAndBounded(t *testing.T) {
	srv, _ := newTestServer(t)

	if srv.userLock("ana@example.com") != srv.userLock("ana@example.com") {
		t.Error("same user must always map to the same lock")
	}

	// The lock set must not grow with the user population.
	seen := make(map[*sync.Mutex]bool)
	for i := 0; i < 1000; i++ {
		seen[srv.userLock(fmt.Sprintf("user-%d@example.com", i))] = true
	}
	if len(seen) > len(srv.locks) {
		t.Errorf("%d distinct locks for 1000 users, want at most %d", len(seen), len(srv.locks))
	}
}

func TestServerStartStop(t *testing.T) {
	srv, _ := newTestServer(t)

	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if srv.Addr() == "" {
		t.Error("expected a bound address")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
