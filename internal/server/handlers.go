package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Jayasuryanarayana/BudgetBox/internal/api"
	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/Jayasuryanarayana/BudgetBox/internal/server/storage"
)

// handleSync is POST /api/budget/sync: the push/merge operation.
//
// Merge policy is last-write-wins on strict timestamp comparison; equal
// timestamps are an idempotent no-op. The persisted timestamp after any
// write comes from the server clock, never from the client.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, api.SyncResponse{
			Success: false,
			Error:   "Method not allowed. Use POST.",
		})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, api.SyncResponse{
			Success: false,
			Error:   "Invalid request data",
			Details: []string{"failed to read request body"},
		})
		return
	}

	var req api.SyncRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, api.SyncResponse{
			Success: false,
			Error:   "Invalid request data",
			Details: []string{"request body must be valid JSON"},
		})
		return
	}

	// Presence first: an absent field must not slip through as a zero
	// value. Only a structurally complete request gets value validation.
	problems := api.MissingSyncFields(body)
	if len(problems) == 0 {
		if strings.TrimSpace(req.UserID) == "" {
			problems = append(problems, "userId must be a non-empty string")
		}
		problems = append(problems, budget.Validate(req.Budget)...)
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, api.SyncResponse{
			Success: false,
			Error:   "Invalid request data",
			Details: problems,
		})
		return
	}

	// Serialize compare-then-write per user key.
	lock := s.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.FetchByKey(r.Context(), req.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// First record for this user: store verbatim with a fresh
		// server-assigned timestamp.
		serverTimestamp := s.now()
		if err := s.store.UpsertWithTimestamp(r.Context(), req.UserID, req.Budget, serverTimestamp); err != nil {
			s.storageFailure(w, "sync create", err)
			return
		}
		writeJSON(w, http.StatusCreated, api.SyncResponse{
			Success:   true,
			Message:   "Data created and synced successfully",
			Timestamp: serverTimestamp,
		})
		return

	case err != nil:
		s.storageFailure(w, "sync fetch", err)
		return
	}

	switch {
	case existing.LastUpdated > req.Budget.LastUpdated:
		// Server wins: no write; hand back the authoritative copy.
		serverData := existing.Data
		serverData.IsSynced = true
		writeJSON(w, http.StatusOK, api.SyncResponse{
			Success:    false,
			Message:    "Server has newer data",
			ServerData: &serverData,
			Timestamp:  existing.LastUpdated,
		})

	case req.Budget.LastUpdated > existing.LastUpdated:
		// Client wins: overwrite, stamping fresh server time.
		serverTimestamp := s.now()
		if err := s.store.UpsertWithTimestamp(r.Context(), req.UserID, req.Budget, serverTimestamp); err != nil {
			s.storageFailure(w, "sync update", err)
			return
		}
		writeJSON(w, http.StatusOK, api.SyncResponse{
			Success:   true,
			Message:   "Data synced successfully",
			Timestamp: serverTimestamp,
		})

	default:
		// Equal timestamps: idempotent no-op.
		writeJSON(w, http.StatusOK, api.SyncResponse{
			Success:   true,
			Message:   "Data is already up to date",
			Timestamp: existing.LastUpdated,
		})
	}
}

// handleLatest is GET /api/budget/latest: the fetch-latest operation.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, api.LatestResponse{
			Success: false,
			Error:   "Method not allowed. Use GET.",
		})
		return
	}

	userID := r.URL.Query().Get("userId")
	if strings.TrimSpace(userID) == "" {
		writeJSON(w, http.StatusBadRequest, api.LatestResponse{
			Success: false,
			Error:   "Missing userId parameter",
			Message: "userId is required in query parameters",
		})
		return
	}

	stored, err := s.store.FetchByKey(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, api.LatestResponse{
			Success: false,
			Error:   "No budget found",
			Message: "No budget data found for this user",
		})
		return
	}
	if err != nil {
		s.logger.Printf("ERROR latest fetch for %q: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, api.LatestResponse{
			Success: false,
			Error:   "Database error",
			Message: "An unexpected error occurred",
		})
		return
	}

	// The server copy is authoritative, so it is synced by definition.
	data := stored.Data
	data.IsSynced = true
	writeJSON(w, http.StatusOK, api.LatestResponse{
		Success:   true,
		Budget:    &data,
		Timestamp: stored.LastUpdated,
	})
}

// handleHealth is GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// storageFailure logs the detailed error and returns a generic 500 with
// a failure timestamp for client bookkeeping. Internal detail stays in
// the log, not the response.
func (s *Server) storageFailure(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("ERROR %s: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, api.SyncResponse{
		Success:   false,
		Error:     "Database error",
		Message:   "An unexpected error occurred",
		Timestamp: s.now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
