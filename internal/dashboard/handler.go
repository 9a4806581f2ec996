// Package dashboard event handling and message formatting.
package dashboard

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/Jayasuryanarayana/BudgetBox/internal/status"
	"github.com/Jayasuryanarayana/BudgetBox/internal/syncer"
)

// Handler bridges agent events to dashboard broadcasts. It tracks the
// last published status so repeated classifications do not produce
// duplicate status_change messages. Event callbacks arrive from several
// goroutines (monitor loop, auto-sync, session watcher), so the dedup
// state is mutex-guarded.
type Handler struct {
	server *Server
	logger *log.Logger

	mu          sync.Mutex
	lastStatus  status.Status
	statusKnown bool
}

// NewHandler creates an event handler connected to a dashboard server
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		server: server,
		logger: logger,
	}
}

// OnStatusChange publishes the current sync status label. Calls with an
// unchanged status are dropped.
func (h *Handler) OnStatusChange(st status.Status) {
	h.mu.Lock()
	if h.statusKnown && st == h.lastStatus {
		h.mu.Unlock()
		return
	}
	h.lastStatus = st
	h.statusKnown = true
	h.mu.Unlock()

	h.logger.Printf("Status changed: %s", st)
	h.publish(MessageTypeStatusChange, StatusChangeData{
		Status:      st.String(),
		Description: st.Description(),
	})
}

// OnConnectivityChange publishes an online/offline edge
func (h *Handler) OnConnectivityChange(online bool) {
	h.logger.Printf("Connectivity changed: online=%v", online)
	h.publish(MessageTypeConnectivity, ConnectivityData{Online: online})
}

// OnSyncComplete publishes a successful sync outcome
func (h *Handler) OnSyncComplete(outcome syncer.Outcome) {
	h.logger.Printf("Sync complete: %s", outcome.Result)

	result := "synced"
	if outcome.Result == syncer.ResultServerWins {
		result = "server_wins"
	}
	h.publish(MessageTypeSyncComplete, SyncCompleteData{
		Result:    result,
		Message:   outcome.Message,
		Timestamp: outcome.Timestamp,
	})
}

// OnSyncFailed publishes a failed sync attempt
func (h *Handler) OnSyncFailed(err error) {
	h.logger.Printf("Sync failed: %v", err)
	h.publish(MessageTypeSyncFailed, SyncFailedData{
		Reason:    err.Error(),
		Retryable: syncer.IsRetryable(err),
	})
}

// PublishSnapshot broadcasts the current budget summary alongside the
// given status label.
func (h *Handler) PublishSnapshot(rec budget.Record, st status.Status) {
	h.publish(MessageTypeSnapshot, SnapshotData{
		Income:        rec.Income,
		TotalExpenses: rec.TotalExpenses(),
		Remaining:     rec.Remaining(),
		Status:        st.String(),
		LastUpdated:   rec.LastUpdated,
	})
}

func (h *Handler) publish(typ MessageType, data interface{}) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}
	h.server.Broadcast(Message{
		Type:      typ,
		Timestamp: time.Now(),
		Data:      dataJSON,
	})
}
