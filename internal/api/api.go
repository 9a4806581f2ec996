// Package api defines the wire types exchanged between the budgetbox
// client and the remote sync endpoint. Field names are fixed: both sides
// of the protocol marshal these structs directly.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
)

// SyncRequest is the push/merge request body for POST /api/budget/sync.
// The budget carries the client's LastUpdated for conflict resolution;
// its IsSynced flag is always sent as false and ignored by the server.
type SyncRequest struct {
	Budget budget.Record `json:"budget"`
	UserID string        `json:"userId"`
}

// SyncResponse is the push/merge response.
//
// Success=false with ServerData set means the server held newer data and
// did not write; the client should adopt ServerData. Success=false with
// Error set is a real failure.
type SyncResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	Timestamp  int64          `json:"timestamp,omitempty"`
	ServerData *budget.Record `json:"serverData,omitempty"`
	Error      string         `json:"error,omitempty"`
	Details    []string       `json:"details,omitempty"`
}

// MissingSyncFields reports the required fields absent from a raw sync
// request body, one problem per missing field. Decoding into value
// types would silently default an absent number to zero; every field of
// the request is required, so absence must be rejected, not defaulted.
func MissingSyncFields(body []byte) []string {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return []string{"request body must be a JSON object"}
	}

	var problems []string
	if _, ok := top["userId"]; !ok {
		problems = append(problems, "userId is required")
	}

	rawBudget, ok := top["budget"]
	if !ok {
		return append(problems, "budget is required")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rawBudget, &fields); err != nil {
		return append(problems, "budget must be a JSON object")
	}
	for _, field := range []string{"id", "income", "expenses", "lastUpdated"} {
		if _, ok := fields[field]; !ok {
			problems = append(problems, "budget."+field+" is required")
		}
	}

	rawExpenses, ok := fields["expenses"]
	if !ok {
		return problems
	}
	var expenses map[string]json.RawMessage
	if err := json.Unmarshal(rawExpenses, &expenses); err != nil {
		return append(problems, "budget.expenses must be a JSON object")
	}
	for _, c := range budget.Categories() {
		if _, ok := expenses[string(c)]; !ok {
			problems = append(problems, fmt.Sprintf("budget.expenses.%s is required", c))
		}
	}
	return problems
}

// LatestResponse is the fetch-latest response for GET /api/budget/latest.
// A returned budget always reports IsSynced=true: it is by definition the
// server's authoritative copy.
type LatestResponse struct {
	Success   bool           `json:"success"`
	Budget    *budget.Record `json:"budget,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Error     string         `json:"error,omitempty"`
	Message   string         `json:"message,omitempty"`
}
