package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jayasuryanarayana/BudgetBox/internal/api"
)

// Client speaks the budget sync wire protocol over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the sync endpoint at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Push sends the local record for last-write-wins merging. The decoded
// body is returned for any status code that carried one; err is non-nil
// only for transport or decoding failures.
func (c *Client) Push(ctx context.Context, req api.SyncRequest) (*api.SyncResponse, int, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode sync request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/budget/sync", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build sync request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded api.SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		// Error bodies are best-effort; surface the status instead.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, resp.StatusCode, nil
		}
		return nil, resp.StatusCode, fmt.Errorf("malformed sync response: %w", err)
	}

	return &decoded, resp.StatusCode, nil
}

// FetchLatest retrieves the server's stored record for userID.
func (c *Client) FetchLatest(ctx context.Context, userID string) (*api.LatestResponse, int, error) {
	u := c.baseURL + "/api/budget/latest?userId=" + url.QueryEscape(userID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build latest request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("latest request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded api.LatestResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, resp.StatusCode, nil
		}
		return nil, resp.StatusCode, fmt.Errorf("malformed latest response: %w", err)
	}

	return &decoded, resp.StatusCode, nil
}
