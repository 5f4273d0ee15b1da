package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/ledger"
	"github.com/noah-isme/backend-pos/internal/resilience"
	"github.com/noah-isme/backend-pos/internal/settings"
)

// Snapshot is the full local state pushed to and pulled from the sync
// endpoint. Sync is last-write-wins on the whole snapshot.
type Snapshot struct {
	Products   []catalog.Product `json:"products"`
	Orders     []ledger.Order    `json:"orders"`
	Categories []string          `json:"categories"`
	Store      settings.Profile  `json:"store"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

const storeKeyHeader = "X-Store-Key"

// Client talks to the remote sync endpoint.
type Client struct {
	Endpoint string
	StoreKey string
	HTTP     resilience.HTTPClient
}

// Push uploads the snapshot, replacing whatever the remote holds.
func (c *Client) Push(ctx context.Context, snap Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("remote: encode snapshot: %w", err)
	}
	req, err := http.NewRequest(http.MethodPut, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote: build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(storeKeyHeader, c.StoreKey)

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("remote: push snapshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("remote: push snapshot: unexpected status %s", resp.Status)
	}
	return nil
}

// Pull fetches the remote snapshot. A 404 means the remote has nothing yet
// and yields (nil, nil).
func (c *Client) Pull(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequest(http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build pull request: %w", err)
	}
	req.Header.Set(storeKeyHeader, c.StoreKey)

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("remote: pull snapshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: pull snapshot: unexpected status %s", resp.Status)
	}
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("remote: decode snapshot: %w", err)
	}
	return &snap, nil
}
