package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxSnapshotSize caps the snapshot payload.
const maxSnapshotSize = 1 << 20 // 1MB

// HTTPFetcher retrieves the social snapshot from a JSON endpoint,
// typically a scraper sidecar or a static export.
type HTTPFetcher struct {
	url  string
	http *http.Client
}

// NewHTTPFetcher creates a fetcher for the given endpoint.
func NewHTTPFetcher(url string) *HTTPFetcher {
	return &HTTPFetcher{
		url: url,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch retrieves and decodes the snapshot.
func (f *HTTPFetcher) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("snapshot endpoint returned status %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSnapshotSize)).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
