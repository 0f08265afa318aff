package profile

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d-wern/portfolio-assistant/pkg/logger"
)

// SnapshotTTL is how long a fetched social snapshot stays fresh.
const SnapshotTTL = 30 * time.Second

// Snapshot is a normalized social-profile capture.
type Snapshot struct {
	Name         string   `json:"name"`
	Headline     string   `json:"headline"`
	Summary      string   `json:"summary"`
	Location     string   `json:"location"`
	Followers    int      `json:"followers"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
	Collaborators []string `json:"collaborators"`
	RecentPosts  []string `json:"recent_posts"`
}

// Render formats the snapshot for the grounding block, deduplicating
// the list sections.
func (s Snapshot) Render() string {
	var b strings.Builder

	b.WriteString("Social profile snapshot:\n")
	if s.Name != "" {
		fmt.Fprintf(&b, "- Name: %s\n", s.Name)
	}
	if s.Headline != "" {
		fmt.Fprintf(&b, "- Headline: %s\n", s.Headline)
	}
	if s.Summary != "" {
		fmt.Fprintf(&b, "- Summary: %s\n", s.Summary)
	}
	if s.Location != "" {
		fmt.Fprintf(&b, "- Location: %s\n", s.Location)
	}
	if s.Followers > 0 {
		fmt.Fprintf(&b, "- Followers: %d\n", s.Followers)
	}
	writeList(&b, "Achievements", s.Achievements)
	writeList(&b, "Technologies", s.Technologies)
	writeList(&b, "Collaborators", s.Collaborators)
	writeList(&b, "Recent posts", s.RecentPosts)

	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	deduped := dedupeStrings(items)
	if len(deduped) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(deduped, "; "))
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[strings.ToLower(item)] {
			continue
		}
		seen[strings.ToLower(item)] = true
		out = append(out, item)
	}
	return out
}

// SnapshotFetcher retrieves a fresh social snapshot. External
// collaborator; failures are tolerated.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// SnapshotCache caches the latest snapshot with a short TTL so bursts
// of assistant traffic do not hammer the social source.
type SnapshotCache struct {
	fetcher SnapshotFetcher
	ttl     time.Duration
	log     *logger.Logger

	mu          sync.RWMutex
	snapshot    Snapshot
	hasSnapshot bool
	lastUpdated time.Time
}

// NewSnapshotCache creates a cache around fetcher.
func NewSnapshotCache(fetcher SnapshotFetcher, ttl time.Duration, log *logger.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = SnapshotTTL
	}
	return &SnapshotCache{fetcher: fetcher, ttl: ttl, log: log}
}

// Get returns the cached snapshot, refreshing on expiry. A failed
// refresh falls back to the stale snapshot when one exists.
func (c *SnapshotCache) Get(ctx context.Context) (Snapshot, bool) {
	c.mu.RLock()
	if c.hasSnapshot && time.Since(c.lastUpdated) <= c.ttl {
		snap := c.snapshot
		c.mu.RUnlock()
		return snap, true
	}
	c.mu.RUnlock()

	snap, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.log.Warn("social snapshot refresh failed", zap.Error(err))
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.snapshot, c.hasSnapshot
	}

	c.mu.Lock()
	c.snapshot = snap
	c.hasSnapshot = true
	c.lastUpdated = time.Now()
	c.mu.Unlock()

	return snap, true
}
