// Package pool manages the pool of candidate upstream models: discovery,
// scoring, caching, and round-robin rotation.
package pool

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/d-wern/portfolio-assistant/internal/openrouter"
	"github.com/d-wern/portfolio-assistant/pkg/logger"
	"github.com/d-wern/portfolio-assistant/pkg/metrics"
)

// Lister is the slice of the upstream client the manager needs.
type Lister interface {
	ListModels(ctx context.Context) ([]openrouter.ModelInfo, error)
}

// Rotator hands out the model pool in rotated order. The orchestrator
// and tool router depend on this rather than on the Manager directly so
// tests can substitute a fixed pool.
type Rotator interface {
	// Rotated returns the pool with the cursor's element first and
	// reports whether rotation is meaningful (pool size > 1).
	Rotated(ctx context.Context) (ids []string, rotated bool)
}

// Config holds pool construction parameters.
type Config struct {
	ConfigModels     []string
	FallbackModel    string
	PoolSize         int
	TTL              time.Duration
	DiscoveryEnabled bool
}

// Manager builds and caches the model pool. The cached pool is replaced
// wholesale on expiry, never mutated in place; the rotation cursor is an
// atomic counter shared across requests.
type Manager struct {
	cfg    Config
	lister Lister
	log    *logger.Logger

	mu      sync.Mutex
	cached  []string
	expires time.Time

	cursor atomic.Uint64
}

// NewManager creates a pool manager. lister may be nil when discovery
// is disabled.
func NewManager(cfg Config, lister Lister, log *logger.Logger) *Manager {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 8
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return &Manager{cfg: cfg, lister: lister, log: log}
}

// Rotated returns the current pool rotated so that the element at
// cursor mod length comes first, then advances the cursor. Never empty,
// never errors: discovery failures degrade to config models plus the
// hard fallback.
func (m *Manager) Rotated(ctx context.Context) ([]string, bool) {
	pool := m.pool(ctx)

	if len(pool) <= 1 {
		return pool, false
	}

	offset := int(m.cursor.Add(1)-1) % len(pool)
	rotated := make([]string, 0, len(pool))
	rotated = append(rotated, pool[offset:]...)
	rotated = append(rotated, pool[:offset]...)
	return rotated, true
}

// Snapshot returns the current pool in unrotated order.
func (m *Manager) Snapshot(ctx context.Context) []string {
	pool := m.pool(ctx)
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}

func (m *Manager) pool(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.cached) > 0 && time.Now().Before(m.expires) {
		return m.cached
	}

	m.cached = m.build(ctx)
	m.expires = time.Now().Add(m.cfg.TTL)
	metrics.PoolSize.Set(float64(len(m.cached)))
	return m.cached
}

func (m *Manager) build(ctx context.Context) []string {
	var discovered []string

	if m.cfg.DiscoveryEnabled && m.lister != nil {
		infos, err := m.lister.ListModels(ctx)
		if err != nil {
			// Discovery errors are swallowed: the pool degrades to
			// config models plus the hard fallback.
			m.log.Warn("model discovery failed", zap.Error(err))
			metrics.PoolRefreshesTotal.WithLabelValues("discovery_failed").Inc()
		} else {
			discovered = rankDiscovered(infos, m.cfg.PoolSize)
			metrics.PoolRefreshesTotal.WithLabelValues("discovered").Inc()
		}
	} else {
		metrics.PoolRefreshesTotal.WithLabelValues("discovery_disabled").Inc()
	}

	merged := dedupe(m.cfg.ConfigModels, discovered, []string{m.cfg.FallbackModel})
	m.log.Info("model pool refreshed",
		zap.Int("size", len(merged)),
		zap.Int("discovered", len(discovered)),
	)
	return merged
}

// dedupe merges the id lists preserving first occurrence.
func dedupe(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// rankDiscovered filters the listing to free, text-capable models,
// scores them, and returns the top ids.
func rankDiscovered(infos []openrouter.ModelInfo, limit int) []string {
	type scored struct {
		id    string
		score float64
	}

	var candidates []scored
	for _, info := range infos {
		if !info.IsFree() || !info.SupportsText() {
			continue
		}
		candidates = append(candidates, scored{id: info.ID, score: Score(info)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids
}

// familyBonuses rewards model families that have proven reliable for
// grounded Q&A on the free tier.
var familyBonuses = []struct {
	keyword string
	bonus   float64
}{
	{"llama-3.3", 30},
	{"llama-3.1", 22},
	{"llama", 12},
	{"gemini-2", 28},
	{"gemini", 14},
	{"qwen2.5", 20},
	{"qwen", 10},
	{"deepseek-r1", 24},
	{"deepseek", 16},
	{"mistral", 12},
	{"gemma-2", 12},
	{"instruct", 6},
}

// recencyEpoch anchors the creation-time bonus.
var recencyEpoch = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

// Score computes the weighted heuristic: keyword bonuses for known
// strong families, a logarithmic bonus for larger context windows, and
// a small recency bonus from the creation timestamp.
func Score(info openrouter.ModelInfo) float64 {
	id := strings.ToLower(info.ID)

	var score float64
	for _, fb := range familyBonuses {
		if strings.Contains(id, fb.keyword) {
			score += fb.bonus
		}
	}

	if info.ContextLength > 1 {
		score += math.Log2(float64(info.ContextLength))
	}

	if info.Created > recencyEpoch {
		// Roughly one point per 90 days since the epoch.
		score += float64(info.Created-recencyEpoch) / (90 * 24 * 3600)
	}

	return score
}
