package profile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-wern/portfolio-assistant/pkg/logger"
)

func testOwner() Owner {
	return Owner{
		Name:     "Daniel Wern",
		Email:    "daniel@danielwern.dev",
		Birthday: time.Date(1994, time.March, 12, 0, 0, 0, 0, time.UTC),
		Location: "Berlin, Germany",
		Title:    "Software Engineer",
	}
}

func TestAge(t *testing.T) {
	owner := testOwner()

	beforeBirthday := time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC)
	onBirthday := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 31, owner.Age(beforeBirthday))
	assert.Equal(t, 32, owner.Age(onBirthday))
	assert.Equal(t, 32, owner.Age(after))
}

func TestShortCircuit(t *testing.T) {
	a := NewAssembler(testOwner(), nil)
	now := time.Date(2026, time.August, 23, 0, 0, 0, 0, time.UTC)

	answer, ok := a.ShortCircuit("how old is he?", now)
	require.True(t, ok)
	assert.Equal(t, "Daniel is 32 years old.", answer)

	answer, ok = a.ShortCircuit("where are you based?", now)
	require.True(t, ok)
	assert.Contains(t, answer, "Berlin")

	_, ok = a.ShortCircuit("what projects have you built?", now)
	assert.False(t, ok)
}

func TestContextBlockIsSelfContained(t *testing.T) {
	a := NewAssembler(testOwner(), nil)

	block := a.ContextBlock(context.Background())
	assert.Contains(t, block, "Daniel Wern")
	assert.Contains(t, block, "Projects:")
	assert.Contains(t, block, "Portfolio Assistant")
}

type stubFetcher struct {
	snap  Snapshot
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context) (Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func TestSnapshotCacheServesWithinTTL(t *testing.T) {
	fetcher := &stubFetcher{snap: Snapshot{Name: "Daniel Wern", Followers: 420}}
	cache := NewSnapshotCache(fetcher, time.Minute, testLog(t))

	for i := 0; i < 3; i++ {
		snap, ok := cache.Get(context.Background())
		require.True(t, ok)
		assert.Equal(t, 420, snap.Followers)
	}
	assert.Equal(t, 1, fetcher.calls)
}

func TestSnapshotCacheFallsBackToStale(t *testing.T) {
	fetcher := &stubFetcher{snap: Snapshot{Name: "Daniel Wern"}}
	cache := NewSnapshotCache(fetcher, time.Nanosecond, testLog(t))

	_, ok := cache.Get(context.Background())
	require.True(t, ok)

	fetcher.err = errors.New("profile source down")
	time.Sleep(2 * time.Nanosecond)

	snap, ok := cache.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "Daniel Wern", snap.Name)
}

func TestSnapshotRenderDeduplicates(t *testing.T) {
	snap := Snapshot{
		Name:         "Daniel Wern",
		Technologies: []string{"Go", "go", "TypeScript", "Go"},
		RecentPosts:  []string{"Shipped the assistant", "Shipped the assistant"},
	}

	rendered := snap.Render()
	assert.Equal(t, 1, strings.Count(rendered, "TypeScript"))
	assert.Equal(t, 1, strings.Count(rendered, "Shipped the assistant"))
}
