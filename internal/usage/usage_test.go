package usage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory CounterStore for tests
type memoryStore struct {
	counts map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counts: map[string]int64{}}
}

func (m *memoryStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (int64, error) {
	return m.counts[key], nil
}

func TestLimiterAllowsUnderQuota(t *testing.T) {
	l := NewLimiter(newMemoryStore())
	ctx := context.Background()

	status, err := l.Check(ctx, "user:abc", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Used)
	assert.Equal(t, 3, status.Remaining)
	assert.False(t, status.Exhausted)
}

func TestLimiterBlocksAtQuota(t *testing.T) {
	l := NewLimiter(newMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := l.Check(ctx, "anon:xyz", 3)
		require.NoError(t, err, "call %d should be allowed", i)
		require.NoError(t, l.Record(ctx, "anon:xyz"))
	}

	status, err := l.Check(ctx, "anon:xyz", 3)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.True(t, status.Exhausted)
	assert.Equal(t, 3, status.Used)
	assert.Equal(t, 0, status.Remaining)
}

func TestLimiterIsolatesCallers(t *testing.T) {
	l := NewLimiter(newMemoryStore())
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, "user:a"))
	require.NoError(t, l.Record(ctx, "user:a"))

	status, err := l.Check(ctx, "user:b", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Used)
}

func TestLimiterResetsOnNewMonth(t *testing.T) {
	store := newMemoryStore()
	l := NewLimiter(store)
	ctx := context.Background()

	current := time.Date(2026, time.January, 31, 23, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	require.NoError(t, l.Record(ctx, "user:a"))
	require.NoError(t, l.Record(ctx, "user:a"))
	require.NoError(t, l.Record(ctx, "user:a"))

	_, err := l.Check(ctx, "user:a", 3)
	assert.ErrorIs(t, err, ErrLimitReached)

	// Month rolls over, counter starts fresh
	current = time.Date(2026, time.February, 1, 0, 30, 0, 0, time.UTC)

	status, err := l.Check(ctx, "user:a", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Used)
}
