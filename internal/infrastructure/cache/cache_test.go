package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CRMDashboard/internal/domain"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisSnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewRedisSnapshotCacheFromClient(client, ttl), mr
}

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Leads:    []domain.Lead{{ID: domain.Num(1), Name: "Acme", Status: "new"}},
		Projects: []domain.Project{{ID: domain.NumText("10"), Progress: domain.NullNumber(), ProgressPercent: domain.Num(40)}},
		CallLogs: []domain.CallLogView{{
			ID:      domain.Num(5),
			Name:    "Acme",
			Outcome: "no answer",
			Raw:     domain.CallLog{ID: domain.Num(5), Outcome: "no_answer", DurationSeconds: domain.Num(30)},
		}},
		Failed:    []string{"tracking"},
		FetchedAt: time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestRedisSnapshotCacheRoundTrip(t *testing.T) {
	cache, _ := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store(ctx, sampleSnapshot()))

	snap, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "Acme", snap.Leads[0].Name.String())
	assert.Equal(t, "new", snap.Leads[0].Status.String())
	assert.Equal(t, 10.0, snap.Projects[0].ID.Float())
	assert.False(t, snap.Projects[0].Progress.IsSet())
	assert.Equal(t, 40.0, snap.Projects[0].ProgressPercent.Float())
	assert.Equal(t, "no_answer", snap.CallLogs[0].Raw.Outcome.String())
	assert.True(t, snap.CallLogs[0].Raw.DurationSeconds.IsLiteral())
	assert.Equal(t, []string{"tracking"}, snap.Failed)
	assert.True(t, snap.FetchedAt.Equal(sampleSnapshot().FetchedAt))
}

func TestRedisSnapshotCacheExpires(t *testing.T) {
	cache, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, sampleSnapshot()))
	assert.Equal(t, time.Minute, mr.TTL(snapshotKey))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSnapshotCacheRejectsCorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t, time.Minute)

	require.NoError(t, mr.Set(snapshotKey, "{not json"))

	_, ok, err := cache.Load(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
}

func TestNewRedisSnapshotCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisSnapshotCache(context.Background(), "://nope", time.Minute)
	require.Error(t, err)
}

func TestMemorySnapshotCache(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	cache := NewMemorySnapshotCache(time.Minute)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store(ctx, sampleSnapshot()))
	snap, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, snap.Leads, 1)

	now = now.Add(2 * time.Minute)
	_, ok, err = cache.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
