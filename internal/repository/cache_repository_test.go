package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

func newRedisRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheRepository(client, "pb:", nil), server
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, server := newRedisRepo(t)
	ctx := context.Background()

	snapshot := models.RegionSnapshot{Region: models.RegionSchedule, HTML: "<p>x</p>", CycleID: "c1"}
	require.NoError(t, repo.Set(ctx, "region:schedule", snapshot, time.Minute))
	assert.True(t, server.Exists("pb:region:schedule"))
	assert.Equal(t, time.Minute, server.TTL("pb:region:schedule"))

	var got models.RegionSnapshot
	require.NoError(t, repo.Get(ctx, "region:schedule", &got))
	assert.Equal(t, snapshot.CycleID, got.CycleID)
	assert.Equal(t, snapshot.HTML, got.HTML)
}

func TestCacheRepositoryMissAndExpiry(t *testing.T) {
	repo, server := newRedisRepo(t)
	ctx := context.Background()

	var dest string
	assert.True(t, errors.Is(repo.Get(ctx, "missing", &dest), appErrors.ErrCacheMiss))

	require.NoError(t, repo.Set(ctx, "short", "v", time.Second))
	server.FastForward(2 * time.Second)
	assert.True(t, errors.Is(repo.Get(ctx, "short", &dest), appErrors.ErrCacheMiss))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, server := newRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "region:assignments", "a", time.Minute))
	require.NoError(t, repo.Set(ctx, "region:schedule", "b", time.Minute))
	require.NoError(t, repo.Set(ctx, "sync:payload:last", "c", time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "region:*"))

	assert.False(t, server.Exists("pb:region:assignments"))
	assert.False(t, server.Exists("pb:region:schedule"))
	assert.True(t, server.Exists("pb:sync:payload:last"))
}

func TestCacheRepositoryServerDown(t *testing.T) {
	repo, server := newRedisRepo(t)
	server.Close()

	var dest string
	err := repo.Get(context.Background(), "k", &dest)
	require.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
}
