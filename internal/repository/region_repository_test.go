package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

func TestRegionRepositoryReplaceAndGet(t *testing.T) {
	repo := NewRegionRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, models.RegionSchedule)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, repo.Replace(ctx, models.RegionSnapshot{Region: models.RegionSchedule, HTML: "<p>one</p>", CycleID: "c1"}))
	require.NoError(t, repo.Replace(ctx, models.RegionSnapshot{Region: models.RegionSchedule, HTML: "<p>two</p>", CycleID: "c2", UpdatedAt: time.Now()}))

	snapshot, err := repo.Get(ctx, models.RegionSchedule)
	require.NoError(t, err)
	assert.Equal(t, "c2", snapshot.CycleID)
	assert.EqualValues(t, "<p>two</p>", snapshot.HTML)
}

func TestRegionRepositoryConcurrentWriters(t *testing.T) {
	repo := NewRegionRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Replace(ctx, models.RegionSnapshot{Region: models.RegionAssignments, CycleID: fmt.Sprint(i)})
			_, _ = repo.Get(ctx, models.RegionAssignments)
		}(i)
	}
	wg.Wait()

	snapshot, err := repo.Get(ctx, models.RegionAssignments)
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.CycleID)
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "pb:", nil)
	ctx := context.Background()

	var dest map[string]string
	assert.True(t, errors.Is(repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "k", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
}
