package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/internal/repository"
)

type brokenRegions struct{}

func (brokenRegions) Get(context.Context, models.Region) (models.RegionSnapshot, error) {
	return models.RegionSnapshot{}, errors.New("store offline")
}

func TestPageServiceRendersRegions(t *testing.T) {
	store := repository.NewRegionRepository()
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, models.RegionSnapshot{Region: models.RegionSchedule, HTML: SchedulePlaceholder}))

	pages, err := NewPageService(store, PageConfig{
		Title:             "Peach Brawl",
		RefreshInterval:   2 * time.Minute,
		ServiceWorkerPath: "/peach-brawl/sw.js",
		CacheName:         "peach-brawl-v1",
	}, nil)
	require.NoError(t, err)

	html, err := pages.Page(ctx)
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "<title>Peach Brawl</title>")
	assert.Contains(t, out, `hx-trigger="every 120s"`)
	assert.Contains(t, out, "No courses found")
	assert.Contains(t, out, "Loading...")
	assert.Contains(t, out, "sw.js")
}

func TestPageServiceFragment(t *testing.T) {
	store := repository.NewRegionRepository()
	pages, err := NewPageService(store, PageConfig{CacheName: "v1"}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	html, err := pages.Fragment(ctx, models.RegionAssignments)
	require.NoError(t, err)
	assert.Equal(t, LoadingFragment, html)

	require.NoError(t, store.Replace(ctx, models.RegionSnapshot{Region: models.RegionAssignments, HTML: AssignmentsFailure}))
	html, err = pages.Fragment(ctx, models.RegionAssignments)
	require.NoError(t, err)
	assert.Equal(t, AssignmentsFailure, html)
}

func TestPageServiceRegionError(t *testing.T) {
	pages, err := NewPageService(brokenRegions{}, PageConfig{CacheName: "v1"}, nil)
	require.NoError(t, err)

	_, err = pages.Page(context.Background())
	assert.Error(t, err)
}

func TestPageServiceWorkerScript(t *testing.T) {
	pages, err := NewPageService(repository.NewRegionRepository(), PageConfig{CacheName: "peach-brawl-v1"}, nil)
	require.NoError(t, err)

	script := string(pages.ServiceWorker())
	assert.True(t, strings.HasPrefix(script, `const CACHE_NAME = "peach-brawl-v1";`))
	assert.Contains(t, script, `"/static/app.css"`)
	assert.Equal(t, "/", pages.ServiceWorkerScope())
}
