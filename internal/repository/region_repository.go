package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

// RegionRepository keeps the current fragment of every display region in memory.
// Writes replace the whole snapshot; the last writer wins.
type RegionRepository struct {
	mu      sync.RWMutex
	regions map[models.Region]models.RegionSnapshot
}

// NewRegionRepository constructs an empty repository.
func NewRegionRepository() *RegionRepository {
	return &RegionRepository{regions: make(map[models.Region]models.RegionSnapshot, len(models.Regions))}
}

// Replace overwrites the region snapshot.
func (r *RegionRepository) Replace(_ context.Context, snapshot models.RegionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions[snapshot.Region] = snapshot
	return nil
}

// Get returns the region snapshot or ErrNotFound when nothing was written yet.
func (r *RegionRepository) Get(_ context.Context, region models.Region) (models.RegionSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot, ok := r.regions[region]
	if !ok {
		return models.RegionSnapshot{}, appErrors.ErrNotFound
	}
	return snapshot, nil
}
