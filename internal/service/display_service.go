package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

// Display is the rendering port. Implementations replace a region's content wholesale.
type Display interface {
	Replace(ctx context.Context, snapshot models.RegionSnapshot) error
}

type regionStore interface {
	Replace(ctx context.Context, snapshot models.RegionSnapshot) error
	Get(ctx context.Context, region models.Region) (models.RegionSnapshot, error)
}

// DisplayService keeps region snapshots locally and mirrors them to the shared cache so every
// dashboard replica serves the newest fragment.
type DisplayService struct {
	store  regionStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewDisplayService constructs a display service. cache may be nil.
func NewDisplayService(store regionStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DisplayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisplayService{store: store, cache: cache, ttl: ttl, logger: logger}
}

func regionKey(region models.Region) string {
	return "region:" + string(region)
}

// Replace implements Display.
func (s *DisplayService) Replace(ctx context.Context, snapshot models.RegionSnapshot) error {
	if err := s.store.Replace(ctx, snapshot); err != nil {
		return err
	}
	// a failed mirror write still leaves this replica serving the new fragment
	_ = s.cache.Set(ctx, regionKey(snapshot.Region), snapshot, s.ttl)
	return nil
}

// Get returns the newest known snapshot of region, preferring whichever of the local store and
// the shared cache was written last.
func (s *DisplayService) Get(ctx context.Context, region models.Region) (models.RegionSnapshot, error) {
	local, localErr := s.store.Get(ctx, region)
	if localErr != nil && !errors.Is(localErr, appErrors.ErrNotFound) {
		return models.RegionSnapshot{}, localErr
	}

	var shared models.RegionSnapshot
	hit, err := s.cache.Get(ctx, regionKey(region), &shared)
	if err != nil {
		s.logger.Debug("region cache unavailable", zap.String("region", string(region)), zap.Error(err))
	}

	switch {
	case hit && (localErr != nil || shared.UpdatedAt.After(local.UpdatedAt)):
		return shared, nil
	case localErr == nil:
		return local, nil
	default:
		return models.RegionSnapshot{}, appErrors.Clone(appErrors.ErrNotFound, "region "+string(region)+" not rendered yet")
	}
}
