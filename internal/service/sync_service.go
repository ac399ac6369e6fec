package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

const (
	lastPayloadKey = "sync:payload:last"
	maxPayloadSize = 8 << 20
)

type cycleRenderer interface {
	RenderAssignments(ctx context.Context, cycleID string, list []models.AssignmentRecord) error
	RenderSchedule(ctx context.Context, cycleID string, list []models.CourseRecord) error
	RenderFailure(ctx context.Context, cycleID string, region models.Region) error
}

// SyncServiceParams groups constructor dependencies.
type SyncServiceParams struct {
	Endpoint string
	Client   *http.Client
	Interval time.Duration
	Renderer cycleRenderer
	Cache    *CacheService
	CacheTTL time.Duration
	Metrics  *MetricsService
	Logger   *zap.Logger
}

// SyncService runs fetch, validate and render cycles against the combined endpoint.
type SyncService struct {
	endpoint string
	client   *http.Client
	interval time.Duration
	renderer cycleRenderer
	cache    *CacheService
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
	maxBody  int64

	lastResult  atomic.Pointer[models.CycleResult]
	lastPayload atomic.Pointer[models.SyncPayload]
	lastSuccess atomic.Pointer[time.Time]
}

// NewSyncService constructs a SyncService.
func NewSyncService(params SyncServiceParams) *SyncService {
	client := params.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		endpoint: params.Endpoint,
		client:   client,
		interval: params.Interval,
		renderer: params.Renderer,
		cache:    params.Cache,
		cacheTTL: params.CacheTTL,
		metrics:  params.Metrics,
		logger:   logger,
		now:      time.Now,
		maxBody:  maxPayloadSize,
	}
}

// Fetch requests the combined document and validates it. Non-2xx responses fail with
// ErrUpstreamStatus without reading the body; bodies over the size limit fail with
// ErrPayloadTooLarge instead of being decoded truncated.
func (s *SyncService) Fetch(ctx context.Context) (*models.SyncPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build sync request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, http.StatusBadGateway, "sync endpoint unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErrors.UpstreamStatus(resp.StatusCode, s.endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamParse.Code, appErrors.ErrUpstreamParse.Status, "read sync body")
	}
	if int64(len(body)) > s.maxBody {
		return nil, appErrors.Wrap(fmt.Errorf("body larger than %d bytes", s.maxBody), appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status, appErrors.ErrPayloadTooLarge.Message)
	}
	return DecodeSyncPayload(body)
}

// RunCycle performs one sync cycle. Failures are logged and rendered as the fixed failure
// message in both regions; they are returned in the result, never panicked or propagated.
func (s *SyncService) RunCycle(ctx context.Context, cycleID string) models.CycleResult {
	result := models.CycleResult{ID: cycleID, StartedAt: s.now().UTC()}
	logger := s.logger.With(zap.String("cycle_id", cycleID))

	payload, err := s.Fetch(ctx)
	if err != nil {
		result.Err = err
		logger.Warn("sync cycle failed", zap.String("kind", appErrors.Code(err)), zap.String("endpoint", s.endpoint), zap.Error(err))
		for _, region := range models.Regions {
			if rerr := s.renderer.RenderFailure(ctx, cycleID, region); rerr != nil {
				logger.Error("render failure message", zap.String("region", string(region)), zap.Error(rerr))
			}
		}
	} else {
		result.Payload = payload
		s.renderPayload(ctx, logger, cycleID, payload)
	}

	result.FinishedAt = s.now().UTC()
	s.record(ctx, result)

	outcome := "ok"
	if !result.OK() {
		outcome = appErrors.Code(result.Err)
	} else {
		logger.Info("sync cycle completed",
			zap.Int("assignments", len(payload.Assignments)),
			zap.Int("schedule", len(payload.Schedule)),
			zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)))
	}
	s.metrics.ObserveCycle(outcome, result.FinishedAt.Sub(result.StartedAt), result.FinishedAt)
	return result
}

// renderPayload renders each list independently so one bad list cannot block the other.
func (s *SyncService) renderPayload(ctx context.Context, logger *zap.Logger, cycleID string, payload *models.SyncPayload) {
	if payload.AssignmentsErr != nil {
		logger.Warn("assignments list malformed", zap.Error(payload.AssignmentsErr))
		s.renderFailure(ctx, logger, cycleID, models.RegionAssignments)
	} else if err := s.renderer.RenderAssignments(ctx, cycleID, payload.Assignments); err != nil {
		logger.Error("render assignments", zap.Error(err))
		s.renderFailure(ctx, logger, cycleID, models.RegionAssignments)
	}

	if payload.ScheduleErr != nil {
		logger.Warn("schedule list malformed", zap.Error(payload.ScheduleErr))
		s.renderFailure(ctx, logger, cycleID, models.RegionSchedule)
	} else if err := s.renderer.RenderSchedule(ctx, cycleID, payload.Schedule); err != nil {
		logger.Error("render schedule", zap.Error(err))
		s.renderFailure(ctx, logger, cycleID, models.RegionSchedule)
	}
}

func (s *SyncService) renderFailure(ctx context.Context, logger *zap.Logger, cycleID string, region models.Region) {
	if err := s.renderer.RenderFailure(ctx, cycleID, region); err != nil {
		logger.Error("render failure message", zap.String("region", string(region)), zap.Error(err))
	}
}

func (s *SyncService) record(ctx context.Context, result models.CycleResult) {
	s.lastResult.Store(&result)
	if !result.OK() {
		return
	}
	finished := result.FinishedAt
	s.lastSuccess.Store(&finished)
	s.lastPayload.Store(result.Payload)
	_ = s.cache.Set(ctx, lastPayloadKey, result.Payload, s.cacheTTL)
}

// LastResult returns the most recent cycle result, if any cycle finished.
func (s *SyncService) LastResult() (models.CycleResult, bool) {
	r := s.lastResult.Load()
	if r == nil {
		return models.CycleResult{}, false
	}
	return *r, true
}

// LastPayload returns the payload of the most recent successful cycle, falling back to the
// shared cache when this process has not completed one yet.
func (s *SyncService) LastPayload(ctx context.Context) (*models.SyncPayload, error) {
	if p := s.lastPayload.Load(); p != nil {
		return p, nil
	}
	var cached models.SyncPayload
	hit, err := s.cache.Get(ctx, lastPayloadKey, &cached)
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		return nil, err
	}
	if !hit {
		return nil, appErrors.ErrNoSnapshot
	}
	cached.HasAssignments = cached.Assignments != nil
	cached.HasSchedule = cached.Schedule != nil
	return &cached, nil
}

// Status summarises the latest cycle for the status endpoint.
func (s *SyncService) Status() models.SyncStatus {
	status := models.SyncStatus{Endpoint: s.endpoint, Interval: s.interval.String()}
	if last, ok := s.LastResult(); ok {
		started, finished := last.StartedAt, last.FinishedAt
		status.CycleID = last.ID
		status.OK = last.OK()
		status.StartedAt = &started
		status.FinishedAt = &finished
		if last.Err != nil {
			status.ErrorCode = appErrors.Code(last.Err)
			status.Error = last.Err.Error()
		}
	}
	if p := s.lastPayload.Load(); p != nil {
		status.AssignmentsCount = len(p.Assignments)
		status.ScheduleCount = len(p.Schedule)
	}
	if t := s.lastSuccess.Load(); t != nil {
		success := *t
		status.LastSuccessAt = &success
	}
	return status
}
