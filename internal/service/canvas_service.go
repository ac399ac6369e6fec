package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peach-brawl/internal/dto"
	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

const (
	canvasPayloadKey = "canvas:all"
	canvasKeyPattern = "canvas:*"
)

type canvasSource interface {
	ListCourses(ctx context.Context) ([]dto.CanvasCourse, error)
	ListAssignments(ctx context.Context, courseID int64) ([]dto.CanvasAssignment, error)
}

// CanvasServiceConfig tunes aggregation.
type CanvasServiceConfig struct {
	Horizon  time.Duration
	CacheTTL time.Duration
}

// CanvasService builds the combined assignments/schedule document from Canvas.
type CanvasService struct {
	source  canvasSource
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     CanvasServiceConfig
	now     func() time.Time
}

// NewCanvasService constructs the aggregator.
func NewCanvasService(source canvasSource, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg CanvasServiceConfig) *CanvasService {
	if cfg.Horizon <= 0 {
		cfg.Horizon = 10 * 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanvasService{source: source, cache: cache, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

// Payload returns the combined document and whether it came from cache.
func (s *CanvasService) Payload(ctx context.Context) (*models.SyncPayload, bool, error) {
	if s.source == nil {
		return nil, false, appErrors.ErrCanvasConfig
	}
	var cached models.SyncPayload
	if hit, _ := s.cache.Get(ctx, canvasPayloadKey, &cached); hit {
		cached.HasAssignments, cached.HasSchedule = true, true
		return &cached, true, nil
	}

	start := time.Now()
	courses, err := s.source.ListCourses(ctx)
	if err != nil {
		s.metrics.ObserveCanvasAggregation("error", time.Since(start))
		s.logger.Error("list canvas courses", zap.Error(err))
		return nil, false, err
	}

	payload := &models.SyncPayload{
		Assignments:    s.collectAssignments(ctx, courses),
		Schedule:       ScheduleFromCourses(courses),
		HasAssignments: true,
		HasSchedule:    true,
	}
	s.metrics.ObserveCanvasAggregation("ok", time.Since(start))
	_ = s.cache.Set(ctx, canvasPayloadKey, payload, s.cfg.CacheTTL)
	return payload, false, nil
}

// Refresh drops every cached Canvas document and rebuilds the combined one from the API.
func (s *CanvasService) Refresh(ctx context.Context) (*models.SyncPayload, error) {
	if s.source == nil {
		return nil, appErrors.ErrCanvasConfig
	}
	if err := s.cache.Invalidate(ctx, canvasKeyPattern); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalidate canvas cache")
	}
	payload, _, err := s.Payload(ctx)
	return payload, err
}

// Assignments returns only the assignment list, bypassing the cache.
func (s *CanvasService) Assignments(ctx context.Context) ([]models.AssignmentRecord, error) {
	if s.source == nil {
		return nil, appErrors.ErrCanvasConfig
	}
	courses, err := s.source.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return s.collectAssignments(ctx, courses), nil
}

// collectAssignments gathers assignments due before the horizon, sorted by due date. A course
// whose assignments cannot be read is logged and skipped.
func (s *CanvasService) collectAssignments(ctx context.Context, courses []dto.CanvasCourse) []models.AssignmentRecord {
	limit := s.now().UTC().Add(s.cfg.Horizon)
	type dated struct {
		due    time.Time
		record models.AssignmentRecord
	}
	var collected []dated
	for _, course := range courses {
		name := courseName(course)
		assignments, err := s.source.ListAssignments(ctx, course.ID)
		if err != nil {
			s.logger.Warn("skip course assignments", zap.Int64("course_id", course.ID), zap.String("course", name), zap.Error(err))
			continue
		}
		for _, a := range assignments {
			if a.DueAt == nil || *a.DueAt == "" {
				continue
			}
			due, err := time.Parse(time.RFC3339, *a.DueAt)
			if err != nil {
				s.logger.Debug("unparseable due_at", zap.Int64("assignment_id", a.ID), zap.String("due_at", *a.DueAt))
				continue
			}
			if due.After(limit) {
				continue
			}
			collected = append(collected, dated{due: due.UTC(), record: models.AssignmentRecord{
				Name:    a.Name,
				Course:  name,
				DueDate: due.UTC().Format(time.RFC3339),
			}})
		}
	}
	sort.SliceStable(collected, func(i, j int) bool { return collected[i].due.Before(collected[j].due) })

	records := make([]models.AssignmentRecord, 0, len(collected))
	for _, item := range collected {
		records = append(records, item.record)
	}
	return records
}

// ScheduleFromCourses maps Canvas courses to schedule entries in Canvas order.
func ScheduleFromCourses(courses []dto.CanvasCourse) []models.CourseRecord {
	schedule := make([]models.CourseRecord, 0, len(courses))
	for _, course := range courses {
		record := models.CourseRecord{ID: course.ID, Name: courseName(course), Code: course.CourseCode}
		if course.Term != nil {
			record.Term = course.Term.Name
		}
		schedule = append(schedule, record)
	}
	return schedule
}

func courseName(course dto.CanvasCourse) string {
	if course.Name != nil && *course.Name != "" {
		return *course.Name
	}
	return fmt.Sprintf("Course %d", course.ID)
}
