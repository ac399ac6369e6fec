package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/web"
)

// Fixed region texts. Failures are never distinguished by kind.
const (
	AssignmentsPlaceholder template.HTML = `<div class="text-center text-muted">No upcoming assignments</div>`
	SchedulePlaceholder    template.HTML = `<div class="text-center text-muted">No courses found</div>`
	AssignmentsFailure     template.HTML = `<div class="error">Failed to load assignments</div>`
	ScheduleFailure        template.HTML = `<div class="error">Failed to load schedule</div>`
	LoadingFragment        template.HTML = `<div class="text-center text-muted">Loading...</div>`
)

type assignmentView struct {
	Due    string
	Course string
	Name   string
}

// RenderService projects records into HTML fragments and hands them to the Display port.
type RenderService struct {
	display Display
	dates   *DueDateFormatter
	tmpl    *template.Template
	metrics *MetricsService
	now     func() time.Time
}

// NewRenderService parses the fragment templates.
func NewRenderService(display Display, dates *DueDateFormatter, metrics *MetricsService) (*RenderService, error) {
	tmpl, err := template.ParseFS(web.FS, "templates/fragments.html")
	if err != nil {
		return nil, fmt.Errorf("parse fragment templates: %w", err)
	}
	if dates == nil {
		dates, _ = NewDueDateFormatter("UTC", DefaultDateLayout)
	}
	return &RenderService{display: display, dates: dates, tmpl: tmpl, metrics: metrics, now: time.Now}, nil
}

// AssignmentsHTML renders the assignments fragment. Records keep their received order and
// unparseable due dates are shown verbatim.
func (s *RenderService) AssignmentsHTML(list []models.AssignmentRecord) (template.HTML, error) {
	if len(list) == 0 {
		return AssignmentsPlaceholder, nil
	}
	views := make([]assignmentView, 0, len(list))
	for _, record := range list {
		views = append(views, assignmentView{
			Due:    s.dates.Format(record.DueDate),
			Course: record.Course,
			Name:   record.Name,
		})
	}
	return s.execute("assignments", views)
}

// ScheduleHTML renders the schedule fragment in received order.
func (s *RenderService) ScheduleHTML(list []models.CourseRecord) (template.HTML, error) {
	if len(list) == 0 {
		return SchedulePlaceholder, nil
	}
	return s.execute("schedule", list)
}

// RenderAssignments replaces the assignments region.
func (s *RenderService) RenderAssignments(ctx context.Context, cycleID string, list []models.AssignmentRecord) error {
	html, err := s.AssignmentsHTML(list)
	if err != nil {
		return err
	}
	s.metrics.SetRegionEntries(string(models.RegionAssignments), len(list))
	return s.replace(ctx, models.RegionAssignments, cycleID, html)
}

// RenderSchedule replaces the schedule region.
func (s *RenderService) RenderSchedule(ctx context.Context, cycleID string, list []models.CourseRecord) error {
	html, err := s.ScheduleHTML(list)
	if err != nil {
		return err
	}
	s.metrics.SetRegionEntries(string(models.RegionSchedule), len(list))
	return s.replace(ctx, models.RegionSchedule, cycleID, html)
}

// RenderFailure replaces region with its fixed failure message.
func (s *RenderService) RenderFailure(ctx context.Context, cycleID string, region models.Region) error {
	return s.replace(ctx, region, cycleID, FailureFragment(region))
}

// FailureFragment returns the user-visible failure text of region.
func FailureFragment(region models.Region) template.HTML {
	if region == models.RegionSchedule {
		return ScheduleFailure
	}
	return AssignmentsFailure
}

func (s *RenderService) replace(ctx context.Context, region models.Region, cycleID string, html template.HTML) error {
	return s.display.Replace(ctx, models.RegionSnapshot{
		Region:    region,
		HTML:      html,
		CycleID:   cycleID,
		UpdatedAt: s.now().UTC(),
	})
}

func (s *RenderService) execute(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s fragment: %w", name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}
