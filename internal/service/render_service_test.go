package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/internal/repository"
)

func newTestRenderer(t *testing.T) (*RenderService, *repository.RegionRepository) {
	t.Helper()
	store := repository.NewRegionRepository()
	dates, err := NewDueDateFormatter("UTC", DefaultDateLayout)
	require.NoError(t, err)
	renderer, err := NewRenderService(NewDisplayService(store, nil, 0, nil), dates, nil)
	require.NoError(t, err)
	return renderer, store
}

func TestAssignmentsHTMLPlaceholder(t *testing.T) {
	renderer, _ := newTestRenderer(t)

	for _, list := range [][]models.AssignmentRecord{nil, {}} {
		html, err := renderer.AssignmentsHTML(list)
		require.NoError(t, err)
		assert.Equal(t, AssignmentsPlaceholder, html)
		assert.NotContains(t, string(html), "assignment-item")
	}
}

func TestAssignmentsHTMLOrderAndDates(t *testing.T) {
	renderer, _ := newTestRenderer(t)

	html, err := renderer.AssignmentsHTML([]models.AssignmentRecord{
		{DueDate: "2024-05-03T09:30:00Z", Course: "MATH2", Name: "Quiz"},
		{DueDate: "2024-05-01T10:00:00Z", Course: "CS101", Name: "HW1"},
		{DueDate: "sometime soon", Course: "ART", Name: "Sketch"},
	})
	require.NoError(t, err)

	out := string(html)
	assert.Equal(t, 3, strings.Count(out, `class="assignment-item"`))
	assert.Contains(t, out, "Friday, May 3, 2024 at 09:30 AM")
	assert.Contains(t, out, "Wednesday, May 1, 2024 at 10:00 AM")
	assert.Contains(t, out, "sometime soon")
	assert.Less(t, strings.Index(out, "Quiz"), strings.Index(out, "HW1"))
	assert.Less(t, strings.Index(out, "HW1"), strings.Index(out, "Sketch"))
}

func TestAssignmentsHTMLEscapesText(t *testing.T) {
	renderer, _ := newTestRenderer(t)

	html, err := renderer.AssignmentsHTML([]models.AssignmentRecord{{DueDate: "2024-05-01", Course: "<b>CS</b>", Name: "a & b"}})
	require.NoError(t, err)
	assert.Contains(t, string(html), "&lt;b&gt;CS&lt;/b&gt;")
	assert.Contains(t, string(html), "a &amp; b")
}

func TestScheduleHTML(t *testing.T) {
	renderer, _ := newTestRenderer(t)

	html, err := renderer.ScheduleHTML(nil)
	require.NoError(t, err)
	assert.Equal(t, SchedulePlaceholder, html)

	html, err = renderer.ScheduleHTML([]models.CourseRecord{
		{Name: "Algorithms", Code: "CS201", Term: "Spring 2024"},
		{Name: "Biology", Code: "BIO110", Term: "Spring 2024"},
	})
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "CS201")
	assert.Contains(t, out, "Spring 2024")
	assert.Less(t, strings.Index(out, "Algorithms"), strings.Index(out, "Biology"))
}

func TestRenderWritesRegions(t *testing.T) {
	renderer, store := newTestRenderer(t)
	ctx := context.Background()

	require.NoError(t, renderer.RenderAssignments(ctx, "c1", nil))
	require.NoError(t, renderer.RenderFailure(ctx, "c1", models.RegionSchedule))

	assignments, err := store.Get(ctx, models.RegionAssignments)
	require.NoError(t, err)
	assert.Equal(t, AssignmentsPlaceholder, assignments.HTML)
	assert.Equal(t, "c1", assignments.CycleID)
	assert.False(t, assignments.UpdatedAt.IsZero())

	schedule, err := store.Get(ctx, models.RegionSchedule)
	require.NoError(t, err)
	assert.Equal(t, ScheduleFailure, schedule.HTML)
}

func TestFailureFragment(t *testing.T) {
	assert.Contains(t, string(FailureFragment(models.RegionAssignments)), "Failed to load assignments")
	assert.Contains(t, string(FailureFragment(models.RegionSchedule)), "Failed to load schedule")
}
