package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peach-brawl/internal/middleware"
	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/internal/service"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

type fakePayloadSrc struct {
	payload *models.SyncPayload
	err     error
	calls   int
}

func (f *fakePayloadSrc) LastPayload(context.Context) (*models.SyncPayload, error) {
	f.calls++
	return f.payload, f.err
}

func newCalendarRouter(src payloadSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCalendarHandler(src, service.NewCalendarService(nil))
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/api/v1/calendar", h.Weeks)
	router.GET("/api/v1/calendar/export", h.Export)
	return router
}

var calendarPayload = &models.SyncPayload{
	HasAssignments: true,
	Assignments: []models.AssignmentRecord{
		{DueDate: "2024-05-01T10:00:00Z", Course: "CS101", Name: "HW1"},
	},
}

func TestCalendarHandlerWeeks(t *testing.T) {
	router := newCalendarRouter(&fakePayloadSrc{payload: calendarPayload})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	weeks, ok := envelope.Data["weeks"].([]interface{})
	require.True(t, ok)
	assert.Len(t, weeks, 1)
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestCalendarHandlerNoSnapshot(t *testing.T) {
	router := newCalendarRouter(&fakePayloadSrc{err: appErrors.ErrNoSnapshot})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NO_SNAPSHOT", decodeEnvelope(t, rec).Error.Code)
}

func TestCalendarHandlerExport(t *testing.T) {
	router := newCalendarRouter(&fakePayloadSrc{payload: calendarPayload})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/export?format=csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="assignments.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "HW1")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/export?format=pdf", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestCalendarHandlerExportInvalidFormat(t *testing.T) {
	router := newCalendarRouter(&fakePayloadSrc{payload: calendarPayload})

	for _, target := range []string{"/api/v1/calendar/export", "/api/v1/calendar/export?format=xlsx"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestCalendarHandlerExportRejectsBadQuery(t *testing.T) {
	src := &fakePayloadSrc{payload: calendarPayload}
	router := newCalendarRouter(src)

	for _, target := range []string{"/api/v1/calendar/export", "/api/v1/calendar/export?format="} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		envelope := decodeEnvelope(t, rec)
		require.NotNil(t, envelope.Error, target)
		assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code, target)
		assert.Equal(t, "invalid export query", envelope.Error.Message, target)
	}
	assert.Zero(t, src.calls, "snapshot is not read for a rejected query")
}
