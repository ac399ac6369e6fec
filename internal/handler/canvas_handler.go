package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peach-brawl/internal/middleware"
	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/pkg/response"
)

type canvasAggregator interface {
	Payload(ctx context.Context) (*models.SyncPayload, bool, error)
	Refresh(ctx context.Context) (*models.SyncPayload, error)
}

// CanvasHandler serves the combined document consumed by the dashboard sync loop.
type CanvasHandler struct {
	service canvasAggregator
}

// NewCanvasHandler constructs the handler.
func NewCanvasHandler(service canvasAggregator) *CanvasHandler {
	return &CanvasHandler{service: service}
}

// All godoc
// @Summary Upcoming assignments and course schedule
// @Tags Canvas
// @Produce json
// @Success 200 {object} models.SyncPayload
// @Failure 502 {object} response.Envelope
// @Router /api/all [get]
func (h *CanvasHandler) All(c *gin.Context) {
	payload, cached, err := h.service.Payload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	writeCanvasDocument(c, payload)
}

// Refresh godoc
// @Summary Drop cached Canvas data and rebuild the combined document
// @Tags Canvas
// @Produce json
// @Success 200 {object} models.SyncPayload
// @Failure 502 {object} response.Envelope
// @Router /api/refresh [post]
func (h *CanvasHandler) Refresh(c *gin.Context) {
	payload, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, false)
	writeCanvasDocument(c, payload)
}

func writeCanvasDocument(c *gin.Context, payload *models.SyncPayload) {
	assignments := payload.Assignments
	if assignments == nil {
		assignments = []models.AssignmentRecord{}
	}
	schedule := payload.Schedule
	if schedule == nil {
		schedule = []models.CourseRecord{}
	}
	// bare document, no envelope: dashboards decode it as a SyncPayload
	c.JSON(http.StatusOK, gin.H{"assignments": assignments, "schedule": schedule})
}
