package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peach-brawl/internal/dto"
	"github.com/noah-isme/peach-brawl/internal/middleware"
	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/internal/service"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
	"github.com/noah-isme/peach-brawl/pkg/response"
)

type payloadSource interface {
	LastPayload(ctx context.Context) (*models.SyncPayload, error)
}

type calendarBuilder interface {
	Weeks(list []models.AssignmentRecord) models.CalendarView
	Export(view models.CalendarView, format string) (*service.CalendarExport, error)
}

// CalendarHandler serves the weekly calendar built from the last successful sync.
type CalendarHandler struct {
	source   payloadSource
	calendar calendarBuilder
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(source payloadSource, calendar calendarBuilder) *CalendarHandler {
	return &CalendarHandler{source: source, calendar: calendar}
}

// Weeks godoc
// @Summary Assignments grouped by week
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /calendar [get]
func (h *CalendarHandler) Weeks(c *gin.Context) {
	payload, err := h.source.LastPayload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.calendar.Weeks(payload.Assignments), middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the weekly calendar
// @Tags Calendar
// @Produce text/csv,application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /calendar/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	var query dto.CalendarExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query"))
		return
	}

	payload, err := h.source.LastPayload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.calendar.Export(h.calendar.Weeks(payload.Assignments), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
