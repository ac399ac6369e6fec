package handler

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
	"github.com/noah-isme/peach-brawl/pkg/response"
)

type pageService interface {
	Page(ctx context.Context) (template.HTML, error)
	Fragment(ctx context.Context, region models.Region) (template.HTML, error)
	ServiceWorker() []byte
	ServiceWorkerScope() string
}

// PageHandler serves the dashboard shell, its region fragments and the service worker.
type PageHandler struct {
	service pageService
}

// NewPageHandler constructs the handler.
func NewPageHandler(service pageService) *PageHandler {
	return &PageHandler{service: service}
}

// Index renders the dashboard page.
func (h *PageHandler) Index(c *gin.Context) {
	html, err := h.service.Page(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.HTML(c, http.StatusOK, html)
}

// Fragment godoc
// @Summary Current HTML of a display region
// @Tags Dashboard
// @Produce html
// @Param region path string true "assignments or schedule"
// @Success 200 {string} string
// @Failure 404 {object} response.Envelope
// @Router /fragments/{region} [get]
func (h *PageHandler) Fragment(c *gin.Context) {
	region, ok := models.ParseRegion(c.Param("region"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown region"))
		return
	}
	html, err := h.service.Fragment(c.Request.Context(), region)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.HTML(c, http.StatusOK, html)
}

// ServiceWorker serves the offline caching script.
func (h *PageHandler) ServiceWorker(c *gin.Context) {
	c.Header("Service-Worker-Allowed", h.service.ServiceWorkerScope())
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", h.service.ServiceWorker())
}
