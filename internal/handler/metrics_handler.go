package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peach-brawl/internal/service"
)

type readinessCheck func() bool

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	ready   readinessCheck
}

// NewMetricsHandler constructs a metrics handler. ready may be nil, in which case the service is
// always ready.
func NewMetricsHandler(metrics *service.MetricsService, ready readinessCheck) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, ready: ready}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness checks.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 until the readiness check passes.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.ready != nil && !h.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
