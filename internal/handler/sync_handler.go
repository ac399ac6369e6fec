package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peach-brawl/internal/middleware"
	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/pkg/response"
)

type syncStatusReader interface {
	Status() models.SyncStatus
}

type syncTrigger interface {
	Trigger(reason string) (string, error)
	Pending() int
}

// SyncHandler exposes the sync loop state.
type SyncHandler struct {
	status  syncStatusReader
	trigger syncTrigger
}

// NewSyncHandler constructs the handler.
func NewSyncHandler(status syncStatusReader, trigger syncTrigger) *SyncHandler {
	return &SyncHandler{status: status, trigger: trigger}
}

// Status godoc
// @Summary Latest sync cycle
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	status := h.status.Status()
	status.PendingCycles = h.trigger.Pending()
	response.JSON(c, http.StatusOK, status, middleware.ExtractMeta(c))
}

// Refresh godoc
// @Summary Schedule an extra sync cycle
// @Tags Sync
// @Produce json
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /sync/refresh [post]
func (h *SyncHandler) Refresh(c *gin.Context) {
	cycleID, err := h.trigger.Trigger("manual")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, gin.H{"cycle_id": cycleID}, middleware.ExtractMeta(c))
}
