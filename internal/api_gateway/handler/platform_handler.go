package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/deducta-loan-ledger/internal/api_gateway/service"
)

// PlatformHandler handles HTTP requests for platform administration
type PlatformHandler struct {
	platformService service.PlatformService
	logger          *slog.Logger
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(logger *slog.Logger, platformService service.PlatformService) *PlatformHandler {
	return &PlatformHandler{
		platformService: platformService,
		logger:          logger,
	}
}

// Overview returns the accumulated platform counters, configured rates and
// operational flags
func (h *PlatformHandler) Overview(c *gin.Context) {
	overview, err := h.platformService.Overview(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build platform overview", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, overview)
}

// SetRate updates one of the configurable platform rates
func (h *PlatformHandler) SetRate(c *gin.Context) {
	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.platformService.SetRate(c.Request.Context(), req.Key, req.Percent); err != nil {
		if errors.Is(err, service.ErrUnknownRateKey) {
			RespondBadRequest(c, "Unknown rate key: "+req.Key)
			return
		}
		h.logger.Error("Failed to set rate", "key", req.Key, "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// SetMaintenance toggles platform-wide maintenance mode
func (h *PlatformHandler) SetMaintenance(c *gin.Context) {
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.platformService.SetMaintenanceMode(c.Request.Context(), *req.Enabled); err != nil {
		h.logger.Error("Failed to toggle maintenance mode", "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}
