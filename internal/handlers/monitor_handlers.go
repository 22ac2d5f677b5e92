package handlers

import (
	goerrors "errors"

	"scanwarden/internal/services"
	"scanwarden/pkg/errors"
	"scanwarden/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MonitorHandler struct {
	registry services.SiteRegistry
	logger   *logger.Logger
}

func NewMonitorHandler(registry services.SiteRegistry) *MonitorHandler {
	return &MonitorHandler{registry: registry, logger: logger.NewLogger(logrus.InfoLevel)}
}

// Register adds a target to the monitored set. Re-registering a target is
// allowed and resets its recorded state.
func (h *MonitorHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to bind JSON")
		c.JSON(400, ErrorResponse{Error: "Invalid request payload"})
		return
	}

	normalized, err := h.registry.Register(req.URL)
	if err != nil {
		if goerrors.Is(err, errors.ErrInvalidTarget) {
			c.JSON(400, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to register target")
		c.JSON(500, ErrorResponse{Error: "Failed to register target"})
		return
	}

	c.JSON(201, RegisterResponse{Target: normalized})
}

// Status returns the most recent scan outcome per monitored target, keyed
// by normalized URL.
func (h *MonitorHandler) Status(c *gin.Context) {
	c.JSON(200, h.registry.Snapshot())
}
