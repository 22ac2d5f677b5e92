package handlers

import (
	goerrors "errors"

	"scanwarden/internal/services"
	"scanwarden/pkg/errors"
	"scanwarden/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ScanHandler struct {
	scanner services.Scanner
	logger  *logger.Logger
}

func NewScanHandler(scanner services.Scanner) *ScanHandler {
	return &ScanHandler{scanner: scanner, logger: logger.NewLogger(logrus.InfoLevel)}
}

func (h *ScanHandler) FullScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to bind JSON")
		c.JSON(400, ErrorResponse{Error: "Invalid request payload"})
		return
	}

	h.logger.WithFields(logger.Fields{"url": req.URL}).Info("Starting full scan")
	result, err := h.scanner.FullScan(c.Request.Context(), req.URL)
	if err != nil {
		h.writeScanError(c, err)
		return
	}
	c.JSON(200, result)
}

func (h *ScanHandler) QuickScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to bind JSON")
		c.JSON(400, ErrorResponse{Error: "Invalid request payload"})
		return
	}

	h.logger.WithFields(logger.Fields{"url": req.URL}).Info("Starting quick scan")
	result, err := h.scanner.QuickScan(c.Request.Context(), req.URL)
	if err != nil {
		h.writeScanError(c, err)
		return
	}
	c.JSON(200, result)
}

// writeScanError maps the scan error taxonomy onto HTTP statuses: bad input
// is the caller's fault, a busy target is a conflict, everything the daemon
// caused is an upstream failure.
func (h *ScanHandler) writeScanError(c *gin.Context, err error) {
	var timeoutErr *errors.ScanTimeoutError

	switch {
	case goerrors.Is(err, errors.ErrInvalidTarget):
		c.JSON(400, ErrorResponse{Error: err.Error()})
	case goerrors.Is(err, errors.ErrScanInProgress):
		c.JSON(409, ErrorResponse{Error: err.Error()})
	case goerrors.As(err, &timeoutErr):
		h.logger.WithFields(logger.Fields{"phase": timeoutErr.Phase}).Error("Scan timed out")
		c.JSON(504, ErrorResponse{Error: err.Error()})
	case goerrors.Is(err, errors.ErrRemoteUnavailable):
		h.logger.WithError(err).Error("Scan daemon failure")
		c.JSON(502, ErrorResponse{Error: err.Error()})
	default:
		h.logger.WithError(err).Error("Scan failed")
		c.JSON(500, ErrorResponse{Error: "Failed to run scan"})
	}
}
