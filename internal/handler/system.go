package handler

import (
	"context"
	"net/http"
	"time"

	"agencysearch/internal/httpcache"
	"agencysearch/internal/monitor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a backing dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves health and observability endpoints
type SystemHandler struct {
	store   Pinger
	monitor *monitor.Monitor
	service string
	version string
	logger  *zap.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(store Pinger, mon *monitor.Monitor, service, version string, logger *zap.Logger) *SystemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemHandler{
		store:   store,
		monitor: mon,
		service: service,
		version: version,
		logger:  logger,
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	httpcache.SetNoCache(c.Writer.Header())

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": h.service,
			"version": h.version,
			"store":   "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
		"store":   "ok",
	})
}

// ErrorRates handles GET /api/v1/agencies/stats
func (h *SystemHandler) ErrorRates(c *gin.Context) {
	httpcache.SetNoCache(c.Writer.Header())
	c.JSON(http.StatusOK, gin.H{
		"route":  h.monitor.ErrorRates().Snapshot(ListRoute),
		"routes": h.monitor.ErrorRates().All(),
	})
}
