package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slatewise/parlayforge/internal/storage"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store     *storage.SlateStore
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(store *storage.SlateStore, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "parlayforge",
		"uptime":  time.Since(h.startTime).String(),
	})
}

// Ready handles GET /ready. Readiness requires a live Redis connection.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.store.HealthCheck(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  "redis unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
