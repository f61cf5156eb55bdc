package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slatewise/parlayforge/internal/engine"
	"github.com/slatewise/parlayforge/internal/storage"
)

// SnapshotHandler freezes and serves slate snapshots.
type SnapshotHandler struct {
	store  *storage.SlateStore
	logger *logrus.Logger
}

// NewSnapshotHandler creates a snapshot handler.
func NewSnapshotHandler(store *storage.SlateStore, logger *logrus.Logger) *SnapshotHandler {
	return &SnapshotHandler{store: store, logger: logger}
}

// Save handles POST /api/v1/snapshots. The raw body is parsed through the
// canonical decoder so what gets frozen is exactly what a later build reads.
func (h *SnapshotHandler) Save(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	snap, err := engine.ParseSnapshot(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid snapshot", "details": err.Error()})
		return
	}
	if snap.SlateDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slate_date is required"})
		return
	}

	if err := h.store.SaveSnapshot(c.Request.Context(), snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save snapshot", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"slate_date": snap.SlateDate,
		"candidates": len(snap.Candidates),
	})
}

// Get handles GET /api/v1/snapshots/:date
func (h *SnapshotHandler) Get(c *gin.Context) {
	date := c.Param("date")

	snap, err := h.store.LoadSnapshot(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load snapshot", "details": err.Error()})
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot for slate date " + date})
		return
	}

	data, err := snap.Encode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode snapshot"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// List handles GET /api/v1/snapshots
func (h *SnapshotHandler) List(c *gin.Context) {
	dates, err := h.store.ListSnapshots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list snapshots", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slate_dates": dates, "count": len(dates)})
}
