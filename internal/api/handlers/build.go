package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slatewise/parlayforge/internal/engine"
	"github.com/slatewise/parlayforge/internal/rules"
	"github.com/slatewise/parlayforge/internal/storage"
)

// BuildRequest asks for a card build. The slate can come inline or by the
// date of a previously frozen snapshot.
type BuildRequest struct {
	SlateDate string           `json:"slate_date"`
	Preset    string           `json:"preset"`
	Snapshot  *engine.Snapshot `json:"snapshot,omitempty"`
	NoCache   bool             `json:"no_cache,omitempty"`
}

// BuildHandler serves card builds over frozen slates.
type BuildHandler struct {
	builder       *engine.Builder
	store         *storage.SlateStore
	defaultPreset string
	logger        *logrus.Logger
}

// NewBuildHandler creates a build handler.
func NewBuildHandler(builder *engine.Builder, store *storage.SlateStore, defaultPreset string, logger *logrus.Logger) *BuildHandler {
	return &BuildHandler{
		builder:       builder,
		store:         store,
		defaultPreset: defaultPreset,
		logger:        logger,
	}
}

// Build handles POST /api/v1/build
func (h *BuildHandler) Build(c *gin.Context) {
	var req BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	presetName := req.Preset
	if presetName == "" {
		presetName = h.defaultPreset
	}
	preset, ok := rules.PresetByName(presetName)
	if !ok {
		h.logger.WithField("preset", presetName).Warn("Unknown preset, using balanced")
	}

	snap := req.Snapshot
	if snap == nil {
		if req.SlateDate == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Either snapshot or slate_date is required"})
			return
		}

		if !req.NoCache {
			cached, err := h.store.GetCachedBuild(c.Request.Context(), req.SlateDate, preset.Name)
			if err != nil {
				h.logger.WithError(err).Warn("Build cache lookup failed")
			} else if cached != nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		loaded, err := h.store.LoadSnapshot(c.Request.Context(), req.SlateDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load snapshot", "details": err.Error()})
			return
		}
		if loaded == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot for slate date " + req.SlateDate})
			return
		}
		snap = loaded
	}

	output := h.builder.Build(snap, preset)

	if req.Snapshot == nil {
		if err := h.store.CacheBuild(c.Request.Context(), snap.SlateDate, preset.Name, output); err != nil {
			h.logger.WithError(err).Warn("Failed to cache build output")
		}
	}

	c.JSON(http.StatusOK, output)
}

// Presets handles GET /api/v1/presets
func (h *BuildHandler) Presets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": rules.Presets(), "default": h.defaultPreset})
}
