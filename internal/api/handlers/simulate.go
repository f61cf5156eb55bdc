package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/slatewise/parlayforge/internal/engine"
	"github.com/slatewise/parlayforge/internal/rules"
	"github.com/slatewise/parlayforge/internal/simulator"
	"github.com/slatewise/parlayforge/internal/storage"
	"github.com/slatewise/parlayforge/internal/websocket"
)

// SimulateRequest asks for a viability simulation over a frozen slate's
// validated pool. Zero-valued knobs fall back to server configuration.
type SimulateRequest struct {
	SlateDate        string                `json:"slate_date" binding:"required"`
	Preset           string                `json:"preset"`
	TargetLegs       int                   `json:"target_legs"`
	MaxCombinations  int                   `json:"max_combinations"`
	Iterations       int                   `json:"iterations"`
	PayoutMultiplier float64               `json:"payout_multiplier"`
	Thresholds       *simulator.Thresholds `json:"thresholds,omitempty"`
	Seed             *int64                `json:"seed,omitempty"`
}

// SimulateHandler runs viability simulations asynchronously, streaming
// progress over the WebSocket channel named by the run ID.
type SimulateHandler struct {
	builder       *engine.Builder
	store         *storage.SlateStore
	hub           *websocket.Hub
	defaults      simulator.Config
	defaultPreset string
	logger        *logrus.Logger
}

// NewSimulateHandler creates a simulation handler.
func NewSimulateHandler(builder *engine.Builder, store *storage.SlateStore, hub *websocket.Hub, defaults simulator.Config, defaultPreset string, logger *logrus.Logger) *SimulateHandler {
	return &SimulateHandler{
		builder:       builder,
		store:         store,
		hub:           hub,
		defaults:      defaults,
		defaultPreset: defaultPreset,
		logger:        logger,
	}
}

// Start handles POST /api/v1/simulate. It validates the request, kicks the
// run off in the background, and returns the run ID immediately.
func (h *SimulateHandler) Start(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	snap, err := h.store.LoadSnapshot(c.Request.Context(), req.SlateDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load snapshot", "details": err.Error()})
		return
	}
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot for slate date " + req.SlateDate})
		return
	}

	presetName := req.Preset
	if presetName == "" {
		presetName = h.defaultPreset
	}
	preset, _ := rules.PresetByName(presetName)

	pool := h.validatedPool(snap, preset)
	cfg := h.mergeConfig(req)
	if len(pool) < cfg.TargetLegs {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "Not enough validated candidates for the requested leg count",
			"validated": len(pool),
		})
		return
	}

	runID := uuid.New().String()

	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}
	sim := simulator.New(cfg, rng, h.logger)

	go h.runSimulation(runID, sim, pool)

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":      runID,
		"slate_date":  req.SlateDate,
		"preset":      preset.Name,
		"pool_size":   len(pool),
		"target_legs": cfg.TargetLegs,
	})
}

// GetReport handles GET /api/v1/simulate/:run_id
func (h *SimulateHandler) GetReport(c *gin.Context) {
	runID := c.Param("run_id")

	report, err := h.store.GetCachedReport(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report", "details": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No report for run " + runID + " (still running or expired)"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// runSimulation drives one background run: forwards progress to the run's
// WebSocket channel and caches the final report.
func (h *SimulateHandler) runSimulation(runID string, sim *simulator.Simulator, pool []engine.CandidatePick) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	progress := make(chan simulator.Progress, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			h.hub.BroadcastToChannel(runID, gin.H{
				"type":   "simulation_progress",
				"run_id": runID,
				"update": update,
			})
		}
	}()

	report := sim.Run(ctx, pool, progress)
	close(progress)
	<-done

	if err := h.store.CacheReport(context.Background(), runID, report); err != nil {
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to cache simulation report")
	}

	h.hub.BroadcastToChannel(runID, gin.H{
		"type":         "simulation_complete",
		"run_id":       runID,
		"viable_count": report.ViableCount,
		"evaluated":    report.Evaluated,
		"cancelled":    report.Cancelled,
	})
}

// validatedPool reruns the builder's filters over the snapshot and returns
// the candidates that survived. Trace rows and candidates share an index.
func (h *SimulateHandler) validatedPool(snap *engine.Snapshot, preset rules.WeightPreset) []engine.CandidatePick {
	output := h.builder.Build(snap, preset)

	pool := make([]engine.CandidatePick, 0, output.Diagnostics.Validated)
	for i, row := range output.Trace {
		if row.PatternPass {
			pool = append(pool, snap.Candidates[i])
		}
	}
	return pool
}

// mergeConfig overlays request knobs on the server defaults.
func (h *SimulateHandler) mergeConfig(req SimulateRequest) simulator.Config {
	cfg := h.defaults
	if req.TargetLegs > 0 {
		cfg.TargetLegs = req.TargetLegs
	}
	if req.MaxCombinations > 0 {
		cfg.MaxCombinations = req.MaxCombinations
	}
	if req.Iterations > 0 {
		cfg.Iterations = req.Iterations
	}
	if req.PayoutMultiplier > 1 {
		cfg.PayoutMultiplier = req.PayoutMultiplier
	}
	if req.Thresholds != nil {
		cfg.Thresholds = *req.Thresholds
	}
	return cfg
}
