package simulator

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatewise/parlayforge/internal/engine"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TargetLegs = 3
	cfg.MaxCombinations = 10
	cfg.Iterations = 500
	return cfg
}

func TestRun_EvaluatesAndRanks(t *testing.T) {
	sim := New(testConfig(), rand.New(rand.NewSource(42)), nil)
	report := sim.Run(context.Background(), testPool(), nil)

	require.NotNil(t, report)
	assert.False(t, report.Cancelled)
	assert.Greater(t, report.Evaluated, 0)
	assert.Len(t, report.Parlays, report.Evaluated)

	for _, parlay := range report.Parlays {
		assert.Len(t, parlay.Legs, 3)
		assert.GreaterOrEqual(t, parlay.WinProbability, 0.0)
		assert.LessOrEqual(t, parlay.WinProbability, 1.0)
		assert.InDelta(t, parlay.WinProbability-parlay.ImpliedProbability, parlay.Edge, 1e-12)
		if !parlay.Viable {
			assert.NotEmpty(t, parlay.Reasons, "non-viable parlays must explain themselves")
		}
	}

	// Viable parlays rank first, best risk-adjusted return on top
	sawNonViable := false
	lastRisk := 0.0
	for i, parlay := range report.Parlays {
		if !parlay.Viable {
			sawNonViable = true
			continue
		}
		assert.False(t, sawNonViable, "viable parlay ranked after a non-viable one")
		if i > 0 && report.Parlays[i-1].Viable {
			assert.LessOrEqual(t, parlay.RiskAdjusted, lastRisk)
		}
		lastRisk = parlay.RiskAdjusted
	}
}

func TestRun_ReproducibleWithSeed(t *testing.T) {
	first := New(testConfig(), rand.New(rand.NewSource(123)), nil).Run(context.Background(), testPool(), nil)
	second := New(testConfig(), rand.New(rand.NewSource(123)), nil).Run(context.Background(), testPool(), nil)

	require.Equal(t, first.Evaluated, second.Evaluated)
	for i := range first.Parlays {
		assert.Equal(t, first.Parlays[i].WinProbability, second.Parlays[i].WinProbability)
		assert.Equal(t, first.Parlays[i].RiskAdjusted, second.Parlays[i].RiskAdjusted)
	}
}

func TestRun_CancellationReturnsPartialRanking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(testConfig(), rand.New(rand.NewSource(42)), nil)
	report := sim.Run(ctx, testPool(), nil)

	require.NotNil(t, report)
	assert.True(t, report.Cancelled)
	assert.Equal(t, 0, report.Evaluated)
	assert.Empty(t, report.Parlays)
}

func TestRun_ProgressStages(t *testing.T) {
	progress := make(chan Progress, 256)

	sim := New(testConfig(), rand.New(rand.NewSource(42)), nil)
	sim.Run(context.Background(), testPool(), progress)
	close(progress)

	stages := make(map[string]bool)
	for update := range progress {
		stages[update.Stage] = true
	}
	assert.True(t, stages["generating"])
	assert.True(t, stages["simulating"])
	assert.True(t, stages["completed"])
	assert.False(t, stages["cancelled"])
}

func TestClassify_Thresholds(t *testing.T) {
	cfg := testConfig()
	cfg.Thresholds = Thresholds{MinWinRate: 0.99, MinEdge: 0.5, MinRiskAdjusted: 5.0}
	sim := New(cfg, rand.New(rand.NewSource(42)), nil)

	viable, reasons := sim.classify(SimulatedParlay{
		WinProbability: 0.2, Edge: -0.1, RiskAdjusted: 0.1, ExpectedValue: -0.3,
	})
	assert.False(t, viable)
	assert.Len(t, reasons, 4)

	cfg.Thresholds = Thresholds{}
	sim = New(cfg, rand.New(rand.NewSource(42)), nil)
	viable, reasons = sim.classify(SimulatedParlay{
		WinProbability: 0.2, Edge: 0.1, RiskAdjusted: 0.5, ExpectedValue: 1.0,
	})
	assert.True(t, viable)
	assert.Empty(t, reasons)
}

func TestLegHitProbability(t *testing.T) {
	// No signals at all falls back to a coin flip
	p := legHitProbability(engine.CandidatePick{})
	assert.Equal(t, 0.5, p)

	// Confidence alone
	p = legHitProbability(engine.CandidatePick{Confidence: 0.8})
	assert.Equal(t, 0.8, p)

	// Blended with a known hit rate
	hitRate := 0.5
	p = legHitProbability(engine.CandidatePick{Confidence: 0.8, HitRate: &hitRate})
	assert.InDelta(t, 0.6*0.8+0.4*0.5, p, 1e-12)

	// Clamped away from certainty
	sure := 1.0
	p = legHitProbability(engine.CandidatePick{Confidence: 1.0, HitRate: &sure})
	assert.Equal(t, 0.98, p)
}

func TestRun_HighConfidencePoolIsViable(t *testing.T) {
	cfg := testConfig()
	cfg.TargetLegs = 2
	cfg.PayoutMultiplier = 4.0 // implied 25% on a ~50%+ parlay
	cfg.Thresholds = Thresholds{MinWinRate: 0.1}

	pool := []engine.CandidatePick{
		{Player: "A", Team: "BOS", StatType: "points", Line: 20.5, Side: engine.SideOver, Confidence: 0.9},
		{Player: "B", Team: "DAL", StatType: "points", Line: 22.5, Side: engine.SideOver, Confidence: 0.9},
		{Player: "C", Team: "ATL", StatType: "assists", Line: 8.5, Side: engine.SideOver, Confidence: 0.9},
	}

	report := New(cfg, rand.New(rand.NewSource(7)), nil).Run(context.Background(), pool, nil)

	require.NotEmpty(t, report.Parlays)
	assert.Greater(t, report.ViableCount, 0, "a 0.9-confidence pool at 4x payout should produce viable parlays")
	assert.True(t, report.Parlays[0].Viable)
	assert.Greater(t, report.Parlays[0].ExpectedValue, 0.0)
}
