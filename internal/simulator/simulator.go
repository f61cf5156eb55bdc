package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/slatewise/parlayforge/internal/engine"
	"github.com/slatewise/parlayforge/internal/normalize"
)

// Simulator stress-tests alternative leg combinations with a hybrid of a
// closed-form probability estimate and Monte Carlo sampling. It is an
// advisory pass: it never touches the deterministic builder's output.
type Simulator struct {
	config Config
	rng    *rand.Rand
	logger *logrus.Logger
}

// New creates a simulator. The rng is injectable so runs are reproducible
// under test; pass nil for a time-seeded source.
func New(config Config, rng *rand.Rand, logger *logrus.Logger) *Simulator {
	if config.TargetLegs <= 0 {
		config.TargetLegs = DefaultConfig().TargetLegs
	}
	if config.MaxCombinations <= 0 {
		config.MaxCombinations = DefaultConfig().MaxCombinations
	}
	if config.Iterations <= 0 {
		config.Iterations = DefaultConfig().Iterations
	}
	if config.PayoutMultiplier <= 1 {
		config.PayoutMultiplier = DefaultConfig().PayoutMultiplier
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		config: config,
		rng:    rng,
		logger: logger,
	}
}

// Run generates combinations from the pool and simulates each one,
// yielding between combinations so the run stays interruptible. On
// cancellation the report carries everything evaluated and ranked so far
// with the Cancelled flag set.
func (s *Simulator) Run(ctx context.Context, pool []engine.CandidatePick, progress chan<- Progress) *Report {
	startTime := time.Now()

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"pool_size":   len(pool),
			"target_legs": s.config.TargetLegs,
			"iterations":  s.config.Iterations,
		}).Info("Starting viability simulation")
	}

	s.sendProgress(progress, Progress{
		Stage: "generating", Total: s.config.MaxCombinations,
		Elapsed: time.Since(startTime), Timestamp: time.Now(),
	})

	combos := generateCombinations(pool, s.config.TargetLegs, s.config.MaxCombinations, s.rng)

	report := &Report{Parlays: make([]SimulatedParlay, 0, len(combos))}

	for i, combo := range combos {
		select {
		case <-ctx.Done():
			report.Cancelled = true
			s.finishReport(report, startTime, progress)
			return report
		default:
		}

		report.Parlays = append(report.Parlays, s.simulateCombination(combo))
		report.Evaluated++

		s.sendProgress(progress, Progress{
			Stage: "simulating", Completed: i + 1, Total: len(combos),
			Elapsed: time.Since(startTime), Timestamp: time.Now(),
		})
	}

	s.finishReport(report, startTime, progress)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"evaluated":      report.Evaluated,
			"viable":         report.ViableCount,
			"execution_time": report.ExecutionTime,
		}).Info("Viability simulation completed")
	}

	return report
}

// finishReport ranks what has been evaluated and emits the terminal
// progress update. Ranking runs on cancellation too: partial results are
// still returned best-first.
func (s *Simulator) finishReport(report *Report, startTime time.Time, progress chan<- Progress) {
	s.sendProgress(progress, Progress{
		Stage: "ranking", Completed: report.Evaluated, Total: report.Evaluated,
		Elapsed: time.Since(startTime), Timestamp: time.Now(),
	})

	sort.SliceStable(report.Parlays, func(i, j int) bool {
		if report.Parlays[i].Viable != report.Parlays[j].Viable {
			return report.Parlays[i].Viable
		}
		return report.Parlays[i].RiskAdjusted > report.Parlays[j].RiskAdjusted
	})

	for _, p := range report.Parlays {
		if p.Viable {
			report.ViableCount++
		}
	}

	report.ExecutionTime = time.Since(startTime)

	stage := "completed"
	if report.Cancelled {
		stage = "cancelled"
	}
	s.sendProgress(progress, Progress{
		Stage: stage, Completed: report.Evaluated, Total: report.Evaluated,
		Elapsed: report.ExecutionTime, Timestamp: time.Now(),
	})
}

// simulateCombination runs the hybrid estimate for one combination: a
// weighted blend of the independent closed-form product and a correlation-
// aware Monte Carlo sample.
func (s *Simulator) simulateCombination(combo []engine.CandidatePick) SimulatedParlay {
	probs := make([]float64, len(combo))
	closedForm := 1.0
	for i, leg := range combo {
		probs[i] = legHitProbability(leg)
		closedForm *= probs[i]
	}

	outcomes := s.sampleOutcomes(combo, probs)
	mcProb := stat.Mean(outcomes, nil)
	sd := stat.StdDev(outcomes, nil)

	winProb := s.config.ClosedFormWeight*closedForm + (1-s.config.ClosedFormWeight)*mcProb

	implied := 1.0 / s.config.PayoutMultiplier
	edge := winProb - implied
	expectedValue := winProb*s.config.PayoutMultiplier - 1

	riskAdjusted := 0.0
	if sd > 0 {
		riskAdjusted = edge / sd
	}

	parlay := SimulatedParlay{
		ID:                 uuid.New(),
		Legs:               combo,
		WinProbability:     winProb,
		ImpliedProbability: implied,
		Edge:               edge,
		RiskAdjusted:       riskAdjusted,
		ExpectedValue:      expectedValue,
	}

	parlay.Viable, parlay.Reasons = s.classify(parlay)
	return parlay
}

// sampleOutcomes draws Iterations parlay outcomes. Legs sharing a team share
// a latent game factor weighted by CorrelationWeight, so stacked legs hit
// and miss together more often than independent draws would.
func (s *Simulator) sampleOutcomes(combo []engine.CandidatePick, probs []float64) []float64 {
	outcomes := make([]float64, s.config.Iterations)
	corr := s.config.CorrelationWeight

	for i := 0; i < s.config.Iterations; i++ {
		teamFactor := make(map[string]float64)
		hit := true
		for j, leg := range combo {
			team := normalize.CanonicalTeam(leg.Team)
			if _, ok := teamFactor[team]; !ok {
				teamFactor[team] = s.rng.Float64()
			}
			draw := corr*teamFactor[team] + (1-corr)*s.rng.Float64()
			if draw >= probs[j] {
				hit = false
			}
		}
		if hit {
			outcomes[i] = 1
		}
	}
	return outcomes
}

// classify applies the four viability gates.
func (s *Simulator) classify(p SimulatedParlay) (bool, []string) {
	var reasons []string
	if p.WinProbability < s.config.Thresholds.MinWinRate {
		reasons = append(reasons, fmt.Sprintf("win probability %.3f below minimum %.3f",
			p.WinProbability, s.config.Thresholds.MinWinRate))
	}
	if p.Edge < s.config.Thresholds.MinEdge {
		reasons = append(reasons, fmt.Sprintf("edge %.3f below minimum %.3f",
			p.Edge, s.config.Thresholds.MinEdge))
	}
	if p.RiskAdjusted < s.config.Thresholds.MinRiskAdjusted {
		reasons = append(reasons, fmt.Sprintf("risk-adjusted return %.3f below minimum %.3f",
			p.RiskAdjusted, s.config.Thresholds.MinRiskAdjusted))
	}
	if p.ExpectedValue < 0 {
		reasons = append(reasons, fmt.Sprintf("negative expected value %.3f", p.ExpectedValue))
	}
	return len(reasons) == 0, reasons
}

// legHitProbability estimates one leg's hit probability from its model
// confidence, blended with the trailing hit rate when one is known.
func legHitProbability(leg engine.CandidatePick) float64 {
	p := leg.Confidence
	if p == 0 {
		p = 0.5
	}
	if leg.HitRate != nil {
		p = 0.6*p + 0.4**leg.HitRate
	}
	return math.Min(0.98, math.Max(0.02, p))
}

// sendProgress emits a progress update without ever blocking the run on a
// slow consumer.
func (s *Simulator) sendProgress(progress chan<- Progress, p Progress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	default:
	}
}
