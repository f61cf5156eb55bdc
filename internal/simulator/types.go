package simulator

import (
	"time"

	"github.com/google/uuid"

	"github.com/slatewise/parlayforge/internal/engine"
)

// Config parameterizes a simulation run. Zero values fall back to the
// defaults below.
type Config struct {
	TargetLegs        int     `json:"target_legs"`
	MaxCombinations   int     `json:"max_combinations"`
	Iterations        int     `json:"iterations"`
	ClosedFormWeight  float64 `json:"closed_form_weight"`  // blend weight of the analytic estimate
	CorrelationWeight float64 `json:"correlation_weight"`  // 0 = independent legs
	PayoutMultiplier  float64 `json:"payout_multiplier"`   // assumed parlay payout
	Thresholds        Thresholds
}

// Thresholds are the four viability gates a combination must clear.
type Thresholds struct {
	MinWinRate      float64 `json:"min_win_rate"`
	MinEdge         float64 `json:"min_edge"`
	MinRiskAdjusted float64 `json:"min_risk_adjusted"`
}

// DefaultConfig returns the shipped simulation configuration.
func DefaultConfig() Config {
	return Config{
		TargetLegs:        4,
		MaxCombinations:   100,
		Iterations:        2000,
		ClosedFormWeight:  0.4,
		CorrelationWeight: 0.3,
		PayoutMultiplier:  10.0,
		Thresholds: Thresholds{
			MinWinRate:      0.08,
			MinEdge:         0.0,
			MinRiskAdjusted: 0.0,
		},
	}
}

// SimulatedParlay is one evaluated combination with its simulation result
// and viability verdict.
type SimulatedParlay struct {
	ID                 uuid.UUID              `json:"id"`
	Legs               []engine.CandidatePick `json:"legs"`
	WinProbability     float64                `json:"win_probability"`
	ImpliedProbability float64                `json:"implied_probability"`
	Edge               float64                `json:"edge"`
	RiskAdjusted       float64                `json:"risk_adjusted"`
	ExpectedValue      float64                `json:"expected_value"`
	Viable             bool                   `json:"viable"`
	Reasons            []string               `json:"reasons,omitempty"`
}

// Progress is an incrementally updated progress record for live reporting.
type Progress struct {
	Stage     string        `json:"stage"` // generating, simulating, ranking, completed, cancelled
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Elapsed   time.Duration `json:"elapsed"`
	Timestamp time.Time     `json:"timestamp"`
}

// Report is the outcome of a simulation run. A cancelled run still carries
// every combination evaluated and ranked before the cancellation.
type Report struct {
	Parlays       []SimulatedParlay `json:"parlays"`
	ViableCount   int               `json:"viable_count"`
	Evaluated     int               `json:"evaluated"`
	Cancelled     bool              `json:"cancelled"`
	ExecutionTime time.Duration     `json:"execution_time"`
}
