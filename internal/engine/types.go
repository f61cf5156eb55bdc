package engine

import (
	"fmt"
	"strings"
)

// Side is the direction of a prop pick.
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// CandidatePick is one proposed leg as fetched from the projection feed.
// The engine never mutates a candidate; derived values (pattern score,
// trace) live on the trace row and the selected leg.
type CandidatePick struct {
	Player       string   `json:"player"`
	Team         string   `json:"team"`
	StatType     string   `json:"stat_type"`
	Line         float64  `json:"line"`
	Side         Side     `json:"side"`
	Confidence   float64  `json:"confidence"`
	Archetype    string   `json:"archetype,omitempty"`
	Category     string   `json:"category,omitempty"`
	HitRate      *float64 `json:"hit_rate,omitempty"`
	SampleSize   *int     `json:"sample_size,omitempty"`
	InjuryStatus string   `json:"injury_status,omitempty"`
}

// HeadToHeadRecord summarizes a player's history against one opponent for
// one stat type. Read-only reference data.
type HeadToHeadRecord struct {
	Games        int     `json:"games"`
	AvgValue     float64 `json:"avg_value"`
	OverHitRate  float64 `json:"over_hit_rate"`
	UnderHitRate float64 `json:"under_hit_rate"`
	MinValue     float64 `json:"min_value"`
	MaxValue     float64 `json:"max_value"`
}

// GameEnvironment describes the expected game context for one team on the
// slate. Absence of a record is a valid, handled state.
type GameEnvironment struct {
	ExpectedTotal float64 `json:"expected_total"`
	Pace          string  `json:"pace"`
	Script        string  `json:"script"`
	GrindFactor   float64 `json:"grind_factor"`
	Opponent      string  `json:"opponent"`
}

// Snapshot is the frozen slate: every input the builder consumes, flattened
// to plain key/value maps so it round-trips losslessly through JSON. Golden
// regression tests replay captured snapshots.
type Snapshot struct {
	SlateDate      string                      `json:"slate_date"`
	PresetID       string                      `json:"preset_id"`
	Candidates     []CandidatePick             `json:"candidates"`
	HeadToHead     map[string]HeadToHeadRecord `json:"head_to_head"`
	Environments   map[string]GameEnvironment  `json:"environments"`
	DefensiveRanks map[string]int              `json:"defensive_ranks"`
}

// HeadToHeadKey builds the flattened lookup key for a head-to-head record.
func HeadToHeadKey(player, opponent, statType string) string {
	return fmt.Sprintf("%s|%s|%s",
		strings.ToLower(strings.TrimSpace(player)),
		strings.ToUpper(strings.TrimSpace(opponent)),
		strings.ToLower(strings.TrimSpace(statType)))
}

// DefensiveRankKey builds the flattened lookup key for a defensive rank.
func DefensiveRankKey(team, statType string) string {
	return fmt.Sprintf("%s|%s",
		strings.ToUpper(strings.TrimSpace(team)),
		strings.ToLower(strings.TrimSpace(statType)))
}

// ScoreBreakdown decomposes a candidate's final score into its weighted
// contributions so the trace can explain every ranking decision.
type ScoreBreakdown struct {
	Pattern        float64 `json:"pattern"`
	Reliability    float64 `json:"reliability"`
	Confidence     float64 `json:"confidence"`
	MissingPenalty float64 `json:"missing_penalty"`
	SamplePenalty  float64 `json:"sample_penalty"`
	Total          float64 `json:"total"`
}

// TraceRow is the per-candidate audit record: what each filter decided, the
// score decomposition, and the final selected/rejected status.
type TraceRow struct {
	Player           string         `json:"player"`
	Team             string         `json:"team"`
	StatType         string         `json:"stat_type"`
	Line             float64        `json:"line"`
	Side             Side           `json:"side"`
	Category         string         `json:"category,omitempty"`
	ArchetypePass    bool           `json:"archetype_pass"`
	ArchetypeReason  string         `json:"archetype_reason,omitempty"`
	HeadToHeadPass   bool           `json:"head_to_head_pass"`
	HeadToHeadReason string         `json:"head_to_head_reason,omitempty"`
	PatternPass      bool           `json:"pattern_pass"`
	PatternScore     float64        `json:"pattern_score"`
	PatternReason    string         `json:"pattern_reason,omitempty"`
	Breakdown        ScoreBreakdown `json:"breakdown"`
	Selected         bool           `json:"selected"`
	Outcome          string         `json:"outcome"`
}

// SelectedLeg is one leg of the finished card with its resolved context.
type SelectedLeg struct {
	Pick          CandidatePick     `json:"pick"`
	HeadToHead    *HeadToHeadRecord `json:"head_to_head,omitempty"`
	Environment   *GameEnvironment  `json:"environment,omitempty"`
	DefensiveRank *int              `json:"defensive_rank,omitempty"`
	PatternScore  float64           `json:"pattern_score"`
	Breakdown     ScoreBreakdown    `json:"breakdown"`
	FilledBy      string            `json:"filled_by"` // formula slot category or "fallback"
}

// Diagnostics aggregates per-stage counts so an empty card can still
// explain itself.
type Diagnostics struct {
	TotalCandidates   int `json:"total_candidates"`
	MissingFields     int `json:"missing_fields"`
	BlockedArchetype  int `json:"blocked_archetype"`
	BlockedHeadToHead int `json:"blocked_head_to_head"`
	BlockedPattern    int `json:"blocked_pattern"`
	Validated         int `json:"validated"`
	FormulaFilled     int `json:"formula_filled"`
	FallbackFilled    int `json:"fallback_filled"`
}

// BuilderOutput is the full result of one build: the ordered legs, the
// complete decision trace, and aggregate diagnostics. Everything is computed
// fresh per call; nothing is cached across invocations.
type BuilderOutput struct {
	SlateDate   string        `json:"slate_date"`
	Preset      string        `json:"preset"`
	Legs        []SelectedLeg `json:"legs"`
	Trace       []TraceRow    `json:"trace"`
	Diagnostics Diagnostics   `json:"diagnostics"`
}
