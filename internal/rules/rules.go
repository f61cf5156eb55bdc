// Package rules holds the static betting-pattern configuration: per-category
// validation rules, the archetype/prop block table, the formula slot list,
// and the scoring weight presets. Nothing here is derived from live data.
package rules

import "strings"

// TargetLegCount is the number of legs a finished card carries.
const TargetLegCount = 6

// TeamCap is the maximum number of selected legs per team.
const TeamCap = 1

// PatternRule describes the validation rule for one category.
// Zero-valued bounds mean the bound is not enforced.
type PatternRule struct {
	Category         string   `json:"category"`
	StatType         string   `json:"stat_type"`
	MinLine          float64  `json:"min_line,omitempty"`
	MaxLine          float64  `json:"max_line,omitempty"`
	PreferredScripts []string `json:"preferred_scripts,omitempty"`
	ExcludedScripts  []string `json:"excluded_scripts,omitempty"`
	PreferredPaces   []string `json:"preferred_paces,omitempty"`
	MinTotal         float64  `json:"min_total,omitempty"`
	MaxTotal         float64  `json:"max_total,omitempty"`
	MaxDefensiveRank int      `json:"max_defensive_rank,omitempty"` // 0 = no rank requirement
}

// WantsContext reports whether the rule references any game-environment
// signal (script, pace, or total). Rules that do degrade to a soft penalty
// when the environment is missing instead of hard-blocking.
func (r PatternRule) WantsContext() bool {
	return len(r.PreferredScripts) > 0 || len(r.ExcludedScripts) > 0 ||
		len(r.PreferredPaces) > 0 || r.MinTotal > 0 || r.MaxTotal > 0
}

// CategoryTable is the canonical category rule set. Earlier iterations of
// this table (dropped or renamed categories) are not carried.
var CategoryTable = map[string]PatternRule{
	"elite-scorer-over": {
		Category:         "elite-scorer-over",
		StatType:         "points",
		MinLine:          22.5,
		MaxLine:          34.5,
		PreferredScripts: []string{"shootout", "competitive"},
		ExcludedScripts:  []string{"blowout"},
		PreferredPaces:   []string{"fast"},
		MinTotal:         224,
	},
	"glass-cleaner-over": {
		Category:         "glass-cleaner-over",
		StatType:         "rebounds",
		MinLine:          7.5,
		MaxLine:          14.5,
		PreferredScripts: []string{"competitive", "grind"},
		PreferredPaces:   []string{"slow"},
		MaxTotal:         222,
	},
	"floor-general-over": {
		Category:         "floor-general-over",
		StatType:         "assists",
		MinLine:          5.5,
		MaxLine:          11.5,
		PreferredScripts: []string{"competitive"},
		ExcludedScripts:  []string{"blowout"},
		PreferredPaces:   []string{"fast", "medium"},
		MaxDefensiveRank: 12,
	},
	"grinder-points-under": {
		Category:         "grinder-points-under",
		StatType:         "points",
		MinLine:          14.5,
		MaxLine:          28.5,
		PreferredScripts: []string{"grind"},
		ExcludedScripts:  []string{"shootout"},
		PreferredPaces:   []string{"slow"},
		MaxTotal:         218,
		MaxDefensiveRank: 8,
	},
	"cold-shooter-under": {
		Category:         "cold-shooter-under",
		StatType:         "threes",
		MinLine:          1.5,
		MaxLine:          4.5,
		PreferredScripts: []string{"grind", "competitive"},
		PreferredPaces:   []string{"slow"},
		MaxTotal:         221,
		MaxDefensiveRank: 10,
	},
	"stocks-over": {
		Category: "stocks-over",
		StatType: "stocks",
		MinLine:  1.5,
		MaxLine:  3.5,
	},
}

// RuleFor returns the pattern rule for a category, if one exists.
func RuleFor(category string) (PatternRule, bool) {
	rule, ok := CategoryTable[strings.ToLower(strings.TrimSpace(category))]
	return rule, ok
}

// ArchetypeBlocks maps a player archetype to the prop stat types that
// archetype is known to perform poorly at. Unknown archetypes are never
// blocked.
var ArchetypeBlocks = map[string][]string{
	"rim-runner":      {"threes", "assists"},
	"catch-and-shoot": {"rebounds", "assists"},
	"post-anchor":     {"threes"},
	"defensive-ace":   {"points", "threes"},
	"heliocentric":    {"stocks"},
}

// CategoryOverrides whitelists category+stat combinations that are known
// exceptions to the archetype block table. A point-of-attack passing
// category stays valid for assist props even for otherwise assist-blocked
// archetypes.
var CategoryOverrides = map[string][]string{
	"floor-general-over": {"assists"},
	"glass-cleaner-over": {"rebounds"},
}

// ArchetypeBlocked reports whether the archetype is blocked from the stat
// type, accounting for category overrides.
func ArchetypeBlocked(archetype, category, statType string) bool {
	blocked, ok := ArchetypeBlocks[strings.ToLower(strings.TrimSpace(archetype))]
	if !ok {
		return false
	}
	stat := strings.ToLower(strings.TrimSpace(statType))
	found := false
	for _, b := range blocked {
		if b == stat {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, allowed := range CategoryOverrides[strings.ToLower(strings.TrimSpace(category))] {
		if allowed == stat {
			return false
		}
	}
	return true
}

// FormulaSlot is one ordered entry in the leg formula: fill Count legs from
// Category on Side before moving to the next slot.
type FormulaSlot struct {
	Category string `json:"category"`
	Side     string `json:"side"`
	Count    int    `json:"count"`
}

// Formula is the canonical slot list. Slot counts sum to TargetLegCount;
// anything the formula cannot fill comes from the fallback pass.
var Formula = []FormulaSlot{
	{Category: "glass-cleaner-over", Side: "over", Count: 1},
	{Category: "elite-scorer-over", Side: "over", Count: 2},
	{Category: "floor-general-over", Side: "over", Count: 1},
	{Category: "grinder-points-under", Side: "under", Count: 1},
	{Category: "cold-shooter-under", Side: "under", Count: 1},
}

// WeightPreset parameterizes the scoring function. The active preset is
// always an explicit argument to scoring and selection calls.
type WeightPreset struct {
	Name                      string  `json:"name"`
	PatternWeight             float64 `json:"pattern_weight"`
	ReliabilityWeight         float64 `json:"reliability_weight"`
	ConfidenceWeight          float64 `json:"confidence_weight"`
	DefaultReliability        float64 `json:"default_reliability"`
	DefaultConfidence         float64 `json:"default_confidence"`
	MissingReliabilityPenalty float64 `json:"missing_reliability_penalty"`
}

// The three shipped presets. The missing-reliability penalty always exceeds
// the default-fill contribution (DefaultReliability * ReliabilityWeight) so
// an unknown signal can never beat a known one.
var (
	PresetBalanced = WeightPreset{
		Name:                      "balanced",
		PatternWeight:             0.40,
		ReliabilityWeight:         0.35,
		ConfidenceWeight:          0.25,
		DefaultReliability:        0.50,
		DefaultConfidence:         0.60,
		MissingReliabilityPenalty: -0.25,
	}

	PresetReliabilityMax = WeightPreset{
		Name:                      "reliability-max",
		PatternWeight:             0.25,
		ReliabilityWeight:         0.60,
		ConfidenceWeight:          0.15,
		DefaultReliability:        0.45,
		DefaultConfidence:         0.60,
		MissingReliabilityPenalty: -0.35,
	}

	PresetSharp = WeightPreset{
		Name:                      "sharp",
		PatternWeight:             0.55,
		ReliabilityWeight:         0.25,
		ConfidenceWeight:          0.20,
		DefaultReliability:        0.50,
		DefaultConfidence:         0.65,
		MissingReliabilityPenalty: -0.20,
	}
)

// Presets lists every shipped preset.
func Presets() []WeightPreset {
	return []WeightPreset{PresetBalanced, PresetReliabilityMax, PresetSharp}
}

// PresetByName resolves a preset identifier. Unknown names fall back to the
// balanced preset.
func PresetByName(name string) (WeightPreset, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "balanced", "":
		return PresetBalanced, name != ""
	case "reliability-max", "reliability_max", "reliabilitymax":
		return PresetReliabilityMax, true
	case "sharp":
		return PresetSharp, true
	default:
		return PresetBalanced, false
	}
}
