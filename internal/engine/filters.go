package engine

import (
	"fmt"
	"strings"

	"github.com/slatewise/parlayforge/internal/normalize"
	"github.com/slatewise/parlayforge/internal/rules"
)

// Head-to-head filter thresholds. Fewer than minH2HGames recorded means the
// history is too thin to block on.
const (
	minH2HGames       = 2
	minH2HBlockGames  = 3
	minSideHitRate    = 0.40
	overAvgFloorRatio = 0.75
	underAvgCeilRatio = 1.25
)

// ValidationConfig carries the soft-penalty knobs for pattern validation.
type ValidationConfig struct {
	// MissingContextPenalty is applied when a rule references game context
	// (script, pace, or total) but no environment record exists for the
	// candidate's team. Soft: the candidate still passes.
	MissingContextPenalty float64
}

// DefaultValidationConfig returns the shipped penalty configuration.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{MissingContextPenalty: -2}
}

// CheckArchetype applies the archetype/prop alignment filter. Candidates
// with no archetype tag pass unconditionally.
func CheckArchetype(c CandidatePick) (bool, string) {
	if strings.TrimSpace(c.Archetype) == "" {
		return true, ""
	}
	if rules.ArchetypeBlocked(c.Archetype, c.Category, c.StatType) {
		return false, fmt.Sprintf("archetype %s blocked from %s props", c.Archetype, strings.ToLower(c.StatType))
	}
	return true, ""
}

// CheckHeadToHead applies the head-to-head history filter. A nil record or
// one with fewer than two games passes unconditionally: there is not enough
// evidence to block.
func CheckHeadToHead(c CandidatePick, rec *HeadToHeadRecord) (bool, string) {
	if rec == nil || rec.Games < minH2HGames {
		return true, ""
	}

	if rec.Games >= minH2HBlockGames {
		sideRate := rec.OverHitRate
		if c.Side == SideUnder {
			sideRate = rec.UnderHitRate
		}
		if sideRate < minSideHitRate {
			return false, fmt.Sprintf("%s hit rate %.0f%% below %.0f%% over %d matchups",
				c.Side, sideRate*100, minSideHitRate*100, rec.Games)
		}

		if c.Side == SideOver && rec.AvgValue < c.Line*overAvgFloorRatio {
			return false, fmt.Sprintf("matchup average %.1f well below line %.1f", rec.AvgValue, c.Line)
		}
		if c.Side == SideUnder && rec.AvgValue > c.Line*underAvgCeilRatio {
			return false, fmt.Sprintf("matchup average %.1f well above line %.1f", rec.AvgValue, c.Line)
		}
	}

	return true, ""
}

// PatternResult is the outcome of pattern-rule validation: a pass/fail
// decision, the accumulated pattern score, and a reason string used only
// for diagnostics.
type PatternResult struct {
	Pass   bool
	Score  float64
	Reason string
}

// ValidatePattern evaluates a candidate against its category's pattern rule.
// Candidates without a rule pass with score zero. The check order is fixed;
// hard blocks stop evaluation, soft penalties accumulate into the score.
func ValidatePattern(c CandidatePick, env *GameEnvironment, rank *int, cfg ValidationConfig) PatternResult {
	rule, ok := rules.RuleFor(c.Category)
	if !ok {
		return PatternResult{Pass: true, Score: 0, Reason: "no pattern rule for category"}
	}

	var reasons []string
	score := 0.0

	// Line bounds are a hard gate
	if (rule.MinLine > 0 && c.Line < rule.MinLine) || (rule.MaxLine > 0 && c.Line > rule.MaxLine) {
		return PatternResult{
			Pass:   false,
			Score:  0,
			Reason: fmt.Sprintf("line %.1f outside [%.1f, %.1f]", c.Line, rule.MinLine, rule.MaxLine),
		}
	}
	score += 2
	reasons = append(reasons, "line within bounds (+2)")

	// Context-dependent checks degrade to a soft penalty when the
	// environment is missing. Never a hard block for absent context alone.
	if rule.WantsContext() && env == nil {
		score += cfg.MissingContextPenalty
		reasons = append(reasons, fmt.Sprintf("no game environment (%+.0f)", cfg.MissingContextPenalty))
		return PatternResult{Pass: true, Score: score, Reason: strings.Join(reasons, "; ")}
	}

	if env != nil {
		script := normalize.NormalizeScript(env.Script)
		pace := normalize.NormalizePace(env.Pace)

		for _, excluded := range rule.ExcludedScripts {
			if script == excluded {
				reasons = append(reasons, fmt.Sprintf("script %s is excluded", script))
				return PatternResult{Pass: false, Score: score, Reason: strings.Join(reasons, "; ")}
			}
		}

		if len(rule.PreferredScripts) > 0 {
			if containsString(rule.PreferredScripts, script) {
				score += 3
				reasons = append(reasons, fmt.Sprintf("preferred script %s (+3)", script))
			} else {
				score--
				reasons = append(reasons, "script not preferred (-1)")
			}
		}

		if len(rule.PreferredPaces) > 0 {
			if containsString(rule.PreferredPaces, pace) {
				score += 2
				reasons = append(reasons, fmt.Sprintf("preferred pace %s (+2)", pace))
			} else {
				score--
				reasons = append(reasons, "pace not preferred (-1)")
			}
		}

		if rule.MaxTotal > 0 {
			if env.ExpectedTotal <= rule.MaxTotal {
				score += 2
				reasons = append(reasons, fmt.Sprintf("total %.0f under ceiling %.0f (+2)", env.ExpectedTotal, rule.MaxTotal))
			} else {
				score -= 2
				reasons = append(reasons, fmt.Sprintf("total %.0f over ceiling %.0f (-2)", env.ExpectedTotal, rule.MaxTotal))
			}
		}

		if rule.MinTotal > 0 {
			if env.ExpectedTotal >= rule.MinTotal {
				score += 2
				reasons = append(reasons, fmt.Sprintf("total %.0f over floor %.0f (+2)", env.ExpectedTotal, rule.MinTotal))
			} else {
				score--
				reasons = append(reasons, fmt.Sprintf("total %.0f under floor %.0f (-1)", env.ExpectedTotal, rule.MinTotal))
			}
		}

		if c.Side == SideUnder && env.GrindFactor >= 0.65 {
			score++
			reasons = append(reasons, fmt.Sprintf("grind factor %.2f favors under (+1)", env.GrindFactor))
		}
		if c.Side == SideOver && strings.EqualFold(c.StatType, "points") && env.GrindFactor >= 0.75 {
			score--
			reasons = append(reasons, fmt.Sprintf("grind factor %.2f fades points over (-1)", env.GrindFactor))
		}
	}

	if rule.MaxDefensiveRank > 0 {
		if rank == nil {
			// Defense context is mandatory when fading a stat down
			if c.Side == SideUnder {
				reasons = append(reasons, "no defensive rank for under pick")
				return PatternResult{Pass: false, Score: score, Reason: strings.Join(reasons, "; ")}
			}
			score--
			reasons = append(reasons, "no defensive rank (-1)")
		} else if *rank <= rule.MaxDefensiveRank {
			score += 4
			reasons = append(reasons, fmt.Sprintf("defensive rank %d within top %d (+4)", *rank, rule.MaxDefensiveRank))
		} else {
			if c.Side == SideUnder {
				reasons = append(reasons, fmt.Sprintf("defensive rank %d too weak for under", *rank))
				return PatternResult{Pass: false, Score: score, Reason: strings.Join(reasons, "; ")}
			}
			score -= 2
			reasons = append(reasons, fmt.Sprintf("defensive rank %d outside top %d (-2)", *rank, rule.MaxDefensiveRank))
		}
	}

	return PatternResult{Pass: true, Score: score, Reason: strings.Join(reasons, "; ")}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
