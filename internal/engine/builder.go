package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/slatewise/parlayforge/internal/normalize"
	"github.com/slatewise/parlayforge/internal/rules"
)

// Builder runs the candidate pipeline: filter, score, and greedy formula
// fill. It holds no per-call state, so one Builder is safe to share across
// concurrent callers as long as every call passes its own preset.
type Builder struct {
	config ValidationConfig
	logger *logrus.Logger
}

// NewBuilder creates a builder with the default validation configuration.
func NewBuilder(logger *logrus.Logger) *Builder {
	return &Builder{
		config: DefaultValidationConfig(),
		logger: logger,
	}
}

// NewBuilderWithConfig creates a builder with explicit validation knobs.
func NewBuilderWithConfig(config ValidationConfig, logger *logrus.Logger) *Builder {
	return &Builder{
		config: config,
		logger: logger,
	}
}

// validated pairs a surviving candidate with its resolved context and score.
type validated struct {
	pick         CandidatePick
	traceIndex   int
	headToHead   *HeadToHeadRecord
	environment  *GameEnvironment
	rank         *int
	patternScore float64
	breakdown    ScoreBreakdown
	used         bool
}

// Build runs the full pipeline over a frozen slate. The preset is explicit:
// identical snapshot and preset always produce identical output.
func (b *Builder) Build(snap *Snapshot, preset rules.WeightPreset) *BuilderOutput {
	output := &BuilderOutput{
		SlateDate: snap.SlateDate,
		Preset:    preset.Name,
		Legs:      []SelectedLeg{},
		Trace:     make([]TraceRow, 0, len(snap.Candidates)),
	}
	output.Diagnostics.TotalCandidates = len(snap.Candidates)

	pool := b.filterCandidates(snap, preset, output)
	b.fillFormula(pool, output)
	b.fillFallback(pool, output)

	if b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"slate_date":      snap.SlateDate,
			"preset":          preset.Name,
			"candidates":      output.Diagnostics.TotalCandidates,
			"validated":       output.Diagnostics.Validated,
			"legs_selected":   len(output.Legs),
			"formula_filled":  output.Diagnostics.FormulaFilled,
			"fallback_filled": output.Diagnostics.FallbackFilled,
		}).Info("Leg build completed")
	}

	return output
}

// filterCandidates runs every candidate through the three filters, scores
// the survivors, and records a trace row for each.
func (b *Builder) filterCandidates(snap *Snapshot, preset rules.WeightPreset, output *BuilderOutput) []*validated {
	pool := make([]*validated, 0, len(snap.Candidates))

	for _, c := range snap.Candidates {
		row := TraceRow{
			Player:   c.Player,
			Team:     c.Team,
			StatType: c.StatType,
			Line:     c.Line,
			Side:     c.Side,
			Category: c.Category,
		}

		if reason := missingRequiredFields(c); reason != "" {
			row.Outcome = reason
			output.Trace = append(output.Trace, row)
			output.Diagnostics.MissingFields++
			continue
		}

		env := lookupEnvironment(snap, c.Team)
		h2h := lookupHeadToHead(snap, c, env)
		rank := lookupDefensiveRank(snap, c, env)

		pass, reason := CheckArchetype(c)
		row.ArchetypePass = pass
		row.ArchetypeReason = reason
		if !pass {
			row.Outcome = "blocked: " + reason
			output.Trace = append(output.Trace, row)
			output.Diagnostics.BlockedArchetype++
			continue
		}

		pass, reason = CheckHeadToHead(c, h2h)
		row.HeadToHeadPass = pass
		row.HeadToHeadReason = reason
		if !pass {
			row.Outcome = "blocked: " + reason
			output.Trace = append(output.Trace, row)
			output.Diagnostics.BlockedHeadToHead++
			continue
		}

		result := ValidatePattern(c, env, rank, b.config)
		row.PatternPass = result.Pass
		row.PatternScore = result.Score
		row.PatternReason = result.Reason
		if !result.Pass {
			row.Outcome = "blocked: " + result.Reason
			output.Trace = append(output.Trace, row)
			output.Diagnostics.BlockedPattern++
			continue
		}

		breakdown := Score(c, result.Score, preset)
		row.Breakdown = breakdown
		row.Outcome = "validated"
		output.Trace = append(output.Trace, row)
		output.Diagnostics.Validated++

		pool = append(pool, &validated{
			pick:         c,
			traceIndex:   len(output.Trace) - 1,
			headToHead:   h2h,
			environment:  env,
			rank:         rank,
			patternScore: result.Score,
			breakdown:    breakdown,
		})
	}

	return pool
}

// fillFormula walks the formula slots in order, filling each from the
// highest-scoring matching candidates while enforcing player and team
// uniqueness.
func (b *Builder) fillFormula(pool []*validated, output *BuilderOutput) {
	usedPlayers := make(map[string]bool)
	usedTeams := make(map[string]int)

	for _, slot := range rules.Formula {
		if len(output.Legs) >= rules.TargetLegCount {
			break
		}

		matches := make([]*validated, 0)
		for _, v := range pool {
			if v.used {
				continue
			}
			if !strings.EqualFold(v.pick.Category, slot.Category) {
				continue
			}
			if !strings.EqualFold(string(v.pick.Side), slot.Side) {
				continue
			}
			if blockedByUniqueness(v.pick, usedPlayers, usedTeams) {
				continue
			}
			matches = append(matches, v)
		}
		sortByScore(matches)

		taken := 0
		for _, v := range matches {
			if taken >= slot.Count || len(output.Legs) >= rules.TargetLegCount {
				break
			}
			if blockedByUniqueness(v.pick, usedPlayers, usedTeams) {
				continue
			}
			b.selectLeg(v, slot.Category, output, usedPlayers, usedTeams)
			output.Diagnostics.FormulaFilled++
			taken++
		}
	}
}

// fillFallback tops the card up from all remaining validated candidates,
// score-sorted, ignoring category and side. Player and team uniqueness
// still hold; category/side diversity is intentionally not re-checked here.
func (b *Builder) fillFallback(pool []*validated, output *BuilderOutput) {
	if len(output.Legs) >= rules.TargetLegCount {
		return
	}

	usedPlayers := make(map[string]bool)
	usedTeams := make(map[string]int)
	b.rebuildUniqueness(output, usedPlayers, usedTeams)

	remaining := make([]*validated, 0)
	for _, v := range pool {
		if !v.used && !blockedByUniqueness(v.pick, usedPlayers, usedTeams) {
			remaining = append(remaining, v)
		}
	}
	sortByScore(remaining)

	for _, v := range remaining {
		if len(output.Legs) >= rules.TargetLegCount {
			break
		}
		if blockedByUniqueness(v.pick, usedPlayers, usedTeams) {
			continue
		}
		b.selectLeg(v, "fallback", output, usedPlayers, usedTeams)
		output.Diagnostics.FallbackFilled++
	}
}

func (b *Builder) selectLeg(v *validated, filledBy string, output *BuilderOutput, usedPlayers map[string]bool, usedTeams map[string]int) {
	v.used = true
	usedPlayers[strings.ToLower(v.pick.Player)] = true
	usedTeams[normalize.CanonicalTeam(v.pick.Team)]++

	output.Legs = append(output.Legs, SelectedLeg{
		Pick:          v.pick,
		HeadToHead:    v.headToHead,
		Environment:   v.environment,
		DefensiveRank: v.rank,
		PatternScore:  v.patternScore,
		Breakdown:     v.breakdown,
		FilledBy:      filledBy,
	})

	row := &output.Trace[v.traceIndex]
	row.Selected = true
	if filledBy == "fallback" {
		row.Outcome = "selected via fallback"
	} else {
		row.Outcome = fmt.Sprintf("selected via formula slot %s", filledBy)
	}
}

func (b *Builder) rebuildUniqueness(output *BuilderOutput, usedPlayers map[string]bool, usedTeams map[string]int) {
	for _, leg := range output.Legs {
		usedPlayers[strings.ToLower(leg.Pick.Player)] = true
		usedTeams[normalize.CanonicalTeam(leg.Pick.Team)]++
	}
}

func blockedByUniqueness(c CandidatePick, usedPlayers map[string]bool, usedTeams map[string]int) bool {
	if usedPlayers[strings.ToLower(c.Player)] {
		return true
	}
	return usedTeams[normalize.CanonicalTeam(c.Team)] >= rules.TeamCap
}

// sortByScore orders candidates by total score descending. The sort is
// stable so equal scores keep their snapshot order and repeated builds stay
// byte-identical.
func sortByScore(pool []*validated) {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].breakdown.Total > pool[j].breakdown.Total
	})
}

func missingRequiredFields(c CandidatePick) string {
	switch {
	case strings.TrimSpace(c.Player) == "":
		return "missing required field: player"
	case strings.TrimSpace(c.Team) == "":
		return "missing required field: team"
	case strings.TrimSpace(c.StatType) == "":
		return "missing required field: stat_type"
	case c.Line <= 0:
		return "missing required field: line"
	case c.Side != SideOver && c.Side != SideUnder:
		return "missing required field: side"
	}
	return ""
}

func lookupEnvironment(snap *Snapshot, team string) *GameEnvironment {
	if snap.Environments == nil {
		return nil
	}
	if env, ok := snap.Environments[normalize.CanonicalTeam(team)]; ok {
		return &env
	}
	return nil
}

func lookupHeadToHead(snap *Snapshot, c CandidatePick, env *GameEnvironment) *HeadToHeadRecord {
	if snap.HeadToHead == nil || env == nil || env.Opponent == "" {
		return nil
	}
	key := HeadToHeadKey(c.Player, normalize.CanonicalTeam(env.Opponent), c.StatType)
	if rec, ok := snap.HeadToHead[key]; ok {
		return &rec
	}
	return nil
}

func lookupDefensiveRank(snap *Snapshot, c CandidatePick, env *GameEnvironment) *int {
	if snap.DefensiveRanks == nil || env == nil || env.Opponent == "" {
		return nil
	}
	key := DefensiveRankKey(normalize.CanonicalTeam(env.Opponent), c.StatType)
	if rank, ok := snap.DefensiveRanks[key]; ok {
		return &rank
	}
	return nil
}
