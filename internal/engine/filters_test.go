package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestCheckArchetype(t *testing.T) {
	// No archetype tag passes unconditionally
	pass, reason := CheckArchetype(CandidatePick{Player: "Test", StatType: "points"})
	assert.True(t, pass)
	assert.Empty(t, reason)

	// Blocked stat for a known archetype
	pass, reason = CheckArchetype(CandidatePick{
		Player:    "Rudy Gobert",
		Archetype: "rim-runner",
		StatType:  "threes",
	})
	assert.False(t, pass)
	assert.Contains(t, reason, "rim-runner")

	// Category override allows the otherwise-blocked stat
	pass, _ = CheckArchetype(CandidatePick{
		Player:    "Draymond Green",
		Archetype: "rim-runner",
		Category:  "floor-general-over",
		StatType:  "assists",
	})
	assert.True(t, pass)

	// Unknown archetypes never block
	pass, _ = CheckArchetype(CandidatePick{
		Player:    "Test",
		Archetype: "three-level-scorer",
		StatType:  "points",
	})
	assert.True(t, pass)
}

func TestCheckHeadToHead_InsufficientEvidencePasses(t *testing.T) {
	pick := CandidatePick{Player: "Test", Side: SideOver, Line: 20.5}

	pass, _ := CheckHeadToHead(pick, nil)
	assert.True(t, pass, "no record should pass")

	pass, _ = CheckHeadToHead(pick, &HeadToHeadRecord{Games: 1, OverHitRate: 0})
	assert.True(t, pass, "single game should pass")

	// Two games: no blocking check requires fewer than three
	pass, _ = CheckHeadToHead(pick, &HeadToHeadRecord{Games: 2, OverHitRate: 0, AvgValue: 2})
	assert.True(t, pass, "two games is still insufficient evidence")
}

func TestCheckHeadToHead_BlocksLowSideHitRate(t *testing.T) {
	over := CandidatePick{Player: "Test", Side: SideOver, Line: 20.5}
	under := CandidatePick{Player: "Test", Side: SideUnder, Line: 20.5}

	rec := &HeadToHeadRecord{Games: 4, AvgValue: 20.0, OverHitRate: 0.25, UnderHitRate: 0.75}

	pass, reason := CheckHeadToHead(over, rec)
	assert.False(t, pass)
	assert.Contains(t, reason, "hit rate")

	// The same record blocks only the side with the poor rate
	pass, _ = CheckHeadToHead(under, rec)
	assert.True(t, pass)
}

func TestCheckHeadToHead_BlocksAverageFarFromLine(t *testing.T) {
	over := CandidatePick{Player: "Test", Side: SideOver, Line: 20.5}
	pass, reason := CheckHeadToHead(over, &HeadToHeadRecord{
		Games: 3, AvgValue: 12.0, OverHitRate: 0.67, UnderHitRate: 0.33,
	})
	assert.False(t, pass, "average below 75%% of the line should block an over")
	assert.Contains(t, reason, "below line")

	under := CandidatePick{Player: "Test", Side: SideUnder, Line: 20.5}
	pass, reason = CheckHeadToHead(under, &HeadToHeadRecord{
		Games: 3, AvgValue: 28.0, OverHitRate: 0.33, UnderHitRate: 0.67,
	})
	assert.False(t, pass, "average above 125%% of the line should block an under")
	assert.Contains(t, reason, "above line")

	// Averages near the line pass
	pass, _ = CheckHeadToHead(over, &HeadToHeadRecord{
		Games: 3, AvgValue: 19.0, OverHitRate: 0.67, UnderHitRate: 0.33,
	})
	assert.True(t, pass)
}

func TestValidatePattern_NoRulePassesWithZero(t *testing.T) {
	result := ValidatePattern(CandidatePick{
		Player: "Test", Category: "", StatType: "points", Line: 20.5, Side: SideOver,
	}, nil, nil, DefaultValidationConfig())
	assert.True(t, result.Pass)
	assert.Equal(t, 0.0, result.Score)
}

func TestValidatePattern_LineBoundsHardFail(t *testing.T) {
	result := ValidatePattern(CandidatePick{
		Player: "Test", Category: "glass-cleaner-over", StatType: "rebounds",
		Line: 16.5, Side: SideOver,
	}, nil, nil, DefaultValidationConfig())
	assert.False(t, result.Pass)
	assert.Equal(t, 0.0, result.Score)
	assert.Contains(t, result.Reason, "outside")
}

func TestValidatePattern_WorkedExampleScoresNine(t *testing.T) {
	// Line in bounds (+2), preferred pace slow (+2), total 210 under the 222
	// ceiling (+2), script competitive in the preferred set (+3) = 9.
	env := &GameEnvironment{
		ExpectedTotal: 210,
		Pace:          "slow",
		Script:        "competitive",
		GrindFactor:   0.4,
		Opponent:      "POR",
	}
	result := ValidatePattern(CandidatePick{
		Player: "Domantas Sabonis", Category: "glass-cleaner-over",
		StatType: "rebounds", Line: 9.5, Side: SideOver,
	}, env, nil, DefaultValidationConfig())

	assert.True(t, result.Pass)
	assert.Equal(t, 9.0, result.Score)
}

func TestValidatePattern_MissingContextSoftPenalty(t *testing.T) {
	// Rule references script/pace/total but no environment exists:
	// line (+2) plus the configured penalty (-2), and the candidate passes.
	result := ValidatePattern(CandidatePick{
		Player: "Test", Category: "glass-cleaner-over",
		StatType: "rebounds", Line: 9.5, Side: SideOver,
	}, nil, nil, DefaultValidationConfig())

	assert.True(t, result.Pass)
	assert.Equal(t, 0.0, result.Score)
	assert.Contains(t, result.Reason, "no game environment")
}

func TestValidatePattern_ExcludedScriptHardFail(t *testing.T) {
	env := &GameEnvironment{ExpectedTotal: 230, Pace: "fast", Script: "blowout", Opponent: "PHX"}
	result := ValidatePattern(CandidatePick{
		Player: "Test", Category: "elite-scorer-over",
		StatType: "points", Line: 28.5, Side: SideOver,
	}, env, nil, DefaultValidationConfig())

	assert.False(t, result.Pass)
	assert.Contains(t, result.Reason, "excluded")
}

func TestValidatePattern_GrindFactorAdjustments(t *testing.T) {
	// Under picks get +1 at grind factor >= 0.65
	env := &GameEnvironment{ExpectedTotal: 212, Pace: "slow", Script: "grind", GrindFactor: 0.72, Opponent: "DET"}
	rank := intPtr(5)
	result := ValidatePattern(CandidatePick{
		Player: "Test", Category: "grinder-points-under",
		StatType: "points", Line: 22.5, Side: SideUnder,
	}, env, rank, DefaultValidationConfig())

	assert.True(t, result.Pass)
	// line +2, script +3, pace +2, max total +2, grind +1, rank +4
	assert.Equal(t, 14.0, result.Score)

	// Over points picks get -1 at grind factor >= 0.75
	env = &GameEnvironment{ExpectedTotal: 230, Pace: "fast", Script: "shootout", GrindFactor: 0.8, Opponent: "PHX"}
	result = ValidatePattern(CandidatePick{
		Player: "Test", Category: "elite-scorer-over",
		StatType: "points", Line: 28.5, Side: SideOver,
	}, env, nil, DefaultValidationConfig())

	assert.True(t, result.Pass)
	// line +2, script +3, pace +2, min total +2, grind -1
	assert.Equal(t, 8.0, result.Score)
}

func TestValidatePattern_DefensiveRankBranches(t *testing.T) {
	env := &GameEnvironment{ExpectedTotal: 209, Pace: "slow", Script: "grind", GrindFactor: 0.8, Opponent: "SAS"}
	under := CandidatePick{
		Player: "Test", Category: "cold-shooter-under",
		StatType: "threes", Line: 2.5, Side: SideUnder,
	}

	// Unknown rank hard-blocks an under pick: defense context is mandatory
	// when fading a stat down
	result := ValidatePattern(under, env, nil, DefaultValidationConfig())
	assert.False(t, result.Pass)
	assert.Contains(t, result.Reason, "no defensive rank")

	// Favorable rank adds +4
	result = ValidatePattern(under, env, intPtr(6), DefaultValidationConfig())
	assert.True(t, result.Pass)
	// line +2, script +3, pace +2, max total +2, grind +1, rank +4
	assert.Equal(t, 14.0, result.Score)

	// Unfavorable rank hard-blocks unders
	result = ValidatePattern(under, env, intPtr(25), DefaultValidationConfig())
	assert.False(t, result.Pass)

	// The same unfavorable rank is only a soft penalty for overs
	overEnv := &GameEnvironment{ExpectedTotal: 229, Pace: "fast", Script: "competitive", GrindFactor: 0.2, Opponent: "WAS"}
	over := CandidatePick{
		Player: "Test", Category: "floor-general-over",
		StatType: "assists", Line: 8.5, Side: SideOver,
	}
	result = ValidatePattern(over, overEnv, intPtr(25), DefaultValidationConfig())
	assert.True(t, result.Pass)
	// line +2, script +3, pace +2, rank -2
	assert.Equal(t, 5.0, result.Score)

	// Missing rank is a soft -1 for overs
	result = ValidatePattern(over, overEnv, nil, DefaultValidationConfig())
	assert.True(t, result.Pass)
	// line +2, script +3, pace +2, missing rank -1
	assert.Equal(t, 6.0, result.Score)
}
