package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormulaSumsToTargetLegCount(t *testing.T) {
	total := 0
	for _, slot := range Formula {
		assert.Greater(t, slot.Count, 0, "slot %s must require at least one leg", slot.Category)
		total += slot.Count
	}
	assert.Equal(t, TargetLegCount, total)
}

func TestFormulaSlotsReferenceKnownCategories(t *testing.T) {
	for _, slot := range Formula {
		rule, ok := RuleFor(slot.Category)
		require.True(t, ok, "formula slot %s has no rule table entry", slot.Category)
		assert.Equal(t, slot.Category, rule.Category)
	}
}

func TestRuleFor(t *testing.T) {
	rule, ok := RuleFor("glass-cleaner-over")
	require.True(t, ok)
	assert.Equal(t, "rebounds", rule.StatType)
	assert.Equal(t, 7.5, rule.MinLine)
	assert.Equal(t, 14.5, rule.MaxLine)
	assert.Equal(t, 222.0, rule.MaxTotal)

	_, ok = RuleFor("retired-category")
	assert.False(t, ok)

	// Lookup is case and whitespace insensitive
	_, ok = RuleFor("  Glass-Cleaner-Over ")
	assert.True(t, ok)
}

func TestWantsContext(t *testing.T) {
	assert.True(t, CategoryTable["elite-scorer-over"].WantsContext())
	assert.False(t, CategoryTable["stocks-over"].WantsContext())
}

func TestArchetypeBlocked(t *testing.T) {
	// Unknown archetypes pass unconditionally
	assert.False(t, ArchetypeBlocked("unknown-archetype", "elite-scorer-over", "points"))
	assert.False(t, ArchetypeBlocked("", "elite-scorer-over", "points"))

	// Blocked stat for a known archetype
	assert.True(t, ArchetypeBlocked("rim-runner", "elite-scorer-over", "threes"))
	assert.True(t, ArchetypeBlocked("catch-and-shoot", "elite-scorer-over", "rebounds"))

	// Non-blocked stat passes
	assert.False(t, ArchetypeBlocked("rim-runner", "elite-scorer-over", "points"))
}

func TestCategoryOverrideBeatsArchetypeBlock(t *testing.T) {
	// rim-runner is assist-blocked in general...
	assert.True(t, ArchetypeBlocked("rim-runner", "elite-scorer-over", "assists"))
	// ...but the passing category override whitelists assists
	assert.False(t, ArchetypeBlocked("rim-runner", "floor-general-over", "assists"))
	// and the rebounding category override whitelists rebounds
	assert.False(t, ArchetypeBlocked("catch-and-shoot", "glass-cleaner-over", "rebounds"))
}

func TestPresetByName(t *testing.T) {
	preset, ok := PresetByName("sharp")
	assert.True(t, ok)
	assert.Equal(t, "sharp", preset.Name)

	preset, ok = PresetByName("Reliability-Max")
	assert.True(t, ok)
	assert.Equal(t, "reliability-max", preset.Name)

	// Unknown names fall back to balanced
	preset, ok = PresetByName("degenerate")
	assert.False(t, ok)
	assert.Equal(t, "balanced", preset.Name)
}

func TestPresetPenaltyDominatesDefaultFill(t *testing.T) {
	// The missing-reliability penalty must outweigh the default-fill bonus
	// for every preset, so a candidate with an unknown signal can never beat
	// an otherwise-identical candidate with a known, equal-or-lower value.
	for _, preset := range Presets() {
		defaultFill := preset.DefaultReliability * preset.ReliabilityWeight
		assert.LessOrEqual(t, defaultFill+preset.MissingReliabilityPenalty, 0.0,
			"preset %s: penalty %f does not dominate default fill %f",
			preset.Name, preset.MissingReliabilityPenalty, defaultFill)
	}
}
