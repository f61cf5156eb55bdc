package simulator

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/slatewise/parlayforge/internal/engine"
	"github.com/slatewise/parlayforge/internal/normalize"
)

// maxLegsPerTeam is the combination-level team cap. Looser than the
// builder's: stacking two correlated legs from one game is a deliberate
// simulator strategy.
const maxLegsPerTeam = 2

// shuffleAttemptFactor bounds how many randomized draws supplement the
// greedy search before giving up.
const shuffleAttemptFactor = 10

// generateCombinations produces up to maxCombos distinct leg combinations:
// a depth-first walk over the confidence-sorted pool first, topped up with
// randomized shuffles when the greedy search underproduces. All randomness
// comes from the injected rng so runs are reproducible under test.
func generateCombinations(pool []engine.CandidatePick, targetLegs, maxCombos int, rng *rand.Rand) [][]engine.CandidatePick {
	if targetLegs <= 0 || len(pool) < targetLegs || maxCombos <= 0 {
		return nil
	}

	sorted := make([]engine.CandidatePick, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	combos := make([][]engine.CandidatePick, 0, maxCombos)
	seen := make(map[string]bool)

	var dfs func(start int, current []engine.CandidatePick)
	dfs = func(start int, current []engine.CandidatePick) {
		if len(combos) >= maxCombos {
			return
		}
		if len(current) == targetLegs {
			key := comboKey(current)
			if !seen[key] {
				seen[key] = true
				combos = append(combos, append([]engine.CandidatePick(nil), current...))
			}
			return
		}
		for i := start; i < len(sorted); i++ {
			if !legFits(current, sorted[i]) {
				continue
			}
			dfs(i+1, append(current, sorted[i]))
			if len(combos) >= maxCombos {
				return
			}
		}
	}
	dfs(0, make([]engine.CandidatePick, 0, targetLegs))

	// Supplement with randomized draws when the greedy walk underproduces
	for attempts := 0; len(combos) < maxCombos && attempts < maxCombos*shuffleAttemptFactor; attempts++ {
		shuffled := make([]engine.CandidatePick, len(sorted))
		copy(shuffled, sorted)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		combo := make([]engine.CandidatePick, 0, targetLegs)
		for _, c := range shuffled {
			if legFits(combo, c) {
				combo = append(combo, c)
				if len(combo) == targetLegs {
					break
				}
			}
		}
		if len(combo) < targetLegs {
			continue
		}
		key := comboKey(combo)
		if !seen[key] {
			seen[key] = true
			combos = append(combos, combo)
		}
	}

	return combos
}

// legFits enforces combination constraints: no repeated player and at most
// maxLegsPerTeam legs per team.
func legFits(combo []engine.CandidatePick, c engine.CandidatePick) bool {
	teamCount := 0
	team := normalize.CanonicalTeam(c.Team)
	for _, existing := range combo {
		if strings.EqualFold(existing.Player, c.Player) {
			return false
		}
		if normalize.CanonicalTeam(existing.Team) == team {
			teamCount++
		}
	}
	return teamCount < maxLegsPerTeam
}

// comboKey builds an order-insensitive identity for a combination.
func comboKey(combo []engine.CandidatePick) string {
	parts := make([]string, len(combo))
	for i, c := range combo {
		parts[i] = strings.ToLower(c.Player) + ":" + strings.ToLower(c.StatType) + ":" + string(c.Side)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}
