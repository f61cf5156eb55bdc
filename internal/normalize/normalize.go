// Package normalize maps free-form categorical slate inputs onto the fixed
// vocabulary the rule table is written against.
package normalize

import "strings"

// Canonical pace values
const (
	PaceSlow   = "slow"
	PaceMedium = "medium"
	PaceFast   = "fast"
)

// Canonical game-script values
const (
	ScriptBlowout     = "blowout"
	ScriptCompetitive = "competitive"
	ScriptShootout    = "shootout"
	ScriptGrind       = "grind"
	ScriptNeutral     = "neutral"
)

// paceAliases folds legacy pace vocabulary onto {slow, medium, fast}
var paceAliases = map[string]string{
	"slow":        PaceSlow,
	"plodding":    PaceSlow,
	"half-court":  PaceSlow,
	"halfcourt":   PaceSlow,
	"deliberate":  PaceSlow,
	"medium":      PaceMedium,
	"moderate":    PaceMedium,
	"average":     PaceMedium,
	"neutral":     PaceMedium,
	"fast":        PaceFast,
	"uptempo":     PaceFast,
	"up-tempo":    PaceFast,
	"breakneck":   PaceFast,
	"run-and-gun": PaceFast,
	"transition":  PaceFast,
}

var scriptAliases = map[string]string{
	"blowout":     ScriptBlowout,
	"rout":        ScriptBlowout,
	"laugher":     ScriptBlowout,
	"competitive": ScriptCompetitive,
	"close":       ScriptCompetitive,
	"tight":       ScriptCompetitive,
	"coin-flip":   ScriptCompetitive,
	"shootout":    ScriptShootout,
	"track-meet":  ScriptShootout,
	"high-total":  ScriptShootout,
	"grind":       ScriptGrind,
	"slugfest":    ScriptGrind,
	"rock-fight":  ScriptGrind,
	"defensive":   ScriptGrind,
	"neutral":     ScriptNeutral,
	"unknown":     ScriptNeutral,
}

// NormalizePace maps a free-form pace descriptor onto the canonical
// vocabulary. Unknown values return an empty string so rule checks treat
// them as no-match rather than guessing.
func NormalizePace(pace string) string {
	key := strings.ToLower(strings.TrimSpace(pace))
	if canonical, ok := paceAliases[key]; ok {
		return canonical
	}
	return ""
}

// NormalizeScript maps a free-form game-script descriptor onto the canonical
// vocabulary. Unknown values return an empty string.
func NormalizeScript(script string) string {
	key := strings.ToLower(strings.TrimSpace(script))
	if canonical, ok := scriptAliases[key]; ok {
		return canonical
	}
	return ""
}

// teamAliases resolves full team names and common shorthand to canonical
// abbreviations. Abbreviations themselves pass through unchanged.
var teamAliases = map[string]string{
	"atlanta hawks":          "ATL",
	"boston celtics":         "BOS",
	"brooklyn nets":          "BKN",
	"charlotte hornets":      "CHA",
	"chicago bulls":          "CHI",
	"cleveland cavaliers":    "CLE",
	"dallas mavericks":       "DAL",
	"denver nuggets":         "DEN",
	"detroit pistons":        "DET",
	"golden state warriors":  "GSW",
	"golden state":           "GSW",
	"houston rockets":        "HOU",
	"indiana pacers":         "IND",
	"la clippers":            "LAC",
	"los angeles clippers":   "LAC",
	"los angeles lakers":     "LAL",
	"memphis grizzlies":      "MEM",
	"miami heat":             "MIA",
	"milwaukee bucks":        "MIL",
	"minnesota timberwolves": "MIN",
	"new orleans pelicans":   "NOP",
	"new york knicks":        "NYK",
	"oklahoma city thunder":  "OKC",
	"orlando magic":          "ORL",
	"philadelphia 76ers":     "PHI",
	"phoenix suns":           "PHX",
	"portland trail blazers": "POR",
	"sacramento kings":       "SAC",
	"san antonio spurs":      "SAS",
	"toronto raptors":        "TOR",
	"utah jazz":              "UTA",
	"washington wizards":     "WAS",
}

// CanonicalTeam resolves a team name or alias to its canonical abbreviation.
// Inputs that already look like an abbreviation are uppercased and returned
// as-is, so lookups stay total even for teams outside the alias table.
func CanonicalTeam(team string) string {
	trimmed := strings.TrimSpace(team)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := teamAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return strings.ToUpper(trimmed)
}
