// Package stats maps human-readable stat names to the canonical column
// identifiers used in collected datasets.
package stats

import (
	"log/slog"
	"strings"
)

// Aggregation modes and the column suffixes they select.
const (
	TypePerGame = "per_game"
	TypeTotals  = "totals"

	suffixPerGame = "_PER_GAME"
	suffixTotals  = "_TOTALS"
)

// statColumns maps lower-cased human stat names to canonical codes.
var statColumns = map[string]string{
	"points":                   "PTS",
	"assists":                  "AST",
	"rebounds":                 "REB",
	"offensive rebounds":       "OREB",
	"defensive rebounds":       "DREB",
	"steals":                   "STL",
	"blocks":                   "BLK",
	"turnovers":                "TOV",
	"minutes":                  "MIN",
	"field goals made":         "FGM",
	"field goals attempted":    "FGA",
	"field goal percentage":    "FG_PCT",
	"three pointers made":      "FG3M",
	"three pointers attempted": "FG3A",
	"three point percentage":   "FG3_PCT",
	"free throws made":         "FTM",
	"free throws attempted":    "FTA",
	"free throw percentage":    "FT_PCT",
	"personal fouls":           "PF",
	"plus minus":               "PLUS_MINUS",
	"fantasy points":           "NBA_FANTASY_PTS",
	"games played":             "GP",
	"wins":                     "W",
	"losses":                   "L",
	"win percentage":           "W_PCT",
	"double doubles":           "DD2",
	"triple doubles":           "TD3",
	"age":                      "AGE",
}

// suffixExempt holds canonical codes that are stored once per row rather
// than per aggregation mode: rates, percentages, counts, and identity
// fields. These never receive a stats-type suffix.
var suffixExempt = map[string]struct{}{
	"W_PCT":             {},
	"GP":                {},
	"FG_PCT":            {},
	"FG3_PCT":           {},
	"FT_PCT":            {},
	"AGE":               {},
	"NICKNAME":          {},
	"TEAM_ABBREVIATION": {},
	"DD2":               {},
	"TD3":               {},
}

// Resolver converts stat names to column identifiers. Resolution is pure:
// the same inputs always yield the same column id.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a resolver. A nil logger falls back to slog.Default.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve maps a human stat name and an aggregation mode to a canonical
// column id. Unmapped names fall back to the upper-cased input verbatim.
// Suffix-exempt codes are returned unchanged; all others receive the
// suffix selected by statsType. An unrecognized statsType logs a warning
// and defaults to the per-game suffix.
func (r *Resolver) Resolve(statName, statsType string) string {
	key := strings.ToLower(strings.TrimSpace(statName))

	code, ok := statColumns[key]
	if !ok {
		code = strings.ToUpper(key)
	}

	if _, exempt := suffixExempt[code]; exempt {
		return code
	}

	switch statsType {
	case TypePerGame:
		return code + suffixPerGame
	case TypeTotals:
		return code + suffixTotals
	default:
		r.logger.Warn("Unrecognized stats type, defaulting to per-game",
			"stats_type", statsType, "stat", statName)
		return code + suffixPerGame
	}
}
