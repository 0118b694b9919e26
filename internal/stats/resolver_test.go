package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name      string
		stat      string
		statsType string
		want      string
	}{
		{"mapped per-game", "points", TypePerGame, "PTS_PER_GAME"},
		{"mapped totals", "assists", TypeTotals, "AST_TOTALS"},
		{"case-insensitive", "Points", TypePerGame, "PTS_PER_GAME"},
		{"whitespace-insensitive", "  rebounds  ", TypeTotals, "REB_TOTALS"},
		{"suffix-exempt percentage", "field goal percentage", TypeTotals, "FG_PCT"},
		{"suffix-exempt win pct", "win percentage", TypeTotals, "W_PCT"},
		{"suffix-exempt games played", "games played", TypePerGame, "GP"},
		{"suffix-exempt counts", "triple doubles", TypeTotals, "TD3"},
		{"unmapped falls back to upper-case", "vorp", TypePerGame, "VORP_PER_GAME"},
		{"unknown stats type defaults to per-game", "points", "advanced", "PTS_PER_GAME"},
		{"empty stats type defaults to per-game", "steals", "", "STL_PER_GAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.stat, tt.statsType))
		})
	}
}

func TestResolver_Deterministic(t *testing.T) {
	r := NewResolver(nil)

	first := r.Resolve("Points", TypePerGame)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Resolve("points", TypePerGame))
	}
}
