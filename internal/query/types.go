// Package query implements the three-stage question pipeline: structured
// intent extraction, dataset retrieval, and answer composition.
package query

import "fmt"

// QueryIntent classifies what the question asks for.
type QueryIntent string

const (
	IntentPlayerStats      QueryIntent = "player_stats"
	IntentPlayerComparison QueryIntent = "player_comparison"
	IntentTeamStats        QueryIntent = "team_stats"
	IntentTeamComparison   QueryIntent = "team_comparison"
	IntentTopPerformers    QueryIntent = "top_performers"
	IntentSeasonAnalysis   QueryIntent = "season_analysis"

	// IntentGeneral is the fallback when analysis cannot classify the
	// question.
	IntentGeneral QueryIntent = "general"
)

// Entity selects the subject kind.
type Entity string

const (
	EntityPlayer Entity = "player"
	EntityTeam   Entity = "team"
)

// Timeframe is the time scope of the question.
type Timeframe string

const (
	TimeframeSeason Timeframe = "season"
	TimeframeCareer Timeframe = "career"
	TimeframeGame   Timeframe = "game"
	TimeframeRecent Timeframe = "recent"
)

// ComparisonType refines comparison questions. Empty means not applicable.
type ComparisonType string

const (
	ComparisonVS      ComparisonType = "vs"
	ComparisonRanking ComparisonType = "ranking"
	ComparisonTopN    ComparisonType = "top_n"
)

// StatsType is the aggregation mode of requested statistics.
type StatsType string

const (
	StatsPerGame  StatsType = "per_game"
	StatsTotals   StatsType = "totals"
	StatsAdvanced StatsType = "advanced"
)

// DefaultTopN is the row bound for top-performer questions when the
// question does not name one.
const DefaultTopN = 10

// QueryAnalysis is the structured form of a question, produced once at
// the analyzer boundary. Downstream components consume only this closed
// structure.
type QueryAnalysis struct {
	Intent         QueryIntent    `json:"intent"`
	Players        []string       `json:"players"`
	Teams          []string       `json:"teams"`
	Seasons        []string       `json:"seasons"`
	Stats          []string       `json:"stats"`
	StatsType      StatsType      `json:"stats_type,omitempty"`
	Timeframe      Timeframe      `json:"timeframe"`
	ComparisonType ComparisonType `json:"comparison_type,omitempty"`
	TopN           int            `json:"top_n"`
	Entity         Entity         `json:"entity"`
}

var validIntents = map[QueryIntent]struct{}{
	IntentPlayerStats:      {},
	IntentPlayerComparison: {},
	IntentTeamStats:        {},
	IntentTeamComparison:   {},
	IntentTopPerformers:    {},
	IntentSeasonAnalysis:   {},
	IntentGeneral:          {},
}

var validTimeframes = map[Timeframe]struct{}{
	TimeframeSeason: {},
	TimeframeCareer: {},
	TimeframeGame:   {},
	TimeframeRecent: {},
}

var validComparisons = map[ComparisonType]struct{}{
	"":                {},
	ComparisonVS:      {},
	ComparisonRanking: {},
	ComparisonTopN:    {},
}

var validStatsTypes = map[StatsType]struct{}{
	"":            {},
	StatsPerGame:  {},
	StatsTotals:   {},
	StatsAdvanced: {},
}

// validate checks that every enum field carries a known value.
func (a *QueryAnalysis) validate() error {
	if _, ok := validIntents[a.Intent]; !ok {
		return fmt.Errorf("unknown intent %q", a.Intent)
	}
	if a.Entity != "" && a.Entity != EntityPlayer && a.Entity != EntityTeam {
		return fmt.Errorf("unknown entity %q", a.Entity)
	}
	if a.Timeframe != "" {
		if _, ok := validTimeframes[a.Timeframe]; !ok {
			return fmt.Errorf("unknown timeframe %q", a.Timeframe)
		}
	}
	if _, ok := validComparisons[a.ComparisonType]; !ok {
		return fmt.Errorf("unknown comparison type %q", a.ComparisonType)
	}
	if _, ok := validStatsTypes[a.StatsType]; !ok {
		return fmt.Errorf("unknown stats type %q", a.StatsType)
	}
	return nil
}

// applyDefaults fills the defaulting rules: seasons are never empty, top_n
// is always at least 1, and the optional enums fall back to their
// documented defaults.
func (a *QueryAnalysis) applyDefaults(defaultSeason string) {
	if len(a.Seasons) == 0 {
		a.Seasons = []string{defaultSeason}
	}
	if a.TopN < 1 {
		a.TopN = DefaultTopN
	}
	if a.StatsType == "" {
		a.StatsType = StatsPerGame
	}
	if a.Timeframe == "" {
		a.Timeframe = TimeframeSeason
	}
	if a.Entity == "" {
		a.Entity = EntityPlayer
	}
}

// fallbackAnalysis is the fixed analysis substituted when structured
// extraction fails.
func fallbackAnalysis(defaultSeason string) QueryAnalysis {
	return QueryAnalysis{
		Intent:    IntentGeneral,
		Players:   []string{},
		Teams:     []string{},
		Seasons:   []string{defaultSeason},
		Stats:     []string{},
		StatsType: StatsPerGame,
		Timeframe: TimeframeSeason,
		TopN:      DefaultTopN,
		Entity:    EntityPlayer,
	}
}
