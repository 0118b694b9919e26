package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hooplens/hooplens/internal/llm"
)

// Analyzer converts a free-text question into a QueryAnalysis using a
// chat model constrained to JSON output. It never fails past its
// boundary: any extraction problem yields the fixed fallback analysis.
type Analyzer struct {
	llm           llm.ChatClient
	defaultSeason string
	validSeasons  []string
	logger        *slog.Logger
}

// NewAnalyzer creates an analyzer. validSeasons is the closed list of
// seasons present in the dataset; defaultSeason fills in when a question
// names none.
func NewAnalyzer(client llm.ChatClient, defaultSeason string, validSeasons []string, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		llm:           client,
		defaultSeason: defaultSeason,
		validSeasons:  validSeasons,
		logger:        logger,
	}
}

// Analyze extracts the structured intent from a question.
func (a *Analyzer) Analyze(ctx context.Context, question string) QueryAnalysis {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.systemPrompt()},
		{Role: llm.RoleUser, Content: "Analyze this NBA question: " + question},
	}

	reply, err := a.llm.Chat(ctx, messages, llm.ChatOptions{Temperature: 0, JSONOnly: true})
	if err != nil {
		a.logger.Error("Query analysis call failed, using fallback analysis", "error", err)
		return fallbackAnalysis(a.defaultSeason)
	}

	var analysis QueryAnalysis
	if err := json.Unmarshal([]byte(stripFences(reply)), &analysis); err != nil {
		a.logger.Warn("Could not parse query analysis, using fallback analysis",
			"error", err, "reply", reply)
		return fallbackAnalysis(a.defaultSeason)
	}
	if err := analysis.validate(); err != nil {
		a.logger.Warn("Query analysis failed validation, using fallback analysis",
			"error", err, "reply", reply)
		return fallbackAnalysis(a.defaultSeason)
	}

	analysis.applyDefaults(a.defaultSeason)
	a.logger.Info("Query analysis successful",
		"intent", analysis.Intent,
		"players", analysis.Players,
		"teams", analysis.Teams,
		"seasons", analysis.Seasons)
	return analysis
}

// systemPrompt enumerates the exact closed vocabulary of every field plus
// the current season context, so the model is schema-constrained rather
// than free-form.
func (a *Analyzer) systemPrompt() string {
	return fmt.Sprintf(`You are an NBA data analyst. Analyze the user's question and extract the following information as JSON, strictly following the schema below:

{
  "intent": "one of %s",
  "players": ["player names mentioned, or empty if none"],
  "teams": ["team names mentioned, or empty if none"],
  "seasons": ["seasons mentioned in 'YYYY-YY' format, or empty if none"],
  "stats": ["statistical categories mentioned, or empty if none"],
  "stats_type": "per_game, totals, advanced, or omit if not specified",
  "timeframe": "one of %s",
  "comparison_type": "one of %s, or omit if not applicable",
  "top_n": "integer number of top performers if applicable, default 10",
  "entity": "one of %s"
}

Rules:
- Always produce a single valid JSON object, nothing else.
- If multiple players or teams are mentioned, treat it as a comparison query.
- If the question asks for "best", "top", "most", "highest", or "leading", treat it as a top_performers query.
- If both comparison and top-N cues appear, prioritize comparison.
- If stats are not explicitly mentioned, leave "stats" as an empty list.
- If a season is ambiguous (e.g. "this year", "last season"), map it to the correct season from the available list.

Context:
- Available seasons: %s
- If no season is specified, assume the current season (%s).
- Expand nicknames to canonical names (LeBron = LeBron James, Curry = Stephen Curry).
- Expand team shorthand to full names (Lakers = Los Angeles Lakers, Warriors = Golden State Warriors).`,
		joinValues(IntentPlayerStats, IntentPlayerComparison, IntentTeamStats,
			IntentTeamComparison, IntentTopPerformers, IntentSeasonAnalysis),
		joinValues(TimeframeSeason, TimeframeCareer, TimeframeGame, TimeframeRecent),
		joinValues(ComparisonVS, ComparisonRanking, ComparisonTopN),
		joinValues(EntityPlayer, EntityTeam),
		strings.Join(a.validSeasons, ", "),
		a.defaultSeason,
	)
}

// joinValues renders enum values as a comma-separated list.
func joinValues[T ~string](values ...T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// stripFences removes a surrounding markdown code fence, which some
// models emit even when asked for bare JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
