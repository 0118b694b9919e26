package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hooplens/hooplens/internal/dataset"
	"github.com/hooplens/hooplens/internal/llm"
)

// Fixed answers returned without (or instead of) a model call.
const (
	// NoDataAnswer is returned when retrieval produced no rows; the
	// model is never called in that case.
	NoDataAnswer = "No relevant NBA data found to answer your question."

	// FailureAnswer is returned when answer generation fails.
	FailureAnswer = "Sorry, I encountered an error while generating the answer."
)

// sampleRows caps how many retrieved rows are shown to the model. The
// bound keeps the prompt small and keeps the model from seeing data
// outside what was retrieved.
const sampleRows = 10

// Generator composes a natural-language answer from an analysis and the
// retrieved rows, bounded to the supplied data. It never fails past its
// boundary.
type Generator struct {
	llm    llm.ChatClient
	logger *slog.Logger
}

// NewGenerator creates a generator.
func NewGenerator(client llm.ChatClient, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: client, logger: logger}
}

// Generate produces the answer string.
func (g *Generator) Generate(ctx context.Context, analysis QueryAnalysis, data dataset.Table) string {
	if data.Empty() {
		return NoDataAnswer
	}

	sample, err := json.MarshalIndent(data.Head(sampleRows).Records(), "", "  ")
	if err != nil {
		g.logger.Error("Failed to serialize data sample", "error", err)
		return FailureAnswer
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: g.systemPrompt(analysis)},
		{Role: llm.RoleUser, Content: "Here is some NBA data:\n" + string(sample)},
		{Role: llm.RoleUser, Content: "Based on this data, please answer the user's question."},
	}

	answer, err := g.llm.Chat(ctx, messages, llm.ChatOptions{Temperature: 0})
	if err != nil {
		g.logger.Error("Answer generation failed", "error", err)
		return FailureAnswer
	}
	return answer
}

// systemPrompt restates the analysis context and the column suffix
// convention so the model restricts itself to the requested stats type.
func (g *Generator) systemPrompt(analysis QueryAnalysis) string {
	return fmt.Sprintf(`You are an expert NBA analyst. Use ONLY the provided dataset to answer the user's question.

User's question intent: %s
Players mentioned: %s
Teams mentioned: %s
Timeframe: %s
Seasons: %s
Stats of interest: %s
Stats type: %s
Top N (if applicable): %d

Rules:
- Always provide a concise, data-driven answer.
- Use only the provided dataset; never invent stats.
- If stats_type = totals, only use columns ending in "_TOTALS".
- If stats_type = per_game, only use columns ending in "_PER_GAME".
- If stats_type = advanced, use advanced stats such as PER, TS%%, WS.
- If a requested stat is missing, explicitly state: "That stat is not available in the provided dataset."
- When comparing players or teams, present results side by side.
- For top-N queries, list the performers in ranked order.
- Keep the tone professional and analytical.

Answer format:
1. One or two sentence summary of findings.`,
		analysis.Intent,
		orNone(analysis.Players),
		orNone(analysis.Teams),
		analysis.Timeframe,
		strings.Join(analysis.Seasons, ", "),
		orDefault(analysis.Stats, "All available stats"),
		analysis.StatsType,
		analysis.TopN,
	)
}

func orNone(values []string) string {
	return orDefault(values, "None")
}

func orDefault(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}
