package query

import (
	"context"
	"log/slog"
)

// Pipeline sequences Analyzer -> Retriever -> Generator. Each stage's
// output is the next stage's input; every internal failure is absorbed
// into a safe default, so Query always returns an answer string.
type Pipeline struct {
	analyzer  *Analyzer
	retriever *Retriever
	generator *Generator
	logger    *slog.Logger
}

// NewPipeline composes the three stages.
func NewPipeline(analyzer *Analyzer, retriever *Retriever, generator *Generator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		analyzer:  analyzer,
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Query answers a natural-language question.
func (p *Pipeline) Query(ctx context.Context, question string) string {
	analysis := p.analyzer.Analyze(ctx, question)
	data := p.retriever.Fetch(ctx, analysis)
	p.logger.Info("Fetched records", "count", data.Len())
	return p.generator.Generate(ctx, analysis, data)
}

// Analyze exposes the first stage alone, for the analysis debug endpoint.
func (p *Pipeline) Analyze(ctx context.Context, question string) QueryAnalysis {
	return p.analyzer.Analyze(ctx, question)
}
