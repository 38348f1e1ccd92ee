package research

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const reportSystemPrompt = "You are a research assistant that generates comprehensive reports based on provided sources."

// SynthesizerConfig holds the knobs for standard-mode report synthesis.
type SynthesizerConfig struct {
	MaxChunksForReport int
	MaxInputTokens     int
	MaxOutputTokens    int
	Temperature        float64
}

// Synthesizer composes reranking, context assembly and report generation
// into the standard-mode generate-report operation.
type Synthesizer struct {
	reranker  *Reranker
	generator *ReportGenerator
	estimator TokenEstimator
	cfg       SynthesizerConfig
	logger    *zap.Logger
}

// NewSynthesizer creates a Synthesizer. A nil estimator falls back to
// the 4-chars-per-token heuristic.
func NewSynthesizer(reranker *Reranker, generator *ReportGenerator, estimator TokenEstimator, cfg SynthesizerConfig, logger *zap.Logger) *Synthesizer {
	if estimator == nil {
		estimator = CharEstimator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		reranker:  reranker,
		generator: generator,
		estimator: estimator,
		cfg:       cfg,
		logger:    logger,
	}
}

// GenerateReport synthesizes a report for the query from the given
// chunks. An empty chunk set still generates: the prompt simply carries
// no source material and the model answers from its own knowledge,
// which is how pro-mode sub-queries run.
func (s *Synthesizer) GenerateReport(ctx context.Context, query string, chunks []Chunk) (string, error) {
	report, _, err := s.GenerateReportWithSources(ctx, query, chunks)
	return report, err
}

// GenerateReportWithSources is GenerateReport plus the distinct source
// URLs of the chunks that were actually included in the context.
func (s *Synthesizer) GenerateReportWithSources(ctx context.Context, query string, chunks []Chunk) (string, []string, error) {
	ranked, err := s.reranker.Rerank(ctx, query, chunks)
	if err != nil {
		s.logger.Error("report_generation_failed", zap.Error(err), zap.String("query", query))
		return "", nil, err
	}

	contextText, included := assembleContext(ranked, s.cfg.MaxChunksForReport, s.cfg.MaxInputTokens, s.estimator)
	prompt := buildReportPrompt(query, contextText)

	report, err := s.generator.Generate(ctx, prompt, reportSystemPrompt, s.cfg.Temperature, s.cfg.MaxOutputTokens)
	if err != nil {
		s.logger.Error("report_generation_failed", zap.Error(err), zap.String("query", query))
		return "", nil, err
	}

	return report, SourceURLs(included), nil
}

func buildReportPrompt(query, contextText string) string {
	return fmt.Sprintf(`Based on the following research query and source materials, generate a comprehensive report.

Query: %s

Source Materials:
%s

Please generate a detailed report that:
1. Synthesizes information from multiple sources
2. Provides accurate citations
3. Maintains a neutral, academic tone
4. Organizes information logically
5. Highlights key findings and insights

Report:`, query, contextText)
}
