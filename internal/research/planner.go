package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"deepresearch/internal/llm"
	"deepresearch/internal/retry"
)

// ErrEmptyPlan indicates the planner model produced no usable sub-queries.
// Pro mode treats this as fatal rather than proceeding with an empty plan.
var ErrEmptyPlan = errors.New("research plan contains no usable sub-queries")

const planHeader = "# research plan"

// Planner decomposes a top-level research query into focused sub-queries
// using a reasoning-capable model.
type Planner struct {
	provider     llm.Provider
	model        string
	maxQuestions int
	logger       *zap.Logger
	retrier      func(ctx context.Context, fn func() error) error
	now          func() time.Time
}

// NewPlanner creates a Planner. maxQuestions is clamped to [2,8];
// zero selects the default of 4.
func NewPlanner(provider llm.Provider, model string, maxQuestions int, logger *zap.Logger) *Planner {
	if maxQuestions == 0 {
		maxQuestions = 4
	}
	if maxQuestions < 2 {
		maxQuestions = 2
	}
	if maxQuestions > 8 {
		maxQuestions = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		provider:     provider,
		model:        model,
		maxQuestions: maxQuestions,
		logger:       logger,
		retrier:      retry.Do,
		now:          time.Now,
	}
}

// MaxQuestions returns the configured plan size cap.
func (p *Planner) MaxQuestions() int { return p.maxQuestions }

// GeneratePlan asks the planner model to break the query into at most
// MaxQuestions sub-queries and parses the numbered-list response. The
// query is annotated with the current month and year for temporal
// grounding. The parsed list is truncated to MaxQuestions even if the
// model returned more.
func (p *Planner) GeneratePlan(ctx context.Context, query string) ([]string, error) {
	dated := fmt.Sprintf("%s (as of %s)", query, p.now().Format("January 2006"))
	prompt := buildPlanPrompt(dated, p.maxQuestions)

	var resp *llm.CompletionResponse
	err := p.retrier(ctx, func() error {
		r, err := p.provider.Complete(ctx, llm.CompletionRequest{
			Model:           p.model,
			Messages:        []llm.Message{{Role: llm.RoleUser, Content: prompt}},
			ReasoningEffort: "medium",
		})
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		p.logger.Error("research_plan_generation_failed", zap.Error(err), zap.String("query", query))
		return nil, fmt.Errorf("generating research plan: %w", err)
	}

	queries := parsePlan(resp.Content)
	if len(queries) > p.maxQuestions {
		queries = queries[:p.maxQuestions]
	}
	if len(queries) == 0 {
		return nil, ErrEmptyPlan
	}

	p.logger.Info("research_plan_generated",
		zap.String("original_query", query),
		zap.Int("num_search_queries", len(queries)))

	return queries, nil
}

func buildPlanPrompt(query string, maxQuestions int) string {
	return fmt.Sprintf(`You are a research planning assistant. Your task is to break down the following research query into specific, focused search queries.
The plan should have no more than %d search queries.

Research Query: %s

Please provide your response in the following format:
# Research Plan
1. [First search query]
2. [Second search query]
3. [Third search query]
...

Make sure each search query is:
- Specific and focused
- Designed to gather factual information
- Written in a way that would yield relevant search results
- Related to a distinct aspect of the main research query
- Together, the queries should cover all important aspects of the research topic

Please provide the search queries only, without additional explanation.`, maxQuestions, query)
}

// parsePlan extracts the ordered sub-queries from a numbered-list plan:
// the header line is skipped, leading "N." numbering and surrounding
// brackets are stripped, and lines that end up empty are dropped.
func parsePlan(plan string) []string {
	var queries []string
	for _, line := range strings.Split(plan, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), planHeader) {
			continue
		}
		if r := []rune(line); unicode.IsDigit(r[0]) {
			if dot := strings.Index(line, "."); dot >= 0 {
				line = strings.TrimSpace(line[dot+1:])
			}
		}
		line = strings.Trim(line, "[]")
		if line != "" {
			queries = append(queries, line)
		}
	}
	return queries
}
