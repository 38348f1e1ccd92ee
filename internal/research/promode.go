package research

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"deepresearch/internal/llm"
)

// Phase is the tagged state of a pro-mode run. Transitions are linear
// (Planning -> Executing -> Compiling -> Done) with CompilingDegraded
// entered only when compilation overflows the model's context window.
type Phase string

const (
	PhasePlanning          Phase = "planning"
	PhaseExecuting         Phase = "executing"
	PhaseCompiling         Phase = "compiling"
	PhaseCompilingDegraded Phase = "compiling_degraded"
	PhaseDone              Phase = "done"
)

const (
	compileSystemPrompt   = "You are a research analyst synthesizing findings into clear, concise reports."
	summaryMaxTokens      = 1000
	defaultProConcurrency = 3
)

// ProResearcher runs the pro-mode flow: decompose the query into
// sub-queries, research each concurrently, and compile a final report.
type ProResearcher struct {
	planner     *Planner
	synthesizer *Synthesizer
	generator   *ReportGenerator
	concurrency int
	maxTokens   int
	logger      *zap.Logger
	now         func() time.Time
}

// NewProResearcher creates a ProResearcher. concurrency <= 0 selects the
// default of 3, deliberately lower than the embedding cap since
// generation calls are more expensive.
func NewProResearcher(planner *Planner, synthesizer *Synthesizer, generator *ReportGenerator, concurrency, maxOutputTokens int, logger *zap.Logger) *ProResearcher {
	if concurrency <= 0 {
		concurrency = defaultProConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProResearcher{
		planner:     planner,
		synthesizer: synthesizer,
		generator:   generator,
		concurrency: concurrency,
		maxTokens:   maxOutputTokens,
		logger:      logger,
		now:         time.Now,
	}
}

// proRun tracks the state of one pro-mode request: the current phase,
// the set of in-flight sub-query indices, and the monotonic progress
// gate for the injected callback.
type proRun struct {
	mu          sync.Mutex
	phase       Phase
	active      map[int]bool
	lastPercent int
	onProgress  ProgressFunc
}

func (r *proRun) transition(to Phase) {
	r.mu.Lock()
	r.phase = to
	r.mu.Unlock()
}

// emit forwards a progress event, clamping the percentage so the stream
// stays monotonically non-decreasing even when concurrent sub-queries
// finish out of order. Callbacks run sequentially and may block; emit is
// never called while holding a concurrency slot's provider call.
func (r *proRun) emit(ctx context.Context, phase string, percent int) {
	if r.onProgress == nil {
		return
	}
	r.mu.Lock()
	if percent < r.lastPercent {
		percent = r.lastPercent
	}
	r.lastPercent = percent
	r.mu.Unlock()

	r.onProgress(ctx, phase, percent)
}

// activeMessage formats the in-flight sub-queries for a progress event.
func (r *proRun) activeMessage(queries []string) string {
	r.mu.Lock()
	indices := make([]int, 0, len(r.active))
	for i := range r.active {
		indices = append(indices, i)
	}
	r.mu.Unlock()
	sort.Ints(indices)

	lines := make([]string, 0, len(indices))
	for _, i := range indices {
		lines = append(lines, fmt.Sprintf("Query %d/%d: %s", i+1, len(queries), queries[i]))
	}
	return strings.Join(lines, "\n")
}

type subResult struct {
	report SubReport
	err    error
}

// GenerateComprehensiveReport runs plan -> fan-out -> compile for the
// given query. Sub-query failures are tolerated: compilation proceeds
// with the successful sub-reports and the failure count is reported.
// Only a fully failed fan-out, a failed plan, or a failed compilation
// aborts the run.
func (p *ProResearcher) GenerateComprehensiveReport(ctx context.Context, query string, onProgress ProgressFunc) (*ComprehensiveReport, error) {
	run := &proRun{
		phase:      PhasePlanning,
		active:     make(map[int]bool),
		onProgress: onProgress,
	}
	currentDate := p.now().Format("January 2006")

	// Phase 1: planning.
	run.emit(ctx, "Generating research plan...", 0)

	queries, err := p.planner.GeneratePlan(ctx, query)
	if err != nil {
		p.logger.Error("comprehensive_research_failed", zap.Error(err), zap.String("query", query))
		return nil, err
	}
	run.emit(ctx, fmt.Sprintf("Research plan generated with %d queries", len(queries)), 10)

	// Phase 2: concurrent execution.
	run.transition(PhaseExecuting)

	results := make([]subResult, len(queries))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	// Slots are acquired in submission order so sub-queries launch in
	// plan order even when completions interleave.
	for i, subQuery := range queries {
		i, subQuery := i, subQuery
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = subResult{err: ctx.Err()}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			run.mu.Lock()
			run.active[i] = true
			run.mu.Unlock()

			percent := 10 + (i+1)*70/len(queries)
			run.emit(ctx, "Researching multiple queries:\n"+run.activeMessage(queries), percent)

			// Sub-queries run without fresh content: the model answers
			// from its own knowledge.
			report, err := p.synthesizer.GenerateReport(ctx, subQuery, nil)

			run.mu.Lock()
			delete(run.active, i)
			run.mu.Unlock()
			<-sem

			if err != nil {
				p.logger.Warn("sub_query_failed",
					zap.Error(err),
					zap.Int("index", i),
					zap.String("sub_query", subQuery))
				results[i] = subResult{err: err}
				return
			}
			results[i] = subResult{report: SubReport{Query: subQuery, Content: report}}
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Collect successes in submission order.
	var subReports []SubReport
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			continue
		}
		subReports = append(subReports, res.report)
	}
	if len(subReports) == 0 {
		err := fmt.Errorf("all %d sub-queries failed", len(queries))
		p.logger.Error("comprehensive_research_failed", zap.Error(err), zap.String("query", query))
		return nil, err
	}

	// Phase 3: compilation.
	run.transition(PhaseCompiling)
	run.emit(ctx, "Compiling final report...", 80)

	finalReport, err := p.compileFinalReport(ctx, run, query, subReports, currentDate)
	if err != nil {
		p.logger.Error("report_compilation_failed", zap.Error(err))
		return nil, err
	}

	// Phase 4: done.
	run.transition(PhaseDone)
	run.emit(ctx, "Research complete!", 100)

	return &ComprehensiveReport{
		FinalReport:   finalReport,
		SubReports:    subReports,
		ResearchPlan:  queries,
		FailedQueries: failed,
	}, nil
}

// compileFinalReport compiles the sub-reports into one report. When the
// compiled prompt overflows the model's context window, each sub-report
// is summarized independently and compilation is retried once with the
// summaries; any other failure propagates.
func (p *ProResearcher) compileFinalReport(ctx context.Context, run *proRun, mainQuery string, subReports []SubReport, currentDate string) (string, error) {
	content := buildCompilationPrompt(mainQuery, subReports, currentDate)

	report, err := p.generator.Generate(ctx, content, compileSystemPrompt, 0.3, p.maxTokens)
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, llm.ErrContextLength) {
		return "", err
	}

	run.transition(PhaseCompilingDegraded)
	run.emit(ctx, "Report too large, compiling from summaries...", 85)
	p.logger.Info("compilation_token_limit_exceeded",
		zap.String("message", "retrying with summarized reports"))

	summarized, err := p.summarizeReports(ctx, subReports)
	if err != nil {
		return "", err
	}

	content = buildCompilationPrompt(mainQuery, summarized, currentDate)
	return p.generator.Generate(ctx, content, compileSystemPrompt, 0.3, p.maxTokens)
}

// summarizeReports produces a condensed version of every sub-report,
// concurrently under the generation concurrency cap. Summarization has
// no fallback: any failure here is fatal for the degrade path.
func (p *ProResearcher) summarizeReports(ctx context.Context, subReports []SubReport) ([]SubReport, error) {
	summaries := make([]SubReport, len(subReports))
	errs := make([]error, len(subReports))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i, report := range subReports {
		i, report := i, report
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			prompt := fmt.Sprintf(`Summarize the following research findings in a concise way while preserving key information:

%s

Summary:`, report.Content)

			summary, err := p.generator.Generate(ctx, prompt, "", 0.3, summaryMaxTokens)
			if err != nil {
				p.logger.Error("report_summarization_failed", zap.Error(err))
				errs[i] = err
				return
			}
			summaries[i] = SubReport{Query: report.Query, Content: summary}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("summarizing sub-report: %w", err)
		}
	}
	return summaries, nil
}

// buildCompilationPrompt condenses each sub-report to its first three
// sentences and frames the final synthesis instruction.
func buildCompilationPrompt(mainQuery string, reports []SubReport, currentDate string) string {
	var sections []string
	for i, report := range reports {
		sections = append(sections, fmt.Sprintf("Query %d: %s\nKey Findings: %s\n",
			i+1, report.Query, firstSentences(report.Content, 3)))
	}

	return fmt.Sprintf(`As an expert research analyst, synthesize these findings into a comprehensive report.

Main Query: %s
Date: %s

Research Findings:
%s

Create a concise yet comprehensive report that:
1. Directly answers the main query
2. Synthesizes key insights from all research
3. Maintains academic tone
4. References specific findings (as Query X)
5. Notes current as of %s

Report:`, mainQuery, currentDate, strings.Join(sections, "\n"), currentDate)
}

// firstSentences returns the first n period-delimited sentences of text,
// re-terminated with a period. Texts with fewer sentences pass through.
func firstSentences(text string, n int) string {
	parts := strings.Split(text, ".")
	if len(parts) > n {
		parts = parts[:n]
	}
	return strings.TrimSpace(strings.Join(parts, ".") + ".")
}
