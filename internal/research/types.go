// Package research implements the synthesis pipeline: chunking extracted
// page text, reranking chunks against the query by embedding similarity,
// assembling a token-bounded context, and generating cited reports in
// standard and pro (plan / fan-out / compile) modes.
package research

import "context"

// SourceDocument is one piece of extracted web content, discarded after chunking.
type SourceDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Chunk is a bounded-size, sentence-aligned fragment of a source document.
// Chunks from one document share Title and URL; Content values are disjoint
// ordered segments of the source text. Never mutated after creation.
type Chunk struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// SubReport is the synthesized output of one decomposed sub-query in pro mode.
type SubReport struct {
	Query   string `json:"query"`
	Content string `json:"content"`
}

// ComprehensiveReport is the terminal artifact of a pro-mode run.
type ComprehensiveReport struct {
	FinalReport  string      `json:"final_report"`
	SubReports   []SubReport `json:"sub_reports"`
	ResearchPlan []string    `json:"research_plan"`

	// FailedQueries counts sub-queries that produced no report.
	// Compilation proceeds with the successes.
	FailedQueries int `json:"failed_queries,omitempty"`
}

// ProgressFunc receives phase descriptions with a percentage in [0,100].
// It may block (e.g. pushing onto a streaming queue); the orchestrator
// invokes it outside of provider calls. Percentages are monotonically
// non-decreasing with a terminal call at 100.
type ProgressFunc func(ctx context.Context, phase string, percent int)
