package research

import (
	"fmt"
	"strings"
)

// OverheadReserveTokens approximates the system prompt and query cost
// that shares the input window with the assembled context.
const OverheadReserveTokens = 1100

// TokenEstimator estimates the token cost of a piece of text. The
// default heuristic can be swapped for a real tokenizer without
// changing the assembler's contract.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// CharEstimator approximates tokens as len(text)/4.
type CharEstimator struct{}

func (CharEstimator) EstimateTokens(text string) int {
	return len(text) / 4
}

// BuildContext concatenates the top-ranked chunks into a prompt context
// bounded by maxInputTokens. The first maxChunks of the ranked sequence
// are considered (rank-order truncation); the walk then stops at the
// first chunk whose estimated cost would exceed the budget, keeping
// every chunk already included. Each chunk is a three-line record of
// source URL, title and content.
func BuildContext(ranked []Chunk, maxChunks, maxInputTokens int, est TokenEstimator) string {
	text, _ := assembleContext(ranked, maxChunks, maxInputTokens, est)
	return text
}

// assembleContext additionally reports which chunks were included, so
// callers can attribute sources to the exact material sent to the model.
func assembleContext(ranked []Chunk, maxChunks, maxInputTokens int, est TokenEstimator) (string, []Chunk) {
	if est == nil {
		est = CharEstimator{}
	}
	if maxChunks > 0 && len(ranked) > maxChunks {
		ranked = ranked[:maxChunks]
	}

	var parts []string
	var included []Chunk
	used := OverheadReserveTokens

	for _, chunk := range ranked {
		record := formatChunk(chunk)
		cost := est.EstimateTokens(record)
		if used+cost > maxInputTokens {
			break
		}
		used += cost
		parts = append(parts, record)
		included = append(included, chunk)
	}

	return strings.Join(parts, "\n"), included
}

func formatChunk(c Chunk) string {
	return fmt.Sprintf("Source: %s\nTitle: %s\nContent: %s\n", c.URL, c.Title, c.Content)
}

// SourceURLs returns the distinct URLs of the given chunks in first-seen order.
func SourceURLs(chunks []Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	var urls []string
	for _, c := range chunks {
		if c.URL == "" || seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		urls = append(urls, c.URL)
	}
	return urls
}
