// Package search provides web-search adapters used to discover source
// pages for a research query.
package search

import "context"

// Result is one organic web search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher performs a web search. timeFilter is one of "day", "week",
// "month", "year" or empty for no recency constraint.
type Searcher interface {
	Search(ctx context.Context, query, timeFilter string) ([]Result, error)
	Name() string
}
