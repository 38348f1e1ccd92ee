package llm

import "context"

// Provider is a chat-completion backend used for research planning,
// report generation and sub-report summarization.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name identifies the provider, e.g. for log fields.
	Name() string
}
