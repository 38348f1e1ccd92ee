package research

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"deepresearch/internal/llm"
	"deepresearch/internal/retry"
)

// ReportGenerator wraps an LLM provider with the shared retry policy and
// usage/timing telemetry around each generation call.
type ReportGenerator struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
	retrier  func(ctx context.Context, fn func() error) error
}

// NewReportGenerator creates a generator using the given provider and model.
func NewReportGenerator(provider llm.Provider, model string, logger *zap.Logger) *ReportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportGenerator{
		provider: provider,
		model:    model,
		logger:   logger,
		retrier:  retry.Do,
	}
}

// Generate sends one chat-style completion and returns the model's text
// stripped of surrounding whitespace. Transient failures are retried up
// to 3 times; a context-length failure is returned immediately so the
// caller's degrade path can react without burning retries.
func (g *ReportGenerator) Generate(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int) (string, error) {
	messages := []llm.Message{}
	if systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})

	req := llm.CompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var resp *llm.CompletionResponse
	start := time.Now()

	err := g.retrier(ctx, func() error {
		r, err := g.provider.Complete(ctx, req)
		if err != nil {
			if errors.Is(err, llm.ErrContextLength) {
				return retry.Permanent(err)
			}
			g.logger.Warn("generation_attempt_failed", zap.Error(err))
			return err
		}
		resp = r
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		g.logger.Error("generation_failed",
			zap.Error(err),
			zap.String("model", g.model),
			zap.Duration("duration", duration))
		return "", err
	}

	g.logger.Info("generation_completed",
		zap.String("model", resp.Model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", resp.InputTokens),
		zap.Int("completion_tokens", resp.OutputTokens),
		zap.Int("total_tokens", resp.TotalTokens))

	return strings.TrimSpace(resp.Content), nil
}
