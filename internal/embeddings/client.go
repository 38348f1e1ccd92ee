package embeddings

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deepresearch/internal/retry"
)

// DefaultConcurrency bounds the number of in-flight embedding calls.
const DefaultConcurrency = 10

// Client wraps an Embedder with the shared retry policy and a bounded
// concurrent fan-out for embedding many texts at once.
type Client struct {
	embedder    Embedder
	concurrency int
	logger      *zap.Logger
	retrier     func(ctx context.Context, fn func() error) error
}

// NewClient creates a Client over the given embedder. concurrency <= 0
// falls back to DefaultConcurrency.
func NewClient(embedder Embedder, concurrency int, logger *zap.Logger) *Client {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		embedder:    embedder,
		concurrency: concurrency,
		logger:      logger,
		retrier:     retry.Do,
	}
}

// Embed embeds a single text, retrying transient provider failures.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var result []float32

	err := c.retrier(ctx, func() error {
		vecs, err := c.embedder.Embed(ctx, []string{text})
		if err != nil {
			c.logger.Warn("embedding_generation_failed",
				zap.Error(err),
				zap.Int("text_length", len(text)))
			return err
		}
		if len(vecs) != 1 {
			return retry.Permanent(fmt.Errorf("embedder returned %d vectors for one text", len(vecs)))
		}
		result = vecs[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EmbedEach embeds every text with one concurrent Embed call per text,
// bounded by the client's concurrency cap. Results are returned in input
// order regardless of completion order. Any failed call fails the whole
// batch: callers must treat embedding as all-or-nothing for one run.
func (c *Client) EmbedEach(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := c.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embedding text %d: %w", i, err)
			}
			results[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
