package embeddings

import (
	"context"

	"go.uber.org/zap"

	"deepresearch/internal/cache"
)

// CachedEmbedder wraps an Embedder with a content-addressed cache.
// Cache failures are logged and treated as misses; the cache is an
// acceleration, never a correctness dependency.
type CachedEmbedder struct {
	inner  Embedder
	cache  cache.Cache
	logger *zap.Logger
}

// NewCachedEmbedder wraps inner with the given cache.
func NewCachedEmbedder(inner Embedder, c cache.Cache, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{inner: inner, cache: c, logger: logger}
}

func (e *CachedEmbedder) Name() string {
	return e.inner.Name()
}

func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		vec, ok, err := e.cache.GetEmbedding(ctx, text)
		if err != nil {
			e.logger.Warn("embedding_cache_read_failed", zap.Error(err))
		}
		if ok {
			results[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	fresh, err := e.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, vec := range fresh {
		results[missIdx[j]] = vec
		if err := e.cache.SetEmbedding(ctx, missTexts[j], vec); err != nil {
			e.logger.Warn("embedding_cache_write_failed", zap.Error(err))
		}
	}

	return results, nil
}
