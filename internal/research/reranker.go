package research

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"deepresearch/internal/embeddings"
)

// Reranker orders chunks by semantic similarity to a query using
// embedding cosine similarity.
type Reranker struct {
	client *embeddings.Client
	logger *zap.Logger
}

// NewReranker creates a Reranker over the given embedding client.
func NewReranker(client *embeddings.Client, logger *zap.Logger) *Reranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reranker{client: client, logger: logger}
}

// Rerank returns the same chunks reordered by descending similarity to
// the query. Ties keep the original chunk order. An empty chunk set
// returns immediately without calling the embedding provider.
func (r *Reranker) Rerank(ctx context.Context, query string, chunks []Chunk) ([]Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(chunks)+1)
	texts = append(texts, query)
	for _, c := range chunks {
		texts = append(texts, c.Content)
	}

	vecs, err := r.client.EmbedEach(ctx, texts)
	if err != nil {
		r.logger.Error("chunk_reranking_failed", zap.Error(err), zap.String("query", query))
		return nil, fmt.Errorf("embedding query and chunks: %w", err)
	}

	queryVec := vecs[0]
	chunkVecs := vecs[1:]

	similarities := make([]float64, len(chunkVecs))
	for i, vec := range chunkVecs {
		similarities[i] = cosineSimilarity(queryVec, vec)
	}

	order := make([]int, len(chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return similarities[order[a]] > similarities[order[b]]
	})

	ranked := make([]Chunk, len(chunks))
	for i, idx := range order {
		ranked[i] = chunks[idx]
	}
	return ranked, nil
}

// cosineSimilarity computes dot(a,b) / (|a|*|b|). A zero-norm vector
// yields 0 rather than NaN so ordering stays deterministic.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
