package cache

import "context"

// NoopCache is used when no Redis address is configured: every lookup
// misses and every write is discarded.
type NoopCache struct{}

func (NoopCache) GetEmbedding(ctx context.Context, text string) ([]float32, bool, error) {
	return nil, false, nil
}

func (NoopCache) SetEmbedding(ctx context.Context, text string, embedding []float32) error {
	return nil
}

func (NoopCache) GetReport(ctx context.Context, query string, urls []string) (string, bool, error) {
	return "", false, nil
}

func (NoopCache) SetReport(ctx context.Context, query string, urls []string, report string) error {
	return nil
}
