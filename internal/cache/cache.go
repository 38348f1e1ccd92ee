// Package cache provides a best-effort TTL cache for embeddings and
// whole reports, keyed by a content hash. Values are idempotent functions
// of their key, so last-write-wins under concurrent access is acceptable.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
)

// Cache is the store interface consumed by the research pipeline.
// A miss is reported as (zero value, false, nil); errors are reserved
// for backend failures.
type Cache interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, text string, embedding []float32) error

	GetReport(ctx context.Context, query string, urls []string) (string, bool, error)
	SetReport(ctx context.Context, query string, urls []string, report string) error
}

// Key derives the cache key for a purpose ("embedding", "report") and payload.
func Key(purpose, payload string) string {
	sum := md5.Sum([]byte(payload))
	return fmt.Sprintf("%s:%x", purpose, sum)
}

// reportPayload builds the deterministic payload for a report key:
// the query plus the sorted set of source URLs.
func reportPayload(query string, urls []string) string {
	sorted := make([]string, len(urls))
	copy(sorted, urls)
	sort.Strings(sorted)
	return query + ":" + strings.Join(sorted, ",")
}
