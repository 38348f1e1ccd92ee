package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"deepresearch/internal/cache"
	"deepresearch/internal/embeddings"
	"deepresearch/internal/extract"
	"deepresearch/internal/llm"
	"deepresearch/internal/search"
)

type fakeSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query, _ string) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func (f *fakeSearcher) Name() string { return "fake" }

type fakeExtractor struct {
	docs map[string]*extract.Document
	urls []string
}

func (f *fakeExtractor) ExtractFromURL(_ context.Context, pageURL string) (*extract.Document, error) {
	f.urls = append(f.urls, pageURL)
	doc, ok := f.docs[pageURL]
	if !ok {
		return nil, fmt.Errorf("fetch failed for %s", pageURL)
	}
	return doc, nil
}

// memoryReportCache implements cache.Cache in memory for report entries.
type memoryReportCache struct {
	mu      sync.Mutex
	reports map[string]string
}

func newMemoryReportCache() *memoryReportCache {
	return &memoryReportCache{reports: map[string]string{}}
}

func (m *memoryReportCache) key(query string, urls []string) string {
	return query + "|" + strings.Join(urls, ",")
}

func (m *memoryReportCache) GetEmbedding(context.Context, string) ([]float32, bool, error) {
	return nil, false, nil
}

func (m *memoryReportCache) SetEmbedding(context.Context, string, []float32) error {
	return nil
}

func (m *memoryReportCache) GetReport(_ context.Context, query string, urls []string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.reports[m.key(query, urls)]
	return report, ok, nil
}

func (m *memoryReportCache) SetReport(_ context.Context, query string, urls []string, report string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[m.key(query, urls)] = report
	return nil
}

const pageText = "Go ships a race detector. It is enabled with the -race flag and catches unsynchronized access at runtime during tests and normal execution paths alike."

func newTestService(searcher *fakeSearcher, extractor *fakeExtractor, mock *mockProvider, store *memoryReportCache) *Service {
	stub := &stubEmbedder{}
	reranker := NewReranker(embeddings.NewClient(stub, 2, nil), nil)
	synth := NewSynthesizer(reranker, newTestGenerator(mock), nil, defaultSynthConfig(), nil)
	processor := NewContentProcessor(1000, 50)
	var c cache.Cache
	if store != nil {
		c = store
	}
	return NewService(searcher, extractor, processor, synth, c, nil)
}

func TestResearchEndToEnd(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Race detector", Link: "https://go.dev/race"},
	}}
	extractor := &fakeExtractor{docs: map[string]*extract.Document{
		"https://go.dev/race": {Title: "Race detector", Content: pageText, URL: "https://go.dev/race"},
	}}
	mock := &mockProvider{
		respond: func(_ int, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return textResponse("the report"), nil
		},
	}
	svc := newTestService(searcher, extractor, mock, nil)

	report, err := svc.Research(context.Background(), "go race detector", 10, "", nil)
	if err != nil {
		t.Fatalf("Research() error = %v", err)
	}
	if report.Content != "the report" {
		t.Errorf("content = %q", report.Content)
	}
	if len(report.Sources) != 1 || report.Sources[0] != "https://go.dev/race" {
		t.Errorf("sources = %v", report.Sources)
	}
	if report.FromCache {
		t.Error("fresh report marked as cached")
	}

	reqs := mock.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 generation call, got %d", len(reqs))
	}
	if !strings.Contains(lastMessage(reqs[0]), "race detector") {
		t.Errorf("prompt missing extracted content")
	}
}

func TestResearchNoResults(t *testing.T) {
	svc := newTestService(&fakeSearcher{}, &fakeExtractor{}, &mockProvider{}, nil)
	if _, err := svc.Research(context.Background(), "q", 10, "", nil); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestResearchSearchFailure(t *testing.T) {
	svc := newTestService(&fakeSearcher{err: errors.New("search down")}, &fakeExtractor{}, &mockProvider{}, nil)
	if _, err := svc.Research(context.Background(), "q", 10, "", nil); err == nil {
		t.Fatal("expected search failure to propagate")
	}
}

func TestResearchSkipsFailedExtractions(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Link: "https://dead.example"},
		{Link: "https://alive.example"},
	}}
	extractor := &fakeExtractor{docs: map[string]*extract.Document{
		"https://alive.example": {Title: "Alive", Content: pageText, URL: "https://alive.example"},
	}}
	svc := newTestService(searcher, extractor, &mockProvider{}, nil)

	report, err := svc.Research(context.Background(), "q", 10, "", nil)
	if err != nil {
		t.Fatalf("Research() error = %v", err)
	}
	if len(report.Sources) != 1 || report.Sources[0] != "https://alive.example" {
		t.Errorf("sources = %v", report.Sources)
	}
}

func TestResearchAllExtractionsFail(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{{Link: "https://dead.example"}}}
	svc := newTestService(searcher, &fakeExtractor{}, &mockProvider{}, nil)

	if _, err := svc.Research(context.Background(), "q", 10, "", nil); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestResearchHonorsMaxResults(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Link: "https://one.example"},
		{Link: "https://two.example"},
		{Link: "https://three.example"},
	}}
	extractor := &fakeExtractor{docs: map[string]*extract.Document{
		"https://one.example": {Content: pageText, URL: "https://one.example"},
		"https://two.example": {Content: pageText, URL: "https://two.example"},
	}}
	svc := newTestService(searcher, extractor, &mockProvider{}, nil)

	if _, err := svc.Research(context.Background(), "q", 2, "", nil); err != nil {
		t.Fatalf("Research() error = %v", err)
	}
	if len(extractor.urls) != 2 {
		t.Errorf("extracted %d pages, want 2", len(extractor.urls))
	}
}

func TestResearchReportCache(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{{Link: "https://src.example"}}}
	extractor := &fakeExtractor{docs: map[string]*extract.Document{
		"https://src.example": {Content: pageText, URL: "https://src.example"},
	}}
	mock := &mockProvider{}
	store := newMemoryReportCache()
	svc := newTestService(searcher, extractor, mock, store)

	first, err := svc.Research(context.Background(), "cached topic", 10, "", nil)
	if err != nil {
		t.Fatalf("Research() error = %v", err)
	}
	if first.FromCache {
		t.Error("first run should not hit the cache")
	}

	second, err := svc.Research(context.Background(), "cached topic", 10, "", nil)
	if err != nil {
		t.Fatalf("second Research() error = %v", err)
	}
	if !second.FromCache {
		t.Error("second run should hit the cache")
	}
	if second.Content != first.Content {
		t.Errorf("cached report = %q, want %q", second.Content, first.Content)
	}
	if mock.callCount() != 1 {
		t.Errorf("generation called %d times, want 1", mock.callCount())
	}
}

func TestResearchProgress(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{{Link: "https://src.example"}}}
	extractor := &fakeExtractor{docs: map[string]*extract.Document{
		"https://src.example": {Content: pageText, URL: "https://src.example"},
	}}
	svc := newTestService(searcher, extractor, &mockProvider{}, nil)
	rec := &progressRecorder{}

	if _, err := svc.Research(context.Background(), "q", 10, "", rec.record); err != nil {
		t.Fatalf("Research() error = %v", err)
	}
	if rec.percents[0] != 0 {
		t.Errorf("first percent = %d", rec.percents[0])
	}
	if last := rec.percents[len(rec.percents)-1]; last != 100 {
		t.Errorf("terminal percent = %d", last)
	}
	if !rec.hasPhase("Searching the web") || !rec.hasPhase("Generating report") {
		t.Errorf("phases = %v", rec.phases)
	}
}
