package research

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"deepresearch/internal/cache"
	"deepresearch/internal/extract"
	"deepresearch/internal/search"
)

var (
	// ErrNoResults indicates the web search returned nothing to work with.
	ErrNoResults = errors.New("no search results found")
	// ErrNoContent indicates every search result failed content extraction.
	ErrNoContent = errors.New("could not extract content from search results")
)

// PageExtractor fetches and parses one web page.
type PageExtractor interface {
	ExtractFromURL(ctx context.Context, pageURL string) (*extract.Document, error)
}

// Report is the outcome of a standard-mode research run.
type Report struct {
	Content string   `json:"final_report"`
	Sources []string `json:"sources"`

	// FromCache marks a report served without a generation call.
	FromCache bool `json:"-"`
}

// Service runs the standard research flow: web search, content
// extraction, chunking, and report synthesis, with whole-report caching.
type Service struct {
	searcher    search.Searcher
	extractor   PageExtractor
	processor   *ContentProcessor
	synthesizer *Synthesizer
	cache       cache.Cache
	logger      *zap.Logger
}

// NewService wires the standard-mode pipeline. A nil cache disables
// report caching via the noop implementation.
func NewService(searcher search.Searcher, extractor PageExtractor, processor *ContentProcessor, synthesizer *Synthesizer, store cache.Cache, logger *zap.Logger) *Service {
	if store == nil {
		store = cache.NoopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		searcher:    searcher,
		extractor:   extractor,
		processor:   processor,
		synthesizer: synthesizer,
		cache:       store,
		logger:      logger,
	}
}

// Research searches the web for the query, extracts page content, and
// synthesizes a report. Individual extraction failures are skipped; the
// run fails only when nothing at all could be extracted. onProgress is
// optional.
func (s *Service) Research(ctx context.Context, query string, maxResults int, timeFilter string, onProgress ProgressFunc) (*Report, error) {
	emit := func(phase string, percent int) {
		if onProgress != nil {
			onProgress(ctx, phase, percent)
		}
	}

	emit("Searching the web...", 0)
	results, err := s.searcher.Search(ctx, query, timeFilter)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	emit(fmt.Sprintf("Extracting content from %d pages...", len(results)), 20)
	docs, urls := s.extractAll(ctx, results)
	if len(docs) == 0 {
		return nil, ErrNoContent
	}

	if cached, ok, err := s.cache.GetReport(ctx, query, urls); err != nil {
		s.logger.Warn("report_cache_read_failed", zap.Error(err))
	} else if ok {
		s.logger.Info("report_cache_hit", zap.String("query", query))
		emit("Research complete!", 100)
		return &Report{Content: cached, Sources: urls, FromCache: true}, nil
	}

	emit("Processing content...", 50)
	chunks := s.processor.Process(docs)

	emit("Generating report...", 60)
	report, sources, err := s.synthesizer.GenerateReportWithSources(ctx, query, chunks)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetReport(ctx, query, urls, report); err != nil {
		s.logger.Warn("report_cache_write_failed", zap.Error(err))
	}

	emit("Research complete!", 100)
	return &Report{Content: report, Sources: sources}, nil
}

// extractAll extracts every result sequentially, skipping pages that
// fail or come back empty. Returned URLs are those successfully
// extracted, in result order.
func (s *Service) extractAll(ctx context.Context, results []search.Result) ([]SourceDocument, []string) {
	var docs []SourceDocument
	var urls []string
	failed := 0

	for _, result := range results {
		doc, err := s.extractor.ExtractFromURL(ctx, result.Link)
		if err != nil {
			s.logger.Warn("content_extraction_failed",
				zap.Error(err),
				zap.String("url", result.Link))
			failed++
			continue
		}
		if doc.Content == "" {
			failed++
			continue
		}
		docs = append(docs, SourceDocument{Title: doc.Title, Content: doc.Content, URL: doc.URL})
		urls = append(urls, doc.URL)
	}

	s.logger.Info("content_extraction_finished",
		zap.Int("successful", len(docs)),
		zap.Int("failed", failed))
	return docs, urls
}
