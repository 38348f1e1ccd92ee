package cmd

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"deepresearch/internal/cache"
	"deepresearch/internal/config"
	"deepresearch/internal/embeddings"
	"deepresearch/internal/extract"
	"deepresearch/internal/llm"
	"deepresearch/internal/research"
	"deepresearch/internal/search"
)

// newLogger builds the process logger. Verbose selects the human-readable
// development encoder.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// core holds the research components every command needs.
type core struct {
	cfg         *config.Config
	logger      *zap.Logger
	store       cache.Cache
	provider    llm.Provider
	generator   *research.ReportGenerator
	synthesizer *research.Synthesizer
}

// buildCore wires the provider, embeddings, cache and synthesis pipeline
// from config.
func buildCore(cfg *config.Config, logger *zap.Logger) (*core, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if cfg.LLMRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.LLMRPM)
	}

	openaiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
	if openaiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for embeddings")
	}
	var embedder embeddings.Embedder = embeddings.NewOpenAIEmbedder(openaiKey, embeddings.OpenAIModel(cfg.EmbeddingModel))

	var store cache.Cache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTLSecs)*time.Second)
		if err != nil {
			logger.Warn("redis_unavailable", zap.Error(err), zap.String("addr", cfg.RedisAddr))
		} else {
			store = redisCache
			embedder = embeddings.NewCachedEmbedder(embedder, store, logger)
		}
	}

	client := embeddings.NewClient(embedder, cfg.EmbeddingConcurrency, logger)
	reranker := research.NewReranker(client, logger)
	generator := research.NewReportGenerator(provider, cfg.Model, logger)
	synthesizer := research.NewSynthesizer(reranker, generator, nil, research.SynthesizerConfig{
		MaxChunksForReport: cfg.MaxChunksForReport,
		MaxInputTokens:     cfg.MaxInputTokens,
		MaxOutputTokens:    cfg.MaxOutputTokens,
		Temperature:        cfg.Temperature,
	}, logger)

	return &core{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		provider:    provider,
		generator:   generator,
		synthesizer: synthesizer,
	}, nil
}

// standardService wires the search-and-synthesize flow on top of the core.
func (c *core) standardService(maxResults int) (*research.Service, error) {
	if maxResults <= 0 {
		maxResults = c.cfg.MaxSearchResults
	}
	searcher, err := search.NewSearcher(string(c.cfg.SearchProvider), maxResults)
	if err != nil {
		return nil, fmt.Errorf("creating search provider: %w", err)
	}
	extractor := extract.NewExtractor(c.logger)
	processor := research.NewContentProcessor(c.cfg.ChunkSize, c.cfg.MinChunkLength)
	return research.NewService(searcher, extractor, processor, c.synthesizer, c.store, c.logger), nil
}

// proResearcher wires the plan / fan-out / compile flow for the given
// sub-query cap.
func (c *core) proResearcher(maxQuestions int) *research.ProResearcher {
	if maxQuestions <= 0 {
		maxQuestions = c.cfg.MaxQuestions
	}
	planner := research.NewPlanner(c.provider, c.cfg.PlannerModel, maxQuestions, c.logger)
	return research.NewProResearcher(planner, c.synthesizer, c.generator,
		c.cfg.GenerationConcurrency, c.cfg.MaxOutputTokens, c.logger)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
