package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:     ProviderOpenAI,
		Model:        "gpt-4-turbo-preview",
		PlannerModel: "o3-mini",

		EmbeddingModel: "text-embedding-ada-002",

		ChunkSize:          1000,
		ChunkOverlap:       100,
		MinChunkLength:     100,
		MaxChunksForReport: 5,

		MaxInputTokens:  16000,
		MaxOutputTokens: 4000,
		Temperature:     0.3,

		MaxQuestions:          4,
		EmbeddingConcurrency:  10,
		GenerationConcurrency: 3,

		SearchProvider:   SearchSerper,
		MaxSearchResults: 10,

		CacheTTLSecs: 86400,

		Port:         8000,
		OutputFormat: FormatMarkdown,
	}
}
