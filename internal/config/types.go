package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
)

// SearchProviderType identifies a web search provider.
type SearchProviderType string

const (
	SearchSerper SearchProviderType = "serper"
	SearchBing   SearchProviderType = "bing"
)

// OutputFormat identifies a report output format.
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatMarkdown OutputFormat = "markdown"
	FormatHTML     OutputFormat = "html"
)

// Config is the top-level deepresearch configuration, corresponding to .deepresearch.yml.
type Config struct {
	Provider     ProviderType `yaml:"provider" koanf:"provider"`
	Model        string       `yaml:"model" koanf:"model"`
	PlannerModel string       `yaml:"planner_model" koanf:"planner_model"`

	EmbeddingModel string `yaml:"embedding_model" koanf:"embedding_model"`

	// Content processing.
	ChunkSize          int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap       int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	MinChunkLength     int `yaml:"min_chunk_length" koanf:"min_chunk_length"`
	MaxChunksForReport int `yaml:"max_chunks_for_report" koanf:"max_chunks_for_report"`

	// Generation budgets.
	MaxInputTokens  int     `yaml:"max_input_tokens" koanf:"max_input_tokens"`
	MaxOutputTokens int     `yaml:"max_output_tokens" koanf:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature" koanf:"temperature"`

	// Pro mode and concurrency caps.
	MaxQuestions          int `yaml:"max_questions" koanf:"max_questions"`
	EmbeddingConcurrency  int `yaml:"embedding_concurrency" koanf:"embedding_concurrency"`
	GenerationConcurrency int `yaml:"generation_concurrency" koanf:"generation_concurrency"`

	// Web search.
	SearchProvider   SearchProviderType `yaml:"search_provider" koanf:"search_provider"`
	MaxSearchResults int                `yaml:"max_search_results" koanf:"max_search_results"`

	// Cache.
	RedisAddr     string `yaml:"redis_addr" koanf:"redis_addr"`
	RedisPassword string `yaml:"redis_password" koanf:"redis_password"`
	CacheTTLSecs  int    `yaml:"cache_ttl" koanf:"cache_ttl"`

	// Server.
	Port         int          `yaml:"port" koanf:"port"`
	OutputFormat OutputFormat `yaml:"output_format" koanf:"output_format"`
	LLMRPM       int          `yaml:"llm_rpm" koanf:"llm_rpm"` // 0 disables rate limiting
}
