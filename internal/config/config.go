package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DEEPRESEARCH_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: DEEPRESEARCH_CHUNK_SIZE -> chunk_size, etc.
	if err := k.Load(env.Provider("DEEPRESEARCH_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DEEPRESEARCH_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
}

// validSearchProviders is the set of recognized search provider values.
var validSearchProviders = map[SearchProviderType]bool{
	SearchSerper: true,
	SearchBing:   true,
}

// validFormats is the set of recognized output format values.
var validFormats = map[OutputFormat]bool{
	FormatText:     true,
	FormatMarkdown: true,
	FormatHTML:     true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, openrouter", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}

	if c.SearchProvider != "" && !validSearchProviders[c.SearchProvider] {
		return fmt.Errorf("invalid search_provider %q: must be one of serper, bing", c.SearchProvider)
	}

	if c.OutputFormat != "" && !validFormats[c.OutputFormat] {
		return fmt.Errorf("invalid output_format %q: must be one of text, markdown, html", c.OutputFormat)
	}

	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.MinChunkLength < 0 {
		return fmt.Errorf("min_chunk_length must be non-negative")
	}
	if c.MinChunkLength > c.ChunkSize {
		return fmt.Errorf("min_chunk_length (%d) must not exceed chunk_size (%d)", c.MinChunkLength, c.ChunkSize)
	}

	// chunk_overlap is recognized for compatibility but the packing
	// algorithm does not apply it. Reject only nonsense values.
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be non-negative")
	}

	if c.MaxChunksForReport < 1 {
		return fmt.Errorf("max_chunks_for_report must be positive")
	}
	if c.MaxInputTokens < 1 {
		return fmt.Errorf("max_input_tokens must be positive")
	}
	if c.MaxOutputTokens < 1 {
		return fmt.Errorf("max_output_tokens must be positive")
	}

	if c.MaxQuestions < 2 || c.MaxQuestions > 8 {
		return fmt.Errorf("max_questions must be between 2 and 8, got %d", c.MaxQuestions)
	}

	if c.EmbeddingConcurrency < 1 {
		return fmt.Errorf("embedding_concurrency must be positive")
	}
	if c.GenerationConcurrency < 1 {
		return fmt.Errorf("generation_concurrency must be positive")
	}

	if c.MaxSearchResults < 1 || c.MaxSearchResults > 50 {
		return fmt.Errorf("max_search_results must be between 1 and 50, got %d", c.MaxSearchResults)
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}
