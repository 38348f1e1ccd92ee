package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.ChunkSize != 1000 {
		t.Errorf("expected default chunk_size 1000, got %d", cfg.ChunkSize)
	}
	if cfg.MinChunkLength != 100 {
		t.Errorf("expected default min_chunk_length 100, got %d", cfg.MinChunkLength)
	}
	if cfg.MaxQuestions != 4 {
		t.Errorf("expected default max_questions 4, got %d", cfg.MaxQuestions)
	}
	if cfg.EmbeddingConcurrency != 10 {
		t.Errorf("expected default embedding_concurrency 10, got %d", cfg.EmbeddingConcurrency)
	}
	if cfg.GenerationConcurrency != 3 {
		t.Errorf("expected default generation_concurrency 3, got %d", cfg.GenerationConcurrency)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("expected default temperature 0.3, got %f", cfg.Temperature)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.deepresearch.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenRouter
	original.Model = "gpt-4o"
	original.ChunkSize = 1500
	original.MaxQuestions = 6
	original.SearchProvider = SearchBing
	original.RedisAddr = "localhost:6379"

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.ChunkSize != original.ChunkSize {
		t.Errorf("chunk_size: got %d, want %d", loaded.ChunkSize, original.ChunkSize)
	}
	if loaded.MaxQuestions != original.MaxQuestions {
		t.Errorf("max_questions: got %d, want %d", loaded.MaxQuestions, original.MaxQuestions)
	}
	if loaded.SearchProvider != original.SearchProvider {
		t.Errorf("search_provider: got %q, want %q", loaded.SearchProvider, original.SearchProvider)
	}
	if loaded.RedisAddr != original.RedisAddr {
		t.Errorf("redis_addr: got %q, want %q", loaded.RedisAddr, original.RedisAddr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("DEEPRESEARCH_CHUNK_SIZE", "2000")
	defer os.Unsetenv("DEEPRESEARCH_CHUNK_SIZE")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ChunkSize != 2000 {
		t.Errorf("env override failed: got %d, want 2000", loaded.ChunkSize)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid provider")
	}
}

func TestValidateQuestionBounds(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MaxQuestions = 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for max_questions below 2")
	}

	cfg.MaxQuestions = 9
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for max_questions above 8")
	}

	cfg.MaxQuestions = 8
	if err := cfg.Validate(); err != nil {
		t.Errorf("max_questions 8 should be valid, got: %v", err)
	}
}

func TestValidateChunkBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinChunkLength = cfg.ChunkSize + 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when min_chunk_length exceeds chunk_size")
	}
}
