package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no config file present", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Catalog.BaseURL != "http://127.0.0.1:1337" {
			t.Errorf("Catalog.BaseURL = %s, want http://127.0.0.1:1337", cfg.Catalog.BaseURL)
		}
		if cfg.Ollama.EmbedModel != "nomic-embed-text:latest" {
			t.Errorf("Ollama.EmbedModel = %s, want nomic-embed-text:latest", cfg.Ollama.EmbedModel)
		}
		if cfg.Ollama.ChatModel != "llama3.1:8b" {
			t.Errorf("Ollama.ChatModel = %s, want llama3.1:8b", cfg.Ollama.ChatModel)
		}
		if cfg.Ollama.Timeout != 120*time.Second {
			t.Errorf("Ollama.Timeout = %v, want 120s", cfg.Ollama.Timeout)
		}
		if cfg.Qdrant.Collection != "anyvolt_products_v1" {
			t.Errorf("Qdrant.Collection = %s, want anyvolt_products_v1", cfg.Qdrant.Collection)
		}
		if cfg.Qdrant.ScoreThreshold != 0.10 {
			t.Errorf("Qdrant.ScoreThreshold = %v, want 0.10", cfg.Qdrant.ScoreThreshold)
		}
		if cfg.Search.TopN != 2 {
			t.Errorf("Search.TopN = %d, want 2", cfg.Search.TopN)
		}
		if cfg.Search.PublicScoreThreshold != 0.30 {
			t.Errorf("Search.PublicScoreThreshold = %v, want 0.30", cfg.Search.PublicScoreThreshold)
		}
		if cfg.Search.MaxMessageLength != 1000 {
			t.Errorf("Search.MaxMessageLength = %d, want 1000", cfg.Search.MaxMessageLength)
		}
		if cfg.Search.SemanticFallback {
			t.Errorf("Search.SemanticFallback = true, want false")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Catalog: CatalogConfig{BaseURL: "http://127.0.0.1:1337"},
			Ollama:  OllamaConfig{BaseURL: "http://localhost:11434"},
			Qdrant:  QdrantConfig{URL: "http://localhost:6333", Collection: "products"},
			Search:  SearchConfig{TopN: 2, MaxMessageLength: 1000},
		}
	}

	t.Run("accepts a valid config", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("rejects missing catalog base URL", func(t *testing.T) {
		cfg := valid()
		cfg.Catalog.BaseURL = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error")
		}
	})

	t.Run("rejects qdrant URL without collection", func(t *testing.T) {
		cfg := valid()
		cfg.Qdrant.Collection = ""
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error")
		}
	})

	t.Run("allows empty qdrant URL for lexical-only retrieval", func(t *testing.T) {
		cfg := valid()
		cfg.Qdrant.URL = ""
		cfg.Qdrant.Collection = ""
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("rejects non-positive top_n", func(t *testing.T) {
		cfg := valid()
		cfg.Search.TopN = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error")
		}
	})
}
