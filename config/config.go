package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Ollama  OllamaConfig
	Qdrant  QdrantConfig
	Search  SearchConfig
	Cache   CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds catalog service configuration
type CatalogConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// OllamaConfig holds model backend configuration
type OllamaConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	EmbedModel     string        `mapstructure:"embed_model"`
	ChatModel      string        `mapstructure:"chat_model"`
	FallbackModels []string      `mapstructure:"fallback_models"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// QdrantConfig holds vector index configuration. An empty URL disables the
// vector path; retrieval then runs against the lexical index instead.
type QdrantConfig struct {
	URL            string  `mapstructure:"url"`
	Collection     string  `mapstructure:"collection"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
}

// SearchConfig holds retrieval and fast-path tuning knobs
type SearchConfig struct {
	TopN int `mapstructure:"top_n"`
	// PublicScoreThreshold applies only to the public /search endpoint and is
	// deliberately stricter than the chat retrieval threshold.
	PublicScoreThreshold float64 `mapstructure:"public_score_threshold"`
	MaxMessageLength     int     `mapstructure:"max_message_length"`
	// SemanticFallback lets free-form questions without a "tell me about X"
	// phrasing fall through to semantic retrieval instead of the guidance
	// message. Off by default.
	SemanticFallback   bool `mapstructure:"semantic_fallback"`
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds reply cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/anyvolt/")

	// Environment variable settings
	v.SetEnvPrefix("ANYVOLT")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Catalog defaults
	v.SetDefault("catalog.base_url", "http://127.0.0.1:1337")

	// Ollama defaults
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.embed_model", "nomic-embed-text:latest")
	v.SetDefault("ollama.chat_model", "llama3.1:8b")
	v.SetDefault("ollama.fallback_models", []string{"llama3.1", "mistral:latest", "mistral"})
	// Generous timeout: the first request after a cold start waits for model load
	v.SetDefault("ollama.timeout", "120s")

	// Qdrant defaults
	v.SetDefault("qdrant.url", "http://localhost:6333")
	v.SetDefault("qdrant.collection", "anyvolt_products_v1")
	v.SetDefault("qdrant.score_threshold", 0.10)

	// Search defaults
	v.SetDefault("search.top_n", 2)
	v.SetDefault("search.public_score_threshold", 0.30)
	v.SetDefault("search.max_message_length", 1000)
	v.SetDefault("search.semantic_fallback", false)
	v.SetDefault("search.enable_debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.ttl", "10m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required (set ANYVOLT_CATALOG_BASE_URL)")
	}

	if config.Ollama.BaseURL == "" {
		return fmt.Errorf("ollama base URL is required (set ANYVOLT_OLLAMA_BASE_URL)")
	}

	if config.Qdrant.URL != "" && config.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant collection is required when qdrant URL is set")
	}

	if config.Search.TopN < 1 {
		return fmt.Errorf("search top_n must be at least 1, got: %d", config.Search.TopN)
	}

	if config.Search.MaxMessageLength < 1 {
		return fmt.Errorf("search max_message_length must be positive, got: %d", config.Search.MaxMessageLength)
	}

	return nil
}
