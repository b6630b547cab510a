package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/anyvolt/assistant-backend/config"
	httpDelivery "github.com/anyvolt/assistant-backend/internal/delivery/http"
	"github.com/anyvolt/assistant-backend/internal/domain"
	"github.com/anyvolt/assistant-backend/internal/infrastructure/cache"
	"github.com/anyvolt/assistant-backend/internal/infrastructure/catalog"
	"github.com/anyvolt/assistant-backend/internal/infrastructure/ollama"
	"github.com/anyvolt/assistant-backend/internal/infrastructure/qdrant"
	"github.com/anyvolt/assistant-backend/internal/search"
	"github.com/anyvolt/assistant-backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting AnyVolt Assistant Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	replyCache := cache.NewMemoryCache()
	log.Printf("Reply cache TTL: %s", cfg.Cache.TTL)

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Token)
	if cfg.Server.Environment == "development" {
		catalogClient.SetDebug(true)
		log.Printf("Catalog client debug mode enabled")
	}
	log.Printf("Catalog service: %s", cfg.Catalog.BaseURL)

	ollamaClient := ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel, cfg.Ollama.Timeout)
	log.Printf("Ollama: %s (embed=%s, chat=%s)", cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel, cfg.Ollama.ChatModel)

	// Vector search is optional; without it retrieval runs on the lexical index
	var vector domain.VectorSearcher
	if cfg.Qdrant.URL != "" {
		vector = qdrant.NewClient(cfg.Qdrant.URL, cfg.Qdrant.Collection, cfg.Ollama.Timeout)
		log.Printf("Qdrant: %s (collection=%s, threshold=%.2f)", cfg.Qdrant.URL, cfg.Qdrant.Collection, cfg.Qdrant.ScoreThreshold)
	} else {
		log.Printf("Qdrant not configured; retrieval falls back to the lexical index")
	}

	// Lexical index warms up in the background so a slow catalog never blocks boot
	index := search.NewIndex()
	indexService := usecase.NewIndexService(catalogClient, index)
	go indexService.WarmUp(context.Background())

	resolver := usecase.NewResolver(catalogClient, ollamaClient, vector, index, cfg.Search.EnableDebugLogging)
	orchestrator := usecase.NewOrchestrator(ollamaClient, completionModels(cfg), cfg.Search.EnableDebugLogging)

	assistantService := usecase.NewAssistantService(
		resolver,
		orchestrator,
		catalogClient,
		replyCache,
		usecase.AssistantServiceConfig{
			TopN:               cfg.Search.TopN,
			ScoreThreshold:     cfg.Qdrant.ScoreThreshold,
			MaxMessageLength:   cfg.Search.MaxMessageLength,
			SemanticFallback:   cfg.Search.SemanticFallback,
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: cfg.Search.EnableDebugLogging,
		},
	)

	log.Printf("Search: top_n=%d, semantic_fallback=%v, debug=%v",
		cfg.Search.TopN,
		cfg.Search.SemanticFallback,
		cfg.Search.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(assistantService, indexService, cfg.Search.PublicScoreThreshold)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// completionModels builds the ordered fallback chain: the configured chat
// model first, then the fallbacks without duplicating it.
func completionModels(cfg *config.Config) []string {
	models := []string{cfg.Ollama.ChatModel}
	for _, m := range cfg.Ollama.FallbackModels {
		if m != "" && m != cfg.Ollama.ChatModel {
			models = append(models, m)
		}
	}
	return models
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
