package domain

import (
	"context"
	"time"
)

// CatalogStore defines the read-only contract against the catalog service.
type CatalogStore interface {
	// GetByID fetches a single product by numeric identifier.
	GetByID(ctx context.Context, id int) (*Product, error)
	// GetByDocumentID fetches a single published product by opaque document identifier.
	GetByDocumentID(ctx context.Context, documentID string) (*Product, error)
	// ListPublished returns published products sorted by id ascending, up to limit.
	ListPublished(ctx context.Context, limit int) ([]Product, error)
	// ListNames returns the names of up to limit published products.
	ListNames(ctx context.Context, limit int) ([]string, error)
	// ListAll pages through every published product.
	ListAll(ctx context.Context) ([]Product, error)
}

// Embedder converts free text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorSearcher queries an approximate-nearest-neighbor index for scored payloads.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float64, limit int, scoreThreshold float64) ([]Candidate, error)
}

// ChatMessage is a single message in a chat-style completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient is the contract against the generative model backend.
// Chat and Generate must return ErrModelNotFound (wrapped is fine) when the
// backend reports an unknown model, so the fallback chain can distinguish it
// from real infrastructure failures.
type CompletionClient interface {
	Chat(ctx context.Context, model string, messages []ChatMessage) (string, error)
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

// ReplyCache caches assistant replies for deterministic fast-path answers.
type ReplyCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, reply string, ttl time.Duration) error
}
