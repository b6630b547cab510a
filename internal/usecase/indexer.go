package usecase

import (
	"context"
	"log"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

// LexicalIndex is the rebuild-side contract of the lexical search index.
type LexicalIndex interface {
	Rebuild(products []domain.Product)
	Ready() bool
	Count() int
	Query(q string, limit int) ([]domain.SearchHit, error)
}

// IndexService rebuilds the lexical index from a full catalog snapshot.
type IndexService struct {
	catalog domain.CatalogStore
	index   LexicalIndex
}

// NewIndexService creates an index service
func NewIndexService(catalog domain.CatalogStore, index LexicalIndex) *IndexService {
	return &IndexService{catalog: catalog, index: index}
}

// Rebuild fetches every published product and replaces the index contents.
// Returns the number of indexed records.
func (s *IndexService) Rebuild(ctx context.Context) (int, error) {
	products, err := s.catalog.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	s.index.Rebuild(products)
	return s.index.Count(), nil
}

// WarmUp rebuilds the index at startup without failing the boot when the
// catalog is not reachable yet; queries stay in the not-ready state until an
// explicit refresh succeeds.
func (s *IndexService) WarmUp(ctx context.Context) {
	count, err := s.Rebuild(ctx)
	if err != nil {
		log.Printf("[index] warmup failed (server still starts): %v", err)
		return
	}
	log.Printf("[index] warmup complete: %d products", count)
}

// Ready reports whether the index can serve queries
func (s *IndexService) Ready() bool {
	return s.index.Ready()
}

// Count returns the number of indexed records
func (s *IndexService) Count() int {
	return s.index.Count()
}

// Search runs a ranked lexical query, dropping hits whose similarity
// (1 - fuzzy score) falls below minSimilarity.
func (s *IndexService) Search(q string, limit int, minSimilarity float64) ([]domain.SearchHit, error) {
	hits, err := s.index.Query(q, limit)
	if err != nil {
		return nil, err
	}

	filtered := hits[:0]
	for _, hit := range hits {
		if 1-hit.Score >= minSimilarity {
			filtered = append(filtered, hit)
		}
	}
	return filtered, nil
}
