package usecase

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

// publishedScanLimit bounds the exact-name scan over the live catalog
const publishedScanLimit = 100

// LexicalRetriever is the subset of the lexical index the resolver needs.
type LexicalRetriever interface {
	QueryCandidates(q string, limit int) ([]domain.Candidate, error)
	Ready() bool
}

// Resolver turns a query into a resolved product or ranked candidates.
// Tier order is explicit identifier, exact name, then semantic/lexical
// retrieval; a tier only runs when the previous one yielded nothing.
type Resolver struct {
	catalog  domain.CatalogStore
	embedder domain.Embedder
	vector   domain.VectorSearcher // nil when vector infrastructure is unset
	lexical  LexicalRetriever
	debug    bool
}

// NewResolver creates a resolver. vector may be nil; retrieval then uses the
// lexical index.
func NewResolver(catalog domain.CatalogStore, embedder domain.Embedder, vector domain.VectorSearcher, lexical LexicalRetriever, debug bool) *Resolver {
	return &Resolver{
		catalog:  catalog,
		embedder: embedder,
		vector:   vector,
		lexical:  lexical,
		debug:    debug,
	}
}

// ResolveExplicit looks up the caller-supplied identifiers. A stale or wrong
// identifier is a tier miss, not an error: the lookup failure is swallowed and
// resolution falls through to the next tier.
func (r *Resolver) ResolveExplicit(ctx context.Context, q domain.Query) *domain.Candidate {
	if q.ProductID > 0 {
		product, err := r.catalog.GetByID(ctx, q.ProductID)
		if err == nil {
			return &domain.Candidate{Product: *product, Score: 1, Method: domain.MethodExplicitID}
		}
		if r.debug {
			log.Printf("[assistant] productId %d lookup missed: %v", q.ProductID, err)
		}
	}

	if q.DocumentID != "" {
		product, err := r.catalog.GetByDocumentID(ctx, q.DocumentID)
		if err == nil {
			return &domain.Candidate{Product: *product, Score: 1, Method: domain.MethodExplicitID}
		}
		if r.debug {
			log.Printf("[assistant] documentId %q lookup missed: %v", q.DocumentID, err)
		}
	}

	return nil
}

var (
	leadingPunctRegex = regexp.MustCompile(`^[\s:,\-]+`)
	nameMarkerRegex   = regexp.MustCompile(`(?i)tell me about`)
)

// ExtractProductName pulls the requested product name out of a
// "tell me about X" phrasing. Returns "" when the message does not follow
// that phrasing. The marker is located case-insensitively on the original
// string; lowercasing can change byte offsets for non-ASCII input.
func ExtractProductName(message string) string {
	loc := nameMarkerRegex.FindStringIndex(message)
	if loc == nil {
		return ""
	}

	name := message[loc[1]:]
	name = leadingPunctRegex.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// ResolveExactName scans the live catalog for a case-insensitive exact match
// on the extracted name. No fuzzy matching happens at this tier: a
// single-product answer must never guess the wrong product, so anything short
// of strict equality is a miss.
func (r *Resolver) ResolveExactName(ctx context.Context, requestedName string) (*domain.Candidate, error) {
	requestedLower := strings.ToLower(requestedName)

	products, err := r.catalog.ListPublished(ctx, publishedScanLimit)
	if err != nil {
		return nil, err
	}

	for i := range products {
		name := strings.ToLower(products[i].Name)
		if name != "" && name == requestedLower {
			return &domain.Candidate{Product: products[i], Score: 1, Method: domain.MethodExactName}, nil
		}
	}
	return nil, nil
}

// Retrieve runs the semantic tier: embed the query and search the vector
// index, or fall back to the lexical index when vector infrastructure is not
// configured. Candidates come back ranked by descending relevance; an empty
// slice means no match above scoreThreshold. The threshold applies in both
// modes: the vector index enforces it server-side, lexical candidates are
// filtered here on their normalized similarity.
func (r *Resolver) Retrieve(ctx context.Context, message string, limit int, scoreThreshold float64) ([]domain.Candidate, error) {
	if r.vector == nil {
		candidates, err := r.lexical.QueryCandidates(message, limit)
		if err != nil {
			return nil, err
		}
		kept := candidates[:0]
		for _, c := range candidates {
			if c.Score >= scoreThreshold {
				kept = append(kept, c)
			}
		}
		return kept, nil
	}

	vector, err := r.embedder.Embed(ctx, message)
	if err != nil {
		return nil, err
	}

	candidates, err := r.vector.Search(ctx, vector, limit, scoreThreshold)
	if err != nil {
		return nil, err
	}

	if r.debug {
		log.Printf("[assistant] retrieval hits: %d", len(candidates))
	}
	return candidates, nil
}
