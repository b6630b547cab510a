package domain

// RetrievalMethod records which resolver tier produced a candidate.
type RetrievalMethod string

const (
	MethodExplicitID   RetrievalMethod = "explicit-id"
	MethodExactName    RetrievalMethod = "exact-name"
	MethodSemantic     RetrievalMethod = "semantic"
	MethodLexical      RetrievalMethod = "lexical"
	MethodCatalogOrder RetrievalMethod = "catalog-order"
)

// Candidate is a product paired with the relevance score and origin of its
// retrieval. Candidates live for a single request and are never persisted.
type Candidate struct {
	Product Product
	// Score is descending relevance: cosine similarity for semantic hits,
	// inverted fuzzy score for lexical hits, 1.0 for deterministic lookups.
	Score  float64
	Method RetrievalMethod
}

// Query is sanitized user input plus any explicit identifiers the caller supplied.
type Query struct {
	Message    string
	ProductID  int    // 0 when not supplied
	DocumentID string // "" when not supplied
}

// Intent classifies a query for fast-path dispatch. FreeForm is the default.
type Intent int

const (
	IntentFreeForm Intent = iota
	IntentFieldLookup
	IntentListQuery
)

// SearchHit is a ranked result from the lexical index, exposed on the public
// search endpoint. Score follows fuzzy-match convention: lower is better.
type SearchHit struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}
