// Package search maintains an in-memory fuzzy index over catalog text. It is
// the retrieval path when no vector infrastructure is configured, and backs
// the public field-search endpoint.
package search

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

// Field weights: the title dominates, description and flattened spec text
// contribute less.
const (
	weightTitle    = 0.6
	weightDesc     = 0.2
	weightSpecText = 0.2
)

// defaultThreshold drops hits whose score is worse (higher) than this.
// Scores follow fuzzy-match convention: 0 is a perfect match, 1 is no match.
const defaultThreshold = 0.5

// candidateThreshold is the laxer cutoff for resolver retrieval. Full-sentence
// questions dilute token coverage, so candidate queries keep anything with a
// sliver of similarity and leave ranking to the caller.
const candidateThreshold = 0.9

// fuzzyEditDistance is the max edit distance for a near-token match
const fuzzyEditDistance = 1

// fuzzyMatchWeight discounts fuzzy token matches relative to exact ones
const fuzzyMatchWeight = 0.8

// document is one indexed catalog record
type document struct {
	id          int
	title       string
	description string

	titleTokens []string
	descTokens  []string
	specTokens  []string
}

// Index is a read-mostly fuzzy-match index over catalog text fields.
// Rebuild replaces the whole document set atomically; queries issued before
// the first rebuild fail with ErrIndexNotReady.
type Index struct {
	mutex     sync.RWMutex
	docs      []document
	byID      map[int]domain.Product
	ready     bool
	threshold float64
}

// NewIndex creates an empty, not-yet-ready index
func NewIndex() *Index {
	return &Index{threshold: defaultThreshold}
}

// Ready reports whether a rebuild has completed at least once
func (idx *Index) Ready() bool {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return idx.ready
}

// Count returns the number of indexed records
func (idx *Index) Count() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return len(idx.docs)
}

// Rebuild replaces the index contents from a fresh catalog snapshot.
// Records without a name and description are skipped.
func (idx *Index) Rebuild(products []domain.Product) {
	docs := make([]document, 0, len(products))
	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		title := strings.TrimSpace(p.Name)
		desc := strings.TrimSpace(p.Description)
		if title == "" && desc == "" {
			continue
		}

		specText := flattenSpecs(&p)
		docs = append(docs, document{
			id:          p.ID,
			title:       title,
			description: desc,
			titleTokens: tokenize(title),
			descTokens:  tokenize(desc),
			specTokens:  tokenize(specText),
		})
		byID[p.ID] = p
	}

	idx.mutex.Lock()
	idx.docs = docs
	idx.byID = byID
	idx.ready = true
	idx.mutex.Unlock()

	log.Printf("[index] rebuilt with %d products", len(docs))
}

// Query returns ranked hits for q, best (lowest score) first, up to limit.
// Hits worse than the index threshold are dropped.
func (idx *Index) Query(q string, limit int) ([]domain.SearchHit, error) {
	return idx.query(q, limit, idx.threshold)
}

func (idx *Index) query(q string, limit int, threshold float64) ([]domain.SearchHit, error) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	if !idx.ready {
		return nil, domain.ErrIndexNotReady
	}

	queryTokens := tokenize(q)
	if len(queryTokens) == 0 {
		return nil, nil
	}
	queryLower := strings.ToLower(strings.TrimSpace(q))

	hits := make([]domain.SearchHit, 0, limit)
	for i := range idx.docs {
		doc := &idx.docs[i]
		score := idx.scoreDocument(doc, queryTokens, queryLower)
		if score > threshold {
			continue
		}
		hits = append(hits, domain.SearchHit{
			ID:          doc.id,
			Title:       doc.title,
			Description: doc.description,
			Score:       score,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score < hits[b].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// QueryCandidates wraps Query results as resolver candidates with scores
// normalized to descending relevance (1 - fuzzy score). Candidates carry the
// full indexed record so fast-path answers can read spec fields.
func (idx *Index) QueryCandidates(q string, limit int) ([]domain.Candidate, error) {
	hits, err := idx.query(q, limit, candidateThreshold)
	if err != nil {
		return nil, err
	}

	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	candidates := make([]domain.Candidate, 0, len(hits))
	for _, hit := range hits {
		product, ok := idx.byID[hit.ID]
		if !ok {
			product = domain.Product{ID: hit.ID, Name: hit.Title, Description: hit.Description}
		}
		candidates = append(candidates, domain.Candidate{
			Product: product,
			Score:   1 - hit.Score,
			Method:  domain.MethodLexical,
		})
	}
	return candidates, nil
}

// scoreDocument combines weighted per-field match quality into a single
// lower-is-better score.
func (idx *Index) scoreDocument(doc *document, queryTokens []string, queryLower string) float64 {
	titleQuality := matchQuality(queryTokens, doc.titleTokens)
	descQuality := matchQuality(queryTokens, doc.descTokens)
	specQuality := matchQuality(queryTokens, doc.specTokens)

	// An exact phrase hit in the title is as good as full token coverage
	if queryLower != "" && strings.Contains(strings.ToLower(doc.title), queryLower) {
		titleQuality = 1.0
	}

	quality := titleQuality*weightTitle + descQuality*weightDesc + specQuality*weightSpecText
	return 1 - quality
}

// matchQuality returns the fraction of query tokens found in the field tokens,
// counting fuzzy matches at a discount. Result is in [0, 1].
func matchQuality(queryTokens, fieldTokens []string) float64 {
	if len(queryTokens) == 0 || len(fieldTokens) == 0 {
		return 0
	}

	fieldSet := make(map[string]bool, len(fieldTokens))
	for _, t := range fieldTokens {
		fieldSet[t] = true
	}

	var matched float64
	for _, qt := range queryTokens {
		if fieldSet[qt] {
			matched++
			continue
		}
		for _, ft := range fieldTokens {
			if fuzzyTokenMatch(qt, ft, fuzzyEditDistance) {
				matched += fuzzyMatchWeight
				break
			}
		}
	}
	return matched / float64(len(queryTokens))
}

// flattenSpecs renders all non-empty spec fields as "key: value" text in
// stable key order, so index contents are deterministic per snapshot.
func flattenSpecs(p *domain.Product) string {
	if len(p.Specs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(p.Specs))
	for k := range p.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := p.Specs[k]
		if v == nil {
			continue
		}
		switch tv := v.(type) {
		case string:
			if tv == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s", k, tv))
		case bool:
			if tv {
				parts = append(parts, fmt.Sprintf("%s: Yes", k))
			} else {
				parts = append(parts, fmt.Sprintf("%s: No", k))
			}
		case float64:
			parts = append(parts, fmt.Sprintf("%s: %v", k, tv))
		default:
			parts = append(parts, fmt.Sprintf("%s: %v", k, tv))
		}
	}
	return strings.Join(parts, " | ")
}

var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// tokenize splits a string into normalized lowercase tokens, dropping
// single-character fragments.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	words := strings.Fields(cleaned)

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) <= 1 {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens > 4 chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
