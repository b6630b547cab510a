package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

// Fixed user-visible replies. These are negative results, not errors: the
// HTTP layer returns them with a success status.
const (
	GuidanceReply = `Please ask: "Tell me about <exact product name>".`
	NotFoundReply = `I couldn't find that product. Please ask: "Tell me about <exact product name>".`
	NoDataReply   = "Sorry, I don't have AnyVolt product information on that yet."
)

// AssistantServiceConfig holds tuning knobs for the answering pipeline
type AssistantServiceConfig struct {
	TopN             int
	ScoreThreshold   float64
	MaxMessageLength int
	// SemanticFallback lets free-form questions without the "tell me about X"
	// phrasing fall through to retrieval instead of the guidance reply
	SemanticFallback   bool
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// AssistantService runs the query resolution and answering pipeline.
// Each request is independent: no state is shared between calls beyond the
// read-mostly lexical index and the reply cache.
type AssistantService struct {
	resolver     *Resolver
	orchestrator *Orchestrator
	catalog      domain.CatalogStore
	cache        domain.ReplyCache
	now          func() time.Time

	topN             int
	scoreThreshold   float64
	maxMessageLength int
	semanticFallback bool
	cacheTTL         time.Duration
	debug            bool
}

// NewAssistantService wires the pipeline from its collaborators
func NewAssistantService(
	resolver *Resolver,
	orchestrator *Orchestrator,
	catalog domain.CatalogStore,
	cache domain.ReplyCache,
	config AssistantServiceConfig,
) *AssistantService {
	topN := config.TopN
	if topN < 1 {
		topN = 2
	}

	maxLen := config.MaxMessageLength
	if maxLen < 1 {
		maxLen = 1000
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	return &AssistantService{
		resolver:         resolver,
		orchestrator:     orchestrator,
		catalog:          catalog,
		cache:            cache,
		now:              time.Now,
		topN:             topN,
		scoreThreshold:   config.ScoreThreshold,
		maxMessageLength: maxLen,
		semanticFallback: config.SemanticFallback,
		cacheTTL:         cacheTTL,
		debug:            config.EnableDebugLogging,
	}
}

// ChatRequest is one incoming assistant question
type ChatRequest struct {
	Message    string
	ProductID  int
	DocumentID string
}

// Chat answers a single question. Every return path yields a non-empty reply
// or an error; fast-path and guidance replies never touch the model backend.
func (s *AssistantService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	message, err := SanitizeMessage(req.Message, s.maxMessageLength)
	if err != nil {
		return "", err
	}

	// Tier 1: explicit identifier. A miss falls through silently.
	query := domain.Query{Message: message, ProductID: req.ProductID, DocumentID: req.DocumentID}
	if candidate := s.resolver.ResolveExplicit(ctx, query); candidate != nil {
		return s.answerForProduct(ctx, message, candidate)
	}

	// Structured fast paths answer from retrieved payloads, never the model
	intent := DetectIntent(message)
	if intent == domain.IntentFieldLookup || intent == domain.IntentListQuery {
		return s.answerFastPath(ctx, message, intent)
	}

	// Tier 2: exact name from "tell me about X" phrasing
	if requestedName := ExtractProductName(message); requestedName != "" {
		candidate, err := s.resolver.ResolveExactName(ctx, requestedName)
		if err != nil {
			return "", err
		}
		if candidate == nil {
			return NotFoundReply, nil
		}
		return s.answerForProduct(ctx, message, candidate)
	}

	// Tier 3 is opt-in: the default is to ask for exact phrasing rather than
	// risk grounding an answer on the wrong product
	if s.semanticFallback {
		return s.answerFromRetrieval(ctx, message)
	}
	return s.guidanceReply(ctx), nil
}

// answerForProduct handles a question that resolved to one specific product
func (s *AssistantService) answerForProduct(ctx context.Context, message string, candidate *domain.Candidate) (string, error) {
	candidates := []domain.Candidate{*candidate}

	switch DetectIntent(message) {
	case domain.IntentFieldLookup:
		if reply, ok := AnswerField(message, candidates); ok {
			return reply, nil
		}
	case domain.IntentListQuery:
		return AnswerList(candidates, s.topN), nil
	}

	messages := CompileProductPrompt(&candidate.Product, message, s.now())
	generatePrompt := CompileGeneratePrompt(BuildContext(candidates, 1), message)

	reply, attempts, err := s.orchestrator.Complete(ctx, messages, generatePrompt)
	s.logAttempts(attempts)
	return reply, err
}

// answerFastPath answers field-lookup and list intents from retrieval payloads
func (s *AssistantService) answerFastPath(ctx context.Context, message string, intent domain.Intent) (string, error) {
	cacheKey := NormalizeCacheKey(message)
	if s.cache != nil {
		if reply, err := s.cache.Get(ctx, cacheKey); err == nil {
			return reply, nil
		}
	}

	// Retrieve a few extra hits so the name-in-question preference has
	// something to choose from
	limit := s.topN
	if limit < 5 {
		limit = 5
	}
	candidates, err := s.resolver.Retrieve(ctx, message, limit, s.scoreThreshold)
	if err != nil {
		return "", err
	}

	// A generic "list products" carries no searchable terms; fall back to a
	// catalog excerpt instead of claiming there is no data.
	if len(candidates) == 0 && intent == domain.IntentListQuery {
		products, err := s.catalog.ListPublished(ctx, s.topN)
		if err != nil {
			return "", err
		}
		for _, p := range products {
			candidates = append(candidates, domain.Candidate{Product: p, Score: 1, Method: domain.MethodCatalogOrder})
		}
	}
	if len(candidates) == 0 {
		return NoDataReply, nil
	}

	var reply string
	if intent == domain.IntentFieldLookup {
		fieldCandidates := candidates
		if n := max(s.topN, 2); len(fieldCandidates) > n {
			fieldCandidates = fieldCandidates[:n]
		}
		answered, ok := AnswerField(message, fieldCandidates)
		if !ok {
			return "", fmt.Errorf("%w: field intent without matcher", domain.ErrInvalidRequest)
		}
		reply = answered
	} else {
		reply = AnswerList(candidates, s.topN)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, reply, s.cacheTTL); err != nil && s.debug {
			log.Printf("[assistant] reply cache set failed: %v", err)
		}
	}
	return reply, nil
}

// answerFromRetrieval grounds a free-form answer on the top retrieved records
func (s *AssistantService) answerFromRetrieval(ctx context.Context, message string) (string, error) {
	candidates, err := s.resolver.Retrieve(ctx, message, max(s.topN, 5), s.scoreThreshold)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return NoDataReply, nil
	}

	contextBlock := BuildContext(candidates, s.topN)
	if s.debug {
		log.Printf("[assistant] context length: %d", len(contextBlock))
	}

	messages := CompileChatPrompt(contextBlock, message)
	generatePrompt := CompileGeneratePrompt(contextBlock, message)

	reply, attempts, err := s.orchestrator.Complete(ctx, messages, generatePrompt)
	s.logAttempts(attempts)
	return reply, err
}

// guidanceReply asks for the exact phrasing, with a few live product names as
// examples when the catalog is reachable
func (s *AssistantService) guidanceReply(ctx context.Context) string {
	names, err := s.catalog.ListNames(ctx, 5)
	if err != nil || len(names) == 0 {
		// Guidance must not fail just because the example lookup did
		return GuidanceReply
	}

	if len(names) > 3 {
		names = names[:3]
	}
	var b strings.Builder
	b.WriteString(GuidanceReply)
	b.WriteString("\n\nFor example, you can say:")
	for _, name := range names {
		b.WriteString("\n- Tell me about ")
		b.WriteString(name)
	}
	return b.String()
}

func (s *AssistantService) logAttempts(attempts []CompletionAttempt) {
	if !s.debug {
		return
	}
	for _, a := range attempts {
		log.Printf("[assistant] attempt model=%s outcome=%d", a.Model, a.Outcome)
	}
}

// IsUserError reports whether err should surface as a client error rather
// than a server failure.
func IsUserError(err error) bool {
	return errors.Is(err, domain.ErrInvalidRequest)
}
