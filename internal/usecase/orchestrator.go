package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

// NoAnswerReply is returned when every model in the chain produced nothing.
// The pipeline never returns an empty reply.
const NoAnswerReply = "Sorry, I don't have an answer from the model."

// CompletionAttempt records one model try for logging and tests.
type CompletionAttempt struct {
	Model   string
	Outcome AttemptOutcome
}

// AttemptOutcome is the typed result of one completion attempt.
type AttemptOutcome int

const (
	AttemptSucceeded AttemptOutcome = iota
	AttemptModelNotFound
	AttemptEmptyReply
	AttemptFailed
)

// Orchestrator walks an ordered model list until one produces an answer.
type Orchestrator struct {
	client domain.CompletionClient
	models []string
	debug  bool
}

// NewOrchestrator creates an orchestrator over the given fallback chain.
// The list order is the try order; the first entry is also the model used
// for the final generate-style fallback.
func NewOrchestrator(client domain.CompletionClient, models []string, debug bool) *Orchestrator {
	return &Orchestrator{client: client, models: models, debug: debug}
}

// Complete tries each model with a chat-style call. A model-not-found error
// moves on to the next model; any other error aborts the whole request, so an
// infrastructure failure is never masked as "no answer". If no chat call
// yields text, one generate-style attempt runs against the first model before
// giving up with the fixed fallback sentence.
func (o *Orchestrator) Complete(ctx context.Context, messages []domain.ChatMessage, generatePrompt string) (string, []CompletionAttempt, error) {
	if len(o.models) == 0 {
		return "", nil, fmt.Errorf("%w: no models configured", domain.ErrUpstreamFailure)
	}

	attempts := make([]CompletionAttempt, 0, len(o.models)+1)
	for _, model := range o.models {
		if o.debug {
			log.Printf("[assistant] trying model: %s", model)
		}

		text, err := o.client.Chat(ctx, model, messages)
		switch {
		case err == nil && text != "":
			attempts = append(attempts, CompletionAttempt{Model: model, Outcome: AttemptSucceeded})
			return text, attempts, nil
		case err == nil:
			attempts = append(attempts, CompletionAttempt{Model: model, Outcome: AttemptEmptyReply})
		case errors.Is(err, domain.ErrModelNotFound):
			log.Printf("[assistant] model %s not found, trying next", model)
			attempts = append(attempts, CompletionAttempt{Model: model, Outcome: AttemptModelNotFound})
		default:
			attempts = append(attempts, CompletionAttempt{Model: model, Outcome: AttemptFailed})
			return "", attempts, err
		}
	}

	// Chat chain exhausted: one single-prompt attempt against the first model
	text, err := o.client.Generate(ctx, o.models[0], generatePrompt)
	switch {
	case err == nil && text != "":
		attempts = append(attempts, CompletionAttempt{Model: o.models[0], Outcome: AttemptSucceeded})
		return text, attempts, nil
	case err == nil:
		attempts = append(attempts, CompletionAttempt{Model: o.models[0], Outcome: AttemptEmptyReply})
		return NoAnswerReply, attempts, nil
	case errors.Is(err, domain.ErrModelNotFound):
		attempts = append(attempts, CompletionAttempt{Model: o.models[0], Outcome: AttemptModelNotFound})
		return NoAnswerReply, attempts, nil
	default:
		attempts = append(attempts, CompletionAttempt{Model: o.models[0], Outcome: AttemptFailed})
		return "", attempts, err
	}
}
