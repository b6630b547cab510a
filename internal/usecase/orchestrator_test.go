package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

func TestOrchestratorComplete(t *testing.T) {
	messages := []domain.ChatMessage{{Role: "user", Content: "hi"}}
	notFound := fmt.Errorf("%w: pull the model first", domain.ErrModelNotFound)

	t.Run("first model answers", func(t *testing.T) {
		client := &scriptedCompletion{chat: map[string]outcome{
			"a": {text: "answer from a"},
		}}
		o := NewOrchestrator(client, []string{"a", "b"}, false)

		reply, attempts, err := o.Complete(context.Background(), messages, "prompt")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if reply != "answer from a" {
			t.Errorf("reply = %q", reply)
		}
		if len(client.calls) != 1 || client.calls[0] != "a" {
			t.Errorf("calls = %v, want [a]", client.calls)
		}
		if len(attempts) != 1 || attempts[0].Outcome != AttemptSucceeded {
			t.Errorf("attempts = %+v", attempts)
		}
	})

	t.Run("missing models fall through in order", func(t *testing.T) {
		client := &scriptedCompletion{chat: map[string]outcome{
			"a": {err: notFound},
			"b": {err: notFound},
			"c": {text: "answer from c"},
		}}
		o := NewOrchestrator(client, []string{"a", "b", "c"}, false)

		reply, attempts, err := o.Complete(context.Background(), messages, "prompt")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if reply != "answer from c" {
			t.Errorf("reply = %q", reply)
		}
		want := []string{"a", "b", "c"}
		if len(client.calls) != len(want) {
			t.Fatalf("calls = %v, want %v", client.calls, want)
		}
		for i := range want {
			if client.calls[i] != want[i] {
				t.Fatalf("calls = %v, want %v", client.calls, want)
			}
		}
		if attempts[0].Outcome != AttemptModelNotFound || attempts[1].Outcome != AttemptModelNotFound {
			t.Errorf("attempts = %+v", attempts)
		}
	})

	t.Run("infrastructure failure aborts the chain", func(t *testing.T) {
		boom := fmt.Errorf("%w: connection refused", domain.ErrUpstreamFailure)
		client := &scriptedCompletion{chat: map[string]outcome{
			"a": {err: boom},
			"b": {text: "never reached"},
		}}
		o := NewOrchestrator(client, []string{"a", "b"}, false)

		_, attempts, err := o.Complete(context.Background(), messages, "prompt")
		if !errors.Is(err, domain.ErrUpstreamFailure) {
			t.Fatalf("error = %v, want ErrUpstreamFailure", err)
		}
		if len(client.calls) != 1 {
			t.Errorf("calls = %v, want only the failing model", client.calls)
		}
		if client.genCalls != 0 {
			t.Error("generate fallback ran after a fatal error")
		}
		if attempts[len(attempts)-1].Outcome != AttemptFailed {
			t.Errorf("attempts = %+v", attempts)
		}
	})

	t.Run("generate fallback after empty chat replies", func(t *testing.T) {
		client := &scriptedCompletion{
			chat:     map[string]outcome{"a": {text: ""}, "b": {err: notFound}},
			generate: outcome{text: "generated answer"},
		}
		o := NewOrchestrator(client, []string{"a", "b"}, false)

		reply, _, err := o.Complete(context.Background(), messages, "prompt")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if reply != "generated answer" {
			t.Errorf("reply = %q", reply)
		}
		if client.genCalls != 1 {
			t.Errorf("genCalls = %d, want 1", client.genCalls)
		}
	})

	t.Run("fixed fallback sentence when everything is exhausted", func(t *testing.T) {
		client := &scriptedCompletion{
			chat:     map[string]outcome{"a": {err: notFound}},
			generate: outcome{err: notFound},
		}
		o := NewOrchestrator(client, []string{"a"}, false)

		reply, _, err := o.Complete(context.Background(), messages, "prompt")
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if reply != NoAnswerReply {
			t.Errorf("reply = %q, want %q", reply, NoAnswerReply)
		}
	})

	t.Run("no models configured", func(t *testing.T) {
		o := NewOrchestrator(&scriptedCompletion{}, nil, false)
		_, _, err := o.Complete(context.Background(), messages, "prompt")
		if !errors.Is(err, domain.ErrUpstreamFailure) {
			t.Errorf("error = %v, want ErrUpstreamFailure", err)
		}
	})
}
