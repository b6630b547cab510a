package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

const defaultTimeout = 120 * time.Second

// Client talks to a local Ollama instance for embeddings and completions.
type Client struct {
	baseURL    string
	embedModel string
	httpClient *http.Client
}

// NewClient creates a client for the Ollama HTTP API. A zero timeout falls
// back to a generous default that tolerates first-load model latency.
func NewClient(baseURL, embedModel string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	Message domain.ChatMessage `json:"message"`
	// Some proxies rewrap Ollama responses in an OpenAI-style envelope
	Choices []struct {
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// post marshals reqBody, sends it to path, and decodes the response into out.
// A 404 whose body mentions an unknown model maps to ErrModelNotFound so the
// completion fallback chain can skip past it.
func (c *Client) post(ctx context.Context, path string, reqBody, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: could not reach Ollama at %s: %v", domain.ErrUpstreamFailure, c.baseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errMsg := string(respBody)
		if resp.StatusCode == http.StatusNotFound &&
			strings.Contains(errMsg, "model") && strings.Contains(errMsg, "not found") {
			return fmt.Errorf("%w: %s", domain.ErrModelNotFound, errMsg)
		}
		return fmt.Errorf("%w: ollama status %d: %s", domain.ErrUpstreamFailure, resp.StatusCode, errMsg)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Embed converts text into a fixed-length vector using the configured embed model.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var resp embedResponse
	err := c.post(ctx, "/api/embeddings", embedRequest{Model: c.embedModel, Prompt: text}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", domain.ErrUpstreamFailure)
	}
	return resp.Embedding, nil
}

// Chat sends a chat-style completion request and returns the trimmed reply text.
func (c *Client) Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	var resp chatResponse
	err := c.post(ctx, "/api/chat", chatRequest{Model: model, Messages: messages, Stream: false}, &resp)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Message.Content)
	if text == "" && len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	return text, nil
}

// Generate sends a single-prompt completion request and returns the trimmed text.
func (c *Client) Generate(ctx context.Context, model string, prompt string) (string, error) {
	var resp generateResponse
	err := c.post(ctx, "/api/generate", generateRequest{Model: model, Prompt: prompt, Stream: false}, &resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}
