package qdrant

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

// Client queries a Qdrant collection over its REST API.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

// NewClient creates a client for the named Qdrant collection.
func NewClient(baseURL, collection string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Vector         []float64 `json:"vector"`
	Limit          int       `json:"limit"`
	WithPayload    bool      `json:"with_payload"`
	ScoreThreshold float64   `json:"score_threshold,omitempty"`
}

type searchResponse struct {
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
	Status any `json:"status"`
}

// Search runs a top-K nearest-neighbor query and maps payloads onto candidates.
// Hits below scoreThreshold are filtered server-side by Qdrant.
func (c *Client) Search(ctx context.Context, vector []float64, limit int, scoreThreshold float64) ([]domain.Candidate, error) {
	reqBody, err := json.Marshal(searchRequest{
		Vector:         vector,
		Limit:          limit,
		WithPayload:    true,
		ScoreThreshold: scoreThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: could not reach Qdrant at %s: %v", domain.ErrUpstreamFailure, c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: qdrant status %d: %s", domain.ErrUpstreamFailure, resp.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(searchResp.Result))
	for _, hit := range searchResp.Result {
		candidates = append(candidates, domain.Candidate{
			Product: payloadToProduct(hit.Payload),
			Score:   hit.Score,
			Method:  domain.MethodSemantic,
		})
	}
	return candidates, nil
}

// payloadToProduct maps a point payload onto a Product. The payload schema
// mirrors the catalog record: known top-level fields plus flat spec keys.
func payloadToProduct(payload map[string]any) domain.Product {
	p := domain.Product{Specs: make(map[string]any, len(payload))}

	var title string
	for key, value := range payload {
		switch key {
		case "id":
			if f, ok := value.(float64); ok {
				p.ID = int(f)
			}
		case "documentId":
			p.DocumentID, _ = value.(string)
		case "name":
			p.Name, _ = value.(string)
		case "title":
			// some collections were indexed with "title" instead of "name"
			title, _ = value.(string)
		case "slug":
			p.Slug, _ = value.(string)
		case "description":
			p.Description, _ = value.(string)
		case "price":
			if f, ok := value.(float64); ok {
				p.Price = &f
			}
		default:
			p.Specs[key] = value
		}
	}
	if p.Name == "" {
		p.Name = title
	}
	return p
}
