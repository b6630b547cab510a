package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/anyvolt/assistant-backend/internal/domain"
	"golang.org/x/time/rate"
)

const pageSize = 100

// Client handles communication with the catalog service's read-only REST API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new catalog API client
func NewClient(baseURL, token string) *Client {
	// The catalog service sits behind the same reverse proxy as the admin UI;
	// keep well under its 10 req/s per-client limit
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		rateLimiter: limiter,
	}
}

// SetDebug toggles request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the sleep duration before the given retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250<<attempt) * time.Millisecond
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "AnyVoltAssistant/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	return resp, nil
}

// getJSON fetches reqURL with rate limiting and bounded retries, decoding the
// response body into out. A 404 maps to ErrProductNotFound; other non-200
// statuses are retried and finally surface as ErrUpstreamFailure.
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[catalog] request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[catalog] status %d (attempt %d): %s", resp.StatusCode, attempt, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
	return lastErr
}

// entry is one product record in a catalog API response. The catalog service
// has shipped two shapes over time: nested {id, attributes:{...}} and flat
// {id, name, ...}; both are supported.
type entry struct {
	ID         int             `json:"id"`
	DocumentID string          `json:"documentId"`
	Attributes json.RawMessage `json:"attributes"`

	attrs
}

type attrs struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

type listResponse struct {
	Data []json.RawMessage `json:"data"`
	Meta struct {
		Pagination struct {
			Page      int `json:"page"`
			PageCount int `json:"pageCount"`
		} `json:"pagination"`
	} `json:"meta"`
}

type oneResponse struct {
	Data json.RawMessage `json:"data"`
}

var htmlTagRegex = regexp.MustCompile(`<[^>]+>`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// stripHTML removes markup and collapses whitespace in rich-text descriptions
func stripHTML(s string) string {
	s = htmlTagRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// decodeProduct turns a raw catalog entry into a domain Product. Every field
// that is not one of the known top-level attributes lands in Specs.
func decodeProduct(raw json.RawMessage) (*domain.Product, error) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}

	// Flatten the nested shape before reading attributes
	flat := raw
	if len(e.Attributes) > 0 && string(e.Attributes) != "null" {
		flat = e.Attributes
		if err := json.Unmarshal(flat, &e.attrs); err != nil {
			return nil, fmt.Errorf("failed to decode product attributes: %w", err)
		}
	}

	var all map[string]any
	if err := json.Unmarshal(flat, &all); err != nil {
		return nil, fmt.Errorf("failed to decode product attributes: %w", err)
	}
	for _, known := range []string{"id", "documentId", "name", "slug", "description", "price",
		"createdAt", "updatedAt", "publishedAt", "attributes"} {
		delete(all, known)
	}

	return &domain.Product{
		ID:          e.ID,
		DocumentID:  e.DocumentID,
		Name:        e.Name,
		Slug:        e.Slug,
		Description: stripHTML(e.Description),
		Price:       e.Price,
		Specs:       all,
	}, nil
}

// GetByID fetches a single product by numeric identifier
func (c *Client) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	reqURL := fmt.Sprintf("%s/api/products/%d?populate=*", c.baseURL, id)

	var resp oneResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, domain.ErrProductNotFound
	}
	return decodeProduct(resp.Data)
}

// GetByDocumentID fetches a single published product by opaque document identifier
func (c *Client) GetByDocumentID(ctx context.Context, documentID string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("filters[documentId][$eq]", documentID)
	params.Set("publicationState", "live")
	params.Set("pagination[limit]", "1")
	params.Set("populate", "*")
	reqURL := fmt.Sprintf("%s/api/products?%s", c.baseURL, params.Encode())

	products, _, err := c.fetchPage(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return &products[0], nil
}

// ListPublished returns published products sorted by id ascending, up to limit
func (c *Client) ListPublished(ctx context.Context, limit int) ([]domain.Product, error) {
	params := url.Values{}
	params.Set("publicationState", "live")
	params.Set("sort", "id:asc")
	params.Set("pagination[limit]", fmt.Sprintf("%d", limit))
	params.Set("populate", "*")
	reqURL := fmt.Sprintf("%s/api/products?%s", c.baseURL, params.Encode())

	products, _, err := c.fetchPage(ctx, reqURL)
	return products, err
}

// ListNames returns the names of up to limit published products, using field
// projection to keep the response small
func (c *Client) ListNames(ctx context.Context, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("publicationState", "live")
	params.Set("sort", "id:asc")
	params.Set("pagination[limit]", fmt.Sprintf("%d", limit))
	params.Set("fields[0]", "name")
	reqURL := fmt.Sprintf("%s/api/products?%s", c.baseURL, params.Encode())

	products, _, err := c.fetchPage(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(products))
	for _, p := range products {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

// ListAll pages through every published product
func (c *Client) ListAll(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("publicationState", "live")
		params.Set("pagination[page]", fmt.Sprintf("%d", page))
		params.Set("pagination[pageSize]", fmt.Sprintf("%d", pageSize))
		params.Set("populate", "*")
		reqURL := fmt.Sprintf("%s/api/products?%s", c.baseURL, params.Encode())

		products, pageCount, err := c.fetchPage(ctx, reqURL)
		if err != nil {
			return nil, err
		}
		out = append(out, products...)

		if pageCount == 0 || page >= pageCount {
			break
		}
	}

	if c.debug {
		log.Printf("[catalog] fetched %d published products", len(out))
	}
	return out, nil
}

// fetchPage fetches one list URL and decodes its entries, returning the total
// page count from pagination metadata when present
func (c *Client) fetchPage(ctx context.Context, reqURL string) ([]domain.Product, int, error) {
	var resp listResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, 0, err
	}

	products := make([]domain.Product, 0, len(resp.Data))
	for _, raw := range resp.Data {
		p, err := decodeProduct(raw)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, resp.Meta.Pagination.PageCount, nil
}
