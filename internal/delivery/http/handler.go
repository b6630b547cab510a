package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anyvolt/assistant-backend/internal/domain"
	"github.com/anyvolt/assistant-backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	assistant            *usecase.AssistantService
	indexer              *usecase.IndexService
	publicScoreThreshold float64
}

// NewHandler creates a new HTTP handler
func NewHandler(assistant *usecase.AssistantService, indexer *usecase.IndexService, publicScoreThreshold float64) *Handler {
	return &Handler{
		assistant:            assistant,
		indexer:              indexer,
		publicScoreThreshold: publicScoreThreshold,
	}
}

// chatRequest is the assistant chat request body
type chatRequest struct {
	Message    string `json:"message"`
	ProductID  int    `json:"productId"`
	DocumentID string `json:"documentId"`
}

// Chat answers a single assistant question. Negative outcomes (unknown
// product, no data) are successful responses with a fixed reply, not errors.
func (h *Handler) Chat(c *gin.Context) {
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Assistant service not configured",
		})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	reply, err := h.assistant.Chat(c.Request.Context(), usecase.ChatRequest{
		Message:    req.Message,
		ProductID:  req.ProductID,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// Search runs a public lexical search over the indexed catalog
func (h *Handler) Search(c *gin.Context) {
	if h.indexer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Search service not configured",
		})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'q' is required",
		})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Query parameter 'limit' must be between 1 and 50",
			})
			return
		}
		limit = parsed
	}

	hits, err := h.indexer.Search(query, limit, h.publicScoreThreshold)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(hits),
		"results": hits,
	})
}

// Refresh rebuilds the lexical index from the live catalog
func (h *Handler) Refresh(c *gin.Context) {
	if h.indexer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Search service not configured",
		})
		return
	}

	count, err := h.indexer.Rebuild(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"indexed": count,
	})
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	indexReady := false
	indexed := 0
	if h.indexer != nil {
		indexReady = h.indexer.Ready()
		indexed = h.indexer.Count()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         "anyvolt-assistant-backend",
		"version":         "1.0.0",
		"indexReady":      indexReady,
		"productsIndexed": indexed,
	})
}

// handleError maps domain errors to HTTP responses
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case usecase.IsUserError(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, domain.ErrIndexNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Search index is still warming up, try again shortly",
		})
	case errors.Is(err, domain.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Upstream service temporarily unavailable",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
