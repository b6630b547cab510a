package domain

import "errors"

var (
	// ErrInvalidRequest is returned when the user message is empty or over the length cap
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when no catalog record matches the query
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrUpstreamFailure is returned when an external service call fails
	// (catalog, embedding, vector index, or the model backend itself)
	ErrUpstreamFailure = errors.New("upstream service request failed")

	// ErrModelNotFound is returned when the model backend reports an unknown model.
	// The completion orchestrator recovers from it by trying the next model.
	ErrModelNotFound = errors.New("model not found")

	// ErrIndexNotReady is returned when the lexical index has not been built yet
	ErrIndexNotReady = errors.New("search index not ready")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
