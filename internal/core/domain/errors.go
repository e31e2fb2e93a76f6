package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic search is disabled without embeddings; keyword search still works.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrNoEmbeddings indicates every chunk in a batch failed to embed.
	// Single-chunk failures are skipped; this is the all-failed escalation.
	ErrNoEmbeddings = errors.New("no embeddings produced")
)
