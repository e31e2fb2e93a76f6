package driven

import (
	"context"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

// ChunkStore persists chunks and exposes the store's search capabilities.
// Vector similarity is a capability of the storage layer; callers never
// compute nearest neighbours themselves.
type ChunkStore interface {
	// SaveChunks atomically replaces the full chunk set of a document.
	// Partial inserts are never visible.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// CountChunks returns the number of chunks stored for a document.
	CountChunks(ctx context.Context, documentID string) (int, error)

	// GetChunks returns all chunks of a document ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunksByIndex returns the chunks at the given indices,
	// ordered ascending. Missing indices are silently omitted.
	GetChunksByIndex(ctx context.Context, documentID string, indices []int) ([]domain.Chunk, error)

	// KeywordSearchChunks performs a case-insensitive substring match
	// over chunk text. An empty documentID searches the whole vault.
	KeywordSearchChunks(ctx context.Context, documentID, term string, limit int) ([]domain.Chunk, error)

	// VectorSearch returns the k chunks most similar to the query
	// vector by cosine similarity, best first. An empty documentID
	// searches the whole vault. Chunks without embeddings are skipped.
	VectorSearch(ctx context.Context, documentID string, query []float32, k int) ([]domain.ScoredChunk, error)

	// DeleteChunks removes all chunks of a document.
	DeleteChunks(ctx context.Context, documentID string) error
}
