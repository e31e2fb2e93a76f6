package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Vector search is a brute-force cosine scan, which is plenty for tests.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk // by document ID, ordered by index
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string][]domain.Chunk),
	}
}

// SaveChunks atomically replaces the full chunk set of a document.
func (s *ChunkStore) SaveChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]domain.Chunk, len(chunks))
	copy(replacement, chunks)
	sort.SliceStable(replacement, func(i, j int) bool {
		return replacement[i].Index < replacement[j].Index
	})
	s.chunks[documentID] = replacement
	return nil
}

// CountChunks returns the number of chunks stored for a document.
func (s *ChunkStore) CountChunks(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID]), nil
}

// GetChunks returns all chunks of a document ordered by index.
func (s *ChunkStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chunks[documentID]
	out := make([]domain.Chunk, len(stored))
	copy(out, stored)
	return out, nil
}

// GetChunksByIndex returns the chunks at the given indices, ascending.
func (s *ChunkStore) GetChunksByIndex(_ context.Context, documentID string, indices []int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int]bool, len(indices))
	for _, idx := range indices {
		wanted[idx] = true
	}

	var out []domain.Chunk
	for _, chunk := range s.chunks[documentID] {
		if wanted[chunk.Index] {
			out = append(out, chunk)
		}
	}
	return out, nil
}

// KeywordSearchChunks performs a case-insensitive substring match over
// chunk text. An empty documentID searches every document.
func (s *ChunkStore) KeywordSearchChunks(_ context.Context, documentID, term string, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	var out []domain.Chunk
	for docID, chunks := range s.chunks {
		if documentID != "" && docID != documentID {
			continue
		}
		for _, chunk := range chunks {
			if strings.Contains(strings.ToLower(chunk.Content), needle) {
				out = append(out, chunk)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].Index < out[j].Index
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// VectorSearch returns the k most similar chunks by cosine similarity.
func (s *ChunkStore) VectorSearch(_ context.Context, documentID string, query []float32, k int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var scored []domain.ScoredChunk
	for docID, chunks := range s.chunks {
		if documentID != "" && docID != documentID {
			continue
		}
		for _, chunk := range chunks {
			if chunk.Embedding == nil {
				continue
			}
			scored = append(scored, domain.ScoredChunk{
				Chunk:      chunk,
				Similarity: domain.CosineSimilarity(query, chunk.Embedding),
			})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// DeleteChunks removes all chunks of a document.
func (s *ChunkStore) DeleteChunks(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}
