package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driven"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
	"github.com/arnaldo-delisio/vault-mcp/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	// rrfK is the Reciprocal Rank Fusion constant. Larger values flatten
	// the rank curve; 60 is the standard choice.
	rrfK = 60

	// semanticTimeout bounds the vector leg. Keyword results ship
	// without it once the deadline passes.
	semanticTimeout = 10 * time.Second

	// snippetLength is the excerpt size shown per result.
	snippetLength = 150

	// candidateLimit is how deep each leg ranks before fusion. Filters
	// run after fusion, so legs over-fetch relative to the result limit.
	candidateLimit = 50

	// embedTextLimit caps text sent to the embedding backend.
	embedTextLimit = 30000
)

// SearchService fuses keyword and semantic retrieval over the vault.
type SearchService struct {
	docs     driven.DocumentStore
	chunks   driven.ChunkStore
	embedder driven.EmbeddingService // nil means keyword-only mode
}

// NewSearchService creates the hybrid search service. The embedder may
// be nil, which drops the semantic leg entirely.
func NewSearchService(
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		docs:     docs,
		chunks:   chunks,
		embedder: embedder,
	}
}

// fusedHit accumulates one document's evidence across both legs.
type fusedHit struct {
	doc       *domain.Document
	score     float64
	bestChunk *domain.Chunk
}

// Search runs hybrid retrieval. An empty query with filters present is
// a filtered browse by recency; an empty query without filters is an
// input error.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		if opts.Filters.IsZero() {
			return nil, fmt.Errorf("%w: query or filters required", domain.ErrInvalidInput)
		}
		return s.browse(ctx, opts)
	}

	keywordDocs, scoredChunks := s.runLegs(ctx, query)

	hits := s.fuse(ctx, keywordDocs, scoredChunks)

	// Fused order, then typed filters, then the cap.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	limit := opts.ClampedLimit()
	results := make([]domain.SearchResult, 0, limit)
	for _, hit := range hits {
		if !opts.Filters.Matches(hit.doc) {
			continue
		}
		results = append(results, domain.SearchResult{
			Document: *hit.doc,
			Chunk:    hit.bestChunk,
			Score:    hit.score,
			Snippet:  makeSnippet(hit.bestChunk, hit.doc),
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// runLegs executes the keyword and semantic legs in parallel. Either
// leg failing degrades to the other; both failing yields empty results,
// never an error.
func (s *SearchService) runLegs(ctx context.Context, query string) ([]domain.Document, []domain.ScoredChunk) {
	var (
		wg           sync.WaitGroup
		keywordDocs  []domain.Document
		scoredChunks []domain.ScoredChunk
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		docs, err := s.docs.SearchDocuments(ctx, query, candidateLimit)
		if err != nil {
			logger.Warn("keyword search failed: %v", err)
			return
		}
		keywordDocs = docs
	}()

	if s.embedder != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			semCtx, cancel := context.WithTimeout(ctx, semanticTimeout)
			defer cancel()

			vector, err := s.embedder.Embed(semCtx, truncateForEmbedding(query))
			if err != nil {
				logger.Warn("query embedding failed, keyword-only results: %v", err)
				return
			}
			chunks, err := s.chunks.VectorSearch(semCtx, "", vector, candidateLimit)
			if err != nil {
				logger.Warn("vector search failed, keyword-only results: %v", err)
				return
			}
			scoredChunks = chunks
		}()
	}

	wg.Wait()
	return keywordDocs, scoredChunks
}

// fuse merges both legs into document-level RRF scores. Documents are
// inserted keyword-order first so that equal fused scores keep the
// original keyword ranking under the later stable sort.
func (s *SearchService) fuse(ctx context.Context, keywordDocs []domain.Document, scoredChunks []domain.ScoredChunk) []*fusedHit {
	byID := make(map[string]*fusedHit, len(keywordDocs))
	ordered := make([]*fusedHit, 0, len(keywordDocs))

	for rank := range keywordDocs {
		doc := keywordDocs[rank]
		hit := &fusedHit{doc: &doc, score: rrfTerm(rank)}
		byID[doc.ID] = hit
		ordered = append(ordered, hit)
	}

	// The vector leg ranks chunks; a document's semantic rank is its
	// best chunk's position.
	docRank := 0
	for i := range scoredChunks {
		chunk := scoredChunks[i].Chunk
		if hit, ok := byID[chunk.DocumentID]; ok {
			if hit.bestChunk == nil {
				hit.score += rrfTerm(docRank)
				hit.bestChunk = &chunk
				docRank++
			}
			continue
		}

		doc, err := s.docs.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			logger.Warn("hydrating document %s failed: %v", chunk.DocumentID, err)
			continue
		}
		hit := &fusedHit{doc: doc, score: rrfTerm(docRank), bestChunk: &chunk}
		byID[chunk.DocumentID] = hit
		ordered = append(ordered, hit)
		docRank++
	}

	return ordered
}

// browse lists recent documents passing the filters, skipping fusion.
func (s *SearchService) browse(ctx context.Context, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	docs, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	limit := opts.ClampedLimit()
	results := make([]domain.SearchResult, 0, limit)
	for i := range docs {
		if !opts.Filters.Matches(&docs[i]) {
			continue
		}
		results = append(results, domain.SearchResult{
			Document: docs[i],
			Snippet:  makeSnippet(nil, &docs[i]),
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// rrfTerm is one list's contribution for a 0-based rank.
func rrfTerm(rank int) float64 {
	return 1.0 / float64(rrfK+rank+1)
}

// makeSnippet excerpts the best chunk, falling back to the body for
// documents still waiting on chunking.
func makeSnippet(chunk *domain.Chunk, doc *domain.Document) string {
	text := doc.Content
	if chunk != nil {
		text = chunk.Content
	}
	text = strings.TrimSpace(text)
	if len(text) > snippetLength {
		cut := snippetLength
		// Back off to a rune boundary so the cut never splits a
		// multi-byte character.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "…"
	}
	return text
}

// truncateForEmbedding caps text length before an embedding call.
func truncateForEmbedding(text string) string {
	if len(text) > embedTextLimit {
		return text[:embedTextLimit]
	}
	return text
}
