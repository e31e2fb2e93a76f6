package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driven"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
	"github.com/arnaldo-delisio/vault-mcp/internal/logger"
)

// Ensure SamplerService implements the interface.
var _ driving.SamplerService = (*SamplerService)(nil)

// anchorCount is the slots reserved for the start, middle and end
// anchors inside the sample budget.
const anchorCount = 3

// SamplerService answers queries scoped to one large document. Top
// relevance matches alone under-cover a long document, so the sampler
// mixes in structural anchors and returns everything in document order.
type SamplerService struct {
	docs     driven.DocumentStore
	chunks   driven.ChunkStore
	embedder driven.EmbeddingService // nil means keyword-only matching
}

// NewSamplerService creates the context sampler.
func NewSamplerService(
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
) *SamplerService {
	return &SamplerService{
		docs:     docs,
		chunks:   chunks,
		embedder: embedder,
	}
}

// Sample returns up to limit chunks of the document at path: the best
// fusion matches for the query plus the start, middle and end anchors,
// sorted by index with positional labels.
func (s *SamplerService) Sample(ctx context.Context, path, query string, limit int) (*domain.DocumentSample, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: document path required", domain.ErrInvalidInput)
	}
	limit = domain.SearchOptions{Limit: limit}.ClampedLimit()

	doc, err := s.docs.GetDocumentByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	total, err := s.chunks.CountChunks(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	sample := &domain.DocumentSample{
		DocumentID:  doc.ID,
		Path:        doc.Path,
		TotalChunks: total,
	}
	if total == 0 {
		// Still pending; nothing to sample yet.
		return sample, nil
	}

	budget := limit - anchorCount
	if budget < 0 {
		budget = 0
	}

	matchIndices := s.topMatches(ctx, doc.ID, strings.TrimSpace(query), budget)

	included := make(map[int]bool, limit)
	for _, idx := range matchIndices {
		included[idx] = true
	}

	// Anchors fill whatever budget the matches left, never past the
	// limit: at limit 1 only the start anchor fits.
	start, middle, end := 0, total/2, total-1
	if len(included) < limit {
		included[start] = true
	}
	if len(included) < limit {
		included[end] = true
	}
	// The middle anchor yields when a match already covers its
	// neighbourhood; an adjacent chunk carries the same context.
	if !nearIncluded(matchIndices, middle) && len(included) < limit {
		included[middle] = true
	}

	indices := make([]int, 0, len(included))
	for idx := range included {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	chunks, err := s.chunks.GetChunksByIndex(ctx, doc.ID, indices)
	if err != nil {
		return nil, fmt.Errorf("fetching chunks: %w", err)
	}

	sample.Indices = make([]int, 0, len(chunks))
	sample.Chunks = make([]domain.SampledChunk, 0, len(chunks))
	for _, chunk := range chunks {
		sample.Indices = append(sample.Indices, chunk.Index)
		sample.Chunks = append(sample.Chunks, domain.SampledChunk{
			Index:   chunk.Index,
			Content: chunk.Content,
			Label:   chunkLabel(chunk.Index, middle, end),
		})
	}
	return sample, nil
}

// topMatches runs chunk-level keyword+vector fusion scoped to one
// document and returns up to budget chunk indices by fused score.
// Either leg failing degrades to the other.
func (s *SamplerService) topMatches(ctx context.Context, documentID, query string, budget int) []int {
	if budget == 0 || query == "" {
		return nil
	}

	keyword, err := s.chunks.KeywordSearchChunks(ctx, documentID, query, candidateLimit)
	if err != nil {
		logger.Warn("chunk keyword search failed: %v", err)
		keyword = nil
	}

	var semantic []domain.ScoredChunk
	if s.embedder != nil {
		semCtx, cancel := context.WithTimeout(ctx, semanticTimeout)
		defer cancel()

		vector, err := s.embedder.Embed(semCtx, truncateForEmbedding(query))
		if err != nil {
			logger.Warn("query embedding failed, keyword-only sampling: %v", err)
		} else if semantic, err = s.chunks.VectorSearch(semCtx, documentID, vector, candidateLimit); err != nil {
			logger.Warn("chunk vector search failed, keyword-only sampling: %v", err)
			semantic = nil
		}
	}

	type scoredIndex struct {
		index int
		score float64
	}
	byIndex := make(map[int]*scoredIndex)
	ordered := make([]*scoredIndex, 0, len(keyword)+len(semantic))

	for rank, chunk := range keyword {
		si := &scoredIndex{index: chunk.Index, score: rrfTerm(rank)}
		byIndex[chunk.Index] = si
		ordered = append(ordered, si)
	}
	for rank, scored := range semantic {
		if si, ok := byIndex[scored.Chunk.Index]; ok {
			si.score += rrfTerm(rank)
			continue
		}
		si := &scoredIndex{index: scored.Chunk.Index, score: rrfTerm(rank)}
		byIndex[scored.Chunk.Index] = si
		ordered = append(ordered, si)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})
	if len(ordered) > budget {
		ordered = ordered[:budget]
	}

	indices := make([]int, 0, len(ordered))
	for _, si := range ordered {
		indices = append(indices, si.index)
	}
	return indices
}

// nearIncluded reports whether any index sits on or next to target.
func nearIncluded(indices []int, target int) bool {
	for _, idx := range indices {
		if idx >= target-1 && idx <= target+1 {
			return true
		}
	}
	return false
}

// chunkLabel names a chunk's role by the anchor it coincides with.
func chunkLabel(index, middle, end int) string {
	switch index {
	case 0:
		return domain.LabelIntroduction
	case end:
		return domain.LabelEnd
	case middle:
		return domain.LabelMiddle
	default:
		return domain.LabelMatch
	}
}
