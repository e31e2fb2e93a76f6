package driving

import (
	"context"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

// SearchService provides hybrid vault-wide retrieval.
type SearchService interface {
	// Search fuses keyword and semantic matches into a ranked result
	// list. An empty query with filters set is a filtered browse
	// ordered by recency. The semantic leg degrades silently when the
	// embedding service is unavailable or slow.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// SamplerService answers queries scoped to a single large document.
type SamplerService interface {
	// Sample combines top relevance matches with structural anchor
	// chunks (start, middle, end) inside a fixed result budget,
	// returned in document order with positional labels.
	Sample(ctx context.Context, path, query string, limit int) (*domain.DocumentSample, error)
}
