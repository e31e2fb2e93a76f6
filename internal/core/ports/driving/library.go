package driving

import (
	"context"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

// LibraryService provides read access to captured documents.
type LibraryService interface {
	// List returns all documents, most recently updated first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get returns one document by vault path.
	Get(ctx context.Context, path string) (*domain.Document, error)

	// Status reports document counts per processing state.
	Status(ctx context.Context) (map[domain.ProcessingStatus]int, error)
}
