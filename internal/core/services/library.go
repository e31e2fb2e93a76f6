package services

import (
	"context"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driven"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService exposes the captured document collection read-only.
type LibraryService struct {
	docs driven.DocumentStore
}

// NewLibraryService creates the library service.
func NewLibraryService(docs driven.DocumentStore) *LibraryService {
	return &LibraryService{docs: docs}
}

// List returns all documents, most recently updated first.
func (s *LibraryService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docs.ListDocuments(ctx)
}

// Get returns one document by vault path.
func (s *LibraryService) Get(ctx context.Context, path string) (*domain.Document, error) {
	return s.docs.GetDocumentByPath(ctx, path)
}

// Status reports document counts per processing state.
func (s *LibraryService) Status(ctx context.Context) (map[domain.ProcessingStatus]int, error) {
	return s.docs.CountByStatus(ctx)
}
