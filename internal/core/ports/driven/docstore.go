// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"time"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

// DocumentStore persists documents and their processing state.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByPath retrieves a document by its vault path.
	GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error)

	// DeleteDocument removes a document and, by cascade, its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, most recently updated first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// SearchDocuments performs a case-insensitive substring match over
	// titles and bodies, most recently updated first.
	SearchDocuments(ctx context.Context, term string, limit int) ([]domain.Document, error)

	// TransitionStatus atomically moves a document from any of the
	// given states to the target state. It returns false when the
	// document was not in an eligible state, which is how concurrent
	// workers lose the claim race.
	TransitionStatus(ctx context.Context, id string, from []domain.ProcessingStatus, to domain.ProcessingStatus) (bool, error)

	// ListStale returns documents in the given states whose last
	// update is at or before the cutoff, oldest first, bounded by limit.
	ListStale(ctx context.Context, statuses []domain.ProcessingStatus, cutoff time.Time, limit int) ([]domain.Document, error)

	// CountByStatus reports document counts per processing state.
	CountByStatus(ctx context.Context) (map[domain.ProcessingStatus]int, error)
}
