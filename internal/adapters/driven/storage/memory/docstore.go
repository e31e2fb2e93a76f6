// Package memory provides in-memory store implementations for tests and
// ephemeral use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByPath retrieves a document by its vault path.
func (s *DocumentStore) GetDocumentByPath(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.documents {
		if s.documents[id].Path == path {
			doc := s.documents[id]
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteDocument removes a document.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// ListDocuments returns all documents, most recently updated first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	return docs, nil
}

// SearchDocuments performs a case-insensitive substring match over
// titles and bodies.
func (s *DocumentStore) SearchDocuments(_ context.Context, term string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	var docs []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if strings.Contains(strings.ToLower(doc.Content), needle) ||
			strings.Contains(strings.ToLower(doc.Title), needle) {
			docs = append(docs, doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// TransitionStatus atomically moves a document between processing states.
func (s *DocumentStore) TransitionStatus(
	_ context.Context, id string, from []domain.ProcessingStatus, to domain.ProcessingStatus,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	eligible := false
	for _, f := range from {
		if doc.Status == f {
			eligible = true
			break
		}
	}
	if !eligible {
		return false, nil
	}
	doc.Status = to
	doc.UpdatedAt = time.Now().UTC()
	s.documents[id] = doc
	return true, nil
}

// ListStale returns waiting documents last updated at or before the cutoff.
func (s *DocumentStore) ListStale(
	_ context.Context, statuses []domain.ProcessingStatus, cutoff time.Time, limit int,
) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[domain.ProcessingStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	var docs []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if wanted[doc.Status] && !doc.UpdatedAt.After(cutoff) {
			docs = append(docs, doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.Before(docs[j].UpdatedAt)
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// CountByStatus reports document counts per processing state.
func (s *DocumentStore) CountByStatus(_ context.Context) (map[domain.ProcessingStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.ProcessingStatus]int)
	for id := range s.documents {
		counts[s.documents[id].Status]++
	}
	return counts, nil
}
