// Package driving provides interfaces for primary/inbound ports.
package driving

import (
	"context"
	"time"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

// IngestRequest carries a document to capture. Content extraction is an
// upstream concern; the pipeline receives raw text plus metadata.
type IngestRequest struct {
	// Path is the vault-relative identifier. Re-ingesting an existing
	// path replaces the body and starts a fresh processing cycle.
	Path string

	// Title is the human-readable title; defaults to the path.
	Title string

	// Content is the raw text body.
	Content string

	// FileType categorises the document; defaults to note.
	FileType domain.FileType

	// Tags, Author, Guests, Source and PublishedAt populate the
	// document frontmatter used by search filters.
	Tags        []string
	Author      string
	Guests      []string
	Source      string
	PublishedAt *time.Time
}

// IngestService captures documents and drives the embedding pipeline.
type IngestService interface {
	// Ingest persists a document immediately in pending state and
	// returns without waiting on embeddings, except for small documents
	// which may be processed inline. Inline failures are soft: the
	// document stays pending for a later pass.
	Ingest(ctx context.Context, req IngestRequest) (*domain.Document, error)

	// ProcessPending chunks and embeds up to limit waiting documents.
	// This is the handoff contract for background workers. Per-document
	// outcomes are reported rather than logged away.
	ProcessPending(ctx context.Context, limit int) ([]domain.ProcessOutcome, error)

	// RecoverStale reprocesses a bounded batch of pending or failed
	// documents older than the staleness window. Safe to run
	// concurrently with a live background pass.
	RecoverStale(ctx context.Context) ([]domain.ProcessOutcome, error)

	// Delete removes a document and its chunks by path.
	Delete(ctx context.Context, path string) error
}
