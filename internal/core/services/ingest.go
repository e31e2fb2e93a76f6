// Package services contains the core application services.
package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/arnaldo-delisio/vault-mcp/internal/chunker"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driven"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
	"github.com/arnaldo-delisio/vault-mcp/internal/logger"
)

// Ensure IngestPipeline implements the interface.
var _ driving.IngestService = (*IngestPipeline)(nil)

// claimableStates are the states a worker may claim work from.
var claimableStates = []domain.ProcessingStatus{domain.StatusPending, domain.StatusFailed}

// IngestPipeline captures documents and drives them through chunking
// and embedding. Capture is always immediate; embedding happens inline
// for small documents and is otherwise deferred to ProcessPending and
// RecoverStale passes.
type IngestPipeline struct {
	docs     driven.DocumentStore
	chunks   driven.ChunkStore
	embedder driven.EmbeddingService // nil means keyword-only mode
	chunker  *chunker.Chunker
	settings domain.ProcessingSettings
	limiter  *rate.Limiter
}

// NewIngestPipeline creates the ingest pipeline. The embedder may be
// nil, in which case chunks are stored without vectors.
func NewIngestPipeline(
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
	ck *chunker.Chunker,
	settings domain.ProcessingSettings,
) *IngestPipeline {
	limit := rate.Inf
	if settings.EmbedRate > 0 {
		limit = rate.Limit(settings.EmbedRate)
	}

	return &IngestPipeline{
		docs:     docs,
		chunks:   chunks,
		embedder: embedder,
		chunker:  ck,
		settings: settings,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Ingest persists a document in pending state and returns immediately.
// Documents small enough for the inline threshold are processed before
// returning; inline failures are soft and leave the document pending.
func (p *IngestPipeline) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.Document, error) {
	if strings.TrimSpace(req.Path) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: path and content are required", domain.ErrInvalidInput)
	}
	if req.FileType != "" && !req.FileType.IsValid() {
		return nil, fmt.Errorf("%w: unknown file type %q", domain.ErrInvalidInput, req.FileType)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		Path:        req.Path,
		Title:       req.Title,
		Content:     req.Content,
		FileType:    req.FileType,
		Tags:        req.Tags,
		Author:      req.Author,
		Guests:      req.Guests,
		Source:      req.Source,
		PublishedAt: req.PublishedAt,
		Status:      domain.StatusPending,
		Metadata:    map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(req.Path), filepath.Ext(req.Path))
	}
	if doc.FileType == "" {
		doc.FileType = domain.FileTypeNote
	}

	// Re-ingestion at a known path replaces the body and restarts the
	// processing cycle under the original identity.
	existing, err := p.docs.GetDocumentByPath(ctx, req.Path)
	switch {
	case err == nil:
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		if err := p.chunks.DeleteChunks(ctx, doc.ID); err != nil {
			return nil, fmt.Errorf("clearing stale chunks: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		// First capture.
	default:
		return nil, fmt.Errorf("looking up path: %w", err)
	}

	if err := p.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	if p.inlineEligible(doc) {
		outcome := p.processDocument(ctx, doc, domain.StatusPending)
		if outcome.Completed() {
			doc.Status = domain.StatusComplete
		} else if outcome.Err != nil {
			logger.Warn("inline processing of %s deferred: %v", doc.Path, outcome.Err)
		}
	}

	return doc, nil
}

// ProcessPending drains up to limit documents from the waiting queue.
func (p *IngestPipeline) ProcessPending(ctx context.Context, limit int) ([]domain.ProcessOutcome, error) {
	if limit <= 0 {
		limit = p.settings.RecoveryBatchSize
	}

	waiting, err := p.docs.ListStale(ctx, claimableStates, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("listing waiting documents: %w", err)
	}

	return p.processBatch(ctx, waiting), nil
}

// RecoverStale reprocesses abandoned documents. Documents younger than
// the staleness window are left for the live background pass.
func (p *IngestPipeline) RecoverStale(ctx context.Context) ([]domain.ProcessOutcome, error) {
	cutoff := time.Now().UTC().Add(-p.settings.StalenessWindow)

	stale, err := p.docs.ListStale(ctx, claimableStates, cutoff, p.settings.RecoveryBatchSize)
	if err != nil {
		return nil, fmt.Errorf("listing stale documents: %w", err)
	}

	if len(stale) > 0 {
		logger.Info("recovering %d stale document(s)", len(stale))
	}
	return p.processBatch(ctx, stale), nil
}

// Delete removes a document and its chunks by path.
func (p *IngestPipeline) Delete(ctx context.Context, path string) error {
	doc, err := p.docs.GetDocumentByPath(ctx, path)
	if err != nil {
		return err
	}

	if err := p.chunks.DeleteChunks(ctx, doc.ID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if err := p.docs.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// inlineEligible applies the Tier-2 threshold.
func (p *IngestPipeline) inlineEligible(doc *domain.Document) bool {
	return p.settings.InlineEnabled &&
		p.chunker.EstimateChunks(len(doc.Content)) <= p.settings.InlineMaxChunks
}

// processBatch runs documents through processing sequentially, reporting
// one outcome each. Background batches degrade failures to the failed
// state so the retry loop can find them.
func (p *IngestPipeline) processBatch(ctx context.Context, docs []domain.Document) []domain.ProcessOutcome {
	outcomes := make([]domain.ProcessOutcome, 0, len(docs))
	for i := range docs {
		outcomes = append(outcomes, p.processDocument(ctx, &docs[i], domain.StatusFailed))
	}
	return outcomes
}

// processDocument claims a document, chunks and embeds it, and stores
// the result. revertTo is where the document lands when processing
// cannot complete: pending for inline soft failures, failed for
// background passes.
func (p *IngestPipeline) processDocument(
	ctx context.Context, doc *domain.Document, revertTo domain.ProcessingStatus,
) domain.ProcessOutcome {
	outcome := domain.ProcessOutcome{DocumentID: doc.ID, Path: doc.Path}

	claimed, err := p.docs.TransitionStatus(ctx, doc.ID, claimableStates, domain.StatusProcessing)
	if err != nil {
		outcome.Result = domain.ProcessFailed
		outcome.Err = fmt.Errorf("claiming document: %w", err)
		return outcome
	}
	if !claimed {
		outcome.Result = domain.ProcessSkipped
		return outcome
	}

	chunks, failed, err := p.buildChunks(ctx, doc)
	if err != nil {
		p.revert(ctx, doc.ID, revertTo)
		outcome.Result = domain.ProcessFailed
		outcome.ChunksFailed = failed
		outcome.Err = err
		return outcome
	}

	if err := p.chunks.SaveChunks(ctx, doc.ID, chunks); err != nil {
		p.revert(ctx, doc.ID, revertTo)
		outcome.Result = domain.ProcessFailed
		outcome.Err = fmt.Errorf("storing chunks: %w", err)
		return outcome
	}

	if _, err := p.docs.TransitionStatus(ctx, doc.ID,
		[]domain.ProcessingStatus{domain.StatusProcessing}, domain.StatusComplete); err != nil {
		outcome.Result = domain.ProcessFailed
		outcome.Err = fmt.Errorf("completing document: %w", err)
		return outcome
	}

	outcome.ChunksStored = len(chunks)
	outcome.ChunksFailed = failed
	if failed > 0 {
		outcome.Result = domain.ProcessPartial
	} else {
		outcome.Result = domain.ProcessSucceeded
	}
	logger.Debug("processed %s: %d chunk(s) stored, %d failed", doc.Path, len(chunks), failed)
	return outcome
}

// buildChunks splits the body and embeds each chunk sequentially under
// the rate limit. Chunks whose embedding call fails are dropped, not
// stored vector-less, and the survivors are renumbered so stored
// indices always form the contiguous range [0, N-1]; only a fully
// failed batch aborts processing.
func (p *IngestPipeline) buildChunks(ctx context.Context, doc *domain.Document) ([]domain.Chunk, int, error) {
	parts := p.chunker.Chunk(doc.Content)
	now := time.Now().UTC()

	chunks := make([]domain.Chunk, 0, len(parts))
	failed := 0
	for i, part := range parts {
		var embedding []float32
		if p.embedder != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, failed, fmt.Errorf("rate limiter: %w", err)
			}
			vector, err := p.embedder.Embed(ctx, part)
			if err != nil {
				logger.Warn("embedding chunk %d of %s failed: %v", i, doc.Path, err)
				failed++
				continue
			}
			embedding = vector
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Index:      len(chunks),
			Content:    part,
			Embedding:  embedding,
			CreatedAt:  now,
		})
	}

	if p.embedder != nil && len(parts) > 0 && len(chunks) == 0 {
		return nil, failed, domain.ErrNoEmbeddings
	}
	return chunks, failed, nil
}

// revert returns a document to the retry loop after a mid-flight error.
func (p *IngestPipeline) revert(ctx context.Context, id string, to domain.ProcessingStatus) {
	if _, err := p.docs.TransitionStatus(ctx, id,
		[]domain.ProcessingStatus{domain.StatusProcessing}, to); err != nil {
		logger.Error("reverting document %s to %s: %v", id, to, err)
	}
}
