package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driven/storage/memory"
	"github.com/arnaldo-delisio/vault-mcp/internal/chunker"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driven"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

// stubEmbedder is a controllable embedding service for pipeline tests.
type stubEmbedder struct {
	calls    int
	failCall func(call int) bool // 0-based call number
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	call := s.calls
	s.calls++
	if s.failCall != nil && s.failCall(call) {
		return nil, errors.New("embedding backend down")
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int              { return 3 }
func (s *stubEmbedder) ModelName() string            { return "stub" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                 { return nil }

type pipelineFixture struct {
	docs     *memory.DocumentStore
	chunks   *memory.ChunkStore
	embedder *stubEmbedder
	pipeline *IngestPipeline
}

// newPipelineFixture wires a pipeline over memory stores with a tiny
// chunk size so multi-chunk documents stay small.
func newPipelineFixture(t *testing.T, embedder *stubEmbedder, settings domain.ProcessingSettings) *pipelineFixture {
	t.Helper()

	docs := memory.NewDocumentStore()
	chunks := memory.NewChunkStore()
	ck := chunker.New(chunker.WithChunkSize(40), chunker.WithOverlap(8))

	var embedSvc driven.EmbeddingService
	if embedder != nil {
		embedSvc = embedder
	}

	f := &pipelineFixture{docs: docs, chunks: chunks, embedder: embedder}
	f.pipeline = NewIngestPipeline(docs, chunks, embedSvc, ck, settings)
	return f
}

func inlineSettings() domain.ProcessingSettings {
	s := domain.DefaultProcessingSettings()
	s.EmbedRate = 0 // no throttling in tests
	return s
}

func backgroundOnlySettings() domain.ProcessingSettings {
	s := inlineSettings()
	s.InlineEnabled = false
	return s
}

func TestIngest_Validation(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, inlineSettings())
	ctx := context.Background()

	_, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "", Content: "body"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "a.md", Content: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "a.md", Content: "body", FileType: "spreadsheet"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_Defaults(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, backgroundOnlySettings())

	doc, err := f.pipeline.Ingest(context.Background(), driving.IngestRequest{
		Path:    "notes/morning pages.md",
		Content: "A short thought.",
	})
	require.NoError(t, err)

	assert.Equal(t, "morning pages", doc.Title)
	assert.Equal(t, domain.FileTypeNote, doc.FileType)
	assert.NotEmpty(t, doc.ID)
}

func TestIngest_SmallDocumentProcessesInline(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, inlineSettings())
	ctx := context.Background()

	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{
		Path:    "notes/a.md",
		Content: "Short enough for the inline path.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, doc.Status)

	stored, err := f.docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, stored.Status)

	chunks, err := f.chunks.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotNil(t, c.Embedding)
	}
}

func TestIngest_LargeDocumentStaysPending(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, inlineSettings())
	ctx := context.Background()

	// Well past InlineMaxChunks at a 40-char chunk size.
	body := strings.Repeat("Sentence with some filler words here. ", 30)
	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/big.md", Content: body})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, doc.Status)

	count, err := f.chunks.CountChunks(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, f.embedder.calls)
}

func TestIngest_InlineDisabledDefersEverything(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, backgroundOnlySettings())

	doc, err := f.pipeline.Ingest(context.Background(), driving.IngestRequest{
		Path:    "notes/a.md",
		Content: "Tiny.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, doc.Status)
	assert.Zero(t, f.embedder.calls)
}

func TestIngest_InlineFailureIsSoft(t *testing.T) {
	embedder := &stubEmbedder{failCall: func(int) bool { return true }}
	f := newPipelineFixture(t, embedder, inlineSettings())
	ctx := context.Background()

	// Caller still succeeds; the document returns to pending for retry.
	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{
		Path:    "notes/a.md",
		Content: "Will fail to embed.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, doc.Status)

	stored, err := f.docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestIngest_ReingestReplacesDocument(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, inlineSettings())
	ctx := context.Background()

	first, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/a.md", Content: "Version one."})
	require.NoError(t, err)
	require.Equal(t, domain.StatusComplete, first.Status)

	second, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/a.md", Content: "Version two, rather different."})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	chunks, err := f.chunks.GetChunks(ctx, second.ID)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.Contains(t, "Version two, rather different.", c.Content)
	}

	all, err := f.docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProcessPending_DrainsQueue(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, backgroundOnlySettings())
	ctx := context.Background()

	for _, path := range []string{"a.md", "b.md", "c.md"} {
		_, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: path, Content: "Queued body."})
		require.NoError(t, err)
	}

	outcomes, err := f.pipeline.ProcessPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.Equal(t, domain.ProcessSucceeded, o.Result)
		assert.Positive(t, o.ChunksStored)
	}

	counts, err := f.docs.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[domain.StatusComplete])
}

func TestProcessPending_RespectsLimit(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, backgroundOnlySettings())
	ctx := context.Background()

	for _, path := range []string{"a.md", "b.md", "c.md"} {
		_, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: path, Content: "Queued body."})
		require.NoError(t, err)
	}

	outcomes, err := f.pipeline.ProcessPending(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)

	counts, err := f.docs.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StatusPending])
}

func TestProcessPending_PartialEmbeddingFailure(t *testing.T) {
	// Middle chunk fails; the survivors still land and the document
	// completes with a partial outcome.
	embedder := &stubEmbedder{failCall: func(call int) bool { return call == 1 }}
	f := newPipelineFixture(t, embedder, backgroundOnlySettings())
	ctx := context.Background()

	body := strings.Repeat("Numbered sentence goes right here okay. ", 3)
	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/p.md", Content: body})
	require.NoError(t, err)

	outcomes, err := f.pipeline.ProcessPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, domain.ProcessPartial, outcomes[0].Result)
	assert.Equal(t, 1, outcomes[0].ChunksFailed)
	assert.Equal(t, outcomes[0].ChunksStored, embedder.calls-1)

	stored, err := f.docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, stored.Status)

	// Survivors are renumbered so the stored indices stay contiguous
	// from zero even though the dropped chunk sat in the middle.
	chunks, err := f.chunks.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	indices := make([]int, 0, len(chunks))
	for _, c := range chunks {
		indices = append(indices, c.Index)
	}
	sort.Ints(indices)
	for i, idx := range indices {
		assert.Equal(t, i, idx)
	}
	assert.Len(t, indices, embedder.calls-1)
}

func TestProcessPending_AllEmbeddingsFail(t *testing.T) {
	embedder := &stubEmbedder{failCall: func(int) bool { return true }}
	f := newPipelineFixture(t, embedder, backgroundOnlySettings())
	ctx := context.Background()

	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/f.md", Content: "Doomed body."})
	require.NoError(t, err)

	outcomes, err := f.pipeline.ProcessPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, domain.ProcessFailed, outcomes[0].Result)
	assert.ErrorIs(t, outcomes[0].Err, domain.ErrNoEmbeddings)

	stored, err := f.docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)

	// The retry loop picks the document back up once the backend heals.
	embedder.failCall = nil
	outcomes, err = f.pipeline.ProcessPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.ProcessSucceeded, outcomes[0].Result)
}

func TestProcessDocument_LosesClaimRace(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, backgroundOnlySettings())
	ctx := context.Background()

	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/a.md", Content: "Raced body."})
	require.NoError(t, err)

	// Another worker holds the claim.
	ok, err := f.docs.TransitionStatus(ctx, doc.ID, claimableStates, domain.StatusProcessing)
	require.NoError(t, err)
	require.True(t, ok)

	outcome := f.pipeline.processDocument(ctx, doc, domain.StatusFailed)
	assert.Equal(t, domain.ProcessSkipped, outcome.Result)
	assert.Zero(t, f.embedder.calls)
}

func TestRecoverStale_SkipsYoungDocuments(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, backgroundOnlySettings())
	ctx := context.Background()

	// A just-captured document is presumed claimed by a live worker.
	_, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/young.md", Content: "Fresh body."})
	require.NoError(t, err)

	outcomes, err := f.pipeline.RecoverStale(ctx)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestRecoverStale_ReprocessesAbandonedDocuments(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, backgroundOnlySettings())
	ctx := context.Background()

	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/stale.md", Content: "Abandoned body."})
	require.NoError(t, err)

	// Age the document past the staleness window.
	stored, err := f.docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	stored.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.docs.SaveDocument(ctx, stored))

	outcomes, err := f.pipeline.RecoverStale(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.ProcessSucceeded, outcomes[0].Result)

	final, err := f.docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, final.Status)
}

func TestPipeline_NoEmbedderStoresChunksWithoutVectors(t *testing.T) {
	f := newPipelineFixture(t, nil, inlineSettings())
	ctx := context.Background()

	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/k.md", Content: "Keyword-only body."})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, doc.Status)

	chunks, err := f.chunks.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Nil(t, c.Embedding)
	}
}

func TestDelete(t *testing.T) {
	f := newPipelineFixture(t, &stubEmbedder{}, inlineSettings())
	ctx := context.Background()

	doc, err := f.pipeline.Ingest(ctx, driving.IngestRequest{Path: "notes/d.md", Content: "Removable body."})
	require.NoError(t, err)

	require.NoError(t, f.pipeline.Delete(ctx, "notes/d.md"))

	_, err = f.docs.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := f.chunks.CountChunks(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, f.pipeline.Delete(ctx, "notes/d.md"), domain.ErrNotFound)
}
