package cli

import (
	"context"
	"errors"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

// mockSearchService returns canned results.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return m.results, m.err
}

// mockSearchServiceError always fails.
type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) ([]domain.SearchResult, error) {
	return nil, errors.New("storage offline")
}

// mockIngestService records the last request.
type mockIngestService struct {
	document *domain.Document
	outcomes []domain.ProcessOutcome
	err      error

	lastRequest driving.IngestRequest
	deleted     []string
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.Document, error) {
	m.lastRequest = req
	return m.document, m.err
}

func (m *mockIngestService) ProcessPending(_ context.Context, _ int) ([]domain.ProcessOutcome, error) {
	return m.outcomes, m.err
}

func (m *mockIngestService) RecoverStale(_ context.Context) ([]domain.ProcessOutcome, error) {
	return m.outcomes, m.err
}

func (m *mockIngestService) Delete(_ context.Context, path string) error {
	m.deleted = append(m.deleted, path)
	return m.err
}

// mockLibraryService returns canned documents.
type mockLibraryService struct {
	documents []domain.Document
	document  *domain.Document
	counts    map[domain.ProcessingStatus]int
	err       error
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockLibraryService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockLibraryService) Status(_ context.Context) (map[domain.ProcessingStatus]int, error) {
	return m.counts, m.err
}

// mockSamplerService returns a canned sample.
type mockSamplerService struct {
	sample *domain.DocumentSample
	err    error
}

func (m *mockSamplerService) Sample(_ context.Context, _, _ string, _ int) (*domain.DocumentSample, error) {
	return m.sample, m.err
}

// setupTestServices installs mock services and returns a cleanup that
// restores the previous set.
func setupTestServices() func() {
	oldSearch := searchService
	oldIngest := ingestService
	oldLibrary := libraryService
	oldSampler := samplerService

	searchService = &mockSearchService{
		results: []domain.SearchResult{
			{
				Document: domain.Document{
					Path:     "notes/mock.md",
					Title:    "Mock Document",
					FileType: domain.FileTypeNote,
					Status:   domain.StatusComplete,
				},
				Score:   0.0164,
				Snippet: "a snippet of the mock document",
			},
		},
	}
	ingestService = &mockIngestService{
		document: &domain.Document{
			Path:     "notes/mock.md",
			Title:    "Mock Document",
			FileType: domain.FileTypeNote,
			Status:   domain.StatusPending,
		},
	}
	libraryService = &mockLibraryService{
		counts: map[domain.ProcessingStatus]int{
			domain.StatusComplete: 2,
			domain.StatusPending:  1,
		},
	}
	samplerService = &mockSamplerService{
		sample: &domain.DocumentSample{
			Path:        "notes/mock.md",
			TotalChunks: 3,
			Indices:     []int{0, 1, 2},
			Chunks: []domain.SampledChunk{
				{Index: 0, Label: domain.LabelIntroduction, Content: "start"},
				{Index: 1, Label: domain.LabelMiddle, Content: "middle"},
				{Index: 2, Label: domain.LabelEnd, Content: "end"},
			},
		},
	}

	return func() {
		searchService = oldSearch
		ingestService = oldIngest
		libraryService = oldLibrary
		samplerService = oldSampler
	}
}
