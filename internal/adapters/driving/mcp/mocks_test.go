package mcp

import (
	"context"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

// mockSamplerService is a mock implementation of driving.SamplerService.
type mockSamplerService struct {
	sample *domain.DocumentSample
	err    error

	lastPath  string
	lastQuery string
	lastLimit int
}

func (m *mockSamplerService) Sample(
	_ context.Context,
	path, query string,
	limit int,
) (*domain.DocumentSample, error) {
	m.lastPath = path
	m.lastQuery = query
	m.lastLimit = limit
	return m.sample, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	document *domain.Document
	outcomes []domain.ProcessOutcome
	err      error

	lastRequest driving.IngestRequest
}

func (m *mockIngestService) Ingest(
	_ context.Context,
	req driving.IngestRequest,
) (*domain.Document, error) {
	m.lastRequest = req
	return m.document, m.err
}

func (m *mockIngestService) ProcessPending(_ context.Context, _ int) ([]domain.ProcessOutcome, error) {
	return m.outcomes, m.err
}

func (m *mockIngestService) RecoverStale(_ context.Context) ([]domain.ProcessOutcome, error) {
	return m.outcomes, m.err
}

func (m *mockIngestService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockLibraryService is a mock implementation of driving.LibraryService.
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
