package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Search == nil {
		ports.Search = &mockSearchService{}
	}
	if ports.Sampler == nil {
		ports.Sampler = &mockSamplerService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		published := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{
				{
					Document: domain.Document{
						ID:          "doc-1",
						Path:        "library/articles/attention.md",
						Title:       "Attention Is All You Need",
						FileType:    domain.FileTypeArticle,
						Status:      domain.StatusComplete,
						PublishedAt: &published,
					},
					Score:   0.032,
					Snippet: "The dominant sequence transduction models",
				},
			},
		}

		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{Query: "attention", Limit: 5}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "library/articles/attention.md", output.Results[0].Path)
		assert.Equal(t, "Attention Is All You Need", output.Results[0].Title)
		assert.Equal(t, "article", output.Results[0].FileType)
		assert.Equal(t, "complete", output.Results[0].Status)
		assert.Equal(t, 0.032, output.Results[0].Score)
		assert.Equal(t, "The dominant sequence transduction models", output.Results[0].Snippet)

		assert.Equal(t, "attention", mockSearch.lastQuery)
		assert.Equal(t, 5, mockSearch.lastOpts.Limit)
	})

	t.Run("translates filters", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{
			Query:    "transformers",
			FileType: "article",
			Tags:     []string{"ml", "nlp"},
			Author:   "Vaswani",
			Source:   "arxiv",
			After:    "2024-01-01",
			Before:   "2024-12-31",
		}
		_, _, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		filters := mockSearch.lastOpts.Filters
		assert.Equal(t, domain.FileTypeArticle, filters.FileType)
		assert.Equal(t, []string{"ml", "nlp"}, filters.Tags)
		assert.Equal(t, "Vaswani", filters.Author)
		assert.Equal(t, "arxiv", filters.Source)
		require.NotNil(t, filters.After)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *filters.After)
		require.NotNil(t, filters.Before)
		assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), *filters.Before)
	})

	t.Run("rejects unknown file type", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		input := SearchInput{Query: "test", FileType: "spreadsheet"}
		_, _, err := server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		input := SearchInput{Query: "test", After: "last tuesday"}
		_, _, err := server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{err: errors.New("search failed")}
		server := newTestServer(t, &Ports{Search: mockSearch})

		input := SearchInput{Query: "test"}
		_, _, err := server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleSample(t *testing.T) {
	ctx := context.Background()

	t.Run("returns sampled chunks", func(t *testing.T) {
		mockSampler := &mockSamplerService{
			sample: &domain.DocumentSample{
				DocumentID:  "doc-1",
				Path:        "library/books/sicp.md",
				TotalChunks: 45,
				Indices:     []int{0, 23, 44},
				Chunks: []domain.SampledChunk{
					{Index: 0, Label: domain.LabelIntroduction, Content: "chapter one"},
					{Index: 23, Label: domain.LabelMatch, Content: "the needle"},
					{Index: 44, Label: domain.LabelEnd, Content: "the end"},
				},
			},
		}

		server := newTestServer(t, &Ports{Sampler: mockSampler})

		input := SampleInput{Path: "library/books/sicp.md", Query: "needle", Limit: 10}
		_, output, err := server.handleSample(ctx, nil, input)

		require.NoError(t, err)
		assert.True(t, output.Found)
		assert.Equal(t, "library/books/sicp.md", output.Path)
		assert.Equal(t, 45, output.TotalChunks)
		assert.Equal(t, []int{0, 23, 44}, output.Indices)
		require.Len(t, output.Chunks, 3)
		assert.Equal(t, 23, output.Chunks[1].Index)
		assert.Equal(t, domain.LabelMatch, output.Chunks[1].Label)
		assert.Equal(t, "the needle", output.Chunks[1].Content)

		assert.Equal(t, "library/books/sicp.md", mockSampler.lastPath)
		assert.Equal(t, "needle", mockSampler.lastQuery)
		assert.Equal(t, 10, mockSampler.lastLimit)
	})

	t.Run("unknown path reports found false without error", func(t *testing.T) {
		mockSampler := &mockSamplerService{err: domain.ErrNotFound}
		server := newTestServer(t, &Ports{Sampler: mockSampler})

		input := SampleInput{Path: "no/such/doc.md", Query: "needle"}
		_, output, err := server.handleSample(ctx, nil, input)

		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.NotNil(t, output.Indices)
		assert.Empty(t, output.Indices)
		assert.NotNil(t, output.Chunks)
		assert.Empty(t, output.Chunks)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		mockSampler := &mockSamplerService{err: errors.New("storage offline")}
		server := newTestServer(t, &Ports{Sampler: mockSampler})

		input := SampleInput{Path: "library/books/sicp.md"}
		_, _, err := server.handleSample(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage offline")
	})
}

func TestServer_handleCapture(t *testing.T) {
	ctx := context.Background()

	t.Run("captures a document", func(t *testing.T) {
		mockIngest := &mockIngestService{
			document: &domain.Document{
				Path:   "notes/ideas.md",
				Title:  "Ideas",
				Status: domain.StatusPending,
			},
		}
		server := newTestServer(t, &Ports{Ingest: mockIngest})

		input := CaptureInput{
			Path:     "notes/ideas.md",
			Title:    "Ideas",
			Content:  "a note body",
			FileType: "note",
			Tags:     []string{"inbox"},
			Author:   "me",
			Source:   "manual",
		}
		_, output, err := server.handleCapture(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "notes/ideas.md", output.Path)
		assert.Equal(t, "Ideas", output.Title)
		assert.Equal(t, "pending", output.Status)

		assert.Equal(t, "notes/ideas.md", mockIngest.lastRequest.Path)
		assert.Equal(t, "a note body", mockIngest.lastRequest.Content)
		assert.Equal(t, domain.FileTypeNote, mockIngest.lastRequest.FileType)
		assert.Equal(t, []string{"inbox"}, mockIngest.lastRequest.Tags)
	})

	t.Run("returns error on ingest failure", func(t *testing.T) {
		mockIngest := &mockIngestService{err: domain.ErrInvalidInput}
		server := newTestServer(t, &Ports{Ingest: mockIngest})

		input := CaptureInput{Path: "notes/ideas.md"}
		_, _, err := server.handleCapture(ctx, nil, input)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestParseDate(t *testing.T) {
	t.Run("date only", func(t *testing.T) {
		parsed, err := parseDate("2024-06-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("full timestamp", func(t *testing.T) {
		parsed, err := parseDate("2024-06-15T08:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC), parsed)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseDate("not a date")
		assert.Error(t, err)
	})
}
