package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string   `json:"query,omitempty" jsonschema:"the search query; may be empty when filters are set"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum number of results (default 10, capped at 20)"`
	FileType string   `json:"file_type,omitempty" jsonschema:"restrict to one type: note, journal, article, transcript, pdf, book"`
	Tags     []string `json:"tags,omitempty" jsonschema:"match documents carrying any of these tags"`
	Author   string   `json:"author,omitempty" jsonschema:"match the author or any listed guest"`
	Source   string   `json:"source,omitempty" jsonschema:"restrict to one capture source"`
	After    string   `json:"after,omitempty" jsonschema:"only documents dated on or after this date (YYYY-MM-DD)"`
	Before   string   `json:"before,omitempty" jsonschema:"only documents dated on or before this date (YYYY-MM-DD)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Path     string  `json:"path"`
	Title    string  `json:"title"`
	FileType string  `json:"file_type"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet"`
	Status   string  `json:"status"`
}

// SampleInput is the input schema for the sample tool.
type SampleInput struct {
	Path  string `json:"path" jsonschema:"vault path of the document to sample"`
	Query string `json:"query,omitempty" jsonschema:"query to rank relevant chunks; empty returns anchors only"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of chunks (default 10, capped at 20)"`
}

// SampleOutput is the output schema for the sample tool.
type SampleOutput struct {
	Found       bool                 `json:"found"`
	Path        string               `json:"path,omitempty"`
	TotalChunks int                  `json:"total_chunks"`
	Indices     []int                `json:"indices"`
	Chunks      []SampledChunkOutput `json:"chunks"`
}

// SampledChunkOutput is one sampled chunk.
type SampledChunkOutput struct {
	Index   int    `json:"chunk_index"`
	Label   string `json:"label"`
	Content string `json:"text"`
}

// CaptureInput is the input schema for the capture tool.
type CaptureInput struct {
	Path     string   `json:"path" jsonschema:"vault path for the document; re-capturing a path replaces it"`
	Title    string   `json:"title,omitempty" jsonschema:"human-readable title; defaults to the path"`
	Content  string   `json:"content" jsonschema:"raw text body"`
	FileType string   `json:"file_type,omitempty" jsonschema:"note, journal, article, transcript, pdf or book (default note)"`
	Tags     []string `json:"tags,omitempty" jsonschema:"free-form labels"`
	Author   string   `json:"author,omitempty" jsonschema:"primary author or speaker"`
	Source   string   `json:"source,omitempty" jsonschema:"where the content came from"`
}

// CaptureOutput is the output schema for the capture tool.
type CaptureOutput struct {
	Path   string `json:"path"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the vault, fusing keyword and semantic matches",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sample",
		Description: "Sample a single large document: relevant chunks plus start, middle and end anchors",
	}, s.handleSample)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "capture",
			Description: "Capture a piece of text into the vault",
		}, s.handleCapture)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	filters, err := buildFilters(input)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	opts := domain.SearchOptions{Limit: input.Limit, Filters: filters}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			Path:     results[i].Document.Path,
			Title:    results[i].Document.Title,
			FileType: string(results[i].Document.FileType),
			Score:    results[i].Score,
			Snippet:  results[i].Snippet,
			Status:   results[i].Document.Status.String(),
		}
	}
	return nil, output, nil
}

// handleSample handles the sample tool invocation. An unknown path is
// reported as found=false, not an error.
func (s *Server) handleSample(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SampleInput,
) (*mcp.CallToolResult, SampleOutput, error) {
	sample, err := s.ports.Sampler.Sample(ctx, input.Path, input.Query, input.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, SampleOutput{Found: false, Indices: []int{}, Chunks: []SampledChunkOutput{}}, nil
		}
		return nil, SampleOutput{}, err
	}

	output := SampleOutput{
		Found:       true,
		Path:        sample.Path,
		TotalChunks: sample.TotalChunks,
		Indices:     sample.Indices,
		Chunks:      make([]SampledChunkOutput, len(sample.Chunks)),
	}
	if output.Indices == nil {
		output.Indices = []int{}
	}
	for i, chunk := range sample.Chunks {
		output.Chunks[i] = SampledChunkOutput{
			Index:   chunk.Index,
			Label:   chunk.Label,
			Content: chunk.Content,
		}
	}
	return nil, output, nil
}

// handleCapture handles the capture tool invocation.
func (s *Server) handleCapture(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CaptureInput,
) (*mcp.CallToolResult, CaptureOutput, error) {
	doc, err := s.ports.Ingest.Ingest(ctx, driving.IngestRequest{
		Path:     input.Path,
		Title:    input.Title,
		Content:  input.Content,
		FileType: domain.FileType(input.FileType),
		Tags:     input.Tags,
		Author:   input.Author,
		Source:   input.Source,
	})
	if err != nil {
		return nil, CaptureOutput{}, err
	}

	return nil, CaptureOutput{
		Path:   doc.Path,
		Title:  doc.Title,
		Status: doc.Status.String(),
	}, nil
}

// buildFilters translates tool input into the typed filter form.
func buildFilters(input SearchInput) (domain.SearchFilters, error) {
	filters := domain.SearchFilters{
		Tags:   input.Tags,
		Author: input.Author,
		Source: input.Source,
	}

	if input.FileType != "" {
		ft := domain.FileType(input.FileType)
		if !ft.IsValid() {
			return filters, fmt.Errorf("%w: unknown file type %q", domain.ErrInvalidInput, input.FileType)
		}
		filters.FileType = ft
	}

	if input.After != "" {
		t, err := parseDate(input.After)
		if err != nil {
			return filters, fmt.Errorf("%w: bad after date: %v", domain.ErrInvalidInput, err)
		}
		filters.After = &t
	}
	if input.Before != "" {
		t, err := parseDate(input.Before)
		if err != nil {
			return filters, fmt.Errorf("%w: bad before date: %v", domain.ErrInvalidInput, err)
		}
		filters.Before = &t
	}
	return filters, nil
}

// parseDate accepts YYYY-MM-DD or full RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
