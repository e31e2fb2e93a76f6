package domain

import (
	"math"
	"strings"
	"time"
)

// Search limit bounds. Out-of-range limits are clamped, not rejected.
const (
	MinSearchLimit     = 1
	MaxSearchLimit     = 20
	DefaultSearchLimit = 10
)

// SearchFilters narrows results by document attributes.
// The recognised options are enumerated here and translated to the
// storage layer's query form by a single adapter; there is no dynamic
// filter building.
type SearchFilters struct {
	// FileType restricts to one content type.
	FileType FileType

	// Tags matches documents carrying any of the given tags.
	Tags []string

	// Author matches the author field or any guest, case-insensitively.
	Author string

	// Source restricts to one capture source.
	Source string

	// After excludes documents dated before this time.
	After *time.Time

	// Before excludes documents dated after this time.
	Before *time.Time
}

// IsZero returns true when no filter is set.
func (f SearchFilters) IsZero() bool {
	return f.FileType == "" && len(f.Tags) == 0 && f.Author == "" &&
		f.Source == "" && f.After == nil && f.Before == nil
}

// Matches reports whether a document passes every set filter.
func (f SearchFilters) Matches(doc *Document) bool {
	if f.FileType != "" && doc.FileType != f.FileType {
		return false
	}
	if f.Source != "" && !strings.EqualFold(doc.Source, f.Source) {
		return false
	}
	if len(f.Tags) > 0 && !tagsOverlap(doc.Tags, f.Tags) {
		return false
	}
	if f.Author != "" && !authorMatches(doc, f.Author) {
		return false
	}
	if f.After != nil || f.Before != nil {
		date := doc.FilterDate()
		if f.After != nil && date.Before(*f.After) {
			return false
		}
		if f.Before != nil && date.After(*f.Before) {
			return false
		}
	}
	return true
}

// tagsOverlap returns true if any wanted tag appears on the document.
func tagsOverlap(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// authorMatches checks the author field or the guest list.
func authorMatches(doc *Document, author string) bool {
	if strings.EqualFold(doc.Author, author) {
		return true
	}
	for _, g := range doc.Guests {
		if strings.EqualFold(g, author) {
			return true
		}
	}
	return false
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results, clamped to [1, 20].
	Limit int

	// Filters narrows results by document attributes.
	Filters SearchFilters
}

// ClampedLimit returns the effective result bound.
func (o SearchOptions) ClampedLimit() int {
	if o.Limit <= 0 {
		return DefaultSearchLimit
	}
	if o.Limit < MinSearchLimit {
		return MinSearchLimit
	}
	if o.Limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return o.Limit
}

// SearchResult is a single fused search hit. Results are transient and
// never persisted.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Chunk is the best-scoring chunk, nil when the document has no
	// chunks yet (pending status).
	Chunk *Chunk

	// Score is the fused relevance score.
	Score float64

	// Snippet is a short excerpt: the best chunk's text when available,
	// the start of the body otherwise.
	Snippet string
}

// ScoredChunk is a chunk with a similarity score from vector search.
type ScoredChunk struct {
	Chunk Chunk

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}

// Section labels for sampled chunks.
const (
	LabelIntroduction = "Introduction"
	LabelMiddle       = "Middle Section"
	LabelEnd          = "End Section"
	LabelMatch        = "Relevant Match"
)

// SampledChunk is one chunk of a document sample with its positional label.
type SampledChunk struct {
	// Index is the chunk's position within the document.
	Index int

	// Content is the chunk text.
	Content string

	// Label names the chunk's role: Introduction, Middle Section,
	// End Section, or Relevant Match.
	Label string
}

// DocumentSample is the result of context-aware sampling over one large
// document. It reports enough positional metadata for a caller to
// request a different neighbourhood in a follow-up call.
type DocumentSample struct {
	// DocumentID identifies the sampled document.
	DocumentID string

	// Path is the document's vault-relative identifier.
	Path string

	// TotalChunks is the document's full chunk count.
	TotalChunks int

	// Indices lists every chunk index included, ascending.
	Indices []int

	// Chunks holds the sampled chunks in document order.
	Chunks []SampledChunk
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||).
// Zero-norm vectors and mismatched dimensions yield 0, never a division
// by zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
