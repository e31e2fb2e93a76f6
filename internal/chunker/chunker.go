// Package chunker splits long text into overlapping, sentence-aware chunks
// sized for an embedding model's token budget.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 6000

// DefaultOverlap is the default number of characters shared between
// neighbouring chunks. The overlap bounds information loss at chunk
// boundaries for any downstream semantic match.
const DefaultOverlap = 500

// boundaryWindow is how far back from the cut point to search for a
// sentence-ending boundary.
const boundaryWindow = 500

// sentenceBoundaries mark acceptable cut points. The cut is placed after
// the boundary so the punctuation stays with its sentence.
var sentenceBoundaries = []string{". ", "! ", "? ", "\n\n"}

// Chunker splits document text into overlapping chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room to advance.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// EstimateChunks predicts the chunk count for a text length. The ingest
// pipeline uses this to decide between inline and background processing.
func (c *Chunker) EstimateChunks(textLen int) int {
	if textLen == 0 {
		return 0
	}
	return (textLen + c.chunkSize - 1) / c.chunkSize
}

// Chunk splits text into ordered chunks. Chunking is deterministic: the
// same text and parameters always yield the same boundaries.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		// Prefer a sentence boundary near the window edge over a raw cut.
		if cut := c.findBoundary(text, start, end); cut > start {
			end = cut
		}

		chunks = append(chunks, text[start:end])

		next := end - c.overlap
		if next <= start {
			// Pathological tail: force progress to guarantee termination.
			next = end
		}
		start = next
	}

	return chunks
}

// findBoundary searches the last boundaryWindow characters before end for
// the right-most sentence boundary. It returns the cut position just
// after the boundary, or -1 if none is found in the window.
func (c *Chunker) findBoundary(text string, start, end int) int {
	winStart := end - boundaryWindow
	if winStart < start {
		winStart = start
	}
	window := text[winStart:end]

	cut := -1
	for _, b := range sentenceBoundaries {
		if i := strings.LastIndex(window, b); i >= 0 {
			if pos := winStart + i + len(b); pos > cut {
				cut = pos
			}
		}
	}
	return cut
}
